package search

import (
	"iter"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func adjacency(graph map[string][]string) func(string) iter.Seq[string] {
	return func(node string) iter.Seq[string] {
		return slices.Values(graph[node])
	}
}

func is(target string) func(string) bool {
	return func(node string) bool { return node == target }
}

var sampleGraph = map[string][]string{
	"A": {"B", "C"},
	"B": {"A", "D", "E"},
	"C": {"A", "F"},
	"D": {"B"},
	"E": {"B", "F"},
	"F": {"C", "E"},
}

func TestPaths(t *testing.T) {
	var got [][]string
	for path := range Paths("A", adjacency(sampleGraph), is("F")) {
		got = append(got, path)
	}

	require.Equal(t, [][]string{{"A", "C", "F"}, {"A", "B", "E", "F"}}, got)
}

func TestPaths_StopsEarly(t *testing.T) {
	calls := 0
	count := func(node string) iter.Seq[string] {
		calls++
		return slices.Values(sampleGraph[node])
	}

	for range Paths("A", count, is("F")) {
		break
	}
	require.Equal(t, 3, calls, "D and E must not be expanded once the first path is found")
}

func TestShortestPath(t *testing.T) {
	t.Run("nearest goal", func(t *testing.T) {
		require.Equal(t, []string{"A", "C", "F"}, ShortestPath("A", adjacency(sampleGraph), is("F")))
	})

	t.Run("neighbor order breaks ties", func(t *testing.T) {
		graph := map[string][]string{
			"S": {"X", "Y"},
			"X": {"G1"},
			"Y": {"G2"},
		}
		goal := func(n string) bool { return n == "G1" || n == "G2" }
		require.Equal(t, []string{"S", "X", "G1"}, ShortestPath("S", adjacency(graph), goal))

		graph["S"] = []string{"Y", "X"}
		require.Equal(t, []string{"S", "Y", "G2"}, ShortestPath("S", adjacency(graph), goal))
	})

	t.Run("unreachable goal", func(t *testing.T) {
		require.Nil(t, ShortestPath("A", adjacency(sampleGraph), is("Z")))
	})

	t.Run("start is not a goal candidate", func(t *testing.T) {
		require.Nil(t, ShortestPath("D", adjacency(map[string][]string{"D": nil}), is("D")))
	})

	t.Run("cycles terminate", func(t *testing.T) {
		ring := map[string][]string{"1": {"2"}, "2": {"3"}, "3": {"1"}}
		require.Nil(t, ShortestPath("1", adjacency(ring), is("4")))
	})

	t.Run("same node on disjoint paths", func(t *testing.T) {
		graph := map[string][]string{
			"S": {"A", "B"},
			"A": {"M"},
			"B": {"M"},
			"M": {"G"},
		}
		var got [][]string
		for p := range Paths("S", adjacency(graph), is("G")) {
			got = append(got, p)
		}
		require.Equal(t, [][]string{{"S", "A", "M", "G"}, {"S", "B", "M", "G"}}, got)
	})
}

type hop struct {
	object int
	owner  string
}

func TestShortestPath_StructNodes(t *testing.T) {
	owned := map[string][]hop{
		"acceptor": {{object: 1, owner: "mid"}},
		"mid":      {{object: 2, owner: "donor"}},
	}
	neighbors := func(h hop) iter.Seq[hop] {
		return slices.Values(owned[h.owner])
	}
	goal := func(h hop) bool { return h.owner == "donor" }

	path := ShortestPath(hop{object: -1, owner: "acceptor"}, neighbors, goal)
	require.Equal(t, []hop{{-1, "acceptor"}, {1, "mid"}, {2, "donor"}}, path)
}

func TestShortestPath_MatchesFirstPath(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 200 {
		nodes := 2 + rng.IntN(8)
		graph := make(map[string][]string, nodes)
		for i := range nodes {
			for j := range nodes {
				if i != j && rng.IntN(3) == 0 {
					graph[strconv.Itoa(i)] = append(graph[strconv.Itoa(i)], strconv.Itoa(j))
				}
			}
		}
		target := strconv.Itoa(1 + rng.IntN(nodes-1))

		var first []string
		for p := range Paths("0", adjacency(graph), is(target)) {
			first = p
			break
		}

		require.Equal(t, first, ShortestPath("0", adjacency(graph), is(target)), "round %d", round)
	}
}
