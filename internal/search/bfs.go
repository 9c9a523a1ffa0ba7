// Package search provides breadth-first path search over implicitly defined graphs.
//
// The graph is never materialized: callers pass a neighbor function that
// enumerates the successors of a node lazily. This fits exchange graphs whose
// edges depend on the current ownership table and on who holds the requester
// role at each step.
package search

import (
	"iter"
	"slices"
)

// queued is a node waiting for expansion together with the path that reached it.
type queued[N comparable] struct {
	node N
	path []N
}

// Paths generates paths from start to goal nodes using breadth-first search.
//
// Paths are yielded in non-decreasing length. Among paths of equal length the
// order follows the enumeration order of the neighbor function. Goal nodes
// terminate a path and are not expanded further. A node is never added twice
// to the same path, but may appear on several different paths: the visited set
// is per path, not global.
//
// The start node itself is never tested against goal.
//
// Parameters:
//   - start: Node to start from
//   - neighbors: Returns the successors of a node
//   - goal: Reports whether a node terminates a path
//
// Returns:
//   - iter.Seq[[]N]: Lazy sequence of paths, each beginning with start
//
// Example:
//
//	graph := map[string][]string{"A": {"B", "C"}, "B": {"A", "D", "E"}, "C": {"A", "F"}}
//	for path := range search.Paths("A", adjacency(graph), isF) {
//	    fmt.Println(path) // [A C F], then longer paths
//	}
func Paths[N comparable](start N, neighbors func(N) iter.Seq[N], goal func(N) bool) iter.Seq[[]N] {
	return func(yield func([]N) bool) {
		queue := []queued[N]{{node: start, path: []N{start}}}
		for len(queue) > 0 {
			cur := queue[0]
			queue[0] = queued[N]{}
			queue = queue[1:]

			for next := range neighbors(cur.node) {
				if slices.Contains(cur.path, next) {
					continue
				}

				path := make([]N, len(cur.path), len(cur.path)+1)
				copy(path, cur.path)
				path = append(path, next)

				if goal(next) {
					if !yield(path) {
						return
					}

					continue
				}
				queue = append(queue, queued[N]{node: next, path: path})
			}
		}
	}
}

// ShortestPath returns the path Paths would yield first, or nil if no goal is
// reachable.
//
// The result starts with start and ends with the nearest goal node by edge
// count. Unlike Paths it keeps a global visited set: the first occurrence of a
// node in breadth-first order is the only one that can lead to the first goal,
// so later occurrences are pruned and the search stays linear in the graph size.
// Paths is the reference semantics; ShortestPath must agree with its first path.
func ShortestPath[N comparable](start N, neighbors func(N) iter.Seq[N], goal func(N) bool) []N {
	parent := map[N]N{}
	visited := map[N]bool{start: true}
	queue := []N{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for next := range neighbors(cur) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur

			if goal(next) {
				return trace(parent, start, next)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

// trace rebuilds the path from start to end through parent links.
func trace[N comparable](parent map[N]N, start, end N) []N {
	path := []N{end}
	for node := end; node != start; {
		node = parent[node]
		path = append(path, node)
	}
	slices.Reverse(path)

	return path
}
