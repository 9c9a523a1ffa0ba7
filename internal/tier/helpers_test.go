package tier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jointown/internal/logging"
	"github.com/arloliu/jointown/internal/ownership"
	"github.com/arloliu/jointown/internal/search"
	"github.com/arloliu/jointown/types"
)

const (
	vasia types.PersonID = "Vasia"
	pasha types.PersonID = "Pasha"
	taia  types.PersonID = "Taia"
	maia  types.PersonID = "Maia"
)

// chainRecorder captures exchange chain lengths.
type chainRecorder struct {
	hops []int
}

func (r *chainRecorder) RecordExchangeChain(_ types.Tier, hops int) {
	r.hops = append(r.hops, hops)
}

func newTestGroup(t *testing.T, objects int) (*Group, *ownership.Table, *chainRecorder) {
	t.Helper()
	table := ownership.New(objects)
	rec := &chainRecorder{}

	return NewGroup(table, logging.NewNop(), rec), table, rec
}

func mustAdd(t *testing.T, g Tier, p types.PersonID, ids ...int) types.Domain {
	t.Helper()
	assigned, err := g.AddPerson(p, types.NewDomain(ids...))
	require.NoError(t, err)

	return assigned
}

func mustMove(t *testing.T, g Tier, o int, to types.PersonID) {
	t.Helper()
	_, err := g.TakeAway(o)
	require.NoError(t, err)
	require.NoError(t, g.AssignTo(o, to))
}

func owners(table *ownership.Table) []types.PersonID {
	return table.Owners()
}

// requireConsistent checks that capitals agree with the table.
func requireConsistent(t *testing.T, g *Group, table *ownership.Table) {
	t.Helper()
	for _, p := range g.Members() {
		c, ok := g.Capital(p)
		require.True(t, ok)
		require.Equal(t, table.Count(p), c, "capital of %q", p)
	}
}

// requireLocalOptimum checks that no improving exchange chain remains.
func requireLocalOptimum(t *testing.T, g *Group) {
	t.Helper()
	for _, acceptor := range g.Members() {
		c, _ := g.Capital(acceptor)
		improving := func(h Hop) bool {
			capital, ok := g.capitals[h.Owner]
			return ok && capital > c+1
		}
		path := search.ShortestPath(Hop{Object: NoObject, Owner: acceptor}, g.exchangeFrom, improving)
		require.Nil(t, path, "improving chain left for %q", acceptor)
	}
}
