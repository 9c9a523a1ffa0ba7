// Package tier implements priority tiers of persons and the Even-Out-Capitals
// Algorithm (EOCA) that equalizes ownership counts inside a tier.
//
// A Group owns its members' domains and capitals and borrows the shared
// ownership table from the World. A LowprioGroup is a Group whose active
// domains exclude every object claimed by the tier it depends on.
//
// Tiers are not safe for concurrent use. The World serializes all access.
package tier

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/jointown/internal/ownership"
	"github.com/arloliu/jointown/internal/search"
	"github.com/arloliu/jointown/types"
)

// NoObject marks the root hop of an exchange chain, which carries no object.
const NoObject = -1

// Hop is a node of the exchange graph: an object together with its current owner.
//
// The root of every chain is Hop{Object: NoObject, Owner: acceptor}.
type Hop struct {
	Object int
	Owner  types.PersonID
}

// Listener is notified after the member set (and so the domain union) of a
// group changes.
type Listener interface {
	// OnDependencyChanged is called after a person was added to or removed
	// from the watched group.
	OnDependencyChanged()
}

// Group is a priority tier of persons that evens out capitals within itself.
type Group struct {
	kind  types.Tier
	table *ownership.Table

	// order holds members in registration order; it breaks capital ties
	order    []types.PersonID
	domains  map[types.PersonID]types.Domain
	capitals map[types.PersonID]int
	union    types.Domain

	needEvenOut bool
	listeners   []Listener

	logger  types.Logger
	metrics types.TierMetrics
}

// NewGroup creates an empty normal-priority group on the shared table.
//
// Parameters:
//   - table: Ownership table shared with the other tiers of the World
//   - logger: Logger for exchange chains
//   - metrics: Metrics collector for exchange chains
//
// Returns:
//   - *Group: Empty group
func NewGroup(table *ownership.Table, logger types.Logger, metrics types.TierMetrics) *Group {
	return newGroup(types.TierNormal, table, logger, metrics)
}

func newGroup(kind types.Tier, table *ownership.Table, logger types.Logger, metrics types.TierMetrics) *Group {
	return &Group{
		kind:     kind,
		table:    table,
		domains:  make(map[types.PersonID]types.Domain),
		capitals: make(map[types.PersonID]int),
		logger:   logger,
		metrics:  metrics,
	}
}

// Watch registers a listener notified after every AddPerson/RemovePerson.
func (g *Group) Watch(l Listener) {
	g.listeners = append(g.listeners, l)
}

// Kind returns the tier of the group.
func (g *Group) Kind() types.Tier {
	return g.kind
}

// Has reports whether p is a member of the group.
func (g *Group) Has(p types.PersonID) bool {
	_, ok := g.domains[p]
	return ok
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.order)
}

// Members returns the members in registration order.
func (g *Group) Members() []types.PersonID {
	return slices.Clone(g.order)
}

// Domain returns the (active) domain of a member.
func (g *Group) Domain(p types.PersonID) (types.Domain, bool) {
	d, ok := g.domains[p]
	return d, ok
}

// Capital returns the number of objects owned by a member.
func (g *Group) Capital(p types.PersonID) (int, bool) {
	c, ok := g.capitals[p]
	return c, ok
}

// Capitals returns a copy of all member capitals.
func (g *Group) Capitals() map[types.PersonID]int {
	out := make(map[types.PersonID]int, len(g.capitals))
	for p, c := range g.capitals {
		out[p] = c
	}

	return out
}

// DomainUnion returns the union of all member domains.
func (g *Group) DomainUnion() types.Domain {
	return g.union
}

// NeedsEvenOut reports whether capitals may be uneven since the last EvenOut.
func (g *Group) NeedsEvenOut() bool {
	return g.needEvenOut
}

// AddPerson registers a new member and assigns it every free object of its domain.
//
// Dependent groups are notified before free objects are assigned.
//
// Parameters:
//   - p: New member, must not be a member yet
//   - domain: Objects the person may own
//
// Returns:
//   - types.Domain: Previously free objects now owned by p
//   - error: ErrDuplicateMember if p is already a member
func (g *Group) AddPerson(p types.PersonID, domain types.Domain) (types.Domain, error) {
	if g.Has(p) {
		return types.Domain{}, fmt.Errorf("%w: %q in %s tier", types.ErrDuplicateMember, p, g.kind)
	}

	g.register(p, domain)
	g.union = g.union.Union(domain)
	g.notify()
	g.needEvenOut = true

	return g.assignFree(p)
}

// RemovePerson removes a member and frees every object it owned.
//
// Returns:
//   - types.Domain: Objects that became free
//   - error: ErrUnknownMember if p is not a member
func (g *Group) RemovePerson(p types.PersonID) (types.Domain, error) {
	domain, ok := g.domains[p]
	if !ok {
		return types.Domain{}, fmt.Errorf("%w: %q in %s tier", types.ErrUnknownMember, p, g.kind)
	}

	freed, err := g.release(p, domain)
	if err != nil {
		return types.Domain{}, err
	}
	g.unregister(p)
	g.needEvenOut = true

	g.union = types.Domain{}
	for _, q := range g.order {
		g.union = g.union.Union(g.domains[q])
	}
	g.notify()

	return freed, nil
}

// AssignTo makes member p the owner of the free object o.
//
// Returns:
//   - error: ErrUnknownMember, ErrOutsideDomain, or ErrOwnershipConflict if o
//     is owned by anyone (use TakeAway first)
func (g *Group) AssignTo(o int, p types.PersonID) error {
	domain, ok := g.domains[p]
	if !ok {
		return fmt.Errorf("%w: %q in %s tier", types.ErrUnknownMember, p, g.kind)
	}
	if owner, owned := g.table.Owner(o); owned {
		return fmt.Errorf("%w: object %d owned by %q", types.ErrOwnershipConflict, o, owner)
	}
	if !domain.Contains(o) {
		return fmt.Errorf("%w: object %d, person %q", types.ErrOutsideDomain, o, p)
	}
	if err := g.table.Assign(o, p); err != nil {
		return err
	}

	g.capitals[p]++
	g.needEvenOut = true

	return nil
}

// TakeAway frees object o and returns its previous owner.
//
// Returns:
//   - types.PersonID: Previous owner
//   - error: ErrObjectNotOwned if o is free, ErrUnknownMember if the owner
//     belongs to another tier
func (g *Group) TakeAway(o int) (types.PersonID, error) {
	owner, owned := g.table.Owner(o)
	if !owned {
		return types.NoOwner, fmt.Errorf("%w: object %d", types.ErrObjectNotOwned, o)
	}
	if !g.Has(owner) {
		return types.NoOwner, fmt.Errorf("%w: %q owns object %d outside %s tier", types.ErrUnknownMember, owner, o, g.kind)
	}
	if _, err := g.table.Release(o); err != nil {
		return types.NoOwner, err
	}

	g.capitals[owner]--
	g.needEvenOut = true

	return owner, nil
}

// PoorestAcceptor returns the member with the lowest capital whose domain
// contains o. Ties go to the earliest registered member.
//
// Returns:
//   - types.PersonID: Poorest possible owner
//   - bool: false if no member may own o
func (g *Group) PoorestAcceptor(o int) (types.PersonID, bool) {
	poorest := types.NoOwner
	found := false
	minCapital := 0
	for _, p := range g.order {
		if !g.domains[p].Contains(o) {
			continue
		}
		if c := g.capitals[p]; !found || c < minCapital {
			poorest, minCapital, found = p, c, true
		}
	}

	return poorest, found
}

// Exchangeable yields every object of the requester's domain owned by another
// member of this group, together with that owner.
//
// These are the edges of the exchange graph: the requester could take any of
// these objects if its owner were compensated further along the chain.
// Free objects and objects of other tiers are not edges.
func (g *Group) Exchangeable(requester types.PersonID) iter.Seq[Hop] {
	return func(yield func(Hop) bool) {
		for o := range g.domains[requester].All() {
			owner, owned := g.table.Owner(o)
			if !owned || owner == requester || !g.Has(owner) {
				continue
			}
			if !yield(Hop{Object: o, Owner: owner}) {
				return
			}
		}
	}
}

// EvenOut runs the Even-Out-Capitals Algorithm on the group.
//
// The algorithm:
//  1. Rank members by capital, ascending (ties in registration order)
//  2. For each candidate acceptor with capital c, stop if c+1 >= the richest
//     capital: nothing better is reachable
//  3. Search the shortest exchange chain from the acceptor to any object whose
//     owner has a capital above c+1
//  4. Without a chain, try the next candidate
//  5. With a chain, move each object one step towards the acceptor starting
//     at the donor end: acceptor +1, donor -1, intermediates unchanged
//  6. Re-rank and start over after every applied chain
//  7. Finish when no candidate finds a chain
//
// The direct domains of the poorest and the richest person may not intersect,
// yet an object can still flow through a chain of pairwise-overlapping domains.
// The result is a local optimum: no single improving chain remains.
//
// EvenOut is a no-op when NeedsEvenOut is false.
//
// Returns:
//   - int: Number of exchange chains applied
//   - error: ErrInconsistentExchange if the table changed under a chain
func (g *Group) EvenOut() (int, error) {
	if !g.needEvenOut {
		return 0, nil
	}

	chains := 0
	for {
		applied, err := g.evenOutStep()
		if err != nil {
			return chains, err
		}
		if !applied {
			break
		}
		chains++
	}
	g.needEvenOut = false

	return chains, nil
}

// evenOutStep applies at most one exchange chain and reports whether it did.
func (g *Group) evenOutStep() (bool, error) {
	ranked := g.rankByCapital()
	if len(ranked) == 0 {
		return false, nil
	}
	richest := g.capitals[ranked[len(ranked)-1]]

	for _, acceptor := range ranked {
		c := g.capitals[acceptor]
		if c+1 >= richest {
			return false, nil
		}

		donorOwned := func(h Hop) bool {
			capital, ok := g.capitals[h.Owner]
			return ok && capital > c+1
		}
		path := search.ShortestPath(Hop{Object: NoObject, Owner: acceptor}, g.exchangeFrom, donorOwned)
		if len(path) <= 1 {
			continue
		}

		if err := g.applyChain(acceptor, path[1:]); err != nil {
			return false, err
		}
		g.logger.Debug("exchange chain applied",
			"tier", g.kind.String(),
			"acceptor", acceptor,
			"donor", path[len(path)-1].Owner,
			"hops", len(path)-1,
		)
		g.metrics.RecordExchangeChain(g.kind, len(path)-1)

		return true, nil
	}

	return false, nil
}

// exchangeFrom re-roots the exchange graph at whoever holds the requester
// role at a hop.
func (g *Group) exchangeFrom(h Hop) iter.Seq[Hop] {
	return g.Exchangeable(h.Owner)
}

// applyChain moves each chain object to the person one step closer to the acceptor.
func (g *Group) applyChain(acceptor types.PersonID, chain []Hop) error {
	for _, h := range chain {
		prev, err := g.TakeAway(h.Object)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrInconsistentExchange, err)
		}
		if prev != h.Owner {
			return fmt.Errorf("%w: object %d owned by %q, expected %q",
				types.ErrInconsistentExchange, h.Object, prev, h.Owner)
		}
		if err := g.AssignTo(h.Object, acceptor); err != nil {
			return fmt.Errorf("%w: %w", types.ErrInconsistentExchange, err)
		}
		acceptor = prev
	}

	return nil
}

// rankByCapital returns members sorted by capital, stable in registration order.
func (g *Group) rankByCapital() []types.PersonID {
	ranked := slices.Clone(g.order)
	slices.SortStableFunc(ranked, func(a, b types.PersonID) int {
		return g.capitals[a] - g.capitals[b]
	})

	return ranked
}

// assignFree gives p every free object of its domain.
func (g *Group) assignFree(p types.PersonID) (types.Domain, error) {
	var assigned []int
	for o := range g.domains[p].All() {
		if !g.table.IsFree(o) {
			continue
		}
		if err := g.AssignTo(o, p); err != nil {
			return types.NewDomain(assigned...), err
		}
		assigned = append(assigned, o)
	}

	return types.NewDomain(assigned...), nil
}

// release frees every object of scan owned by p.
func (g *Group) release(p types.PersonID, scan types.Domain) (types.Domain, error) {
	var freed []int
	for o := range scan.All() {
		if owner, owned := g.table.Owner(o); !owned || owner != p {
			continue
		}
		if _, err := g.table.Release(o); err != nil {
			return types.Domain{}, err
		}
		freed = append(freed, o)
	}

	return types.NewDomain(freed...), nil
}

func (g *Group) register(p types.PersonID, domain types.Domain) {
	g.order = append(g.order, p)
	g.domains[p] = domain
	g.capitals[p] = 0
}

func (g *Group) unregister(p types.PersonID) {
	g.order = slices.DeleteFunc(g.order, func(q types.PersonID) bool { return q == p })
	delete(g.domains, p)
	delete(g.capitals, p)
}

func (g *Group) notify() {
	for _, l := range g.listeners {
		l.OnDependencyChanged()
	}
}
