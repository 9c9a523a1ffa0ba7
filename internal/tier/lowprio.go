package tier

import (
	"fmt"

	"github.com/arloliu/jointown/internal/ownership"
	"github.com/arloliu/jointown/types"
)

// LowprioGroup is a low-priority tier whose active domains exclude every
// object in the domain union of the group it depends on.
//
// Given domains are kept as supplied at registration. Active domains and the
// domain union are derived from them and recomputed whenever the dependency
// adds or removes a person.
type LowprioGroup struct {
	*Group

	given      map[types.PersonID]types.Domain
	givenUnion types.Domain
	dependency *Group
}

var _ Listener = (*LowprioGroup)(nil)

// NewLowprioGroup creates an empty low-priority group and registers it with
// its dependency.
//
// Parameters:
//   - table: Ownership table shared with the dependency
//   - dependency: Group whose domain union is excluded from active domains
//   - logger: Logger for exchange chains
//   - metrics: Metrics collector for exchange chains
//
// Returns:
//   - *LowprioGroup: Empty group watching dependency
func NewLowprioGroup(table *ownership.Table, dependency *Group, logger types.Logger, metrics types.TierMetrics) *LowprioGroup {
	lp := &LowprioGroup{
		Group:      newGroup(types.TierLowprio, table, logger, metrics),
		given:      make(map[types.PersonID]types.Domain),
		dependency: dependency,
	}
	dependency.Watch(lp)

	return lp
}

// GivenDomain returns the domain of a member as supplied at registration.
func (lp *LowprioGroup) GivenDomain(p types.PersonID) (types.Domain, bool) {
	d, ok := lp.given[p]
	return d, ok
}

// GivenUnion returns the union of all given domains.
func (lp *LowprioGroup) GivenUnion() types.Domain {
	return lp.givenUnion
}

// AddPerson registers a new member with its given domain and assigns it every
// free object of its active domain.
//
// Returns:
//   - types.Domain: Previously free objects now owned by p
//   - error: ErrDuplicateMember if p is already a member
func (lp *LowprioGroup) AddPerson(p types.PersonID, given types.Domain) (types.Domain, error) {
	if lp.Has(p) {
		return types.Domain{}, fmt.Errorf("%w: %q in %s tier", types.ErrDuplicateMember, p, lp.kind)
	}

	excluded := lp.dependency.DomainUnion()
	lp.given[p] = given
	lp.givenUnion = lp.givenUnion.Union(given)

	lp.register(p, given.Minus(excluded))
	lp.union = lp.givenUnion.Minus(excluded)
	lp.needEvenOut = true

	return lp.assignFree(p)
}

// RemovePerson removes a member, frees its objects and recomputes every
// active domain from scratch.
//
// Returns:
//   - types.Domain: Objects that became free
//   - error: ErrUnknownMember if p is not a member
func (lp *LowprioGroup) RemovePerson(p types.PersonID) (types.Domain, error) {
	given, ok := lp.given[p]
	if !ok {
		return types.Domain{}, fmt.Errorf("%w: %q in %s tier", types.ErrUnknownMember, p, lp.kind)
	}

	freed, err := lp.release(p, given)
	if err != nil {
		return types.Domain{}, err
	}
	lp.unregister(p)
	delete(lp.given, p)

	lp.givenUnion = types.Domain{}
	for _, q := range lp.order {
		lp.givenUnion = lp.givenUnion.Union(lp.given[q])
	}
	lp.OnDependencyChanged()
	lp.notify()

	return freed, nil
}

// OnDependencyChanged recomputes active domains and the domain union against
// the current domain union of the dependency.
//
// It always marks the group as needing EvenOut. Objects that left an active
// domain are not taken away here: eviction is the World's job.
func (lp *LowprioGroup) OnDependencyChanged() {
	excluded := lp.dependency.DomainUnion()
	for _, p := range lp.order {
		lp.domains[p] = lp.given[p].Minus(excluded)
	}
	lp.union = lp.givenUnion.Minus(excluded)
	lp.needEvenOut = true
}
