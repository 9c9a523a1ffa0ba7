package tier

import "github.com/arloliu/jointown/types"

// Tier is the set of operations the World performs on either priority group.
type Tier interface {
	Kind() types.Tier
	Has(p types.PersonID) bool
	Len() int
	Members() []types.PersonID
	Capital(p types.PersonID) (int, bool)
	Domain(p types.PersonID) (types.Domain, bool)
	DomainUnion() types.Domain

	AddPerson(p types.PersonID, domain types.Domain) (types.Domain, error)
	RemovePerson(p types.PersonID) (types.Domain, error)
	AssignTo(o int, p types.PersonID) error
	TakeAway(o int) (types.PersonID, error)
	PoorestAcceptor(o int) (types.PersonID, bool)
	EvenOut() (int, error)
}

var (
	_ Tier = (*Group)(nil)
	_ Tier = (*LowprioGroup)(nil)
)
