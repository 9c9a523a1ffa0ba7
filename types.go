package jointown

import "github.com/arloliu/jointown/types"

// Re-export types from the types package.
//
// Internal packages depend on types, never on the root package, which keeps
// jointown.PersonID, jointown.Domain and friends available to users without
// import cycles.
type (
	PersonID = types.PersonID
	Domain   = types.Domain
	Tier     = types.Tier
	Snapshot = types.Snapshot
)

// Re-export interfaces from the types package for convenience.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export constants from the types package.
const (
	TierNormal  = types.TierNormal
	TierLowprio = types.TierLowprio

	// NoOwner marks a free object in Owners and Snapshot.Owners.
	NoOwner = types.NoOwner

	// FreeMarker is the character of a free object in ownership strings.
	FreeMarker = types.FreeMarker
)

// NewDomain builds a domain from object ids; duplicates are dropped.
func NewDomain(ids ...int) Domain {
	return types.NewDomain(ids...)
}

// DomainRange returns the domain of all ids in [from, to).
func DomainRange(from, to int) Domain {
	return types.DomainRange(from, to)
}
