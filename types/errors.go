package types

import "errors"

// Sentinel errors for the jointown library.
//
// These errors provide type-safe error checking using errors.Is().
// Components wrap them with context using fmt.Errorf("%w: ...", err).
//
// All of them are local precondition violations. Nothing in the library
// recovers from them automatically (for example by releasing an object
// before re-assigning it), because that would hide caller bugs.

// World errors - public API errors returned by World.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPersonID is returned when a reserved id is used as a person key.
	ErrInvalidPersonID = errors.New("invalid person id")

	// ErrPersonNotFound reports a removal of a person present in no tier.
	// World.RemovePerson reports it through the logger and metrics and
	// returns false instead of failing.
	ErrPersonNotFound = errors.New("person not found")

	// ErrObjectOutOfRange is returned for object ids outside [0, N).
	ErrObjectOutOfRange = errors.New("object id out of range")
)

// Tier errors - precondition violations inside a tier.
var (
	// ErrOwnershipConflict is returned when assigning an object that is already
	// owned ("robbing"). The current owner must be released with TakeAway first.
	ErrOwnershipConflict = errors.New("object already owned: take it away first")

	// ErrUnknownMember is returned when an operation references a person that
	// is not a member of the tier.
	ErrUnknownMember = errors.New("unknown member")

	// ErrDuplicateMember is returned when adding a person that is already a member.
	ErrDuplicateMember = errors.New("duplicate member")

	// ErrObjectNotOwned is returned when taking away a free object.
	ErrObjectNotOwned = errors.New("object is not owned")

	// ErrOutsideDomain is returned when assigning an object outside the
	// person's (active) domain.
	ErrOutsideDomain = errors.New("object outside person domain")

	// ErrInconsistentExchange is returned when an exchange chain does not match
	// the ownership table while it is being applied.
	ErrInconsistentExchange = errors.New("inconsistent exchange chain")

	// ErrWorldStopped is returned by every mutation after a step failed
	// midway and left the World inconsistent.
	ErrWorldStopped = errors.New("world stopped after a failed step")
)
