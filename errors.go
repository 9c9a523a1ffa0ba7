package jointown

import "github.com/arloliu/jointown/types"

// Sentinel errors returned by the World, re-exported from the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrInvalidPersonID is returned when a reserved id is used as a person key.
	ErrInvalidPersonID = types.ErrInvalidPersonID

	// ErrPersonNotFound describes a removal of a person present in no tier.
	// RemovePerson reports it by returning false rather than as an error.
	ErrPersonNotFound = types.ErrPersonNotFound

	// ErrObjectOutOfRange is returned for object ids outside [0, N).
	ErrObjectOutOfRange = types.ErrObjectOutOfRange

	// ErrDuplicateMember is returned when adding a person id already in use in any tier.
	ErrDuplicateMember = types.ErrDuplicateMember

	// ErrOwnershipConflict is returned when assigning an already owned object.
	ErrOwnershipConflict = types.ErrOwnershipConflict

	// ErrUnknownMember is returned when a tier operation references a non-member.
	ErrUnknownMember = types.ErrUnknownMember

	// ErrObjectNotOwned is returned when taking away a free object.
	ErrObjectNotOwned = types.ErrObjectNotOwned

	// ErrOutsideDomain is returned when assigning an object outside a person's domain.
	ErrOutsideDomain = types.ErrOutsideDomain

	// ErrInconsistentExchange is returned when an exchange chain no longer
	// matches the ownership table.
	ErrInconsistentExchange = types.ErrInconsistentExchange

	// ErrWorldStopped is returned by AddPerson and RemovePerson after a step
	// failed midway.
	ErrWorldStopped = types.ErrWorldStopped
)
