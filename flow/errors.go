package flow

import "errors"

var (
	// ErrInvalidEvent is returned when an event string cannot be parsed.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidScenario is returned when a scenario file is malformed.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnexpectedOwnership is returned when a scenario step ends with an
	// ownership string other than the expected one.
	ErrUnexpectedOwnership = errors.New("unexpected ownership")
)
