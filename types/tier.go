package types

import "fmt"

// Tier is the priority tier a person belongs to.
//
// Persons of the normal tier always displace lowprio persons from objects of
// their domain. Capitals are evened out within a tier, never across tiers.
type Tier int

const (
	// TierNormal is the regular priority tier.
	TierNormal Tier = iota

	// TierLowprio is the low priority tier. Its active domains exclude every
	// object claimed by the normal tier.
	TierLowprio
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierLowprio:
		return "lowprio"
	default:
		return "unknown"
	}
}

// Symbol returns the one-character action marker used in event logs:
// "+" for normal additions and "L" for lowprio additions.
func (t Tier) Symbol() string {
	if t == TierLowprio {
		return "L"
	}

	return "+"
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	if t != TierNormal && t != TierLowprio {
		return nil, fmt.Errorf("unknown tier %d", int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name written by MarshalText.
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*t = TierNormal
	case "lowprio":
		*t = TierLowprio
	default:
		return fmt.Errorf("unknown tier %q", text)
	}

	return nil
}
