package model

import "strconv"

// Availability tells why a derived value is or is not present.
type Availability uint8

const (
	// Missing means an input the value depends on was absent.
	Missing Availability = iota
	// Present means the value was computed.
	Present
	// NotApplicable means all inputs were present but the formula is undefined
	// for them (non-positive price, matured bond, and so on).
	NotApplicable
)

func (a Availability) String() string {
	switch a {
	case Present:
		return "present"
	case NotApplicable:
		return "not_applicable"
	default:
		return "missing"
	}
}

// Optional is a derived numeric value that may be undefined. The zero value is
// Missing and is never confused with a computed 0.
type Optional struct {
	value float64
	state Availability
}

// Some returns a present value. Non-finite input is reported as NotApplicable.
func Some(v float64) Optional {
	if !finite(v) {
		return Optional{state: NotApplicable}
	}
	return Optional{value: v, state: Present}
}

// None returns a Missing value.
func None() Optional { return Optional{state: Missing} }

// Inapplicable returns a NotApplicable value.
func Inapplicable() Optional { return Optional{state: NotApplicable} }

// Get returns the value and whether it is present.
func (o Optional) Get() (float64, bool) {
	return o.value, o.state == Present
}

func (o Optional) State() Availability { return o.state }

func (o Optional) IsPresent() bool { return o.state == Present }

// MarshalJSON writes the value as a number, or null when undefined.
func (o Optional) MarshalJSON() ([]byte, error) {
	if o.state != Present {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(o.value, 'f', -1, 64)), nil
}
