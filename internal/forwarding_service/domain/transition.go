package domain

import "fmt"

// ForwardingAxis identifies which of the two independent forwarding flags a
// transition acts on.
type ForwardingAxis string

const (
	AxisConditional   ForwardingAxis = "conditional"
	AxisUnconditional ForwardingAxis = "unconditional"
)

// Transition is one of the four forwarding state changes an operator can request.
type Transition string

const (
	EnableConditional    Transition = "enable-conditional"
	DisableConditional   Transition = "disable-conditional"
	EnableUnconditional  Transition = "enable-unconditional"
	DisableUnconditional Transition = "disable-unconditional"
)

// ParseTransition converts the wire/path form into a Transition.
func ParseTransition(s string) (Transition, error) {
	switch Transition(s) {
	case EnableConditional, DisableConditional, EnableUnconditional, DisableUnconditional:
		return Transition(s), nil
	}
	return "", fmt.Errorf("unknown transition %q", s)
}

// Axis returns the forwarding flag this transition acts on.
func (t Transition) Axis() ForwardingAxis {
	switch t {
	case EnableConditional, DisableConditional:
		return AxisConditional
	default:
		return AxisUnconditional
	}
}

// Enables reports whether the transition turns its flag on (true) or off (false).
func (t Transition) Enables() bool {
	return t == EnableConditional || t == EnableUnconditional
}
