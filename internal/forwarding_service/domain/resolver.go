package domain

import "fmt"

// ResolveDialCode produces the carrier-specific dial code for one transition, or the
// sentinel meaning no code exists. This is the single place destination numbers are
// formatted into codes; callers never concatenate numbers themselves.
//
// The function is pure: identical inputs always yield identical output.
func ResolveDialCode(profile *CarrierProfile, number string, t Transition) DialCode {
	if profile == nil || number == "" {
		// Forwarding cannot be expressed without a destination number.
		return UnavailableCode()
	}
	if profile.Family == FamilyAppManaged {
		return AppManagedCode()
	}
	if t.Axis() == AxisConditional && !profile.SupportsConditional {
		// The two axes are resolved independently; an unconditional code existing for
		// the same carrier does not make the conditional one available.
		return UnavailableCode()
	}

	switch profile.Family {
	case FamilyGSM:
		return resolveGSM(number, t)
	case FamilyCDMAStyle:
		return resolveCDMAStyle(number, t)
	default:
		return UnavailableCode()
	}
}

// GSM service codes: 61 is the no-answer (conditional) register, 21 the
// unconditional one. Enable codes bracket the destination number with * and #.
func resolveGSM(number string, t Transition) DialCode {
	switch t {
	case EnableConditional:
		return LiteralCode(fmt.Sprintf("**61*%s#", number))
	case DisableConditional:
		return LiteralCode("##61#")
	case EnableUnconditional:
		return LiteralCode(fmt.Sprintf("**21*%s#", number))
	case DisableUnconditional:
		return LiteralCode("##21#")
	}
	return UnavailableCode()
}

// CDMA-style carriers use vertical service codes with the destination number dialed
// as a space-separated sequence after the code.
func resolveCDMAStyle(number string, t Transition) DialCode {
	switch t {
	case EnableConditional:
		return LiteralCode(fmt.Sprintf("*92 %s", number))
	case DisableConditional:
		return LiteralCode("*93")
	case EnableUnconditional:
		return LiteralCode(fmt.Sprintf("*72 %s", number))
	case DisableUnconditional:
		return LiteralCode("*73")
	}
	return UnavailableCode()
}
