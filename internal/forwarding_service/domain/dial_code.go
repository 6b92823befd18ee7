package domain

// DialCodeKind discriminates the three shapes a resolved dial code can take.
// Modelled as a tagged union rather than a nullable string so every caller has to
// handle all three cases.
type DialCodeKind string

const (
	// DialCodeLiteral is a concrete string to dial, destination number already embedded.
	DialCodeLiteral DialCodeKind = "literal"
	// DialCodeAppManaged means the carrier has no dial-code path; the operator must
	// use the carrier's own application. This is an alternate completion path, not
	// an error.
	DialCodeAppManaged DialCodeKind = "app_managed"
	// DialCodeUnavailable means no code can be produced for this combination at all
	// (no destination number, or the carrier does not offer the mode).
	DialCodeUnavailable DialCodeKind = "unavailable"
)

// DialCode is the resolver's result.
type DialCode struct {
	Kind DialCodeKind
	Code string // set only when Kind == DialCodeLiteral
}

func LiteralCode(code string) DialCode {
	return DialCode{Kind: DialCodeLiteral, Code: code}
}

func AppManagedCode() DialCode {
	return DialCode{Kind: DialCodeAppManaged}
}

func UnavailableCode() DialCode {
	return DialCode{Kind: DialCodeUnavailable}
}

// IsLiteral reports whether a concrete code exists to present and confirm.
func (d DialCode) IsLiteral() bool {
	return d.Kind == DialCodeLiteral
}
