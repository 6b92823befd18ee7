package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allTransitions = []Transition{
	EnableConditional, DisableConditional, EnableUnconditional, DisableUnconditional,
}

func TestResolveDialCode_GSMLiteralEmbedsNumber(t *testing.T) {
	profile := &CarrierProfile{Name: "CarrierX", Family: FamilyGSM, SupportsConditional: true}

	code := ResolveDialCode(profile, "+15551234567", EnableConditional)
	assert.Equal(t, DialCodeLiteral, code.Kind)
	assert.Contains(t, code.Code, "+15551234567")
	assert.Equal(t, "**61*+15551234567#", code.Code)

	code = ResolveDialCode(profile, "+15551234567", EnableUnconditional)
	assert.Equal(t, "**21*+15551234567#", code.Code)
}

func TestResolveDialCode_GSMDisableCodesCarryNoNumber(t *testing.T) {
	profile := &CarrierProfile{Name: "CarrierX", Family: FamilyGSM, SupportsConditional: true}

	code := ResolveDialCode(profile, "+15551234567", DisableConditional)
	assert.Equal(t, LiteralCode("##61#"), code)

	code = ResolveDialCode(profile, "+15551234567", DisableUnconditional)
	assert.Equal(t, LiteralCode("##21#"), code)
}

func TestResolveDialCode_CDMAStyleSequences(t *testing.T) {
	profile := &CarrierProfile{Name: "CarrierZ", Family: FamilyCDMAStyle, SupportsConditional: true}

	assert.Equal(t, "*72 +15551234567", ResolveDialCode(profile, "+15551234567", EnableUnconditional).Code)
	assert.Equal(t, "*73", ResolveDialCode(profile, "+15551234567", DisableUnconditional).Code)
	assert.Equal(t, "*92 +15551234567", ResolveDialCode(profile, "+15551234567", EnableConditional).Code)
	assert.Equal(t, "*93", ResolveDialCode(profile, "+15551234567", DisableConditional).Code)
}

func TestResolveDialCode_AppManagedForAllTransitions(t *testing.T) {
	profile := &CarrierProfile{Name: "CarrierY", Family: FamilyAppManaged, SupportsConditional: true}

	for _, transition := range allTransitions {
		code := ResolveDialCode(profile, "+15551234567", transition)
		assert.Equal(t, DialCodeAppManaged, code.Kind, "transition %s", transition)
		assert.Empty(t, code.Code)
	}
}

func TestResolveDialCode_UnavailableWithoutNumber(t *testing.T) {
	profile := &CarrierProfile{Name: "CarrierX", Family: FamilyGSM, SupportsConditional: true}

	for _, transition := range allTransitions {
		code := ResolveDialCode(profile, "", transition)
		assert.Equal(t, DialCodeUnavailable, code.Kind, "transition %s", transition)
	}

	assert.Equal(t, DialCodeUnavailable, ResolveDialCode(nil, "+15551234567", EnableConditional).Kind)
}

func TestResolveDialCode_ConditionalUnsupportedIsIndependentOfUnconditional(t *testing.T) {
	profile := &CarrierProfile{Name: "NoCond", Family: FamilyCDMAStyle, SupportsConditional: false}

	// Conditional transitions never produce a literal code on this carrier.
	assert.Equal(t, DialCodeUnavailable, ResolveDialCode(profile, "+15551234567", EnableConditional).Kind)
	assert.Equal(t, DialCodeUnavailable, ResolveDialCode(profile, "+15551234567", DisableConditional).Kind)

	// The unconditional axis still resolves.
	assert.Equal(t, DialCodeLiteral, ResolveDialCode(profile, "+15551234567", EnableUnconditional).Kind)
	assert.Equal(t, DialCodeLiteral, ResolveDialCode(profile, "+15551234567", DisableUnconditional).Kind)
}

func TestResolveDialCode_IsPure(t *testing.T) {
	profiles := []*CarrierProfile{
		{Name: "A", Family: FamilyGSM, SupportsConditional: true},
		{Name: "B", Family: FamilyCDMAStyle, SupportsConditional: false},
		{Name: "C", Family: FamilyAppManaged, SupportsConditional: true},
	}
	for _, profile := range profiles {
		for _, transition := range allTransitions {
			first := ResolveDialCode(profile, "+15550001111", transition)
			second := ResolveDialCode(profile, "+15550001111", transition)
			assert.Equal(t, first, second)
		}
	}
}

func TestTransition_AxisAndEnables(t *testing.T) {
	assert.Equal(t, AxisConditional, EnableConditional.Axis())
	assert.Equal(t, AxisConditional, DisableConditional.Axis())
	assert.Equal(t, AxisUnconditional, EnableUnconditional.Axis())
	assert.Equal(t, AxisUnconditional, DisableUnconditional.Axis())

	assert.True(t, EnableConditional.Enables())
	assert.True(t, EnableUnconditional.Enables())
	assert.False(t, DisableConditional.Enables())
	assert.False(t, DisableUnconditional.Enables())
}

func TestParseTransition(t *testing.T) {
	for _, transition := range allTransitions {
		parsed, err := ParseTransition(string(transition))
		assert.NoError(t, err)
		assert.Equal(t, transition, parsed)
	}

	_, err := ParseTransition("enable-everything")
	assert.Error(t, err)
}
