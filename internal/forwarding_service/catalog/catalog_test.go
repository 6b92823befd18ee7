package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

func TestCatalog_LookupKnownCarrier(t *testing.T) {
	c := Default()

	profile, ok := c.Lookup("T-Mobile")
	require.True(t, ok)
	assert.Equal(t, "T-Mobile", profile.Name)
	assert.Equal(t, domain.FamilyGSM, profile.Family)
}

func TestCatalog_LookupIsCaseInsensitive(t *testing.T) {
	c := Default()

	profile, ok := c.Lookup("  verizon ")
	require.True(t, ok)
	assert.Equal(t, "Verizon", profile.Name)
}

func TestCatalog_LookupUnknownCarrierMisses(t *testing.T) {
	c := Default()

	profile, ok := c.Lookup("Totally Unknown Telecom")
	assert.False(t, ok)
	assert.Nil(t, profile)
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	c := Default()

	first, ok := c.Lookup("AT&T")
	require.True(t, ok)
	first.SupportsConditional = false
	first.Name = "mutated"

	second, ok := c.Lookup("AT&T")
	require.True(t, ok)
	assert.Equal(t, "AT&T", second.Name)
	assert.True(t, second.SupportsConditional)
}

func TestCatalog_NewDeduplicatesAndSkipsBlanks(t *testing.T) {
	c := New([]domain.CarrierProfile{
		{Name: "Alpha", Family: domain.FamilyGSM, SupportsConditional: true},
		{Name: "alpha", Family: domain.FamilyCDMAStyle},
		{Name: "", Family: domain.FamilyGSM},
	})

	assert.Equal(t, 1, c.Len())
	profile, ok := c.Lookup("ALPHA")
	require.True(t, ok)
	// First entry wins.
	assert.Equal(t, domain.FamilyGSM, profile.Family)
}

func TestCatalog_AllSortedAndDetached(t *testing.T) {
	c := Default()

	all := c.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}

	all[0].Name = "mutated"
	again := c.All()
	assert.NotEqual(t, "mutated", again[0].Name)
}

func TestDefaultCatalog_HasAllThreeFamilies(t *testing.T) {
	c := Default()

	families := map[domain.CarrierFamily]bool{}
	for _, p := range c.All() {
		families[p.Family] = true
	}
	assert.True(t, families[domain.FamilyGSM])
	assert.True(t, families[domain.FamilyCDMAStyle])
	assert.True(t, families[domain.FamilyAppManaged])
}
