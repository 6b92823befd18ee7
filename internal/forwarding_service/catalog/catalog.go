package catalog

import (
	"sort"
	"strings"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

// Catalog is the immutable carrier reference data, loaded once per process. Lookups
// for unknown carriers simply miss; callers treat a miss as "selection pending".
type Catalog struct {
	byName   map[string]domain.CarrierProfile
	profiles []domain.CarrierProfile
}

// New builds a catalog from the given profiles. Names are matched
// case-insensitively; later duplicates are ignored.
func New(profiles []domain.CarrierProfile) *Catalog {
	c := &Catalog{byName: make(map[string]domain.CarrierProfile, len(profiles))}
	for _, p := range profiles {
		key := normalize(p.Name)
		if key == "" {
			continue
		}
		if _, exists := c.byName[key]; exists {
			continue
		}
		c.byName[key] = p
		c.profiles = append(c.profiles, p)
	}
	sort.Slice(c.profiles, func(i, j int) bool {
		return c.profiles[i].Name < c.profiles[j].Name
	})
	return c
}

// Default returns a catalog built from the compiled-in reference list.
func Default() *Catalog {
	return New(referenceCarriers)
}

// Lookup returns the profile for a carrier name, or false for unknown carriers.
func (c *Catalog) Lookup(name string) (*domain.CarrierProfile, bool) {
	p, ok := c.byName[normalize(name)]
	if !ok {
		return nil, false
	}
	// Copy so callers cannot mutate the catalog entry.
	out := p
	return &out, true
}

// All returns the catalog entries sorted by name.
func (c *Catalog) All() []domain.CarrierProfile {
	out := make([]domain.CarrierProfile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
