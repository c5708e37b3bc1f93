// internal/conflict/scope_test.go
package conflict

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brandwave/licensing-backend/internal/models"
)

func TestCompareScopesDimensions(t *testing.T) {
	proposed := &models.LicenseGrant{
		MediaChannels: []string{"tv", "streaming", "print"},
		Placements:    []string{"primetime"},
		Territories:   []string{"US", "CA"},
	}
	existing := &models.LicenseGrant{
		MediaChannels: []string{"streaming", "radio"},
		Placements:    []string{"daytime"},
		Territories:   []string{"CA", "MX"},
	}

	ix := CompareScopes(proposed, existing)

	assert.Equal(t, []string{"streaming"}, ix.Media)
	assert.Empty(t, ix.Placements)
	assert.Equal(t, []string{"CA"}, ix.Territories)
	assert.False(t, ix.GlobalTerritory)
	assert.True(t, ix.Territory())
	assert.False(t, ix.Competitor())
}

func TestCompareScopesGlobalSentinel(t *testing.T) {
	global := &models.LicenseGrant{Territories: []string{models.TerritoryGlobal}}
	regional := &models.LicenseGrant{Territories: []string{"JP"}}

	ix := CompareScopes(global, regional)
	assert.True(t, ix.GlobalTerritory)
	assert.True(t, ix.Territory())
	assert.Empty(t, ix.Territories)

	// GLOBAL intersects from either side
	ix = CompareScopes(regional, global)
	assert.True(t, ix.GlobalTerritory)

	ix = CompareScopes(global, global)
	assert.True(t, ix.GlobalTerritory)
}

func TestCompareScopesEmptyDimensions(t *testing.T) {
	a := &models.LicenseGrant{Territories: []string{"US"}}
	b := &models.LicenseGrant{
		MediaChannels: []string{"tv"},
		Territories:   []string{"FR"},
	}

	ix := CompareScopes(a, b)
	assert.Empty(t, ix.Media)
	assert.Empty(t, ix.Placements)
	assert.False(t, ix.Territory())
}

func TestCompareScopesCompetitorBothDirections(t *testing.T) {
	brandA := uuid.New()
	brandB := uuid.New()

	proposed := &models.LicenseGrant{BrandID: brandA, Territories: []string{"US"}}
	existing := &models.LicenseGrant{
		BrandID:            brandB,
		Territories:        []string{"DE"},
		BlockedCompetitors: []string{brandA.String()},
	}

	// existing grant blocks the proposing brand
	ix := CompareScopes(proposed, existing)
	assert.True(t, ix.Competitor())
	assert.Equal(t, []string{brandA.String()}, ix.CompetitorBrands)

	// proposed grant blocks the existing brand
	proposed.BlockedCompetitors = []string{brandB.String()}
	existing.BlockedCompetitors = nil
	ix = CompareScopes(proposed, existing)
	assert.True(t, ix.Competitor())
	assert.Equal(t, []string{brandB.String()}, ix.CompetitorBrands)

	// same brand on both sides never trips its own exclusion twice
	proposed.BlockedCompetitors = nil
	ix = CompareScopes(proposed, existing)
	assert.False(t, ix.Competitor())
}
