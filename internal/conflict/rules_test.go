// internal/conflict/rules_test.go
package conflict

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandwave/licensing-backend/internal/models"
)

func makeGrant(licenseType models.LicenseType, start time.Time, end *time.Time) *models.LicenseGrant {
	g := &models.LicenseGrant{
		BrandID:     uuid.New(),
		LicenseType: licenseType,
		Status:      models.GrantStatusActive,
		StartDate:   start,
		EndDate:     end,
		Territories: []string{"US"},
	}
	g.ID = uuid.New()
	return g
}

func TestClassifyNoTemporalOverlapAllows(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeExclusive, date(2027, 1, 1), nil)
	candidate := makeGrant(models.LicenseTypeExclusive, date(2026, 1, 1), datePtr(2026, 6, 30))

	decision := Classify(proposed, candidate, false, CompareScopes(proposed, candidate))
	assert.Equal(t, OutcomeAllow, decision.Outcome)
	assert.Empty(t, decision.Findings)
}

func TestClassifyCandidateExclusiveBlocks(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 3, 1), datePtr(2026, 9, 1))
	candidate := makeGrant(models.LicenseTypeExclusive, date(2026, 1, 1), datePtr(2026, 12, 31))
	// Scope does not matter against a fully exclusive grant
	candidate.Territories = []string{"JP"}

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	require.Equal(t, OutcomeBlock, decision.Outcome)
	require.Len(t, decision.Findings, 1)
	assert.Equal(t, DimensionExclusivity, decision.Findings[0].Dimension)
	assert.Equal(t, SeverityBlocking, decision.Findings[0].Severity)
	assert.Equal(t, candidate.ID, decision.Findings[0].CandidateGrantID)
}

func TestClassifyProposedExclusiveBlocks(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeExclusive, date(2026, 3, 1), nil)
	candidate := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), datePtr(2026, 12, 31))

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	require.Equal(t, OutcomeBlock, decision.Outcome)
	require.Len(t, decision.Findings, 1)
	assert.Equal(t, DimensionExclusivity, decision.Findings[0].Dimension)
}

func TestClassifyTerritorialExclusivity(t *testing.T) {
	t.Run("candidate territorial with territory overlap blocks", func(t *testing.T) {
		proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
		proposed.Territories = []string{"US", "UK"}
		candidate := makeGrant(models.LicenseTypeExclusiveTerritory, date(2026, 1, 1), nil)
		candidate.Territories = []string{"UK", "FR"}

		decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
		require.Equal(t, OutcomeBlock, decision.Outcome)
		require.Len(t, decision.Findings, 1)
		assert.Equal(t, DimensionTerritory, decision.Findings[0].Dimension)
		assert.Equal(t, []string{"UK"}, decision.Findings[0].Values)
	})

	t.Run("proposed territorial binds the other direction too", func(t *testing.T) {
		proposed := makeGrant(models.LicenseTypeExclusiveTerritory, date(2026, 1, 1), nil)
		proposed.Territories = []string{"DE"}
		candidate := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
		candidate.Territories = []string{"DE", "AT"}

		decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
		assert.Equal(t, OutcomeBlock, decision.Outcome)
	})

	t.Run("territorial without territory overlap allows", func(t *testing.T) {
		proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
		proposed.Territories = []string{"US"}
		candidate := makeGrant(models.LicenseTypeExclusiveTerritory, date(2026, 1, 1), nil)
		candidate.Territories = []string{"JP"}

		decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
		assert.Equal(t, OutcomeAllow, decision.Outcome)
	})

	t.Run("global candidate collides with any territory", func(t *testing.T) {
		proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
		proposed.Territories = []string{"BR"}
		candidate := makeGrant(models.LicenseTypeExclusiveTerritory, date(2026, 1, 1), nil)
		candidate.Territories = []string{models.TerritoryGlobal}

		decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
		require.Equal(t, OutcomeBlock, decision.Outcome)
		assert.Equal(t, []string{models.TerritoryGlobal}, decision.Findings[0].Values)
	})
}

func TestClassifyCompetitorExclusion(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	candidate := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	// Disjoint scopes: the competitor exclusion still blocks
	proposed.Territories = []string{"US"}
	candidate.Territories = []string{"JP"}
	candidate.BlockedCompetitors = []string{proposed.BrandID.String()}

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	require.Equal(t, OutcomeBlock, decision.Outcome)
	require.Len(t, decision.Findings, 1)
	assert.Equal(t, DimensionCompetitor, decision.Findings[0].Dimension)
	assert.Equal(t, SeverityBlocking, decision.Findings[0].Severity)
}

func TestClassifyCompetitorStacksWithExclusivity(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	candidate := makeGrant(models.LicenseTypeExclusive, date(2026, 1, 1), nil)
	candidate.BlockedCompetitors = []string{proposed.BrandID.String()}

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	require.Equal(t, OutcomeBlock, decision.Outcome)
	require.Len(t, decision.Findings, 2)
	assert.Equal(t, DimensionExclusivity, decision.Findings[0].Dimension)
	assert.Equal(t, DimensionCompetitor, decision.Findings[1].Dimension)
}

func TestClassifyNonExclusivePairWarns(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	proposed.MediaChannels = []string{"tv", "streaming"}
	proposed.Placements = []string{"primetime"}
	candidate := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	candidate.MediaChannels = []string{"streaming"}
	candidate.Placements = []string{"primetime"}

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	require.Equal(t, OutcomeWarn, decision.Outcome)
	require.Len(t, decision.Findings, 2)
	assert.Equal(t, DimensionMedia, decision.Findings[0].Dimension)
	assert.Equal(t, SeverityWarning, decision.Findings[0].Severity)
	assert.Equal(t, DimensionPlacement, decision.Findings[1].Dimension)
}

func TestClassifyNonExclusiveDisjointScopesAllows(t *testing.T) {
	proposed := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	proposed.MediaChannels = []string{"tv"}
	candidate := makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), nil)
	candidate.MediaChannels = []string{"radio"}

	decision := Classify(proposed, candidate, true, CompareScopes(proposed, candidate))
	assert.Equal(t, OutcomeAllow, decision.Outcome)
}

func TestValidateGrant(t *testing.T) {
	base := func() *models.LicenseGrant {
		return makeGrant(models.LicenseTypeNonExclusive, date(2026, 1, 1), datePtr(2026, 12, 31))
	}

	t.Run("valid grant passes", func(t *testing.T) {
		assert.NoError(t, ValidateGrant(base()))
	})

	t.Run("unknown license type", func(t *testing.T) {
		g := base()
		g.LicenseType = "sole_and_exclusive"
		assert.Error(t, ValidateGrant(g))
	})

	t.Run("end before start", func(t *testing.T) {
		g := base()
		g.EndDate = datePtr(2025, 12, 31)
		assert.ErrorIs(t, ValidateGrant(g), ErrEndBeforeStart)
	})

	t.Run("single day window is valid", func(t *testing.T) {
		g := base()
		g.EndDate = datePtr(2026, 1, 1)
		assert.NoError(t, ValidateGrant(g))
	})

	t.Run("empty territories", func(t *testing.T) {
		g := base()
		g.Territories = nil
		assert.ErrorIs(t, ValidateGrant(g), ErrEmptyTerritories)
	})

	t.Run("GLOBAL mixed with territory codes", func(t *testing.T) {
		g := base()
		g.Territories = []string{models.TerritoryGlobal, "US"}
		assert.ErrorIs(t, ValidateGrant(g), ErrMixedGlobal)
	})
}
