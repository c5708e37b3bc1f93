// internal/conflict/scope.go
package conflict

import (
	"github.com/brandwave/licensing-backend/internal/models"
)

// Intersection records which scope dimensions of two grants overlap and the
// specific overlapping values. It is data, not a decision: policy is applied
// by Classify.
type Intersection struct {
	Media      []string `json:"media,omitempty"`
	Placements []string `json:"placements,omitempty"`
	// Territories holds the overlapping territory codes. GlobalTerritory is
	// set instead when either side carries the GLOBAL sentinel, which
	// intersects every territory set.
	Territories     []string `json:"territories,omitempty"`
	GlobalTerritory bool     `json:"global_territory,omitempty"`
	// CompetitorBrands lists brand ids tripping a blocked-competitor entry,
	// in either direction.
	CompetitorBrands []string `json:"competitor_brands,omitempty"`
}

func (ix Intersection) Territory() bool {
	return ix.GlobalTerritory || len(ix.Territories) > 0
}

func (ix Intersection) Competitor() bool {
	return len(ix.CompetitorBrands) > 0
}

// CompareScopes computes the per-dimension intersection between a proposed
// and an existing grant.
func CompareScopes(proposed, existing *models.LicenseGrant) Intersection {
	ix := Intersection{
		Media:      intersect(proposed.MediaChannels, existing.MediaChannels),
		Placements: intersect(proposed.Placements, existing.Placements),
	}

	if proposed.IsGlobal() || existing.IsGlobal() {
		ix.GlobalTerritory = true
	} else {
		ix.Territories = intersect(proposed.Territories, existing.Territories)
	}

	ix.CompetitorBrands = competitorHits(proposed, existing)
	return ix
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	var out []string
	for _, v := range b {
		if _, ok := seen[v]; ok {
			out = append(out, v)
			delete(seen, v)
		}
	}
	return out
}

// competitorHits checks the proposed grant's brand against the existing
// grant's exclusion list and vice versa.
func competitorHits(proposed, existing *models.LicenseGrant) []string {
	var hits []string
	if existing.BlocksCompetitor(proposed.BrandID) {
		hits = append(hits, proposed.BrandID.String())
	}
	if proposed.BlocksCompetitor(existing.BrandID) && existing.BrandID != proposed.BrandID {
		hits = append(hits, existing.BrandID.String())
	}
	return hits
}
