// internal/conflict/rules.go
package conflict

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brandwave/licensing-backend/internal/models"
)

type Outcome string

const (
	OutcomeBlock Outcome = "block"
	OutcomeWarn  Outcome = "warn"
	OutcomeAllow Outcome = "allow"
)

type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityBlocking:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

type Dimension string

const (
	DimensionTemporal    Dimension = "temporal"
	DimensionExclusivity Dimension = "exclusivity"
	DimensionTerritory   Dimension = "territory"
	DimensionMedia       Dimension = "media"
	DimensionPlacement   Dimension = "placement"
	DimensionCompetitor  Dimension = "competitor"
)

// Finding is a single detected collision between the proposed grant and one
// existing grant on one dimension.
type Finding struct {
	CandidateGrantID uuid.UUID `json:"candidate_grant_id"`
	Dimension        Dimension `json:"dimension"`
	Severity         Severity  `json:"severity"`
	Explanation      string    `json:"explanation"`
	Values           []string  `json:"values,omitempty"`
}

// Decision is the classification of one (proposed, candidate) pair. A pair
// yields a single outcome but may carry one finding per contributing
// dimension for explanation purposes.
type Decision struct {
	Outcome  Outcome
	Findings []Finding
}

// Classify applies the exclusivity blocking policy to one candidate grant.
// Rules are applied in order; the first blocking rule determines the
// exclusivity-chain finding, and a competitor exclusion blocks regardless of
// license types. Pairs with no temporal overlap are always allowed.
func Classify(proposed, candidate *models.LicenseGrant, overlapsInTime bool, ix Intersection) Decision {
	if !overlapsInTime {
		return Decision{Outcome: OutcomeAllow}
	}

	var findings []Finding

	switch {
	case candidate.LicenseType == models.LicenseTypeExclusive:
		findings = append(findings, Finding{
			CandidateGrantID: candidate.ID,
			Dimension:        DimensionExclusivity,
			Severity:         SeverityBlocking,
			Explanation: fmt.Sprintf("existing exclusive grant %s covers the asset for the overlapping period %s",
				candidate.ID, describeWindow(candidate)),
		})
	case proposed.LicenseType == models.LicenseTypeExclusive:
		findings = append(findings, Finding{
			CandidateGrantID: candidate.ID,
			Dimension:        DimensionExclusivity,
			Severity:         SeverityBlocking,
			Explanation: fmt.Sprintf("an exclusive grant cannot be issued while grant %s remains in force for the overlapping period %s",
				candidate.ID, describeWindow(candidate)),
		})
	case territorialExclusivity(proposed, candidate) && ix.Territory():
		findings = append(findings, Finding{
			CandidateGrantID: candidate.ID,
			Dimension:        DimensionTerritory,
			Severity:         SeverityBlocking,
			Explanation: fmt.Sprintf("territorial exclusivity of grant %s collides in %s",
				candidate.ID, describeTerritories(ix)),
			Values: territoryValues(ix),
		})
	}

	// An explicit competitor exclusion always blocks, independent of
	// license type.
	if ix.Competitor() {
		findings = append(findings, Finding{
			CandidateGrantID: candidate.ID,
			Dimension:        DimensionCompetitor,
			Severity:         SeverityBlocking,
			Explanation: fmt.Sprintf("grant %s carries a competitor exclusion covering brand %s",
				candidate.ID, strings.Join(ix.CompetitorBrands, ", ")),
			Values: ix.CompetitorBrands,
		})
	}

	if len(findings) > 0 {
		return Decision{Outcome: OutcomeBlock, Findings: findings}
	}

	// Non-exclusive against non-exclusive: scope overlap is a caution, not
	// a hard block, since non-exclusivity permits coexistence.
	if proposed.LicenseType == models.LicenseTypeNonExclusive &&
		candidate.LicenseType == models.LicenseTypeNonExclusive {
		if len(ix.Media) > 0 {
			findings = append(findings, Finding{
				CandidateGrantID: candidate.ID,
				Dimension:        DimensionMedia,
				Severity:         SeverityWarning,
				Explanation: fmt.Sprintf("non-exclusive grant %s already covers media channels %s in the same period",
					candidate.ID, strings.Join(ix.Media, ", ")),
				Values: ix.Media,
			})
		}
		if len(ix.Placements) > 0 {
			findings = append(findings, Finding{
				CandidateGrantID: candidate.ID,
				Dimension:        DimensionPlacement,
				Severity:         SeverityWarning,
				Explanation: fmt.Sprintf("non-exclusive grant %s already covers placements %s in the same period",
					candidate.ID, strings.Join(ix.Placements, ", ")),
				Values: ix.Placements,
			})
		}
	}

	if len(findings) > 0 {
		return Decision{Outcome: OutcomeWarn, Findings: findings}
	}
	return Decision{Outcome: OutcomeAllow}
}

// territorialExclusivity holds when either side of the pair claims
// territory-level exclusivity. The existing grantee's territorial promise
// binds later proposals just as a proposed territorial grant must not land
// on occupied territory.
func territorialExclusivity(proposed, candidate *models.LicenseGrant) bool {
	return proposed.LicenseType == models.LicenseTypeExclusiveTerritory ||
		candidate.LicenseType == models.LicenseTypeExclusiveTerritory
}

func territoryValues(ix Intersection) []string {
	if ix.GlobalTerritory {
		return []string{models.TerritoryGlobal}
	}
	return ix.Territories
}

func describeTerritories(ix Intersection) string {
	if ix.GlobalTerritory {
		return "all territories (GLOBAL)"
	}
	return strings.Join(ix.Territories, ", ")
}

func describeWindow(g *models.LicenseGrant) string {
	start := g.StartDate.Format("2006-01-02")
	if g.EndDate == nil {
		return start + "..open-ended"
	}
	return start + ".." + g.EndDate.Format("2006-01-02")
}
