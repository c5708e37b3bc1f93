// internal/conflict/report.go
package conflict

import (
	"sort"

	"github.com/google/uuid"

	"github.com/brandwave/licensing-backend/internal/models"
)

// Report is the aggregate result of checking a proposed grant against all
// in-force candidates on the same asset. It is computed per request and
// never persisted.
type Report struct {
	Findings   []Finding `json:"findings"`
	CanProceed bool      `json:"can_proceed"`
}

// Blockers returns the explanations of all blocking findings.
func (r *Report) Blockers() []string {
	return r.explanations(SeverityBlocking)
}

// Warnings returns the explanations of all warning findings.
func (r *Report) Warnings() []string {
	return r.explanations(SeverityWarning)
}

func (r *Report) explanations(severity Severity) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f.Explanation)
		}
	}
	return out
}

// Evaluate runs the full conflict check for a proposed grant against the
// given candidates. Candidates sharing the proposed grant's id (updates and
// renewals) and candidates not in force are skipped. Findings are
// deduplicated by (candidate, dimension) and ordered blocking first. The
// function is pure: identical inputs yield identical reports.
func Evaluate(proposed *models.LicenseGrant, candidates []models.LicenseGrant) *Report {
	type key struct {
		id  uuid.UUID
		dim Dimension
	}
	seen := make(map[key]struct{})
	var findings []Finding

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == proposed.ID {
			continue
		}
		if !candidate.Status.InForce() {
			continue
		}

		overlaps := rangeOf(proposed).Overlaps(rangeOf(candidate))
		ix := CompareScopes(proposed, candidate)
		decision := Classify(proposed, candidate, overlaps, ix)

		for _, f := range decision.Findings {
			k := key{f.CandidateGrantID, f.Dimension}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			findings = append(findings, f)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := severityRank(findings[i].Severity), severityRank(findings[j].Severity)
		if ri != rj {
			return ri < rj
		}
		if findings[i].CandidateGrantID != findings[j].CandidateGrantID {
			return findings[i].CandidateGrantID.String() < findings[j].CandidateGrantID.String()
		}
		return findings[i].Dimension < findings[j].Dimension
	})

	report := &Report{Findings: findings, CanProceed: true}
	for _, f := range findings {
		if f.Severity == SeverityBlocking {
			report.CanProceed = false
			break
		}
	}
	return report
}
