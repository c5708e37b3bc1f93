// internal/conflict/temporal.go
package conflict

import (
	"time"

	"github.com/brandwave/licensing-backend/internal/models"
)

// Range is a grant's validity window. A nil End means the grant is
// perpetual (open-ended).
type Range struct {
	Start time.Time
	End   *time.Time
}

// Overlaps reports whether two ranges intersect. Boundaries are inclusive:
// a grant ending on day X overlaps a grant starting on day X. An absent end
// date is treated as positive infinity, so two perpetual ranges always
// overlap.
func (r Range) Overlaps(other Range) bool {
	if r.End != nil && other.Start.After(*r.End) {
		return false
	}
	if other.End != nil && r.Start.After(*other.End) {
		return false
	}
	return true
}

func rangeOf(g *models.LicenseGrant) Range {
	return Range{Start: g.StartDate, End: g.EndDate}
}
