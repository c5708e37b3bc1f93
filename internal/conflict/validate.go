// internal/conflict/validate.go
package conflict

import (
	"errors"
	"fmt"

	"github.com/brandwave/licensing-backend/internal/models"
)

var (
	ErrEndBeforeStart   = errors.New("end date is before start date")
	ErrEmptyTerritories = errors.New("territories must be non-empty or the GLOBAL sentinel")
	ErrMixedGlobal      = errors.New("GLOBAL cannot be combined with territory codes")
)

// ValidateGrant checks the structural invariants of a grant before any
// store access. Validation failures are never retried.
func ValidateGrant(g *models.LicenseGrant) error {
	if !g.LicenseType.Valid() {
		return fmt.Errorf("unknown license type %q", g.LicenseType)
	}
	if g.EndDate != nil && g.EndDate.Before(g.StartDate) {
		return ErrEndBeforeStart
	}
	if len(g.Territories) == 0 {
		return ErrEmptyTerritories
	}
	for _, t := range g.Territories {
		if t == models.TerritoryGlobal && len(g.Territories) > 1 {
			return ErrMixedGlobal
		}
	}
	return nil
}
