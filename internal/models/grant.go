// internal/models/grant.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TerritoryGlobal is the sentinel stored as the single element of the
// territories array when a grant covers every territory.
const TerritoryGlobal = "GLOBAL"

// LicenseGrant links a brand to rights over an IP asset for a period and
// scope. Scope dimensions are stored as typed tag arrays rather than a
// free-form JSON blob so the conflict comparator can operate on sets.
type LicenseGrant struct {
	BaseModel
	AssetID     uuid.UUID   `json:"asset_id" gorm:"type:uuid;not null;index"`
	BrandID     uuid.UUID   `json:"brand_id" gorm:"type:uuid;not null;index"`
	LicenseType LicenseType `json:"license_type" gorm:"type:varchar(20);not null;index"`
	Status      GrantStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	StartDate   time.Time   `json:"start_date" gorm:"type:date;not null"`
	// nil means perpetual / open-ended
	EndDate *time.Time `json:"end_date,omitempty" gorm:"type:date"`

	MediaChannels      pq.StringArray `json:"media_channels" gorm:"type:text[]"`
	Placements         pq.StringArray `json:"placements" gorm:"type:text[]"`
	Territories        pq.StringArray `json:"territories" gorm:"type:text[];not null"`
	BlockedCompetitors pq.StringArray `json:"blocked_competitors" gorm:"type:text[]"`

	ApprovedAt        *time.Time `json:"approved_at"`
	ApprovedBy        *uuid.UUID `json:"approved_by" gorm:"type:uuid"`
	TerminatedAt      *time.Time `json:"terminated_at"`
	TerminationReason string     `json:"termination_reason,omitempty" gorm:"type:text"`
	Notes             string     `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Asset    IPAsset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Brand    Brand   `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Approver *User   `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

// IsGlobal reports whether the grant's territory scope is the GLOBAL
// sentinel.
func (g *LicenseGrant) IsGlobal() bool {
	return len(g.Territories) == 1 && g.Territories[0] == TerritoryGlobal
}

// BlocksCompetitor reports whether the given brand appears in this grant's
// competitor exclusion list.
func (g *LicenseGrant) BlocksCompetitor(brandID uuid.UUID) bool {
	id := brandID.String()
	for _, blocked := range g.BlockedCompetitors {
		if blocked == id {
			return true
		}
	}
	return false
}
