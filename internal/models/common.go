// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeLicensingManager UserType = "licensing_manager"
	UserTypeBrandManager     UserType = "brand_manager"
	UserTypeAdmin            UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type LicenseType string

const (
	LicenseTypeExclusive          LicenseType = "exclusive"
	LicenseTypeExclusiveTerritory LicenseType = "exclusive_territory"
	LicenseTypeNonExclusive       LicenseType = "non_exclusive"
)

func (t LicenseType) Valid() bool {
	switch t {
	case LicenseTypeExclusive, LicenseTypeExclusiveTerritory, LicenseTypeNonExclusive:
		return true
	}
	return false
}

type GrantStatus string

const (
	GrantStatusDraft           GrantStatus = "draft"
	GrantStatusPendingApproval GrantStatus = "pending_approval"
	GrantStatusActive          GrantStatus = "active"
	GrantStatusExpired         GrantStatus = "expired"
	GrantStatusTerminated      GrantStatus = "terminated"
	GrantStatusSuspended       GrantStatus = "suspended"
)

// InForce reports whether a grant in this status participates in conflict
// checks. Expired and terminated grants never do.
func (s GrantStatus) InForce() bool {
	switch s {
	case GrantStatusDraft, GrantStatusPendingApproval, GrantStatusActive:
		return true
	}
	return false
}

type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "active"
	AssetStatusArchived AssetStatus = "archived"
)

type BrandStatus string

const (
	BrandStatusActive    BrandStatus = "active"
	BrandStatusSuspended BrandStatus = "suspended"
)
