// internal/models/ip_asset.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type IPAsset struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"size:100;index"`
	ContentType string         `json:"content_type" gorm:"size:50"`
	FileURLs    pq.StringArray `json:"file_urls" gorm:"type:text[]"`
	Metadata    JSONB          `json:"metadata" gorm:"type:jsonb"`
	Status      AssetStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	Owner  User           `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Grants []LicenseGrant `json:"grants,omitempty" gorm:"foreignKey:AssetID"`
}

type Brand struct {
	BaseModel
	Name         string      `json:"name" gorm:"uniqueIndex;size:255;not null"`
	ContactEmail string      `json:"contact_email" gorm:"size:255"`
	Status       BrandStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ProfileData  JSONB       `json:"profile_data" gorm:"type:jsonb"`

	// Relationships
	Grants []LicenseGrant `json:"grants,omitempty" gorm:"foreignKey:BrandID"`
}
