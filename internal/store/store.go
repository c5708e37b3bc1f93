// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/utils"
)

var (
	ErrNotFound = errors.New("grant not found")
	// ErrLockTimeout is returned when the per-asset lock cannot be acquired
	// within the configured timeout. Retryable.
	ErrLockTimeout = errors.New("asset lock timeout")
	// ErrSerialization is returned when a unit of work loses to a concurrent
	// conflicting write at commit time. Retryable with a fresh snapshot.
	ErrSerialization = errors.New("concurrent modification")
)

// GrantTx is the view of the store inside one per-asset unit of work. Reads
// and the insert observe the same snapshot; the insert only becomes visible
// if the unit of work commits.
type GrantTx interface {
	InForceGrants(assetID uuid.UUID) ([]models.LicenseGrant, error)
	InsertGrant(grant *models.LicenseGrant) error
}

type ListParams struct {
	utils.PaginationParams
	AssetID     *uuid.UUID
	BrandID     *uuid.UUID
	Status      *models.GrantStatus
	LicenseType *models.LicenseType
}

// GrantStore is the persistence collaborator of the issuance coordinator.
// WithAssetLock serializes all issuance attempts for one asset; everything
// else is plain CRUD.
type GrantStore interface {
	// WithAssetLock runs fn inside an atomically committed unit of work
	// that holds an exclusive per-asset lock for its whole duration. If fn
	// returns an error the unit of work is rolled back and the error is
	// returned unchanged, except that lock and serialization failures map
	// to ErrLockTimeout / ErrSerialization.
	WithAssetLock(ctx context.Context, assetID uuid.UUID, fn func(tx GrantTx) error) error

	// InForceGrants loads the grants participating in conflict checks for
	// an asset without taking the asset lock. Used by the read-only
	// conflict preview.
	InForceGrants(ctx context.Context, assetID uuid.UUID) ([]models.LicenseGrant, error)

	GetGrant(ctx context.Context, id uuid.UUID) (*models.LicenseGrant, error)
	ListGrants(ctx context.Context, params ListParams) ([]models.LicenseGrant, int64, error)
	UpdateGrant(ctx context.Context, grant *models.LicenseGrant) error
}

func inForceStatuses() []models.GrantStatus {
	return []models.GrantStatus{
		models.GrantStatusDraft,
		models.GrantStatusPendingApproval,
		models.GrantStatusActive,
	}
}
