// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/utils"
)

// PostgresStore serializes issuance per asset with a transaction-scoped
// advisory lock keyed on the asset id. SET LOCAL lock_timeout bounds the
// wait so a contended asset fails fast with ErrLockTimeout instead of
// queueing indefinitely.
type PostgresStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewPostgresStore(db *gorm.DB, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, lockTimeout: lockTimeout}
}

func (s *PostgresStore) WithAssetLock(ctx context.Context, assetID uuid.UUID, fn func(tx GrantTx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if err := tx.Exec(timeout).Error; err != nil {
			return err
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", assetID.String()).Error; err != nil {
			return err
		}
		return fn(&postgresTx{tx: tx})
	})
	return mapPostgresError(err)
}

func (s *PostgresStore) InForceGrants(ctx context.Context, assetID uuid.UUID) ([]models.LicenseGrant, error) {
	var grants []models.LicenseGrant
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND status IN ?", assetID, inForceStatuses()).
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load in-force grants: %w", err)
	}
	return grants, nil
}

func (s *PostgresStore) GetGrant(ctx context.Context, id uuid.UUID) (*models.LicenseGrant, error) {
	var grant models.LicenseGrant
	err := s.db.WithContext(ctx).
		Preload("Asset").Preload("Brand").
		First(&grant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &grant, nil
}

func (s *PostgresStore) ListGrants(ctx context.Context, params ListParams) ([]models.LicenseGrant, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.LicenseGrant{}).
		Preload("Asset").Preload("Brand")

	if params.AssetID != nil {
		query = query.Where("asset_id = ?", *params.AssetID)
	}
	if params.BrandID != nil {
		query = query.Where("brand_id = ?", *params.BrandID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.LicenseType != nil {
		query = query.Where("license_type = ?", *params.LicenseType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count grants: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "start_date", "end_date", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var grants []models.LicenseGrant
	if err := query.Find(&grants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch grants: %w", err)
	}
	return grants, total, nil
}

func (s *PostgresStore) UpdateGrant(ctx context.Context, grant *models.LicenseGrant) error {
	if err := s.db.WithContext(ctx).Save(grant).Error; err != nil {
		return fmt.Errorf("failed to update grant: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx *gorm.DB
}

func (t *postgresTx) InForceGrants(assetID uuid.UUID) ([]models.LicenseGrant, error) {
	var grants []models.LicenseGrant
	err := t.tx.
		Where("asset_id = ? AND status IN ?", assetID, inForceStatuses()).
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load in-force grants: %w", err)
	}
	return grants, nil
}

func (t *postgresTx) InsertGrant(grant *models.LicenseGrant) error {
	if err := t.tx.Create(grant).Error; err != nil {
		return mapPostgresError(err)
	}
	return nil
}

// SQLSTATE classes surfaced by the advisory-lock discipline:
// 55P03 lock_not_available (lock_timeout fired), 40001 serialization
// failure, 40P01 deadlock detected.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return fmt.Errorf("%w: %s", ErrLockTimeout, pgErr.Message)
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrSerialization, pgErr.Message)
		}
	}
	return err
}
