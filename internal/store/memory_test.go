// internal/store/memory_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandwave/licensing-backend/internal/models"
)

func testGrant(assetID uuid.UUID) *models.LicenseGrant {
	return &models.LicenseGrant{
		AssetID:     assetID,
		BrandID:     uuid.New(),
		LicenseType: models.LicenseTypeNonExclusive,
		Status:      models.GrantStatusActive,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Territories: []string{"US"},
	}
}

func TestMemoryStoreStagedInsertVisibleInTx(t *testing.T) {
	s := NewMemoryStore(time.Second)
	assetID := uuid.New()
	ctx := context.Background()

	err := s.WithAssetLock(ctx, assetID, func(tx GrantTx) error {
		require.NoError(t, tx.InsertGrant(testGrant(assetID)))

		// The staged insert is part of the snapshot inside the unit of work.
		grants, err := tx.InForceGrants(assetID)
		require.NoError(t, err)
		assert.Len(t, grants, 1)
		return nil
	})
	require.NoError(t, err)

	grants, err := s.InForceGrants(ctx, assetID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestMemoryStoreFailedTxDiscardsStagedInserts(t *testing.T) {
	s := NewMemoryStore(time.Second)
	assetID := uuid.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithAssetLock(ctx, assetID, func(tx GrantTx) error {
		require.NoError(t, tx.InsertGrant(testGrant(assetID)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	grants, err := s.InForceGrants(ctx, assetID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestMemoryStoreLockTimeout(t *testing.T) {
	s := NewMemoryStore(50 * time.Millisecond)
	assetID := uuid.New()
	ctx := context.Background()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = s.WithAssetLock(ctx, assetID, func(tx GrantTx) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	err := s.WithAssetLock(ctx, assetID, func(tx GrantTx) error { return nil })
	assert.ErrorIs(t, err, ErrLockTimeout)

	// A different asset is not affected by the held lock.
	err = s.WithAssetLock(ctx, uuid.New(), func(tx GrantTx) error { return nil })
	assert.NoError(t, err)
}

func TestMemoryStoreContextCancellation(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	assetID := uuid.New()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = s.WithAssetLock(context.Background(), assetID, func(tx GrantTx) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.WithAssetLock(ctx, assetID, func(tx GrantTx) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryStoreGetAndUpdate(t *testing.T) {
	s := NewMemoryStore(time.Second)
	assetID := uuid.New()
	ctx := context.Background()

	grant := testGrant(assetID)
	err := s.WithAssetLock(ctx, assetID, func(tx GrantTx) error {
		return tx.InsertGrant(grant)
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, grant.ID)

	fetched, err := s.GetGrant(ctx, grant.ID)
	require.NoError(t, err)
	assert.Equal(t, grant.ID, fetched.ID)

	fetched.Status = models.GrantStatusSuspended
	require.NoError(t, s.UpdateGrant(ctx, fetched))

	grants, err := s.InForceGrants(ctx, assetID)
	require.NoError(t, err)
	assert.Empty(t, grants)

	_, err = s.GetGrant(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateGrant(ctx, testGrant(assetID)), ErrNotFound)
}
