// internal/services/grant_service_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandwave/licensing-backend/internal/config"
	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/store"
)

func newTestService(t *testing.T) (*GrantService, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore(200 * time.Millisecond)
	svc := NewGrantService(memStore, nil, config.IssuanceConfig{
		LockTimeoutMS:  200,
		MaxAttempts:    3,
		RetryBackoffMS: 10,
	})
	return svc, memStore
}

func proposalFor(assetID uuid.UUID, licenseType models.LicenseType) *ProposeGrantRequest {
	return &ProposeGrantRequest{
		AssetID:     assetID,
		BrandID:     uuid.New(),
		LicenseType: licenseType,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Territories: []string{"US"},
	}
}

func TestIssueGrantPersistsCleanProposal(t *testing.T) {
	svc, memStore := newTestService(t)
	assetID := uuid.New()

	grant, report, err := svc.IssueGrant(context.Background(), proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.NotEqual(t, uuid.Nil, grant.ID)
	assert.Equal(t, models.GrantStatusDraft, grant.Status)
	assert.True(t, report.CanProceed)

	stored, err := memStore.GetGrant(context.Background(), grant.ID)
	require.NoError(t, err)
	assert.Equal(t, assetID, stored.AssetID)
}

func TestIssueGrantRejectsConflictWithoutMutation(t *testing.T) {
	svc, memStore := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	_, _, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)

	grant, report, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeNonExclusive))
	require.NoError(t, err)
	assert.Nil(t, grant)
	require.NotNil(t, report)
	assert.False(t, report.CanProceed)
	assert.NotEmpty(t, report.Blockers())

	// Only the first grant is persisted.
	grants, total, err := memStore.ListGrants(ctx, store.ListParams{AssetID: &assetID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, grants, 1)
}

func TestIssueGrantValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("unknown license type", func(t *testing.T) {
		req := proposalFor(uuid.New(), "perpetual")
		_, _, err := svc.IssueGrant(ctx, req)
		assert.Error(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		req := proposalFor(uuid.New(), models.LicenseTypeNonExclusive)
		end := req.StartDate.AddDate(0, 0, -1)
		req.EndDate = &end
		_, _, err := svc.IssueGrant(ctx, req)
		assert.Error(t, err)
	})

	t.Run("missing territories", func(t *testing.T) {
		req := proposalFor(uuid.New(), models.LicenseTypeNonExclusive)
		req.Territories = nil
		_, _, err := svc.IssueGrant(ctx, req)
		assert.Error(t, err)
	})

	t.Run("malformed competitor id", func(t *testing.T) {
		req := proposalFor(uuid.New(), models.LicenseTypeNonExclusive)
		req.BlockedCompetitors = []string{"not-a-uuid"}
		_, _, err := svc.IssueGrant(ctx, req)
		assert.Error(t, err)
	})
}

func TestIssueGrantConcurrentExclusives(t *testing.T) {
	svc, memStore := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	issued := make(chan uuid.UUID, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, report, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
			if err != nil {
				results <- err
				return
			}
			if grant != nil {
				issued <- grant.ID
			} else if report == nil || report.CanProceed {
				results <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(results)
	close(issued)

	for err := range results {
		// Losing a lock race is acceptable; silent double issuance is not.
		assert.ErrorIs(t, err, ErrLockTimeout)
	}

	var winners int
	for range issued {
		winners++
	}
	assert.Equal(t, 1, winners, "exactly one exclusive grant may be issued")

	grants, total, err := memStore.ListGrants(ctx, store.ListParams{AssetID: &assetID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, grants, 1)
}

func TestIssueGrantLockTimeout(t *testing.T) {
	svc, memStore := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = memStore.WithAssetLock(ctx, assetID, func(tx store.GrantTx) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	_, _, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeNonExclusive))
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestIssueGrantIndependentAssetsDoNotContend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, _, err := svc.IssueGrant(ctx, proposalFor(uuid.New(), models.LicenseTypeExclusive))
			if err != nil {
				errs <- err
				return
			}
			if grant == nil {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("independent issuance failed: %v", err)
	}
}

func TestCheckConflictsIsAdvisory(t *testing.T) {
	svc, memStore := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	report, err := svc.CheckConflicts(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)
	assert.True(t, report.CanProceed)

	// Checking persists nothing.
	_, total, err := memStore.ListGrants(ctx, store.ListParams{AssetID: &assetID})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)

	report, err = svc.CheckConflicts(ctx, proposalFor(assetID, models.LicenseTypeNonExclusive))
	require.NoError(t, err)
	assert.False(t, report.CanProceed)
}

func TestGrantLifecycleTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	grant, _, err := svc.IssueGrant(ctx, proposalFor(uuid.New(), models.LicenseTypeNonExclusive))
	require.NoError(t, err)

	approverID := uuid.New()
	approved, err := svc.ApproveGrant(ctx, grant.ID, approverID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, approverID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// Active grants cannot be approved again.
	_, err = svc.ApproveGrant(ctx, grant.ID, approverID)
	assert.Error(t, err)

	suspended, err := svc.SuspendGrant(ctx, grant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusSuspended, suspended.Status)

	terminated, err := svc.TerminateGrant(ctx, grant.ID, &TerminateGrantRequest{Reason: "contract breach"})
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusTerminated, terminated.Status)
	assert.Equal(t, "contract breach", terminated.TerminationReason)
	assert.NotNil(t, terminated.TerminatedAt)

	// Terminated grants are out of the lifecycle for good.
	_, err = svc.TerminateGrant(ctx, grant.ID, &TerminateGrantRequest{Reason: "again"})
	assert.Error(t, err)
	_, err = svc.SuspendGrant(ctx, grant.ID)
	assert.Error(t, err)
}

func TestTerminatedGrantFreesTheAsset(t *testing.T) {
	svc, _ := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	grant, _, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)

	_, err = svc.TerminateGrant(ctx, grant.ID, &TerminateGrantRequest{Reason: "early exit"})
	require.NoError(t, err)

	next, report, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeExclusive))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, report.CanProceed)
}

func TestSearchGrantsFilters(t *testing.T) {
	svc, _ := newTestService(t)
	assetID := uuid.New()
	ctx := context.Background()

	first, _, err := svc.IssueGrant(ctx, proposalFor(assetID, models.LicenseTypeNonExclusive))
	require.NoError(t, err)
	req := proposalFor(assetID, models.LicenseTypeNonExclusive)
	req.Territories = []string{"JP"}
	req.MediaChannels = []string{"radio"}
	_, _, err = svc.IssueGrant(ctx, req)
	require.NoError(t, err)

	grants, total, err := svc.SearchGrants(ctx, GrantSearchParams{AssetID: &assetID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, grants, 2)

	brandID := first.BrandID
	grants, total, err = svc.SearchGrants(ctx, GrantSearchParams{AssetID: &assetID, BrandID: &brandID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, grants, 1)
	assert.Equal(t, first.ID, grants[0].ID)
}
