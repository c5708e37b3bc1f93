// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandwave/licensing-backend/internal/models"
)

// MemoryStore provides the GrantStore contract without a database: a
// per-asset semaphore with a bounded wait stands in for the advisory lock,
// and inserts are staged until the unit of work returns without error.
// Used by tests and local tooling.
type MemoryStore struct {
	mtx         sync.Mutex
	grants      []models.LicenseGrant
	locks       map[uuid.UUID]chan struct{}
	lockTimeout time.Duration
}

func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		locks:       make(map[uuid.UUID]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (s *MemoryStore) semaphore(assetID uuid.UUID) chan struct{} {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	sem, ok := s.locks[assetID]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[assetID] = sem
	}
	return sem
}

func (s *MemoryStore) WithAssetLock(ctx context.Context, assetID uuid.UUID, fn func(tx GrantTx) error) error {
	sem := s.semaphore(assetID)
	select {
	case sem <- struct{}{}:
	case <-time.After(s.lockTimeout):
		return ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-sem }()

	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.mtx.Lock()
	s.grants = append(s.grants, tx.staged...)
	s.mtx.Unlock()
	return nil
}

func (s *MemoryStore) InForceGrants(ctx context.Context, assetID uuid.UUID) ([]models.LicenseGrant, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.inForceLocked(assetID), nil
}

func (s *MemoryStore) inForceLocked(assetID uuid.UUID) []models.LicenseGrant {
	var out []models.LicenseGrant
	for _, g := range s.grants {
		if g.AssetID == assetID && g.Status.InForce() {
			out = append(out, g)
		}
	}
	return out
}

func (s *MemoryStore) GetGrant(ctx context.Context, id uuid.UUID) (*models.LicenseGrant, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for i := range s.grants {
		if s.grants[i].ID == id {
			g := s.grants[i]
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListGrants(ctx context.Context, params ListParams) ([]models.LicenseGrant, int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var matched []models.LicenseGrant
	for _, g := range s.grants {
		if params.AssetID != nil && g.AssetID != *params.AssetID {
			continue
		}
		if params.BrandID != nil && g.BrandID != *params.BrandID {
			continue
		}
		if params.Status != nil && g.Status != *params.Status {
			continue
		}
		if params.LicenseType != nil && g.LicenseType != *params.LicenseType {
			continue
		}
		matched = append(matched, g)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) UpdateGrant(ctx context.Context, grant *models.LicenseGrant) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for i := range s.grants {
		if s.grants[i].ID == grant.ID {
			grant.UpdatedAt = time.Now()
			s.grants[i] = *grant
			return nil
		}
	}
	return ErrNotFound
}

type memoryTx struct {
	store  *MemoryStore
	staged []models.LicenseGrant
}

func (t *memoryTx) InForceGrants(assetID uuid.UUID) ([]models.LicenseGrant, error) {
	t.store.mtx.Lock()
	defer t.store.mtx.Unlock()
	out := t.store.inForceLocked(assetID)
	for _, g := range t.staged {
		if g.AssetID == assetID && g.Status.InForce() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (t *memoryTx) InsertGrant(grant *models.LicenseGrant) error {
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	now := time.Now()
	grant.CreatedAt = now
	grant.UpdatedAt = now
	t.staged = append(t.staged, *grant)
	return nil
}
