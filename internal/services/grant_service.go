// internal/services/grant_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brandwave/licensing-backend/internal/config"
	"github.com/brandwave/licensing-backend/internal/conflict"
	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/store"
	"github.com/brandwave/licensing-backend/internal/utils"
)

var (
	// ErrConcurrentModification is returned when issuance keeps losing to
	// concurrent writers after the configured number of attempts. Callers
	// should retry.
	ErrConcurrentModification = errors.New("grant issuance failed due to concurrent modification")
	// ErrLockTimeout is returned when the per-asset lock could not be
	// acquired within the configured timeout. Callers should retry.
	ErrLockTimeout = errors.New("grant issuance timed out waiting for the asset lock")
)

// errConflictRejected aborts the unit of work when the conflict check
// fails; the report travels back to the caller without any mutation.
var errConflictRejected = errors.New("conflict check rejected the proposed grant")

type GrantService struct {
	store               store.GrantStore
	notificationService *NotificationService
	issuance            config.IssuanceConfig
}

type ProposeGrantRequest struct {
	AssetID            uuid.UUID          `json:"asset_id" validate:"required"`
	BrandID            uuid.UUID          `json:"brand_id" validate:"required"`
	LicenseType        models.LicenseType `json:"license_type" validate:"required,license_type"`
	StartDate          time.Time          `json:"start_date" validate:"required"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	MediaChannels      []string           `json:"media_channels,omitempty"`
	Placements         []string           `json:"placements,omitempty"`
	Territories        []string           `json:"territories" validate:"required,min=1"`
	BlockedCompetitors []string           `json:"blocked_competitors,omitempty" validate:"omitempty,dive,uuid"`
	Notes              string             `json:"notes,omitempty"`
}

type TerminateGrantRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type GrantSearchParams struct {
	utils.PaginationParams
	AssetID     *uuid.UUID          `json:"asset_id,omitempty"`
	BrandID     *uuid.UUID          `json:"brand_id,omitempty"`
	Status      *models.GrantStatus `json:"status,omitempty"`
	LicenseType *models.LicenseType `json:"license_type,omitempty"`
}

func NewGrantService(grantStore store.GrantStore, notificationService *NotificationService, issuance config.IssuanceConfig) *GrantService {
	return &GrantService{
		store:               grantStore,
		notificationService: notificationService,
		issuance:            issuance,
	}
}

func (s *GrantService) buildGrant(req *ProposeGrantRequest) *models.LicenseGrant {
	return &models.LicenseGrant{
		AssetID:            req.AssetID,
		BrandID:            req.BrandID,
		LicenseType:        req.LicenseType,
		Status:             models.GrantStatusDraft,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		MediaChannels:      req.MediaChannels,
		Placements:         req.Placements,
		Territories:        req.Territories,
		BlockedCompetitors: req.BlockedCompetitors,
		Notes:              req.Notes,
	}
}

func (s *GrantService) validateProposal(req *ProposeGrantRequest) (*models.LicenseGrant, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	grant := s.buildGrant(req)
	if err := conflict.ValidateGrant(grant); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return grant, nil
}

// CheckConflicts runs the conflict check against the current store state
// without persisting anything. The result is advisory: the authoritative
// check re-runs inside IssueGrant's unit of work.
func (s *GrantService) CheckConflicts(ctx context.Context, req *ProposeGrantRequest) (*conflict.Report, error) {
	grant, err := s.validateProposal(req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.InForceGrants(ctx, grant.AssetID)
	if err != nil {
		return nil, err
	}

	return conflict.Evaluate(grant, candidates), nil
}

// IssueGrant runs the read-check-write sequence inside one per-asset unit
// of work. On success the persisted grant is returned; a rejected check
// returns the conflict report with no state change. Serialization failures
// retry with a fresh snapshot up to the configured attempt count.
func (s *GrantService) IssueGrant(ctx context.Context, req *ProposeGrantRequest) (*models.LicenseGrant, *conflict.Report, error) {
	grant, err := s.validateProposal(req)
	if err != nil {
		return nil, nil, err
	}

	var report *conflict.Report
	for attempt := 1; attempt <= s.issuance.MaxAttempts; attempt++ {
		report = nil
		err = s.store.WithAssetLock(ctx, grant.AssetID, func(tx store.GrantTx) error {
			candidates, err := tx.InForceGrants(grant.AssetID)
			if err != nil {
				return err
			}
			report = conflict.Evaluate(grant, candidates)
			if !report.CanProceed {
				return errConflictRejected
			}
			return tx.InsertGrant(grant)
		})

		switch {
		case err == nil:
			go s.sendIssuedNotification(grant, report)
			return grant, report, nil
		case errors.Is(err, errConflictRejected):
			return nil, report, nil
		case errors.Is(err, store.ErrSerialization):
			logrus.WithFields(logrus.Fields{
				"asset_id": grant.AssetID,
				"attempt":  attempt,
			}).Warn("Grant issuance lost to a concurrent writer, retrying")
			if attempt < s.issuance.MaxAttempts {
				time.Sleep(time.Duration(attempt) * s.issuance.RetryBackoff())
			}
		case errors.Is(err, store.ErrLockTimeout):
			return nil, nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
		default:
			return nil, nil, err
		}
	}

	return nil, nil, fmt.Errorf("%w after %d attempts", ErrConcurrentModification, s.issuance.MaxAttempts)
}

func (s *GrantService) GetGrant(ctx context.Context, id uuid.UUID) (*models.LicenseGrant, error) {
	grant, err := s.store.GetGrant(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("license grant not found")
		}
		return nil, err
	}
	return grant, nil
}

func (s *GrantService) SearchGrants(ctx context.Context, params GrantSearchParams) ([]models.LicenseGrant, int64, error) {
	return s.store.ListGrants(ctx, store.ListParams{
		PaginationParams: params.PaginationParams,
		AssetID:          params.AssetID,
		BrandID:          params.BrandID,
		Status:           params.Status,
		LicenseType:      params.LicenseType,
	})
}

// ApproveGrant moves a draft or pending grant to active. Status
// transitions are monotonic; the conflict core never mutates status.
func (s *GrantService) ApproveGrant(ctx context.Context, id uuid.UUID, approverID uuid.UUID) (*models.LicenseGrant, error) {
	grant, err := s.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}

	if grant.Status != models.GrantStatusDraft && grant.Status != models.GrantStatusPendingApproval {
		return nil, errors.New("only draft or pending grants can be approved")
	}

	now := time.Now()
	grant.Status = models.GrantStatusActive
	grant.ApprovedAt = &now
	grant.ApprovedBy = &approverID

	if err := s.store.UpdateGrant(ctx, grant); err != nil {
		return nil, err
	}

	go s.sendStatusNotification(grant, "grant_approved", "License Grant Approved")
	return grant, nil
}

func (s *GrantService) TerminateGrant(ctx context.Context, id uuid.UUID, req *TerminateGrantRequest) (*models.LicenseGrant, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	grant, err := s.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}

	if !grant.Status.InForce() && grant.Status != models.GrantStatusSuspended {
		return nil, errors.New("grant is not in force")
	}

	now := time.Now()
	grant.Status = models.GrantStatusTerminated
	grant.TerminatedAt = &now
	grant.TerminationReason = req.Reason

	if err := s.store.UpdateGrant(ctx, grant); err != nil {
		return nil, err
	}

	go s.sendStatusNotification(grant, "grant_terminated", "License Grant Terminated")
	return grant, nil
}

func (s *GrantService) SuspendGrant(ctx context.Context, id uuid.UUID) (*models.LicenseGrant, error) {
	grant, err := s.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}

	if grant.Status != models.GrantStatusActive {
		return nil, errors.New("only active grants can be suspended")
	}

	grant.Status = models.GrantStatusSuspended
	if err := s.store.UpdateGrant(ctx, grant); err != nil {
		return nil, err
	}

	go s.sendStatusNotification(grant, "grant_suspended", "License Grant Suspended")
	return grant, nil
}

// Notification methods

func (s *GrantService) sendIssuedNotification(grant *models.LicenseGrant, report *conflict.Report) {
	if s.notificationService == nil {
		return
	}
	s.notificationService.SendGrantIssuedNotification(grant, report.Warnings())
}

func (s *GrantService) sendStatusNotification(grant *models.LicenseGrant, notificationType, title string) {
	if s.notificationService == nil {
		return
	}
	s.notificationService.SendGrantStatusNotification(grant, notificationType, title)
}
