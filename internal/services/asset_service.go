// internal/services/asset_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/utils"
)

type AssetService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateAssetRequest struct {
	Title       string                 `json:"title" validate:"required,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category" validate:"required"`
	ContentType string                 `json:"content_type,omitempty"`
	FileURLs    []string               `json:"file_urls,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
}

type UpdateAssetRequest struct {
	Title       *string                `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description *string                `json:"description,omitempty"`
	Category    *string                `json:"category,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
}

type AssetSearchParams struct {
	utils.PaginationParams
	OwnerID *uuid.UUID          `json:"owner_id,omitempty"`
	Status  *models.AssetStatus `json:"status,omitempty"`
}

func NewAssetService(db *gorm.DB, storageService *StorageService) *AssetService {
	return &AssetService{
		db:             db,
		storageService: storageService,
	}
}

func (s *AssetService) CreateAsset(ownerID uuid.UUID, req *CreateAssetRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("owner not found: %w", err)
	}
	if owner.Status != models.UserStatusActive {
		return nil, errors.New("owner account is not active")
	}

	asset := &models.IPAsset{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ContentType: req.ContentType,
		FileURLs:    req.FileURLs,
		Metadata:    models.JSONB(req.Metadata),
		Status:      models.AssetStatusActive,
		Tags:        req.Tags,
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create IP asset: %w", err)
	}

	s.db.Preload("Owner").First(asset, asset.ID)
	return asset, nil
}

func (s *AssetService) GetAsset(id uuid.UUID) (*models.IPAsset, error) {
	var asset models.IPAsset
	if err := s.db.Preload("Owner").First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("IP asset not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &asset, nil
}

func (s *AssetService) UpdateAsset(id uuid.UUID, userID uuid.UUID, req *UpdateAssetRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	asset, err := s.GetAsset(id)
	if err != nil {
		return nil, err
	}

	if asset.OwnerID != userID {
		var user models.User
		if err := s.db.First(&user, "id = ?", userID).Error; err != nil || user.UserType != models.UserTypeAdmin {
			return nil, errors.New("unauthorized to update IP asset")
		}
	}

	if req.Title != nil {
		asset.Title = *req.Title
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Metadata != nil {
		asset.Metadata = models.JSONB(req.Metadata)
	}
	if req.Tags != nil {
		asset.Tags = req.Tags
	}

	if err := s.db.Save(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to update IP asset: %w", err)
	}

	return asset, nil
}

func (s *AssetService) ArchiveAsset(id uuid.UUID, userID uuid.UUID) error {
	asset, err := s.GetAsset(id)
	if err != nil {
		return err
	}

	if asset.OwnerID != userID {
		var user models.User
		if err := s.db.First(&user, "id = ?", userID).Error; err != nil || user.UserType != models.UserTypeAdmin {
			return errors.New("unauthorized to archive IP asset")
		}
	}

	// In-force grants keep their asset around.
	var grantCount int64
	if err := s.db.Model(&models.LicenseGrant{}).
		Where("asset_id = ? AND status IN ?", id, []models.GrantStatus{
			models.GrantStatusDraft, models.GrantStatusPendingApproval, models.GrantStatusActive,
		}).
		Count(&grantCount).Error; err != nil {
		return fmt.Errorf("failed to check in-force grants: %w", err)
	}
	if grantCount > 0 {
		return errors.New("cannot archive an asset with in-force grants")
	}

	asset.Status = models.AssetStatusArchived
	if err := s.db.Save(asset).Error; err != nil {
		return fmt.Errorf("failed to archive IP asset: %w", err)
	}
	return nil
}

func (s *AssetService) SearchAssets(params AssetSearchParams) ([]models.IPAsset, int64, error) {
	query := s.db.Model(&models.IPAsset{}).Preload("Owner")

	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		query = query.Where("to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', ?)", params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count IP assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var assets []models.IPAsset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch IP assets: %w", err)
	}

	return assets, total, nil
}

func (s *AssetService) UploadAssetFile(assetID uuid.UUID, userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	asset, err := s.GetAsset(assetID)
	if err != nil {
		return nil, err
	}

	if asset.OwnerID != userID {
		return nil, errors.New("unauthorized to upload files for this asset")
	}

	result, err := s.storageService.UploadFile(file, header, UploadOptions{
		Folder:       "assets/" + assetID.String(),
		MaxSize:      50 * 1024 * 1024,
		AllowedTypes: []string{".png", ".jpg", ".jpeg", ".gif", ".pdf", ".svg", ".mp4", ".mp3"},
		IsPublic:     true,
	})
	if err != nil {
		return nil, err
	}

	asset.FileURLs = append(asset.FileURLs, result.URL)
	if err := s.db.Save(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to record uploaded file: %w", err)
	}

	return result, nil
}
