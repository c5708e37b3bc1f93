// internal/handlers/grant.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brandwave/licensing-backend/internal/conflict"
	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/services"
	"github.com/brandwave/licensing-backend/internal/utils"
)

type GrantHandler struct {
	grantService *services.GrantService
}

func NewGrantHandler(grantService *services.GrantService) *GrantHandler {
	return &GrantHandler{
		grantService: grantService,
	}
}

// conflictReportPayload is the wire shape of a conflict check result: the
// full report plus flat human-readable summaries.
func conflictReportPayload(report *conflict.Report) gin.H {
	return gin.H{
		"report":      report,
		"can_proceed": report.CanProceed,
		"blockers":    report.Blockers(),
		"warnings":    report.Warnings(),
	}
}

// POST /grants/check
func (h *GrantHandler) CheckConflicts(c *gin.Context) {
	var req services.ProposeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	report, err := h.grantService.CheckConflicts(c.Request.Context(), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, conflictReportPayload(report))
}

// POST /grants
func (h *GrantHandler) IssueGrant(c *gin.Context) {
	var req services.ProposeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	grant, report, err := h.grantService.IssueGrant(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLockTimeout):
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "LOCK_TIMEOUT",
				"Could not acquire the asset lock, please retry", gin.H{"retryable": true})
		case errors.Is(err, services.ErrConcurrentModification):
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "CONCURRENT_MODIFICATION",
				"Grant issuance lost to concurrent requests, please retry", gin.H{"retryable": true})
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	if grant == nil {
		// Business conflict: the expected failure path, not a system error.
		utils.ErrorResponse(c, http.StatusConflict, "LICENSE_CONFLICT",
			"Proposed grant conflicts with existing grants", conflictReportPayload(report))
		return
	}

	utils.CreatedResponse(c, gin.H{
		"grant":    grant,
		"warnings": report.Warnings(),
	})
}

// GET /grants
func (h *GrantHandler) GetGrants(c *gin.Context) {
	params := services.GrantSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if assetIDStr := c.Query("asset_id"); assetIDStr != "" {
		if assetID, err := uuid.Parse(assetIDStr); err == nil {
			params.AssetID = &assetID
		}
	}
	if brandIDStr := c.Query("brand_id"); brandIDStr != "" {
		if brandID, err := uuid.Parse(brandIDStr); err == nil {
			params.BrandID = &brandID
		}
	}
	if status := c.Query("status"); status != "" {
		grantStatus := models.GrantStatus(status)
		params.Status = &grantStatus
	}
	if licenseType := c.Query("license_type"); licenseType != "" {
		lType := models.LicenseType(licenseType)
		params.LicenseType = &lType
	}

	grants, total, err := h.grantService.SearchGrants(c.Request.Context(), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(grants, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /grants/:id
func (h *GrantHandler) GetGrant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid grant ID", nil)
		return
	}

	grant, err := h.grantService.GetGrant(c.Request.Context(), id)
	if err != nil {
		utils.NotFoundResponse(c, "License grant")
		return
	}

	utils.SuccessResponse(c, gin.H{"grant": grant})
}

// PUT /grants/:id/approve
func (h *GrantHandler) ApproveGrant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid grant ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	approverID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	grant, err := h.grantService.ApproveGrant(c.Request.Context(), id, approverID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "License grant approved",
		"grant":   grant,
	})
}

// PUT /grants/:id/terminate
func (h *GrantHandler) TerminateGrant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid grant ID", nil)
		return
	}

	var req services.TerminateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	grant, err := h.grantService.TerminateGrant(c.Request.Context(), id, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "License grant terminated",
		"grant":   grant,
	})
}

// PUT /grants/:id/suspend
func (h *GrantHandler) SuspendGrant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid grant ID", nil)
		return
	}

	grant, err := h.grantService.SuspendGrant(c.Request.Context(), id)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "License grant suspended",
		"grant":   grant,
	})
}
