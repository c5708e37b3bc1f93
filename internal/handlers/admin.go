// internal/handlers/admin.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brandwave/licensing-backend/internal/services"
	"github.com/brandwave/licensing-backend/internal/utils"
)

type AdminHandler struct {
	notificationService *services.NotificationService
	analyticsService    *services.AnalyticsService
}

func NewAdminHandler(notificationService *services.NotificationService, analyticsService *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		notificationService: notificationService,
		analyticsService:    analyticsService,
	}
}

// GET /admin/notifications
func (h *AdminHandler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	notifications, err := h.notificationService.ListNotifications(c.Query("status"), limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"notifications": notifications})
}

// PUT /admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.notificationService.MarkNotificationRead(c.Param("id")); err != nil {
		utils.NotFoundResponse(c, "Notification")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Notification marked as read"})
}

// POST /analytics/events
func (h *AdminHandler) RecordMetric(c *gin.Context) {
	var req services.RecordMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	metric, err := h.analyticsService.RecordMetric(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"metric": metric})
}

// GET /admin/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	query := services.AnalyticsQuery{
		MetricName: c.Query("metric_name"),
		Period:     c.Query("period"),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			query.From = &from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			query.To = &to
		}
	}

	metrics, err := h.analyticsService.QueryMetrics(query)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"metrics": metrics})
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GrantStatistics()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}
