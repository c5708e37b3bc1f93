// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brandwave/licensing-backend/internal/models"
	"github.com/brandwave/licensing-backend/internal/utils"
)

type AnalyticsService struct {
	db *gorm.DB
}

type RecordMetricRequest struct {
	MetricName   string                 `json:"metric_name" validate:"required,max=100"`
	MetricValue  float64                `json:"metric_value" validate:"required"`
	MetricPeriod string                 `json:"metric_period" validate:"required,oneof=hourly daily weekly monthly"`
	MetricDate   *time.Time             `json:"metric_date,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

type AnalyticsQuery struct {
	MetricName string     `json:"metric_name"`
	Period     string     `json:"period"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (s *AnalyticsService) RecordMetric(req *RecordMetricRequest) (*models.PlatformAnalytics, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	metricDate := time.Now()
	if req.MetricDate != nil {
		metricDate = *req.MetricDate
	}

	metric := &models.PlatformAnalytics{
		MetricName:     req.MetricName,
		MetricValue:    req.MetricValue,
		MetricDate:     metricDate,
		MetricPeriod:   req.MetricPeriod,
		AdditionalData: models.JSONB(req.Data),
	}

	if err := s.db.Create(metric).Error; err != nil {
		return nil, fmt.Errorf("failed to record metric: %w", err)
	}

	return metric, nil
}

func (s *AnalyticsService) QueryMetrics(query AnalyticsQuery) ([]models.PlatformAnalytics, error) {
	q := s.db.Model(&models.PlatformAnalytics{}).Order("metric_date DESC")

	if query.MetricName != "" {
		q = q.Where("metric_name = ?", query.MetricName)
	}
	if query.Period != "" {
		q = q.Where("metric_period = ?", query.Period)
	}
	if query.From != nil {
		q = q.Where("metric_date >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("metric_date <= ?", *query.To)
	}

	var metrics []models.PlatformAnalytics
	if err := q.Limit(500).Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}

	return metrics, nil
}

// GrantStatistics summarizes the grant book per status and license type.
func (s *AnalyticsService) GrantStatistics() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	type countRow struct {
		Key   string
		Count int64
	}

	var byStatus []countRow
	if err := s.db.Model(&models.LicenseGrant{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count grants by status: %w", err)
	}

	var byType []countRow
	if err := s.db.Model(&models.LicenseGrant{}).
		Select("license_type AS key, COUNT(*) AS count").
		Group("license_type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to count grants by type: %w", err)
	}

	statusCounts := make(map[string]int64, len(byStatus))
	for _, row := range byStatus {
		statusCounts[row.Key] = row.Count
	}
	typeCounts := make(map[string]int64, len(byType))
	for _, row := range byType {
		typeCounts[row.Key] = row.Count
	}

	var assetCount int64
	s.db.Model(&models.IPAsset{}).Count(&assetCount)

	stats["grants_by_status"] = statusCounts
	stats["grants_by_type"] = typeCounts
	stats["total_assets"] = assetCount

	return stats, nil
}
