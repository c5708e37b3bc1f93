// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brandwave/licensing-backend/internal/config"
	"github.com/brandwave/licensing-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendGrantIssuedNotification records a notification for a freshly issued
// grant. Warnings from the conflict report are carried along so operators
// can review WARN-level scope overlaps after the fact.
func (s *NotificationService) SendGrantIssuedNotification(grant *models.LicenseGrant, warnings []string) error {
	message := fmt.Sprintf("License grant %s issued for asset %s to brand %s",
		grant.ID, grant.AssetID, grant.BrandID)
	priority := "medium"
	if len(warnings) > 0 {
		message += ". Scope overlap warnings: " + strings.Join(warnings, "; ")
		priority = "high"
	}

	notification := &models.AdminNotification{
		Type:                "grant_issued",
		Title:               "New License Grant Issued",
		Message:             message,
		Priority:            priority,
		RelatedResourceType: "license_grant",
		RelatedResourceID:   &grant.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return s.emailBrandContact(grant, "License Grant Issued", map[string]interface{}{
		"GrantID":  grant.ID.String(),
		"GrantURL": fmt.Sprintf("%s/grants/%s", s.config.Frontend.BaseURL, grant.ID),
		"Warnings": warnings,
	})
}

// SendGrantStatusNotification records a lifecycle transition (approval,
// termination, suspension).
func (s *NotificationService) SendGrantStatusNotification(grant *models.LicenseGrant, notificationType, title string) error {
	notification := &models.AdminNotification{
		Type:                notificationType,
		Title:               title,
		Message:             fmt.Sprintf("Grant %s on asset %s is now %s", grant.ID, grant.AssetID, grant.Status),
		Priority:            "medium",
		RelatedResourceType: "license_grant",
		RelatedResourceID:   &grant.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return s.emailBrandContact(grant, title, map[string]interface{}{
		"GrantID":  grant.ID.String(),
		"Status":   string(grant.Status),
		"GrantURL": fmt.Sprintf("%s/grants/%s", s.config.Frontend.BaseURL, grant.ID),
	})
}

func (s *NotificationService) ListNotifications(status string, limit int) ([]models.AdminNotification, error) {
	query := s.db.Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkNotificationRead(id string) error {
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": "read", "read_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) emailBrandContact(grant *models.LicenseGrant, subject string, data map[string]interface{}) error {
	var brand models.Brand
	if err := s.db.First(&brand, "id = ?", grant.BrandID).Error; err != nil || brand.ContactEmail == "" {
		// Email is best-effort; the persisted notification is the record.
		return nil
	}

	data["BrandName"] = brand.Name
	body, err := s.renderTemplate(grantEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(brand.ContactEmail, subject, body)
}

const grantEmailBody = `
<html>
<body>
<p>Hello {{.BrandName}},</p>
<p>There is an update on license grant {{.GrantID}}.</p>
{{if .Status}}<p>Current status: {{.Status}}</p>{{end}}
{{if .Warnings}}<p>Review warnings:</p><ul>{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p><a href="{{.GrantURL}}">View the grant</a></p>
</body>
</html>
`

func (s *NotificationService) renderTemplate(templateStr string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Debug("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body)

	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort
	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		logrus.WithError(err).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
