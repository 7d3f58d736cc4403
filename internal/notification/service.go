package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/pkg/logger"
)

var (
	ErrForbidden  = errors.New("notification does not belong to caller")
	ErrValidation = errors.New("invalid notification data")
)

var validTypes = map[string]bool{
	models.NotifyPaymentReceived:    true,
	models.NotifyTenantAssigned:     true,
	models.NotifyTenantVacated:      true,
	models.NotifyMaintenanceRequest: true,
	models.NotifyRentOverdue:        true,
	models.NotifyAdminAlert:         true,
}

// Service creates and serves in-app notifications. It also implements the
// event hooks fired by the property and tenant services.
type Service struct {
	repo  Repository
	prefs PreferenceRepository
}

func NewService(repo Repository, prefs PreferenceRepository) *Service {
	return &Service{repo: repo, prefs: prefs}
}

// Create validates and stores a notification, honoring the recipient's
// per-type preferences.
func (s *Service) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.RecipientID == "" || n.Title == "" {
		return nil, fmt.Errorf("%w: recipient and title required", ErrValidation)
	}
	if !validTypes[n.Type] {
		return nil, fmt.Errorf("%w: unknown type %q", ErrValidation, n.Type)
	}
	switch n.Priority {
	case "":
		n.Priority = "medium"
	case "low", "medium", "high":
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, n.Priority)
	}

	pref, err := s.Preferences(ctx, n.RecipientID)
	if err != nil {
		return nil, err
	}
	if !wants(pref, n.Type) {
		return nil, nil
	}
	return s.repo.Create(ctx, n)
}

func wants(p *models.NotificationPreference, notifType string) bool {
	switch notifType {
	case models.NotifyTenantAssigned, models.NotifyTenantVacated:
		return p.TenantUpdates
	case models.NotifyMaintenanceRequest:
		return p.MaintenanceUpdates
	case models.NotifyPaymentReceived:
		return p.PaymentConfirmation
	default:
		return true
	}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID, false)
}

// Unread returns only the unread notifications.
func (s *Service) Unread(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID, true)
}

// Counts returns total and unread counts.
func (s *Service) Counts(ctx context.Context, userID string) (total, unread int64, err error) {
	return s.repo.CountByRecipient(ctx, userID)
}

// MarkRead marks one notification as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	if n.RecipientID != userID {
		return nil, ErrForbidden
	}
	if !n.IsRead {
		now := time.Now().UTC()
		n.IsRead = true
		n.ReadAt = &now
		if err := s.repo.Update(ctx, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the user.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
}

// Preferences returns the user's settings, creating defaults on first access.
func (s *Service) Preferences(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	p, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	p = &models.NotificationPreference{
		UserID:              userID,
		RentReminderDays:    3,
		PaymentConfirmation: true,
		MaintenanceUpdates:  true,
		TenantUpdates:       true,
	}
	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PreferenceUpdate carries the mutable preference fields.
type PreferenceUpdate struct {
	RentReminderDays    *int
	PaymentConfirmation *bool
	MaintenanceUpdates  *bool
	TenantUpdates       *bool
	EmailNotifications  *bool
	PushNotifications   *bool
	NotificationTypes   []string
}

// UpdatePreferences patches the user's settings.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, upd PreferenceUpdate) (*models.NotificationPreference, error) {
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.RentReminderDays != nil {
		if *upd.RentReminderDays < 0 || *upd.RentReminderDays > 31 {
			return nil, fmt.Errorf("%w: rentReminderDays out of range", ErrValidation)
		}
		p.RentReminderDays = *upd.RentReminderDays
	}
	if upd.PaymentConfirmation != nil {
		p.PaymentConfirmation = *upd.PaymentConfirmation
	}
	if upd.MaintenanceUpdates != nil {
		p.MaintenanceUpdates = *upd.MaintenanceUpdates
	}
	if upd.TenantUpdates != nil {
		p.TenantUpdates = *upd.TenantUpdates
	}
	if upd.EmailNotifications != nil {
		p.EmailNotifications = *upd.EmailNotifications
	}
	if upd.PushNotifications != nil {
		p.PushNotifications = *upd.PushNotifications
	}
	if upd.NotificationTypes != nil {
		p.NotificationTypes = upd.NotificationTypes
	}
	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// --- event hooks ---

// MaintenanceReported satisfies the property service's notifier hook.
func (s *Service) MaintenanceReported(ctx context.Context, ownerID string, m *models.UnitMaintenance) {
	priority := "medium"
	if m.Priority == models.PriorityEmergency || m.Priority == models.PriorityHigh {
		priority = "high"
	}
	_, err := s.Create(ctx, &models.Notification{
		RecipientID: ownerID,
		Title:       "Maintenance reported",
		Message:     fmt.Sprintf("%s issue reported: %s", m.IssueType, m.Description),
		Type:        models.NotifyMaintenanceRequest,
		Priority:    priority,
		RelatedKind: "maintenance",
		RelatedID:   m.ID,
	})
	if err != nil {
		logger.Warnf("notification: maintenance hook failed: %v", err)
	}
}

// TenantAssigned satisfies the tenant service's notifier hook.
func (s *Service) TenantAssigned(ctx context.Context, ownerID string, o *models.TenantOccupancy, tenantName, unitNumber string) {
	_, err := s.Create(ctx, &models.Notification{
		RecipientID: ownerID,
		Title:       "Tenant assigned",
		Message:     fmt.Sprintf("%s moved into unit %s", tenantName, unitNumber),
		Type:        models.NotifyTenantAssigned,
		RelatedKind: "occupancy",
		RelatedID:   o.ID,
	})
	if err != nil {
		logger.Warnf("notification: assign hook failed: %v", err)
	}
}

// TenantVacated satisfies the tenant service's notifier hook.
func (s *Service) TenantVacated(ctx context.Context, ownerID string, o *models.TenantOccupancy, tenantName, unitNumber string) {
	_, err := s.Create(ctx, &models.Notification{
		RecipientID: ownerID,
		Title:       "Tenant vacated",
		Message:     fmt.Sprintf("%s vacated unit %s", tenantName, unitNumber),
		Type:        models.NotifyTenantVacated,
		RelatedKind: "occupancy",
		RelatedID:   o.ID,
	})
	if err != nil {
		logger.Warnf("notification: vacate hook failed: %v", err)
	}
}
