package models

import "time"

// Notification types.
const (
	NotifyPaymentReceived    = "payment_received"
	NotifyTenantAssigned     = "tenant_assigned"
	NotifyTenantVacated      = "tenant_vacated"
	NotifyMaintenanceRequest = "maintenance_request"
	NotifyRentOverdue        = "rent_overdue"
	NotifyAdminAlert         = "admin_alert"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	RecipientID string     `bson:"recipientId" json:"recipientId"`
	Title       string     `bson:"title" json:"title"`
	Message     string     `bson:"message" json:"message"`
	Type        string     `bson:"type" json:"type"`
	Priority    string     `bson:"priority" json:"priority"` // low | medium | high
	RelatedKind string     `bson:"relatedKind,omitempty" json:"relatedKind,omitempty"`
	RelatedID   string     `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	IsRead      bool       `bson:"isRead" json:"isRead"`
	ReadAt      *time.Time `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// NotificationPreference holds a user's delivery settings. One record per
// user, created on first access.
type NotificationPreference struct {
	UserID              string    `bson:"_id" json:"userId"`
	RentReminderDays    int       `bson:"rentReminderDays" json:"rentReminderDays"`
	PaymentConfirmation bool      `bson:"paymentConfirmation" json:"paymentConfirmation"`
	MaintenanceUpdates  bool      `bson:"maintenanceUpdates" json:"maintenanceUpdates"`
	TenantUpdates       bool      `bson:"tenantUpdates" json:"tenantUpdates"`
	EmailNotifications  bool      `bson:"emailNotifications" json:"emailNotifications"`
	PushNotifications   bool      `bson:"pushNotifications" json:"pushNotifications"`
	NotificationTypes   []string  `bson:"notificationTypes,omitempty" json:"notificationTypes,omitempty"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}
