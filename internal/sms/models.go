package sms

import "time"

// Template types.
const (
	TemplateRentReminder        = "rent_reminder"
	TemplatePaymentConfirmation = "payment_confirmation"
	TemplateMaintenance         = "maintenance"
	TemplateWelcome             = "welcome"
	TemplateCustom              = "custom"
)

// Delivery statuses recorded in the log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Template is a reusable message body with {placeholder} tokens
// ({tenant_name}, {amount}, {due_date}, {unit_number}, ...).
type Template struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Type      string    `bson:"type" json:"type"`
	Text      string    `bson:"text" json:"text"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Log records every outbound message attempt.
type Log struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Recipient  string    `bson:"recipient" json:"recipient"`
	Message    string    `bson:"message" json:"message"`
	TemplateID string    `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Status     string    `bson:"status" json:"status"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	SentAt     time.Time `bson:"sentAt" json:"sentAt"`
}
