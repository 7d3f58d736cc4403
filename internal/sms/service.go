package sms

import (
	"context"

	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/metrics"
)

// Service sends messages through the gateway and records every attempt in
// the delivery log. kind labels the metric ("welcome", "reminder", ...).
type Service struct {
	gateway   Gateway
	templates TemplateRepository
	logs      LogRepository
}

func NewService(g Gateway, templates TemplateRepository, logs LogRepository) *Service {
	return &Service{gateway: g, templates: templates, logs: logs}
}

// Send delivers a plain message. Failures are logged and returned.
func (s *Service) Send(ctx context.Context, kind, phoneNumber, message string) error {
	return s.send(ctx, kind, phoneNumber, message, "")
}

// SendTemplate renders a stored template with the given context and sends it.
func (s *Service) SendTemplate(ctx context.Context, kind, phoneNumber, templateID string, tctx map[string]string) error {
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return err
	}
	return s.send(ctx, kind, phoneNumber, Render(tpl.Text, tctx), tpl.ID)
}

func (s *Service) send(ctx context.Context, kind, phoneNumber, message, templateID string) error {
	err := s.gateway.SendMessage(ctx, phoneNumber, message)

	entry := &Log{Recipient: phoneNumber, Message: message, TemplateID: templateID, Status: StatusSent}
	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		metrics.SMSFailed.WithLabelValues(kind).Inc()
	} else {
		metrics.SMSSent.WithLabelValues(kind).Inc()
	}
	if s.logs != nil {
		if logErr := s.logs.Create(ctx, entry); logErr != nil {
			logger.Warnf("sms: failed to write delivery log: %v", logErr)
		}
	}
	return err
}

// Templates exposes the template repository for the management API.
func (s *Service) Templates() TemplateRepository { return s.templates }

// Logs exposes the delivery log for the management API.
func (s *Service) Logs() LogRepository { return s.logs }
