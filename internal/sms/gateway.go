package sms

import (
	"context"
	"errors"
)

var ErrGatewayUnavailable = errors.New("sms gateway not configured")

// Gateway abstracts the SMS provider. The production implementation talks to
// an Infobip-style HTTP API; tests use fakes and unconfigured deployments get
// the noop gateway.
type Gateway interface {
	// SendPIN triggers a 2FA pin delivery and returns the provider pin id
	// used later to verify the code the user typed in.
	SendPIN(ctx context.Context, phoneNumber string) (pinID string, err error)
	// VerifyPIN checks the user-supplied code against a previously sent pin.
	VerifyPIN(ctx context.Context, pinID, code string) (bool, error)
	// SendMessage delivers a plain text message.
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// NoopGateway drops everything. Used when SMS_BASE_URL is unset so the rest
// of the service stays functional in development.
type NoopGateway struct{}

func (NoopGateway) SendPIN(ctx context.Context, phoneNumber string) (string, error) {
	return "", ErrGatewayUnavailable
}

func (NoopGateway) VerifyPIN(ctx context.Context, pinID, code string) (bool, error) {
	return false, ErrGatewayUnavailable
}

func (NoopGateway) SendMessage(ctx context.Context, phoneNumber, message string) error {
	return nil
}
