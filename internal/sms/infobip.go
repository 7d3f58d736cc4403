package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wapangaji/kiganjani/internal/config"
)

// InfobipGateway implements Gateway against Infobip's 2FA and SMS HTTP APIs.
type InfobipGateway struct {
	baseURL string
	apiKey  string
	appID   string
	sender  string
	client  *http.Client
}

func NewInfobipGateway(cfg config.SMSConfig) *InfobipGateway {
	return &InfobipGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		appID:   cfg.AppID,
		sender:  cfg.Sender,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *InfobipGateway) SendPIN(ctx context.Context, phoneNumber string) (string, error) {
	payload := map[string]any{
		"applicationId": g.appID,
		"messageId":     "verify_registration",
		"from":          g.sender,
		"to":            phoneNumber,
	}
	var resp struct {
		PinID string `json:"pinId"`
	}
	if err := g.post(ctx, "/2fa/2/pin", payload, &resp); err != nil {
		return "", err
	}
	if resp.PinID == "" {
		return "", fmt.Errorf("sms gateway: no pinId in response")
	}
	return resp.PinID, nil
}

func (g *InfobipGateway) VerifyPIN(ctx context.Context, pinID, code string) (bool, error) {
	payload := map[string]any{"pin": code, "pinId": pinID}
	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := g.post(ctx, "/2fa/2/pin/verify", payload, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

func (g *InfobipGateway) SendMessage(ctx context.Context, phoneNumber, message string) error {
	payload := map[string]any{
		"messages": []map[string]any{{
			"destinations": []map[string]string{{"to": phoneNumber}},
			"from":         g.sender,
			"text":         message,
		}},
	}
	return g.post(ctx, "/sms/2/text/advanced", payload, nil)
}

func (g *InfobipGateway) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "App "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway: %s returned %d: %s", path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sms gateway: decode response: %w", err)
	}
	return nil
}
