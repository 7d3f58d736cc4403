package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wapangaji/kiganjani/internal/config"
)

func TestRender(t *testing.T) {
	msg := Render("Dear {tenant_name}, rent of {amount} is due on {due_date}.", map[string]string{
		"tenant_name": "Asha",
		"amount":      "350000",
		"due_date":    "05/09/2026",
	})
	require.Equal(t, "Dear Asha, rent of 350000 is due on 05/09/2026.", msg)
}

func TestRender_UnknownPlaceholderKept(t *testing.T) {
	msg := Render("Hello {tenant_name}, unit {unit_number}", map[string]string{"tenant_name": "Asha"})
	require.Equal(t, "Hello Asha, unit {unit_number}", msg)
}

func TestInfobipGateway_PinFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "App test-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/2fa/2/pin":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "+255754123456", body["to"])
			json.NewEncoder(w).Encode(map[string]any{"pinId": "pin-123"})
		case "/2fa/2/pin/verify":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			json.NewEncoder(w).Encode(map[string]any{"verified": body["pin"] == "123456"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	g := NewInfobipGateway(config.SMSConfig{BaseURL: srv.URL, APIKey: "test-key", AppID: "app-1", Sender: "TestSMS"})
	ctx := context.Background()

	pinID, err := g.SendPIN(ctx, "+255754123456")
	require.NoError(t, err)
	require.Equal(t, "pin-123", pinID)

	ok, err := g.VerifyPIN(ctx, pinID, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.VerifyPIN(ctx, pinID, "000000")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInfobipGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"requestError":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewInfobipGateway(config.SMSConfig{BaseURL: srv.URL, APIKey: "bad"})
	_, err := g.SendPIN(context.Background(), "+255754123456")
	require.Error(t, err)
}

type fakeGateway struct {
	sent    []string
	sendErr error
}

func (f *fakeGateway) SendPIN(ctx context.Context, phone string) (string, error) { return "pin", nil }
func (f *fakeGateway) VerifyPIN(ctx context.Context, pinID, code string) (bool, error) {
	return true, nil
}
func (f *fakeGateway) SendMessage(ctx context.Context, phone, message string) error {
	f.sent = append(f.sent, message)
	return f.sendErr
}

func TestService_SendLogsDelivery(t *testing.T) {
	gw := &fakeGateway{}
	logs := NewMemoryLogRepository()
	svc := NewService(gw, NewMemoryTemplateRepository(), logs)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "welcome", "+255754123456", "Karibu!"))

	entries, err := logs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, StatusSent, entries[0].Status)
	require.Equal(t, "Karibu!", entries[0].Message)
}

func TestService_SendFailureLogged(t *testing.T) {
	gw := &fakeGateway{sendErr: errors.New("network down")}
	logs := NewMemoryLogRepository()
	svc := NewService(gw, NewMemoryTemplateRepository(), logs)
	ctx := context.Background()

	require.Error(t, svc.Send(ctx, "reminder", "+255754123456", "hello"))

	entries, err := logs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, StatusFailed, entries[0].Status)
	require.Contains(t, entries[0].Error, "network down")
}

func TestService_SendTemplate(t *testing.T) {
	gw := &fakeGateway{}
	templates := NewMemoryTemplateRepository()
	svc := NewService(gw, templates, NewMemoryLogRepository())
	ctx := context.Background()

	tpl := &Template{Name: "Rent due", Type: TemplateRentReminder, Text: "Rent {amount} due {due_date}", IsActive: true}
	require.NoError(t, templates.Create(ctx, tpl))

	require.NoError(t, svc.SendTemplate(ctx, "reminder", "+255754123456", tpl.ID,
		map[string]string{"amount": "350000", "due_date": "01/10/2026"}))
	require.Equal(t, []string{"Rent 350000 due 01/10/2026"}, gw.sent)

	require.ErrorIs(t, svc.SendTemplate(ctx, "reminder", "+255754123456", "missing", nil), ErrTemplateNotFound)
}

func TestNoopGateway(t *testing.T) {
	var g NoopGateway
	_, err := g.SendPIN(context.Background(), "+255754123456")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
	require.NoError(t, g.SendMessage(context.Background(), "+255754123456", "x"))
}
