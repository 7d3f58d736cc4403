package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	pinID    string
	sendErr  error
	accepted string
	calls    int
}

func (g *stubGateway) SendPIN(_ context.Context, _ string) (string, error) {
	if g.sendErr != nil {
		return "", g.sendErr
	}
	return g.pinID, nil
}

func (g *stubGateway) VerifyPIN(_ context.Context, _, code string) (bool, error) {
	g.calls++
	return code == g.accepted, nil
}

func newTestService(t *testing.T, gw PinVerifier) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(NewStore(client, ""), gw, 15*time.Minute, 3), mr
}

func TestBeginAndVerify(t *testing.T) {
	gw := &stubGateway{pinID: "pin-1", accepted: "123456"}
	svc, _ := newTestService(t, gw)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "+255754123456", TypeRegistration))
	require.NoError(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "123456"))

	// Single use: a second verify finds no record.
	err := svc.Verify(ctx, "+255754123456", TypeRegistration, "123456")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyWrongCodeThenCorrect(t *testing.T) {
	gw := &stubGateway{pinID: "pin-1", accepted: "123456"}
	svc, _ := newTestService(t, gw)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "+255754123456", TypeRegistration))
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "000000"), ErrInvalid)
	require.NoError(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "123456"))
}

func TestVerifyMaxAttempts(t *testing.T) {
	gw := &stubGateway{pinID: "pin-1", accepted: "123456"}
	svc, _ := newTestService(t, gw)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "+255754123456", TypeRegistration))
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "000001"), ErrInvalid)
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "000002"), ErrInvalid)
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "000003"), ErrTooManyAttempts)

	// Record is gone; the right code no longer helps.
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "123456"), ErrInvalid)
}

func TestVerifyExpired(t *testing.T) {
	gw := &stubGateway{pinID: "pin-1", accepted: "123456"}
	svc, mr := newTestService(t, gw)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "+255754123456", TypeRegistration))
	mr.FastForward(16 * time.Minute)

	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypeRegistration, "123456"), ErrInvalid)
	require.Zero(t, gw.calls)
}

func TestTypesAreIsolated(t *testing.T) {
	gw := &stubGateway{pinID: "pin-1", accepted: "123456"}
	svc, _ := newTestService(t, gw)
	ctx := context.Background()

	require.NoError(t, svc.Begin(ctx, "+255754123456", TypeRegistration))
	require.ErrorIs(t, svc.Verify(ctx, "+255754123456", TypePasswordReset, "123456"), ErrInvalid)
}

func TestBeginGatewayError(t *testing.T) {
	gw := &stubGateway{sendErr: errors.New("gateway down")}
	svc, _ := newTestService(t, gw)

	require.Error(t, svc.Begin(context.Background(), "+255754123456", TypeRegistration))
}
