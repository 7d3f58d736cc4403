package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wapangaji/kiganjani/internal/phone"
)

func TestRegisterAndActivate(t *testing.T) {
	svc := NewService(NewMemoryUserRepository(), NewMemorySessionAuditRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, "0754123456", "Asha Mrema", "password123", "sw")
	require.NoError(t, err)
	require.Equal(t, "+255754123456", u.PhoneNumber)
	require.False(t, u.IsActive)
	require.NotEmpty(t, u.ID)
	require.Empty(t, u.PasswordHash == "password123", "password must not be stored in clear")

	// re-register before verification replaces the pending account
	u2, err := svc.Register(ctx, "0754123456", "Asha M.", "password456", "en")
	require.NoError(t, err)
	require.Equal(t, u.ID, u2.ID)
	require.Equal(t, "Asha M.", u2.FullName)

	activated, err := svc.Activate(ctx, u.PhoneNumber)
	require.NoError(t, err)
	require.True(t, activated.IsActive)

	// active phone can no longer be re-registered
	_, err = svc.Register(ctx, "+255754123456", "Someone Else", "password789", "sw")
	require.ErrorIs(t, err, ErrPhoneTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(NewMemoryUserRepository(), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-a-phone", "X", "password123", "sw")
	require.ErrorIs(t, err, phone.ErrInvalid)

	_, err = svc.Register(ctx, "0754123456", "X", "short", "sw")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryUserRepository(), NewMemorySessionAuditRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, "0754123456", "Asha", "password123", "sw")
	require.NoError(t, err)

	// unverified account
	_, err = svc.Authenticate(ctx, "0754123456", "password123")
	require.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.Activate(ctx, "+255754123456")
	require.NoError(t, err)

	// wrong password counts an attempt
	_, err = svc.Authenticate(ctx, "0754123456", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.Authenticate(ctx, "0754123456", "password123")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	require.Zero(t, u.LoginAttempts)

	// unknown phone is indistinguishable from bad password
	_, err = svc.Authenticate(ctx, "0788000000", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordReset(t *testing.T) {
	svc := NewService(NewMemoryUserRepository(), nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "0754123456", "Asha", "password123", "sw")
	require.NoError(t, err)
	_, err = svc.Activate(ctx, u.PhoneNumber)
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetPassword(ctx, u.PhoneNumber, "short"), ErrWeakPassword)
	require.NoError(t, svc.SetPassword(ctx, u.PhoneNumber, "newpassword456"))

	_, err = svc.Authenticate(ctx, "0754123456", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "0754123456", "newpassword456")
	require.NoError(t, err)
}

func TestSessionAudit(t *testing.T) {
	audits := NewMemorySessionAuditRepository()
	svc := NewService(NewMemoryUserRepository(), audits)
	ctx := context.Background()

	u, err := svc.Register(ctx, "0754123456", "Asha", "password123", "sw")
	require.NoError(t, err)

	require.NoError(t, svc.RecordLogin(ctx, u.ID, "android", "10.0.0.5"))
	require.NoError(t, svc.RecordLogin(ctx, u.ID, "ios", "10.0.0.6"))

	require.NoError(t, svc.EndAllSessions(ctx, u.ID))
	list, err := audits.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, s := range list {
		require.NotNil(t, s.EndedAt)
	}
}
