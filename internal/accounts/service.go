package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/phone"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const minPasswordLen = 8

// Service encapsulates account business logic: registration, activation,
// password auth with attempt tracking, and session audit records.
type Service struct {
	repo     UserRepository
	sessions SessionAuditRepository
}

func NewService(r UserRepository, s SessionAuditRepository) *Service {
	return &Service{repo: r, sessions: s}
}

// Register creates an inactive account pending OTP verification. Re-registering
// an unverified phone updates the pending account instead of failing, so a
// user who never received their OTP can retry.
func (s *Service) Register(ctx context.Context, rawPhone, fullName, password, language string) (*models.User, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if language != "en" {
		language = "sw"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, ErrPhoneTaken
		}
		existing.FullName = fullName
		existing.PasswordHash = string(hash)
		existing.Language = language
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	u := &models.User{
		PhoneNumber:  normalized,
		FullName:     fullName,
		PasswordHash: string(hash),
		Language:     language,
		IsActive:     false,
	}
	return s.repo.Create(ctx, u)
}

// Activate marks a phone-verified account as active.
func (s *Service) Activate(ctx context.Context, normalizedPhone string) (*models.User, error) {
	u, err := s.repo.GetByPhone(ctx, normalizedPhone)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	u.IsActive = true
	u.LoginAttempts = 0
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks phone+password. Failed attempts are counted on the
// account; a success resets the counter and stamps lastLogin.
func (s *Service) Authenticate(ctx context.Context, rawPhone, password string) (*models.User, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.LoginAttempts++
		_ = s.repo.Update(ctx, u)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrNotVerified
	}
	now := time.Now().UTC()
	u.LoginAttempts = 0
	u.LastLogin = &now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the password after an OTP-verified reset.
func (s *Service) SetPassword(ctx context.Context, normalizedPhone, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	u, err := s.repo.GetByPhone(ctx, normalizedPhone)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.repo.Update(ctx, u)
}

func (s *Service) GetByPhone(ctx context.Context, normalizedPhone string) (*models.User, error) {
	return s.repo.GetByPhone(ctx, normalizedPhone)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// RecordLogin stores a device-session audit entry. Best effort: a nil
// sessions repo disables auditing.
func (s *Service) RecordLogin(ctx context.Context, userID, deviceType, ip string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Create(ctx, &models.UserSession{
		UserID:     userID,
		DeviceType: deviceType,
		IPAddress:  ip,
	})
}

// EndAllSessions stamps every open session for the user (logout-all) and
// records the logout time on the account.
func (s *Service) EndAllSessions(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	if u, err := s.repo.GetByID(ctx, userID); err == nil && u != nil {
		u.LastLogout = &now
		_ = s.repo.Update(ctx, u)
	}
	if s.sessions == nil {
		return nil
	}
	return s.sessions.EndAllForUser(ctx, userID, now)
}
