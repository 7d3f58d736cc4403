package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Verification purposes.
const (
	TypeRegistration  = "registration"
	TypePasswordReset = "password_reset"
)

var (
	ErrInvalid         = errors.New("invalid or expired OTP")
	ErrTooManyAttempts = errors.New("maximum verification attempts exceeded")
)

// Record tracks one outstanding pin per phone and purpose. The code itself
// never touches our systems: the gateway holds it, we hold the pinId.
type Record struct {
	PhoneNumber string    `json:"phoneNumber"`
	PinID       string    `json:"pinId"`
	Type        string    `json:"type"`
	Attempts    int       `json:"attempts"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store keeps OTP records in Redis under "otp:<type>:<phone>" with the
// record TTL. A new record for the same phone+type overwrites the old one.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "otp:"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(otpType, phone string) string {
	return s.prefix + otpType + ":" + phone
}

// Put stores a record with TTL bound to its expiry.
func (s *Store) Put(ctx context.Context, r *Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ttl := time.Until(r.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(r.Type, r.PhoneNumber), b, ttl).Err()
}

// Get returns the outstanding record, or nil when none exists or it expired.
func (s *Store) Get(ctx context.Context, otpType, phone string) (*Record, error) {
	b, err := s.client.Get(ctx, s.key(otpType, phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if time.Now().UTC().After(r.ExpiresAt) {
		_ = s.client.Del(ctx, s.key(otpType, phone)).Err()
		return nil, nil
	}
	return &r, nil
}

// Delete removes a consumed record.
func (s *Store) Delete(ctx context.Context, otpType, phone string) error {
	return s.client.Del(ctx, s.key(otpType, phone)).Err()
}

// PinVerifier is the slice of the SMS gateway the service needs.
type PinVerifier interface {
	SendPIN(ctx context.Context, phoneNumber string) (string, error)
	VerifyPIN(ctx context.Context, pinID, code string) (bool, error)
}

// Service drives the send/verify lifecycle: one outstanding pin per phone
// and purpose, bounded attempts, single use.
type Service struct {
	store       *Store
	gateway     PinVerifier
	ttl         time.Duration
	maxAttempts int
}

func NewService(store *Store, gateway PinVerifier, ttl time.Duration, maxAttempts int) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Service{store: store, gateway: gateway, ttl: ttl, maxAttempts: maxAttempts}
}

// Begin sends a pin to the phone and records the returned pinId.
func (s *Service) Begin(ctx context.Context, phoneNumber, otpType string) error {
	pinID, err := s.gateway.SendPIN(ctx, phoneNumber)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.store.Put(ctx, &Record{
		PhoneNumber: phoneNumber,
		PinID:       pinID,
		Type:        otpType,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	})
}

// Verify checks the user-typed code. The record is consumed on success and
// discarded after maxAttempts failures.
func (s *Service) Verify(ctx context.Context, phoneNumber, otpType, code string) error {
	rec, err := s.store.Get(ctx, otpType, phoneNumber)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrInvalid
	}
	if rec.Attempts >= s.maxAttempts {
		return ErrTooManyAttempts
	}

	ok, err := s.gateway.VerifyPIN(ctx, rec.PinID, code)
	if err != nil {
		return err
	}
	if !ok {
		rec.Attempts++
		if rec.Attempts >= s.maxAttempts {
			_ = s.store.Delete(ctx, otpType, phoneNumber)
			return ErrTooManyAttempts
		}
		if err := s.store.Put(ctx, rec); err != nil {
			return err
		}
		return ErrInvalid
	}

	return s.store.Delete(ctx, otpType, phoneNumber)
}
