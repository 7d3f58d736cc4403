package sessions

import (
	"context"
	"testing"
	"time"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*Session
}

func (f *fakeRepo) Create(ctx context.Context, s *Session) error {
	if f.store == nil {
		f.store = map[string]*Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}
func (f *fakeRepo) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	if f.store == nil {
		return nil, nil
	}
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}
func (f *fakeRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	if f.store == nil {
		return nil
	}
	delete(f.store, refresh)
	return nil
}
func (f *fakeRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	for tok, s := range f.store {
		if s.UserID == userID {
			delete(f.store, tok)
		}
	}
	return nil
}

func TestCreateAndValidateSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	r, err := svc.CreateSession(ctx, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r == "" {
		t.Fatalf("expected refresh token")
	}
	// validate
	sess, err := svc.ValidateRefresh(ctx, r)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if sess == nil || sess.UserID != "user-1" {
		t.Fatalf("unexpected session: %v", sess)
	}
	// delete
	if err := svc.DeleteRefresh(ctx, r); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	sess2, _ := svc.ValidateRefresh(ctx, r)
	if sess2 != nil {
		t.Fatalf("expected session removed")
	}
}

func TestDeleteAllForUser(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	r1, err := svc.CreateSession(ctx, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	r2, err := svc.CreateSession(ctx, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := svc.CreateSession(ctx, "user-2", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteAllForUser(ctx, "user-1"); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if s, _ := svc.ValidateRefresh(ctx, r1); s != nil {
		t.Fatalf("expected r1 revoked")
	}
	if s, _ := svc.ValidateRefresh(ctx, r2); s != nil {
		t.Fatalf("expected r2 revoked")
	}
	if s, _ := svc.ValidateRefresh(ctx, other); s == nil {
		t.Fatalf("expected user-2 session untouched")
	}
}
