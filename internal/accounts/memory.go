package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wapangaji/kiganjani/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository used in unit tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // by id
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]*models.User{}}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = now
	}
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r *MemoryUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// MemorySessionAuditRepository is the in-memory test double for session audits.
type MemorySessionAuditRepository struct {
	mu       sync.Mutex
	sessions []*models.UserSession
}

func NewMemorySessionAuditRepository() *MemorySessionAuditRepository {
	return &MemorySessionAuditRepository{}
}

func (r *MemorySessionAuditRepository) Create(ctx context.Context, s *models.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastActivity = now
	cp := *s
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *MemorySessionAuditRepository) EndAllForUser(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.EndedAt == nil {
			t := at
			s.EndedAt = &t
		}
	}
	return nil
}

func (r *MemorySessionAuditRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.UserSession{}
	for _, s := range r.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}
