package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wapangaji/kiganjani/internal/models"
)

// In-memory repositories used by tests and local development.

type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]*models.Notification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[string]*models.Notification{}}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	cp := *n
	r.items[n.ID] = &cp
	return n, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *MemoryRepository) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.items {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) CountByRecipient(_ context.Context, recipientID string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, unread int64
	for _, n := range r.items {
		if n.RecipientID != recipientID {
			continue
		}
		total++
		if !n.IsRead {
			unread++
		}
	}
	return total, unread, nil
}

func (r *MemoryRepository) Update(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.ID]; !ok {
		return ErrNotFound
	}
	cp := *n
	r.items[n.ID] = &cp
	return nil
}

func (r *MemoryRepository) MarkAllRead(_ context.Context, recipientID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			t := at
			n.ReadAt = &t
		}
	}
	return nil
}

type MemoryPreferenceRepository struct {
	mu    sync.Mutex
	items map[string]*models.NotificationPreference
}

func NewMemoryPreferenceRepository() *MemoryPreferenceRepository {
	return &MemoryPreferenceRepository{items: map[string]*models.NotificationPreference{}}
}

func (r *MemoryPreferenceRepository) Get(_ context.Context, userID string) (*models.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPreferenceRepository) Upsert(_ context.Context, p *models.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	r.items[p.UserID] = &cp
	return nil
}
