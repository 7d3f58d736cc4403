package tenant

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wapangaji/kiganjani/internal/models"
)

// In-memory repositories used by tests and local development.

type MemoryTenantRepository struct {
	mu    sync.Mutex
	items map[string]*models.Tenant
}

func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{items: map[string]*models.Tenant{}}
}

func (r *MemoryTenantRepository) Create(_ context.Context, t *models.Tenant) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.items[t.ID] = &cp
	return t, nil
}

func (r *MemoryTenantRepository) GetByID(_ context.Context, id string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTenantRepository) GetByPhone(_ context.Context, phone string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.PhoneNumber == phone {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryTenantRepository) List(_ context.Context, f ListFilter) ([]*models.Tenant, int64, error) {
	f.normalize()
	r.mu.Lock()
	defer r.mu.Unlock()

	var idSet map[string]bool
	if f.TenantIDs != nil {
		idSet = map[string]bool{}
		for _, id := range f.TenantIDs {
			idSet[id] = true
		}
	}

	var matched []*models.Tenant
	for _, t := range r.items {
		if f.OwnerID != "" && t.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if idSet != nil && !idSet[t.ID] {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(t.FullName), q) &&
				!strings.Contains(strings.ToLower(t.PhoneNumber), q) &&
				!strings.Contains(strings.ToLower(t.Email), q) {
				continue
			}
		}
		cp := *t
		matched = append(matched, &cp)
	}

	switch f.OrderBy {
	case "fullName":
		sort.Slice(matched, func(i, j int) bool { return matched[i].FullName < matched[j].FullName })
	case "createdAt":
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))
	start := (f.Page - 1) * f.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryTenantRepository) Update(_ context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

type MemoryOccupancyRepository struct {
	mu    sync.Mutex
	items map[string]*models.TenantOccupancy
}

func NewMemoryOccupancyRepository() *MemoryOccupancyRepository {
	return &MemoryOccupancyRepository{items: map[string]*models.TenantOccupancy{}}
}

func (r *MemoryOccupancyRepository) Create(_ context.Context, o *models.TenantOccupancy) (*models.TenantOccupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	r.items[o.ID] = &cp
	return o, nil
}

func (r *MemoryOccupancyRepository) GetByID(_ context.Context, id string) (*models.TenantOccupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOccupancyRepository) GetActiveByUnit(_ context.Context, unitID string) (*models.TenantOccupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.items {
		if o.UnitID == unitID && o.Status == models.OccupancyActive {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryOccupancyRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.TenantOccupancy, error) {
	return r.list(func(o *models.TenantOccupancy) bool { return o.TenantID == tenantID })
}

func (r *MemoryOccupancyRepository) ListByProperty(_ context.Context, propertyID string) ([]*models.TenantOccupancy, error) {
	return r.list(func(o *models.TenantOccupancy) bool { return o.PropertyID == propertyID })
}

func (r *MemoryOccupancyRepository) list(keep func(*models.TenantOccupancy) bool) ([]*models.TenantOccupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TenantOccupancy
	for _, o := range r.items {
		if keep(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *MemoryOccupancyRepository) Update(_ context.Context, o *models.TenantOccupancy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	r.items[o.ID] = &cp
	return nil
}

type MemoryDocumentRepository struct {
	mu    sync.Mutex
	items map[string]*models.TenantDocument
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{items: map[string]*models.TenantDocument{}}
}

func (r *MemoryDocumentRepository) Create(_ context.Context, d *models.TenantDocument) (*models.TenantDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	cp := *d
	r.items[d.ID] = &cp
	return d, nil
}

func (r *MemoryDocumentRepository) GetByID(_ context.Context, id string) (*models.TenantDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryDocumentRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.TenantDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TenantDocument
	for _, d := range r.items {
		if d.TenantID == tenantID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type MemoryNoteRepository struct {
	mu    sync.Mutex
	items map[string]*models.TenantNote
}

func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{items: map[string]*models.TenantNote{}}
}

func (r *MemoryNoteRepository) Create(_ context.Context, n *models.TenantNote) (*models.TenantNote, error) {
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

func (r *MemoryNoteRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.TenantNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TenantNote
	for _, n := range r.items {
		if n.TenantID == tenantID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// NewMemoryRepositories returns a fully in-memory repository set.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Tenants:     NewMemoryTenantRepository(),
		Occupancies: NewMemoryOccupancyRepository(),
		Documents:   NewMemoryDocumentRepository(),
		Notes:       NewMemoryNoteRepository(),
	}
}
