package property

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wapangaji/kiganjani/internal/models"
)

// In-memory repositories used by tests and local development.

type MemoryPropertyRepository struct {
	mu    sync.Mutex
	items map[string]*models.Property
}

func NewMemoryPropertyRepository() *MemoryPropertyRepository {
	return &MemoryPropertyRepository{items: map[string]*models.Property{}}
}

func (r *MemoryPropertyRepository) Create(_ context.Context, p *models.Property) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	r.items[p.ID] = &cp
	return p, nil
}

func (r *MemoryPropertyRepository) GetByID(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPropertyRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.items {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPropertyRepository) Update(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *MemoryPropertyRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type MemoryFloorRepository struct {
	mu    sync.Mutex
	items map[string]*models.Floor
}

func NewMemoryFloorRepository() *MemoryFloorRepository {
	return &MemoryFloorRepository{items: map[string]*models.Floor{}}
}

func (r *MemoryFloorRepository) Create(_ context.Context, f *models.Floor) (*models.Floor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	cp := *f
	r.items[f.ID] = &cp
	return f, nil
}

func (r *MemoryFloorRepository) GetByID(_ context.Context, id string) (*models.Floor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *MemoryFloorRepository) ListByProperty(_ context.Context, propertyID string) ([]*models.Floor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Floor
	for _, f := range r.items {
		if f.PropertyID == propertyID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FloorNumber < out[j].FloorNumber })
	return out, nil
}

func (r *MemoryFloorRepository) Update(_ context.Context, f *models.Floor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[f.ID]; !ok {
		return ErrNotFound
	}
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	r.items[f.ID] = &cp
	return nil
}

func (r *MemoryFloorRepository) DeleteByProperty(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.items {
		if f.PropertyID == propertyID {
			delete(r.items, id)
		}
	}
	return nil
}

type MemoryUnitRepository struct {
	mu    sync.Mutex
	items map[string]*models.Unit
}

func NewMemoryUnitRepository() *MemoryUnitRepository {
	return &MemoryUnitRepository{items: map[string]*models.Unit{}}
}

func (r *MemoryUnitRepository) CreateMany(_ context.Context, units []*models.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, u := range units {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		cp := *u
		r.items[u.ID] = &cp
	}
	return nil
}

func (r *MemoryUnitRepository) GetByID(_ context.Context, id string) (*models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUnitRepository) ListByFloor(_ context.Context, floorID string) ([]*models.Unit, error) {
	return r.list(func(u *models.Unit) bool { return u.FloorID == floorID })
}

func (r *MemoryUnitRepository) ListByProperty(_ context.Context, propertyID string) ([]*models.Unit, error) {
	return r.list(func(u *models.Unit) bool { return u.PropertyID == propertyID })
}

func (r *MemoryUnitRepository) list(keep func(*models.Unit) bool) ([]*models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Unit
	for _, u := range r.items {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

func (r *MemoryUnitRepository) Update(_ context.Context, u *models.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *MemoryUnitRepository) DeleteByFloor(_ context.Context, floorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.items {
		if u.FloorID == floorID {
			delete(r.items, id)
		}
	}
	return nil
}

type MemoryUnitTypeRepository struct {
	mu    sync.Mutex
	items map[string]*models.UnitType
}

func NewMemoryUnitTypeRepository() *MemoryUnitTypeRepository {
	return &MemoryUnitTypeRepository{items: map[string]*models.UnitType{}}
}

func (r *MemoryUnitTypeRepository) Create(_ context.Context, t *models.UnitType) (*models.UnitType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	cp := *t
	r.items[t.ID] = &cp
	return t, nil
}

func (r *MemoryUnitTypeRepository) GetByID(_ context.Context, id string) (*models.UnitType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryUnitTypeRepository) List(_ context.Context) ([]*models.UnitType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UnitType
	for _, t := range r.items {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type MemoryUtilityRepository struct {
	mu    sync.Mutex
	items map[string]*models.UnitUtility
}

func NewMemoryUtilityRepository() *MemoryUtilityRepository {
	return &MemoryUtilityRepository{items: map[string]*models.UnitUtility{}}
}

func (r *MemoryUtilityRepository) Create(_ context.Context, u *models.UnitUtility) (*models.UnitUtility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.items[u.ID] = &cp
	return u, nil
}

func (r *MemoryUtilityRepository) ListByUnit(_ context.Context, unitID string) ([]*models.UnitUtility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UnitUtility
	for _, u := range r.items {
		if u.UnitID == unitID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type MemoryMaintenanceRepository struct {
	mu    sync.Mutex
	items map[string]*models.UnitMaintenance
}

func NewMemoryMaintenanceRepository() *MemoryMaintenanceRepository {
	return &MemoryMaintenanceRepository{items: map[string]*models.UnitMaintenance{}}
}

func (r *MemoryMaintenanceRepository) Create(_ context.Context, m *models.UnitMaintenance) (*models.UnitMaintenance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	cp := *m
	r.items[m.ID] = &cp
	return m, nil
}

func (r *MemoryMaintenanceRepository) GetByID(_ context.Context, id string) (*models.UnitMaintenance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryMaintenanceRepository) ListByUnit(_ context.Context, unitID string) ([]*models.UnitMaintenance, error) {
	return r.list(func(m *models.UnitMaintenance) bool { return m.UnitID == unitID })
}

func (r *MemoryMaintenanceRepository) ListByProperty(_ context.Context, propertyID string) ([]*models.UnitMaintenance, error) {
	return r.list(func(m *models.UnitMaintenance) bool { return m.PropertyID == propertyID })
}

func (r *MemoryMaintenanceRepository) Update(_ context.Context, m *models.UnitMaintenance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *MemoryMaintenanceRepository) list(keep func(*models.UnitMaintenance) bool) ([]*models.UnitMaintenance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UnitMaintenance
	for _, m := range r.items {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// NewMemoryRepositories returns a fully in-memory repository set.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Properties:  NewMemoryPropertyRepository(),
		Floors:      NewMemoryFloorRepository(),
		Units:       NewMemoryUnitRepository(),
		UnitTypes:   NewMemoryUnitTypeRepository(),
		Utilities:   NewMemoryUtilityRepository(),
		Maintenance: NewMemoryMaintenanceRepository(),
	}
}
