package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wapangaji/kiganjani/internal/geometry"
	"github.com/wapangaji/kiganjani/internal/layout"
	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/money"
)

var (
	ErrForbidden     = errors.New("property does not belong to caller")
	ErrValidation    = errors.New("invalid property data")
	ErrFloorOccupied = errors.New("floor has occupied units")
)

var validCategories = map[string]bool{
	models.CategoryApartment: true,
	models.CategoryVilla:     true,
	models.CategoryRooms:     true,
	models.CategoryBungalow:  true,
}

var validFrequencies = map[string]bool{
	models.PayMonthly:   true,
	models.PayQuarterly: true,
	models.PayBiannual:  true,
	models.PayAnnual:    true,
	models.PayCustom:    true,
}

// Notifier receives domain events the notification service turns into
// in-app notifications. May be nil.
type Notifier interface {
	MaintenanceReported(ctx context.Context, ownerID string, m *models.UnitMaintenance)
}

// Service implements owner-scoped property management.
type Service struct {
	repos    *Repositories
	notifier Notifier
}

func NewService(repos *Repositories, notifier Notifier) *Service {
	return &Service{repos: repos, notifier: notifier}
}

// CreateProperty validates and stores a new property for the owner.
func (s *Service) CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	if p.OwnerID == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: owner and name required", ErrValidation)
	}
	if !validCategories[p.Category] {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, p.Category)
	}
	if p.TotalFloors < 1 {
		return nil, fmt.Errorf("%w: totalFloors must be at least 1", ErrValidation)
	}
	if len(p.Boundary) > 0 {
		if err := p.Boundary.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		p.TotalArea = p.Boundary.Area()
	}
	p.IsActive = true
	return s.repos.Properties.Create(ctx, p)
}

// GetProperty loads a property and verifies ownership.
func (s *Service) GetProperty(ctx context.Context, ownerID, id string) (*models.Property, error) {
	p, err := s.repos.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListProperties(ctx context.Context, ownerID string) ([]*models.Property, error) {
	return s.repos.Properties.ListByOwner(ctx, ownerID)
}

// UpdateProperty applies mutable fields. Ownership and category are fixed.
func (s *Service) UpdateProperty(ctx context.Context, ownerID string, p *models.Property) (*models.Property, error) {
	existing, err := s.GetProperty(ctx, ownerID, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Name != "" {
		existing.Name = p.Name
	}
	if p.Address != "" {
		existing.Address = p.Address
	}
	if p.Location != nil {
		existing.Location = p.Location
	}
	if p.TotalFloors >= 1 {
		existing.TotalFloors = p.TotalFloors
	}
	if len(p.Boundary) > 0 {
		if err := p.Boundary.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		existing.Boundary = p.Boundary
		existing.TotalArea = p.Boundary.Area()
	}
	if err := s.repos.Properties.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteProperty removes the property together with its floors and units.
func (s *Service) DeleteProperty(ctx context.Context, ownerID, id string) error {
	if _, err := s.GetProperty(ctx, ownerID, id); err != nil {
		return err
	}
	floors, err := s.repos.Floors.ListByProperty(ctx, id)
	if err != nil {
		return err
	}
	for _, f := range floors {
		if err := s.repos.Units.DeleteByFloor(ctx, f.ID); err != nil {
			return err
		}
	}
	if err := s.repos.Floors.DeleteByProperty(ctx, id); err != nil {
		return err
	}
	return s.repos.Properties.Delete(ctx, id)
}

// SetPropertyImage records the storage key of the uploaded cover image.
func (s *Service) SetPropertyImage(ctx context.Context, ownerID, id, key string) error {
	p, err := s.GetProperty(ctx, ownerID, id)
	if err != nil {
		return err
	}
	p.ImageKey = key
	return s.repos.Properties.Update(ctx, p)
}

// FloorInput describes a floor to create together with its units.
type FloorInput struct {
	FloorNumber      int
	TotalUnits       int
	LayoutType       string
	CreationMethod   string
	Boundary         geometry.Polygon
	DrawingData      json.RawMessage
	UnitTypeID       string
	RentAmount       money.Amount
	PaymentFrequency string
	MaxOccupants     int
}

// AddFloor creates a floor and its units according to the creation method.
func (s *Service) AddFloor(ctx context.Context, ownerID, propertyID string, in FloorInput) (*models.Floor, []*models.Unit, error) {
	p, err := s.GetProperty(ctx, ownerID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if in.FloorNumber < 0 {
		return nil, nil, fmt.Errorf("%w: floorNumber must not be negative", ErrValidation)
	}
	if !layout.ValidType(in.LayoutType) {
		return nil, nil, layout.ErrUnknownType
	}
	if !layout.ValidMethod(in.CreationMethod) {
		return nil, nil, fmt.Errorf("%w: unknown creation method %q", ErrValidation, in.CreationMethod)
	}
	if in.PaymentFrequency == "" {
		in.PaymentFrequency = models.PayMonthly
	}
	if !validFrequencies[in.PaymentFrequency] {
		return nil, nil, fmt.Errorf("%w: unknown payment frequency %q", ErrValidation, in.PaymentFrequency)
	}

	boundaries, err := s.unitBoundaries(ctx, p, in)
	if err != nil {
		return nil, nil, err
	}
	if in.TotalUnits <= 0 {
		in.TotalUnits = len(boundaries)
	}

	floor := &models.Floor{
		PropertyID:     propertyID,
		FloorNumber:    in.FloorNumber,
		TotalUnits:     len(boundaries),
		LayoutType:     in.LayoutType,
		CreationMethod: in.CreationMethod,
		LayoutData:     in.DrawingData,
	}
	for _, b := range boundaries {
		floor.Area += b.Area()
	}
	floor, err = s.repos.Floors.Create(ctx, floor)
	if err != nil {
		return nil, nil, err
	}

	units := buildUnits(p.ID, floor, boundaries, in)
	if err := s.repos.Units.CreateMany(ctx, units); err != nil {
		return nil, nil, err
	}
	return floor, units, nil
}

func (s *Service) unitBoundaries(ctx context.Context, p *models.Property, in FloorInput) ([]geometry.Polygon, error) {
	switch in.CreationMethod {
	case layout.MethodManual:
		return layout.ParseManualUnits(in.DrawingData)
	case layout.MethodTemplate:
		if in.UnitTypeID == "" {
			return nil, fmt.Errorf("%w: template method requires unitTypeId", ErrValidation)
		}
		ut, err := s.repos.UnitTypes.GetByID(ctx, in.UnitTypeID)
		if err != nil {
			return nil, err
		}
		if ut == nil || len(ut.DefaultLayout) == 0 {
			return nil, fmt.Errorf("%w: unit type has no default layout", ErrValidation)
		}
		return layout.ParseManualUnits(ut.DefaultLayout)
	default: // auto and upload go through the generator
		boundary := in.Boundary
		if len(boundary) == 0 {
			boundary = p.Boundary
		}
		if in.CreationMethod == layout.MethodUpload {
			return nil, layout.ErrUnsupportedMethod
		}
		return layout.Generate(in.LayoutType, boundary, in.TotalUnits)
	}
}

func buildUnits(propertyID string, floor *models.Floor, boundaries []geometry.Polygon, in FloorInput) []*models.Unit {
	maxOcc := in.MaxOccupants
	if maxOcc <= 0 {
		maxOcc = 1
	}
	units := make([]*models.Unit, 0, len(boundaries))
	for i, b := range boundaries {
		units = append(units, &models.Unit{
			FloorID:          floor.ID,
			PropertyID:       propertyID,
			UnitNumber:       fmt.Sprintf("%d-%02d", floor.FloorNumber, i+1),
			UnitTypeID:       in.UnitTypeID,
			Boundary:         b,
			Area:             b.Area(),
			RentAmount:       in.RentAmount,
			PaymentFrequency: in.PaymentFrequency,
			Status:           models.UnitAvailable,
			MaxOccupants:     maxOcc,
			IsActive:         true,
		})
	}
	return units
}

// ListFloors returns the floors of a property with ownership enforced.
func (s *Service) ListFloors(ctx context.Context, ownerID, propertyID string) ([]*models.Floor, error) {
	if _, err := s.GetProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	return s.repos.Floors.ListByProperty(ctx, propertyID)
}

// UpdateFloorLayout regenerates the floor's units, deleting the old ones.
// Refused while any unit on the floor is occupied.
func (s *Service) UpdateFloorLayout(ctx context.Context, ownerID, floorID string, in FloorInput) (*models.Floor, []*models.Unit, error) {
	floor, err := s.repos.Floors.GetByID(ctx, floorID)
	if err != nil {
		return nil, nil, err
	}
	if floor == nil {
		return nil, nil, ErrNotFound
	}
	p, err := s.GetProperty(ctx, ownerID, floor.PropertyID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.repos.Units.ListByFloor(ctx, floorID)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range existing {
		if u.Status == models.UnitOccupied {
			return nil, nil, ErrFloorOccupied
		}
	}

	in.FloorNumber = floor.FloorNumber
	if in.LayoutType == "" {
		in.LayoutType = floor.LayoutType
	}
	if !layout.ValidType(in.LayoutType) {
		return nil, nil, layout.ErrUnknownType
	}
	if in.CreationMethod == "" {
		in.CreationMethod = floor.CreationMethod
	}
	if !layout.ValidMethod(in.CreationMethod) {
		return nil, nil, fmt.Errorf("%w: unknown creation method %q", ErrValidation, in.CreationMethod)
	}
	if in.PaymentFrequency == "" {
		in.PaymentFrequency = models.PayMonthly
	}

	boundaries, err := s.unitBoundaries(ctx, p, in)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repos.Units.DeleteByFloor(ctx, floorID); err != nil {
		return nil, nil, err
	}

	floor.LayoutType = in.LayoutType
	floor.CreationMethod = in.CreationMethod
	floor.LayoutData = in.DrawingData
	floor.TotalUnits = len(boundaries)
	floor.Area = 0
	for _, b := range boundaries {
		floor.Area += b.Area()
	}
	if err := s.repos.Floors.Update(ctx, floor); err != nil {
		return nil, nil, err
	}

	units := buildUnits(p.ID, floor, boundaries, in)
	if err := s.repos.Units.CreateMany(ctx, units); err != nil {
		return nil, nil, err
	}
	return floor, units, nil
}

// GetUnit loads a unit and verifies the caller owns its property.
func (s *Service) GetUnit(ctx context.Context, ownerID, unitID string) (*models.Unit, error) {
	u, err := s.repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if _, err := s.GetProperty(ctx, ownerID, u.PropertyID); err != nil {
		return nil, err
	}
	return u, nil
}

// UnitUpdate carries the mutable unit fields.
type UnitUpdate struct {
	RentAmount       *money.Amount
	PaymentFrequency string
	Status           string
	UnitTypeID       string
	MaxOccupants     int
	Amenities        []string
}

func (s *Service) UpdateUnit(ctx context.Context, ownerID, unitID string, upd UnitUpdate) (*models.Unit, error) {
	u, err := s.GetUnit(ctx, ownerID, unitID)
	if err != nil {
		return nil, err
	}
	if upd.RentAmount != nil {
		u.RentAmount = *upd.RentAmount
	}
	if upd.PaymentFrequency != "" {
		if !validFrequencies[upd.PaymentFrequency] {
			return nil, fmt.Errorf("%w: unknown payment frequency %q", ErrValidation, upd.PaymentFrequency)
		}
		u.PaymentFrequency = upd.PaymentFrequency
	}
	if upd.Status != "" {
		switch upd.Status {
		case models.UnitAvailable, models.UnitOccupied, models.UnitUnderMaintenance, models.UnitReserved:
		default:
			return nil, fmt.Errorf("%w: unknown unit status %q", ErrValidation, upd.Status)
		}
		u.Status = upd.Status
	}
	if upd.UnitTypeID != "" {
		u.UnitTypeID = upd.UnitTypeID
	}
	if upd.MaxOccupants > 0 {
		u.MaxOccupants = upd.MaxOccupants
	}
	if upd.Amenities != nil {
		u.Amenities = upd.Amenities
	}
	if err := s.repos.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUnitTenant stamps (or clears, with "") the current tenant on a unit.
// Callers are expected to have checked ownership already.
func (s *Service) SetUnitTenant(ctx context.Context, unitID, tenantID string) error {
	u, err := s.repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	u.CurrentTenantID = tenantID
	return s.repos.Units.Update(ctx, u)
}

func (s *Service) ListUnits(ctx context.Context, ownerID, propertyID string) ([]*models.Unit, error) {
	if _, err := s.GetProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	return s.repos.Units.ListByProperty(ctx, propertyID)
}

// AddUtility attaches a utility record to a unit.
func (s *Service) AddUtility(ctx context.Context, ownerID string, u *models.UnitUtility) (*models.UnitUtility, error) {
	if _, err := s.GetUnit(ctx, ownerID, u.UnitID); err != nil {
		return nil, err
	}
	if u.CostAllocation != "landlord" && u.CostAllocation != "tenant" {
		return nil, fmt.Errorf("%w: costAllocation must be landlord or tenant", ErrValidation)
	}
	return s.repos.Utilities.Create(ctx, u)
}

func (s *Service) ListUtilities(ctx context.Context, ownerID, unitID string) ([]*models.UnitUtility, error) {
	if _, err := s.GetUnit(ctx, ownerID, unitID); err != nil {
		return nil, err
	}
	return s.repos.Utilities.ListByUnit(ctx, unitID)
}

// ReportMaintenance opens a maintenance issue on a unit and notifies the owner.
func (s *Service) ReportMaintenance(ctx context.Context, ownerID string, m *models.UnitMaintenance) (*models.UnitMaintenance, error) {
	u, err := s.GetUnit(ctx, ownerID, m.UnitID)
	if err != nil {
		return nil, err
	}
	switch m.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityEmergency:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, m.Priority)
	}
	if m.Description == "" {
		return nil, fmt.Errorf("%w: description required", ErrValidation)
	}
	m.PropertyID = u.PropertyID
	m.Status = models.MaintenancePending
	m, err = s.repos.Maintenance.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.MaintenanceReported(ctx, ownerID, m)
	}
	return m, nil
}

// MaintenanceUpdate carries the mutable maintenance fields.
type MaintenanceUpdate struct {
	Status          string
	AssignedTo      string
	EstimatedCost   *money.Amount
	ActualCost      *money.Amount
	ResolutionNotes string
}

func (s *Service) UpdateMaintenance(ctx context.Context, ownerID, id string, upd MaintenanceUpdate) (*models.UnitMaintenance, error) {
	m, err := s.repos.Maintenance.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if _, err := s.GetProperty(ctx, ownerID, m.PropertyID); err != nil {
		return nil, err
	}
	if upd.Status != "" {
		switch upd.Status {
		case models.MaintenancePending, models.MaintenanceInProgress, models.MaintenanceCompleted, models.MaintenanceCancelled:
		default:
			return nil, fmt.Errorf("%w: unknown maintenance status %q", ErrValidation, upd.Status)
		}
		m.Status = upd.Status
		if upd.Status == models.MaintenanceCompleted && m.CompletionDate == nil {
			now := time.Now().UTC()
			m.CompletionDate = &now
		}
	}
	if upd.AssignedTo != "" {
		m.AssignedTo = upd.AssignedTo
	}
	if upd.EstimatedCost != nil {
		m.EstimatedCost = upd.EstimatedCost
	}
	if upd.ActualCost != nil {
		m.ActualCost = upd.ActualCost
	}
	if upd.ResolutionNotes != "" {
		m.ResolutionNotes = upd.ResolutionNotes
	}
	if err := s.repos.Maintenance.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMaintenance(ctx context.Context, ownerID, propertyID string) ([]*models.UnitMaintenance, error) {
	if _, err := s.GetProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	return s.repos.Maintenance.ListByProperty(ctx, propertyID)
}

// Summary aggregates unit counts and the occupancy rate for a property.
func (s *Service) Summary(ctx context.Context, ownerID, propertyID string) (*models.PropertySummary, error) {
	if _, err := s.GetProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	floors, err := s.repos.Floors.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	units, err := s.repos.Units.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	sum := &models.PropertySummary{
		PropertyID:    propertyID,
		TotalFloors:   len(floors),
		TotalUnits:    len(units),
		UnitsByStatus: map[string]int{},
	}
	for _, u := range units {
		sum.UnitsByStatus[u.Status]++
	}
	if len(units) > 0 {
		sum.OccupancyRate = float64(sum.UnitsByStatus[models.UnitOccupied]) / float64(len(units))
	}
	return sum, nil
}

// UnitTypes are shared templates, not owner-scoped.
func (s *Service) CreateUnitType(ctx context.Context, t *models.UnitType) (*models.UnitType, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repos.UnitTypes.Create(ctx, t)
}

func (s *Service) ListUnitTypes(ctx context.Context) ([]*models.UnitType, error) {
	return s.repos.UnitTypes.List(ctx)
}
