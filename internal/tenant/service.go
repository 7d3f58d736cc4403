package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/money"
	"github.com/wapangaji/kiganjani/internal/phone"
	"github.com/wapangaji/kiganjani/internal/property"
	"github.com/wapangaji/kiganjani/internal/sms"
	"github.com/wapangaji/kiganjani/pkg/logger"
)

var (
	ErrPhoneTaken   = errors.New("phone number already registered to a tenant")
	ErrUnitOccupied = errors.New("unit already has an active occupancy")
	ErrValidation   = errors.New("invalid tenant data")
	ErrNoOccupancy  = errors.New("tenant has no active occupancy")
)

// Messenger is the slice of the SMS service the tenant flows need.
type Messenger interface {
	Send(ctx context.Context, kind, phoneNumber, message string) error
	SendTemplate(ctx context.Context, kind, phoneNumber, templateID string, tctx map[string]string) error
	Templates() sms.TemplateRepository
}

// Notifier receives occupancy events for in-app notifications. May be nil.
type Notifier interface {
	TenantAssigned(ctx context.Context, ownerID string, o *models.TenantOccupancy, tenantName, unitNumber string)
	TenantVacated(ctx context.Context, ownerID string, o *models.TenantOccupancy, tenantName, unitNumber string)
}

// Service implements the tenant and occupancy lifecycle.
type Service struct {
	repos    *Repositories
	props    *property.Service
	sms      Messenger
	notifier Notifier
}

func NewService(repos *Repositories, props *property.Service, messenger Messenger, notifier Notifier) *Service {
	return &Service{repos: repos, props: props, sms: messenger, notifier: notifier}
}

// CreateTenant validates, normalizes the phone number and stores the tenant.
// The record is stamped with the creating landlord and stays visible to them
// only.
func (s *Service) CreateTenant(ctx context.Context, ownerID string, t *models.Tenant) (*models.Tenant, error) {
	if t.FullName == "" {
		return nil, fmt.Errorf("%w: fullName required", ErrValidation)
	}
	t.OwnerID = ownerID
	normalized, err := phone.Normalize(t.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	t.PhoneNumber = normalized
	if t.AltPhoneNumber != "" {
		alt, err := phone.Normalize(t.AltPhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		t.AltPhoneNumber = alt
	}
	if t.IDType != "" {
		switch t.IDType {
		case models.IDNida, models.IDVoter, models.IDPassport, models.IDDrivingLicense:
		default:
			return nil, fmt.Errorf("%w: unknown id type %q", ErrValidation, t.IDType)
		}
	}
	existing, err := s.repos.Tenants.GetByPhone(ctx, t.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}
	if t.Status == "" {
		t.Status = models.TenantPending
	}
	if t.Language == "" {
		t.Language = "sw"
	}
	if t.PreferredContact == "" {
		t.PreferredContact = "sms"
	}
	t.IsActive = true
	return s.repos.Tenants.Create(ctx, t)
}

// GetTenant loads a tenant. Records belonging to another landlord are
// reported as absent rather than forbidden so their existence does not leak.
func (s *Service) GetTenant(ctx context.Context, ownerID, id string) (*models.Tenant, error) {
	t, err := s.repos.Tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return t, nil
}

// UpdateTenant applies mutable fields. Phone changes are re-normalized and
// checked for uniqueness.
func (s *Service) UpdateTenant(ctx context.Context, ownerID string, t *models.Tenant) (*models.Tenant, error) {
	existing, err := s.GetTenant(ctx, ownerID, t.ID)
	if err != nil {
		return nil, err
	}
	if t.PhoneNumber != "" && t.PhoneNumber != existing.PhoneNumber {
		normalized, err := phone.Normalize(t.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if normalized != existing.PhoneNumber {
			other, err := s.repos.Tenants.GetByPhone(ctx, normalized)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != existing.ID {
				return nil, ErrPhoneTaken
			}
		}
		existing.PhoneNumber = normalized
	}
	if t.FullName != "" {
		existing.FullName = t.FullName
	}
	if t.Email != "" {
		existing.Email = t.Email
	}
	if t.Occupation != "" {
		existing.Occupation = t.Occupation
	}
	if t.Employer != "" {
		existing.Employer = t.Employer
	}
	if t.Emergency.Name != "" || t.Emergency.Phone != "" {
		existing.Emergency = t.Emergency
	}
	if t.Language != "" {
		existing.Language = t.Language
	}
	if t.PreferredContact != "" {
		existing.PreferredContact = t.PreferredContact
	}
	if t.Status != "" {
		switch t.Status {
		case models.TenantActive, models.TenantPending, models.TenantFormer, models.TenantBlacklisted:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
		}
		existing.Status = t.Status
	}
	if err := s.repos.Tenants.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeactivateTenant soft-deletes the tenant. Refused while an active
// occupancy exists.
func (s *Service) DeactivateTenant(ctx context.Context, ownerID, id, reason string) error {
	t, err := s.GetTenant(ctx, ownerID, id)
	if err != nil {
		return err
	}
	occs, err := s.repos.Occupancies.ListByTenant(ctx, id)
	if err != nil {
		return err
	}
	for _, o := range occs {
		if o.Status == models.OccupancyActive {
			return fmt.Errorf("%w: vacate the tenant first", ErrValidation)
		}
	}
	now := time.Now().UTC()
	t.IsActive = false
	t.DeactivatedAt = &now
	t.DeactivatedReason = reason
	return s.repos.Tenants.Update(ctx, t)
}

// ListTenants pages the landlord's own tenants. A property filter is
// resolved through the occupancies of that property (ownership checked).
func (s *Service) ListTenants(ctx context.Context, ownerID, propertyID string, f ListFilter) ([]*models.Tenant, int64, error) {
	f.OwnerID = ownerID
	if propertyID != "" {
		if _, err := s.props.GetProperty(ctx, ownerID, propertyID); err != nil {
			return nil, 0, err
		}
		occs, err := s.repos.Occupancies.ListByProperty(ctx, propertyID)
		if err != nil {
			return nil, 0, err
		}
		ids := make([]string, 0, len(occs))
		seen := map[string]bool{}
		for _, o := range occs {
			if !seen[o.TenantID] {
				seen[o.TenantID] = true
				ids = append(ids, o.TenantID)
			}
		}
		f.TenantIDs = ids
	}
	return s.repos.Tenants.List(ctx, f)
}

// AssignInput describes a unit assignment. Exactly one of TenantID or
// NewTenant must be set.
type AssignInput struct {
	TenantID          string
	NewTenant         *models.Tenant
	UnitID            string
	StartDate         time.Time
	RentAmount        *money.Amount
	DepositAmount     money.Amount
	KeyDeposit        money.Amount
	UtilitiesIncluded bool
	PaymentFrequency  string
	PaymentDay        int
	GracePeriodDays   int
	LateFeeAmount     money.Amount
	AllowedOccupants  int
	ActualOccupants   int
	SpecialConditions string
}

// Assign moves a tenant into a unit: creates the occupancy, marks the unit
// occupied and sends the welcome SMS.
func (s *Service) Assign(ctx context.Context, ownerID string, in AssignInput) (*models.TenantOccupancy, error) {
	unit, err := s.props.GetUnit(ctx, ownerID, in.UnitID)
	if err != nil {
		return nil, err
	}
	if unit.Status == models.UnitOccupied {
		return nil, ErrUnitOccupied
	}
	if active, err := s.repos.Occupancies.GetActiveByUnit(ctx, in.UnitID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, ErrUnitOccupied
	}

	var t *models.Tenant
	switch {
	case in.TenantID != "":
		t, err = s.GetTenant(ctx, ownerID, in.TenantID)
		if err != nil {
			return nil, err
		}
	case in.NewTenant != nil:
		t, err = s.CreateTenant(ctx, ownerID, in.NewTenant)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: tenantId or tenant payload required", ErrValidation)
	}

	if in.PaymentDay < 0 || in.PaymentDay > 31 {
		return nil, fmt.Errorf("%w: paymentDay must be 1-31", ErrValidation)
	}
	if in.PaymentDay == 0 {
		in.PaymentDay = 1
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now().UTC()
	}
	rent := unit.RentAmount
	if in.RentAmount != nil {
		rent = *in.RentAmount
	}
	freq := unit.PaymentFrequency
	if in.PaymentFrequency != "" {
		freq = in.PaymentFrequency
	}
	allowed := in.AllowedOccupants
	if allowed <= 0 {
		allowed = unit.MaxOccupants
	}

	o := &models.TenantOccupancy{
		TenantID:          t.ID,
		UnitID:            unit.ID,
		PropertyID:        unit.PropertyID,
		StartDate:         in.StartDate,
		RentAmount:        rent,
		DepositAmount:     in.DepositAmount,
		KeyDeposit:        in.KeyDeposit,
		UtilitiesIncluded: in.UtilitiesIncluded,
		PaymentFrequency:  freq,
		PaymentDay:        in.PaymentDay,
		GracePeriodDays:   in.GracePeriodDays,
		LateFeeAmount:     in.LateFeeAmount,
		Status:            models.OccupancyActive,
		AllowedOccupants:  allowed,
		ActualOccupants:   in.ActualOccupants,
		SpecialConditions: in.SpecialConditions,
	}
	o, err = s.repos.Occupancies.Create(ctx, o)
	if err != nil {
		return nil, err
	}

	if _, err := s.props.UpdateUnit(ctx, ownerID, unit.ID, property.UnitUpdate{Status: models.UnitOccupied}); err != nil {
		return nil, err
	}
	if err := s.props.SetUnitTenant(ctx, unit.ID, t.ID); err != nil {
		return nil, err
	}

	if t.Status != models.TenantActive {
		t.Status = models.TenantActive
		if err := s.repos.Tenants.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	if s.sms != nil {
		msg := fmt.Sprintf("Karibu %s! Umepangishwa chumba %s. Kodi: TZS %s kila %s.",
			t.FullName, unit.UnitNumber, rent.String(), freqLabel(freq))
		if err := s.sms.Send(ctx, "welcome", t.PhoneNumber, msg); err != nil {
			logger.Warnf("tenant: welcome sms to %s failed: %v", t.PhoneNumber, err)
		}
	}
	if s.notifier != nil {
		s.notifier.TenantAssigned(ctx, ownerID, o, t.FullName, unit.UnitNumber)
	}
	return o, nil
}

func freqLabel(freq string) string {
	switch freq {
	case models.PayMonthly:
		return "mwezi"
	case models.PayQuarterly:
		return "miezi mitatu"
	case models.PayBiannual:
		return "miezi sita"
	case models.PayAnnual:
		return "mwaka"
	default:
		return freq
	}
}

// VacateInput describes a move-out.
type VacateInput struct {
	MoveOutDate         time.Time
	Reason              string
	DepositRefundAmount *money.Amount
	MoveOutChecklist    []string
}

// Vacate ends the occupancy, frees the unit and sends the confirmation SMS.
func (s *Service) Vacate(ctx context.Context, ownerID, occupancyID string, in VacateInput) (*models.TenantOccupancy, error) {
	o, err := s.repos.Occupancies.GetByID(ctx, occupancyID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if _, err := s.props.GetProperty(ctx, ownerID, o.PropertyID); err != nil {
		return nil, err
	}
	if o.Status != models.OccupancyActive {
		return nil, fmt.Errorf("%w: occupancy is not active", ErrValidation)
	}

	if in.MoveOutDate.IsZero() {
		in.MoveOutDate = time.Now().UTC()
	}
	o.Status = models.OccupancyEnded
	o.MoveOutDate = &in.MoveOutDate
	o.EndDate = &in.MoveOutDate
	o.MoveOutReason = in.Reason
	o.MoveOutChecklist = in.MoveOutChecklist
	if in.DepositRefundAmount != nil {
		now := time.Now().UTC()
		o.DepositRefundAmount = in.DepositRefundAmount
		o.DepositRefundDate = &now
	}
	if err := s.repos.Occupancies.Update(ctx, o); err != nil {
		return nil, err
	}

	unit, err := s.props.GetUnit(ctx, ownerID, o.UnitID)
	if err != nil {
		return nil, err
	}
	if _, err := s.props.UpdateUnit(ctx, ownerID, o.UnitID, property.UnitUpdate{Status: models.UnitAvailable}); err != nil {
		return nil, err
	}
	if err := s.props.SetUnitTenant(ctx, o.UnitID, ""); err != nil {
		return nil, err
	}

	t, err := s.GetTenant(ctx, ownerID, o.TenantID)
	if err != nil {
		return nil, err
	}

	// Tenant becomes former unless another occupancy is still active.
	occs, err := s.repos.Occupancies.ListByTenant(ctx, o.TenantID)
	if err != nil {
		return nil, err
	}
	stillActive := false
	for _, other := range occs {
		if other.Status == models.OccupancyActive {
			stillActive = true
			break
		}
	}
	if !stillActive && t.Status == models.TenantActive {
		t.Status = models.TenantFormer
		if err := s.repos.Tenants.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	note := &models.TenantNote{
		TenantID:    t.ID,
		OccupancyID: o.ID,
		NoteType:    "vacation",
		Title:       "Moved out",
		Content:     fmt.Sprintf("Vacated unit %s on %s. Reason: %s", unit.UnitNumber, in.MoveOutDate.Format("2006-01-02"), in.Reason),
		CreatedBy:   ownerID,
	}
	if _, err := s.repos.Notes.Create(ctx, note); err != nil {
		logger.Warnf("tenant: vacation note for %s failed: %v", t.ID, err)
	}

	if s.sms != nil {
		msg := fmt.Sprintf("Habari %s, kuondoka kwako chumba %s kumethibitishwa tarehe %s. Asante.",
			t.FullName, unit.UnitNumber, in.MoveOutDate.Format("02/01/2006"))
		if err := s.sms.Send(ctx, "vacate", t.PhoneNumber, msg); err != nil {
			logger.Warnf("tenant: vacate sms to %s failed: %v", t.PhoneNumber, err)
		}
	}
	if s.notifier != nil {
		s.notifier.TenantVacated(ctx, ownerID, o, t.FullName, unit.UnitNumber)
	}
	return o, nil
}

// OccupancyHistory returns every occupancy of the tenant, newest first.
func (s *Service) OccupancyHistory(ctx context.Context, ownerID, tenantID string) ([]*models.TenantOccupancy, error) {
	if _, err := s.GetTenant(ctx, ownerID, tenantID); err != nil {
		return nil, err
	}
	return s.repos.Occupancies.ListByTenant(ctx, tenantID)
}

// AddNote stores a note on the tenant.
func (s *Service) AddNote(ctx context.Context, ownerID string, n *models.TenantNote) (*models.TenantNote, error) {
	if n.Content == "" {
		return nil, fmt.Errorf("%w: content required", ErrValidation)
	}
	if _, err := s.GetTenant(ctx, ownerID, n.TenantID); err != nil {
		return nil, err
	}
	return s.repos.Notes.Create(ctx, n)
}

// ListNotes returns the tenant's notes. Private notes are filtered out
// unless the caller wrote them.
func (s *Service) ListNotes(ctx context.Context, ownerID, tenantID string) ([]*models.TenantNote, error) {
	if _, err := s.GetTenant(ctx, ownerID, tenantID); err != nil {
		return nil, err
	}
	notes, err := s.repos.Notes.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := notes[:0]
	for _, n := range notes {
		if n.IsPrivate && n.CreatedBy != ownerID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// SetIDImage records the storage key of the tenant's identification scan.
func (s *Service) SetIDImage(ctx context.Context, ownerID, id, key string) error {
	t, err := s.GetTenant(ctx, ownerID, id)
	if err != nil {
		return err
	}
	t.IDImageKey = key
	return s.repos.Tenants.Update(ctx, t)
}

// SetProfileImage records the storage key of the tenant's profile photo.
func (s *Service) SetProfileImage(ctx context.Context, ownerID, id, key string) error {
	t, err := s.GetTenant(ctx, ownerID, id)
	if err != nil {
		return err
	}
	t.ProfileImageKey = key
	return s.repos.Tenants.Update(ctx, t)
}

// RecordDocument stores the metadata of an uploaded tenant document.
func (s *Service) RecordDocument(ctx context.Context, ownerID string, d *models.TenantDocument) (*models.TenantDocument, error) {
	if d.Title == "" || d.ObjectKey == "" {
		return nil, fmt.Errorf("%w: title and objectKey required", ErrValidation)
	}
	switch d.DocType {
	case models.DocContract, models.DocID, models.DocEmployment, models.DocReference,
		models.DocInspection, models.DocNotice, models.DocOther:
	default:
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidation, d.DocType)
	}
	if _, err := s.GetTenant(ctx, ownerID, d.TenantID); err != nil {
		return nil, err
	}
	return s.repos.Documents.Create(ctx, d)
}

func (s *Service) ListDocuments(ctx context.Context, ownerID, tenantID string) ([]*models.TenantDocument, error) {
	if _, err := s.GetTenant(ctx, ownerID, tenantID); err != nil {
		return nil, err
	}
	return s.repos.Documents.ListByTenant(ctx, tenantID)
}

func (s *Service) GetDocument(ctx context.Context, ownerID, id string) (*models.TenantDocument, error) {
	d, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if _, err := s.GetTenant(ctx, ownerID, d.TenantID); err != nil {
		return nil, err
	}
	return d, nil
}

// NextPaymentDate computes when the next rent falls due: the start date if
// nothing was paid yet, otherwise the last payment plus one period. Nil for
// custom frequencies and non-active occupancies.
func NextPaymentDate(o *models.TenantOccupancy) *time.Time {
	if o == nil || o.Status != models.OccupancyActive {
		return nil
	}
	var days int
	switch o.PaymentFrequency {
	case models.PayMonthly:
		days = 30
	case models.PayQuarterly:
		days = 90
	case models.PayBiannual:
		days = 180
	case models.PayAnnual:
		days = 365
	default:
		return nil
	}
	if o.LastPaymentDate == nil {
		d := o.StartDate
		return &d
	}
	d := o.LastPaymentDate.AddDate(0, 0, days)
	return &d
}

// ReminderInput selects what to send: a custom message, or a stored
// template rendered with the occupancy context.
type ReminderInput struct {
	OccupancyID string
	TemplateID  string
	Message     string
}

// SendReminder delivers a rent reminder to the tenant. The owner check on
// the tenant record happens before anything is sent.
func (s *Service) SendReminder(ctx context.Context, ownerID, tenantID string, in ReminderInput) error {
	t, err := s.GetTenant(ctx, ownerID, tenantID)
	if err != nil {
		return err
	}
	if s.sms == nil {
		return sms.ErrGatewayUnavailable
	}
	if in.Message != "" {
		return s.sms.Send(ctx, "reminder", t.PhoneNumber, in.Message)
	}

	var o *models.TenantOccupancy
	if in.OccupancyID != "" {
		o, err = s.repos.Occupancies.GetByID(ctx, in.OccupancyID)
		if err != nil {
			return err
		}
	} else {
		occs, err := s.repos.Occupancies.ListByTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, cand := range occs {
			if cand.Status == models.OccupancyActive {
				o = cand
				break
			}
		}
	}
	if o == nil || o.Status != models.OccupancyActive {
		return ErrNoOccupancy
	}
	if _, err := s.props.GetProperty(ctx, ownerID, o.PropertyID); err != nil {
		return err
	}

	unit, err := s.props.GetUnit(ctx, ownerID, o.UnitID)
	if err != nil {
		return err
	}

	due := ""
	if d := NextPaymentDate(o); d != nil {
		due = d.Format("02/01/2006")
	}
	tctx := map[string]string{
		"tenant_name": t.FullName,
		"amount":      o.RentAmount.String(),
		"due_date":    due,
		"unit_number": unit.UnitNumber,
	}

	templateID := in.TemplateID
	if templateID == "" {
		tpls, err := s.sms.Templates().List(ctx)
		if err != nil {
			return err
		}
		for _, tpl := range tpls {
			if tpl.Type == sms.TemplateRentReminder && tpl.IsActive {
				templateID = tpl.ID
				break
			}
		}
	}
	if templateID == "" {
		msg := fmt.Sprintf("Habari %s, kodi ya chumba %s (TZS %s) inatakiwa kulipwa ifikapo %s.",
			t.FullName, unit.UnitNumber, o.RentAmount.String(), due)
		return s.sms.Send(ctx, "reminder", t.PhoneNumber, msg)
	}
	return s.sms.SendTemplate(ctx, "reminder", t.PhoneNumber, templateID, tctx)
}

// SetContract records the storage key of the signed contract.
func (s *Service) SetContract(ctx context.Context, ownerID, occupancyID, key string) error {
	o, err := s.repos.Occupancies.GetByID(ctx, occupancyID)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrNotFound
	}
	if _, err := s.props.GetProperty(ctx, ownerID, o.PropertyID); err != nil {
		return err
	}
	o.ContractKey = key
	return s.repos.Occupancies.Update(ctx, o)
}

// GetOccupancy loads an occupancy with ownership enforced.
func (s *Service) GetOccupancy(ctx context.Context, ownerID, id string) (*models.TenantOccupancy, error) {
	o, err := s.repos.Occupancies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if _, err := s.props.GetProperty(ctx, ownerID, o.PropertyID); err != nil {
		return nil, err
	}
	return o, nil
}
