package models

import (
	"time"

	"github.com/wapangaji/kiganjani/internal/money"
)

// Tenant statuses.
const (
	TenantActive      = "active"
	TenantPending     = "pending"
	TenantFormer      = "former"
	TenantBlacklisted = "blacklisted"
)

// Identification document types.
const (
	IDNida           = "nida"
	IDVoter          = "voter"
	IDPassport       = "passport"
	IDDrivingLicense = "driving_license"
)

// Occupancy statuses.
const (
	OccupancyActive     = "active"
	OccupancyPending    = "pending"
	OccupancyEnded      = "ended"
	OccupancyTerminated = "terminated"
)

// Tenant document types.
const (
	DocContract   = "contract"
	DocID         = "id"
	DocEmployment = "employment"
	DocReference  = "reference"
	DocInspection = "inspection"
	DocNotice     = "notice"
	DocOther      = "other"
)

// EmergencyContact is the person to reach when the tenant cannot be.
type EmergencyContact struct {
	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
}

// Tenant is a person renting (or applying to rent) a unit. Records are
// soft-deleted: deactivation clears IsActive and stamps DeactivatedAt.
type Tenant struct {
	ID                string           `bson:"_id,omitempty" json:"id"`
	OwnerID           string           `bson:"ownerId" json:"ownerId"`
	FullName          string           `bson:"fullName" json:"fullName"`
	PhoneNumber       string           `bson:"phoneNumber" json:"phoneNumber"`
	AltPhoneNumber    string           `bson:"altPhoneNumber,omitempty" json:"altPhoneNumber,omitempty"`
	Email             string           `bson:"email,omitempty" json:"email,omitempty"`
	DateOfBirth       *time.Time       `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	IDType            string           `bson:"idType,omitempty" json:"idType,omitempty"`
	IDNumber          string           `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
	IDImageKey        string           `bson:"idImageKey,omitempty" json:"idImageKey,omitempty"`
	ProfileImageKey   string           `bson:"profileImageKey,omitempty" json:"profileImageKey,omitempty"`
	Emergency         EmergencyContact `bson:"emergency,omitempty" json:"emergency,omitempty"`
	Occupation        string           `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Employer          string           `bson:"employer,omitempty" json:"employer,omitempty"`
	Status            string           `bson:"status" json:"status"`
	Language          string           `bson:"language,omitempty" json:"language,omitempty"`
	PreferredContact  string           `bson:"preferredContact,omitempty" json:"preferredContact,omitempty"` // sms | email | call
	IsActive          bool             `bson:"isActive" json:"isActive"`
	DeactivatedAt     *time.Time       `bson:"deactivatedAt,omitempty" json:"deactivatedAt,omitempty"`
	DeactivatedReason string           `bson:"deactivatedReason,omitempty" json:"deactivatedReason,omitempty"`
	CreatedAt         time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// TenantOccupancy is the tenancy agreement binding a tenant to a unit.
type TenantOccupancy struct {
	ID                  string        `bson:"_id,omitempty" json:"id"`
	TenantID            string        `bson:"tenantId" json:"tenantId"`
	UnitID              string        `bson:"unitId" json:"unitId"`
	PropertyID          string        `bson:"propertyId" json:"propertyId"`
	StartDate           time.Time     `bson:"startDate" json:"startDate"`
	EndDate             *time.Time    `bson:"endDate,omitempty" json:"endDate,omitempty"`
	RentAmount          money.Amount  `bson:"rentAmount" json:"rentAmount"`
	DepositAmount       money.Amount  `bson:"depositAmount" json:"depositAmount"`
	KeyDeposit          money.Amount  `bson:"keyDeposit" json:"keyDeposit"`
	UtilitiesIncluded   bool          `bson:"utilitiesIncluded" json:"utilitiesIncluded"`
	PaymentFrequency    string        `bson:"paymentFrequency" json:"paymentFrequency"`
	PaymentDay          int           `bson:"paymentDay" json:"paymentDay"` // 1-31
	GracePeriodDays     int           `bson:"gracePeriodDays" json:"gracePeriodDays"`
	LateFeeAmount       money.Amount  `bson:"lateFeeAmount" json:"lateFeeAmount"`
	LastPaymentDate     *time.Time    `bson:"lastPaymentDate,omitempty" json:"lastPaymentDate,omitempty"`
	ContractKey         string        `bson:"contractKey,omitempty" json:"contractKey,omitempty"`
	MoveInChecklist     []string      `bson:"moveInChecklist,omitempty" json:"moveInChecklist,omitempty"`
	MoveOutChecklist    []string      `bson:"moveOutChecklist,omitempty" json:"moveOutChecklist,omitempty"`
	Status              string        `bson:"status" json:"status"`
	MoveOutDate         *time.Time    `bson:"moveOutDate,omitempty" json:"moveOutDate,omitempty"`
	MoveOutReason       string        `bson:"moveOutReason,omitempty" json:"moveOutReason,omitempty"`
	DepositRefundAmount *money.Amount `bson:"depositRefundAmount,omitempty" json:"depositRefundAmount,omitempty"`
	DepositRefundDate   *time.Time    `bson:"depositRefundDate,omitempty" json:"depositRefundDate,omitempty"`
	AllowedOccupants    int           `bson:"allowedOccupants" json:"allowedOccupants"`
	ActualOccupants     int           `bson:"actualOccupants" json:"actualOccupants"`
	SpecialConditions   string        `bson:"specialConditions,omitempty" json:"specialConditions,omitempty"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// TenantDocument is a stored file attached to a tenant or occupancy.
type TenantDocument struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	TenantID    string     `bson:"tenantId" json:"tenantId"`
	OccupancyID string     `bson:"occupancyId,omitempty" json:"occupancyId,omitempty"`
	DocType     string     `bson:"docType" json:"docType"`
	Title       string     `bson:"title" json:"title"`
	ObjectKey   string     `bson:"objectKey" json:"objectKey"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Verified    bool       `bson:"verified" json:"verified"`
	VerifiedBy  string     `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// TenantNote is free-form commentary on a tenant. Private notes are only
// returned to their author.
type TenantNote struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	TenantID    string    `bson:"tenantId" json:"tenantId"`
	OccupancyID string    `bson:"occupancyId,omitempty" json:"occupancyId,omitempty"`
	NoteType    string    `bson:"noteType,omitempty" json:"noteType,omitempty"`
	Title       string    `bson:"title,omitempty" json:"title,omitempty"`
	Content     string    `bson:"content" json:"content"`
	IsPrivate   bool      `bson:"isPrivate" json:"isPrivate"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
