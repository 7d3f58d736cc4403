package models

import (
	"time"

	"github.com/wapangaji/kiganjani/internal/geometry"
	"github.com/wapangaji/kiganjani/internal/money"
)

// Property categories.
const (
	CategoryApartment = "apartment"
	CategoryVilla     = "villa"
	CategoryRooms     = "rooms"
	CategoryBungalow  = "bungalow"
)

// Unit statuses.
const (
	UnitAvailable        = "available"
	UnitOccupied         = "occupied"
	UnitUnderMaintenance = "maintenance"
	UnitReserved         = "reserved"
)

// Payment frequencies.
const (
	PayMonthly   = "monthly"
	PayQuarterly = "quarterly"
	PayBiannual  = "biannual"
	PayAnnual    = "annual"
	PayCustom    = "custom"
)

// Maintenance priorities and statuses.
const (
	PriorityLow       = "low"
	PriorityMedium    = "medium"
	PriorityHigh      = "high"
	PriorityEmergency = "emergency"

	MaintenancePending    = "pending"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

// Location is a plain lng/lat pair. No projection handling: values are
// stored as supplied and only echoed back to clients.
type Location struct {
	Longitude float64 `bson:"longitude" json:"longitude"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
}

// Property is a building or compound owned by a user.
type Property struct {
	ID          string           `bson:"_id,omitempty" json:"id"`
	OwnerID     string           `bson:"ownerId" json:"ownerId"`
	Name        string           `bson:"name" json:"name"`
	Category    string           `bson:"category" json:"category"`
	TotalFloors int              `bson:"totalFloors" json:"totalFloors"`
	Location    *Location        `bson:"location,omitempty" json:"location,omitempty"`
	Address     string           `bson:"address" json:"address"`
	Boundary    geometry.Polygon `bson:"boundary,omitempty" json:"boundary,omitempty"`
	TotalArea   float64          `bson:"totalArea" json:"totalArea"`
	ImageKey    string           `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
	IsActive    bool             `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Floor groups the units of one storey of a property.
type Floor struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	PropertyID     string    `bson:"propertyId" json:"propertyId"`
	FloorNumber    int       `bson:"floorNumber" json:"floorNumber"`
	TotalUnits     int       `bson:"totalUnits" json:"totalUnits"`
	LayoutType     string    `bson:"layoutType" json:"layoutType"`
	CreationMethod string    `bson:"creationMethod" json:"creationMethod"`
	LayoutData     []byte    `bson:"layoutData,omitempty" json:"-"`
	Area           float64   `bson:"area" json:"area"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Unit is a rentable unit on a floor.
type Unit struct {
	ID               string           `bson:"_id,omitempty" json:"id"`
	FloorID          string           `bson:"floorId" json:"floorId"`
	PropertyID       string           `bson:"propertyId" json:"propertyId"`
	UnitNumber       string           `bson:"unitNumber" json:"unitNumber"`
	UnitTypeID       string           `bson:"unitTypeId,omitempty" json:"unitTypeId,omitempty"`
	Boundary         geometry.Polygon `bson:"boundary,omitempty" json:"boundary,omitempty"`
	Area             float64          `bson:"area" json:"area"`
	RentAmount       money.Amount     `bson:"rentAmount" json:"rentAmount"`
	PaymentFrequency string           `bson:"paymentFrequency" json:"paymentFrequency"`
	Status           string           `bson:"status" json:"status"`
	CurrentTenantID  string           `bson:"currentTenantId,omitempty" json:"currentTenantId,omitempty"`
	MaxOccupants     int              `bson:"maxOccupants" json:"maxOccupants"`
	Amenities        []string         `bson:"amenities,omitempty" json:"amenities,omitempty"`
	IsActive         bool             `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// UnitType names a reusable unit template (e.g. "1BR", "studio").
type UnitType struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	DefaultLayout []byte    `bson:"defaultLayout,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// UnitUtility records a utility attached to a unit and who pays for it.
type UnitUtility struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UnitID         string    `bson:"unitId" json:"unitId"`
	UtilityType    string    `bson:"utilityType" json:"utilityType"`
	IncludedInRent bool      `bson:"includedInRent" json:"includedInRent"`
	MeterNumber    string    `bson:"meterNumber,omitempty" json:"meterNumber,omitempty"`
	CostAllocation string    `bson:"costAllocation" json:"costAllocation"` // landlord | tenant
	Notes          string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// UnitMaintenance tracks a maintenance issue on a unit.
type UnitMaintenance struct {
	ID              string        `bson:"_id,omitempty" json:"id"`
	UnitID          string        `bson:"unitId" json:"unitId"`
	PropertyID      string        `bson:"propertyId" json:"propertyId"`
	IssueType       string        `bson:"issueType" json:"issueType"`
	Description     string        `bson:"description" json:"description"`
	ReportedBy      string        `bson:"reportedBy" json:"reportedBy"`
	Priority        string        `bson:"priority" json:"priority"`
	Status          string        `bson:"status" json:"status"`
	AssignedTo      string        `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	EstimatedCost   *money.Amount `bson:"estimatedCost,omitempty" json:"estimatedCost,omitempty"`
	ActualCost      *money.Amount `bson:"actualCost,omitempty" json:"actualCost,omitempty"`
	CompletionDate  *time.Time    `bson:"completionDate,omitempty" json:"completionDate,omitempty"`
	ResolutionNotes string        `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PropertySummary aggregates unit counts for a property.
type PropertySummary struct {
	PropertyID    string         `json:"propertyId"`
	TotalFloors   int            `json:"totalFloors"`
	TotalUnits    int            `json:"totalUnits"`
	UnitsByStatus map[string]int `json:"unitsByStatus"`
	OccupancyRate float64        `json:"occupancyRate"`
}
