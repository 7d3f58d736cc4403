package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/geometry"
	"github.com/wapangaji/kiganjani/internal/layout"
	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/money"
	"github.com/wapangaji/kiganjani/internal/property"
	"github.com/wapangaji/kiganjani/internal/storage"
	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/middleware"
)

const maxImageSize = 10 << 20 // 10 MiB

// PropertyHandler holds dependencies
type PropertyHandler struct {
	cfg     *config.Config
	svc     *property.Service
	storage *storage.MinIOStorage
}

func NewPropertyHandler(cfg *config.Config, svc *property.Service, st *storage.MinIOStorage) *PropertyHandler {
	return &PropertyHandler{cfg: cfg, svc: svc, storage: st}
}

// Register routes under /properties (all authenticated)
func (h *PropertyHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/properties", middleware.JWTAuth(h.cfg))
	p.POST("", h.Create)
	p.GET("", h.List)
	p.GET("/:id", h.Get)
	p.PUT("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
	p.POST("/:id/image", h.UploadImage)
	p.GET("/:id/image", h.ImageURL)
	p.GET("/:id/summary", h.Summary)
	p.POST("/:id/floors", h.AddFloor)
	p.GET("/:id/floors", h.ListFloors)
	p.GET("/:id/units", h.ListUnits)
	p.GET("/:id/maintenance", h.ListMaintenance)

	f := rg.Group("/floors", middleware.JWTAuth(h.cfg))
	f.PUT("/:id/layout", h.UpdateFloorLayout)

	u := rg.Group("/units", middleware.JWTAuth(h.cfg))
	u.GET("/:id", h.GetUnit)
	u.PATCH("/:id", h.UpdateUnit)
	u.POST("/:id/utilities", h.AddUtility)
	u.GET("/:id/utilities", h.ListUtilities)
	u.POST("/:id/maintenance", h.ReportMaintenance)

	m := rg.Group("/maintenance", middleware.JWTAuth(h.cfg))
	m.PATCH("/:id", h.UpdateMaintenance)

	t := rg.Group("/unit-types", middleware.JWTAuth(h.cfg))
	t.POST("", h.CreateUnitType)
	t.GET("", h.ListUnitTypes)
}

// propertyError maps service errors to HTTP responses.
func propertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, property.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, property.ErrValidation),
		errors.Is(err, property.ErrFloorOccupied),
		errors.Is(err, layout.ErrUnknownType),
		errors.Is(err, layout.ErrUnsupportedMethod),
		errors.Is(err, layout.ErrNoUnits),
		errors.Is(err, layout.ErrBadDrawing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("property operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type propertyRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	TotalFloors int              `json:"totalFloors"`
	Location    *models.Location `json:"location"`
	Address     string           `json:"address"`
	Boundary    geometry.Polygon `json:"boundary"`
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Property{
		OwnerID:     middleware.UserID(c),
		Name:        req.Name,
		Category:    req.Category,
		TotalFloors: req.TotalFloors,
		Location:    req.Location,
		Address:     req.Address,
		Boundary:    req.Boundary,
	}
	created, err := h.svc.CreateProperty(c.Request.Context(), p)
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PropertyHandler) List(c *gin.Context) {
	props, err := h.svc.ListProperties(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "count": len(props)})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.svc.GetProperty(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Property{
		ID:          c.Param("id"),
		Name:        req.Name,
		Category:    req.Category,
		TotalFloors: req.TotalFloors,
		Location:    req.Location,
		Address:     req.Address,
		Boundary:    req.Boundary,
	}
	updated, err := h.svc.UpdateProperty(c.Request.Context(), middleware.UserID(c), p)
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteProperty(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

// UploadImage stores the property photo in object storage and records its key.
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	id := c.Param("id")
	// ownership check before touching storage
	if _, err := h.svc.GetProperty(c.Request.Context(), middleware.UserID(c), id); err != nil {
		propertyError(c, err)
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	if fh.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()
	key := storage.PropertyImageKey(id)
	contentType := fh.Header.Get("Content-Type")
	if err := h.storage.UploadFile(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("image upload for property %s failed: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	if err := h.svc.SetPropertyImage(c.Request.Context(), middleware.UserID(c), id, key); err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageKey": key})
}

// ImageURL returns a short-lived presigned URL for the property photo.
func (h *PropertyHandler) ImageURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	p, err := h.svc.GetProperty(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	if p.ImageKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no image"})
		return
	}
	u, err := h.storage.GetPresignedURL(c.Request.Context(), p.ImageKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

func (h *PropertyHandler) Summary(c *gin.Context) {
	s, err := h.svc.Summary(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type floorRequest struct {
	FloorNumber      int              `json:"floorNumber"`
	TotalUnits       int              `json:"totalUnits"`
	LayoutType       string           `json:"layoutType" binding:"required"`
	CreationMethod   string           `json:"creationMethod" binding:"required"`
	Boundary         geometry.Polygon `json:"boundary"`
	DrawingData      json.RawMessage  `json:"drawingData"`
	UnitTypeID       string           `json:"unitTypeId"`
	RentAmount       money.Amount     `json:"rentAmount"`
	PaymentFrequency string           `json:"paymentFrequency"`
	MaxOccupants     int              `json:"maxOccupants"`
}

func (r floorRequest) input() property.FloorInput {
	return property.FloorInput{
		FloorNumber:      r.FloorNumber,
		TotalUnits:       r.TotalUnits,
		LayoutType:       r.LayoutType,
		CreationMethod:   r.CreationMethod,
		Boundary:         r.Boundary,
		DrawingData:      r.DrawingData,
		UnitTypeID:       r.UnitTypeID,
		RentAmount:       r.RentAmount,
		PaymentFrequency: r.PaymentFrequency,
		MaxOccupants:     r.MaxOccupants,
	}
}

// AddFloor creates a floor and generates its units.
func (h *PropertyHandler) AddFloor(c *gin.Context) {
	var req floorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	floor, units, err := h.svc.AddFloor(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.input())
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"floor": floor, "units": units})
}

func (h *PropertyHandler) ListFloors(c *gin.Context) {
	floors, err := h.svc.ListFloors(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"floors": floors, "count": len(floors)})
}

// UpdateFloorLayout regenerates the floor's units. Fails when any unit on the
// floor is occupied.
func (h *PropertyHandler) UpdateFloorLayout(c *gin.Context) {
	var req floorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	floor, units, err := h.svc.UpdateFloorLayout(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.input())
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"floor": floor, "units": units})
}

func (h *PropertyHandler) ListUnits(c *gin.Context) {
	units, err := h.svc.ListUnits(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units, "count": len(units)})
}

func (h *PropertyHandler) GetUnit(c *gin.Context) {
	u, err := h.svc.GetUnit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type unitUpdateRequest struct {
	RentAmount       *money.Amount `json:"rentAmount"`
	PaymentFrequency string        `json:"paymentFrequency"`
	Status           string        `json:"status"`
	UnitTypeID       string        `json:"unitTypeId"`
	MaxOccupants     int           `json:"maxOccupants"`
	Amenities        []string      `json:"amenities"`
}

func (h *PropertyHandler) UpdateUnit(c *gin.Context) {
	var req unitUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.UpdateUnit(c.Request.Context(), middleware.UserID(c), c.Param("id"), property.UnitUpdate{
		RentAmount:       req.RentAmount,
		PaymentFrequency: req.PaymentFrequency,
		Status:           req.Status,
		UnitTypeID:       req.UnitTypeID,
		MaxOccupants:     req.MaxOccupants,
		Amenities:        req.Amenities,
	})
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type utilityRequest struct {
	UtilityType    string `json:"utilityType" binding:"required"`
	IncludedInRent bool   `json:"includedInRent"`
	MeterNumber    string `json:"meterNumber"`
	CostAllocation string `json:"costAllocation" binding:"required"`
	Notes          string `json:"notes"`
}

func (h *PropertyHandler) AddUtility(c *gin.Context) {
	var req utilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.AddUtility(c.Request.Context(), middleware.UserID(c), &models.UnitUtility{
		UnitID:         c.Param("id"),
		UtilityType:    req.UtilityType,
		IncludedInRent: req.IncludedInRent,
		MeterNumber:    req.MeterNumber,
		CostAllocation: req.CostAllocation,
		Notes:          req.Notes,
	})
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *PropertyHandler) ListUtilities(c *gin.Context) {
	utils, err := h.svc.ListUtilities(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"utilities": utils, "count": len(utils)})
}

type maintenanceRequest struct {
	IssueType   string `json:"issueType" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
}

func (h *PropertyHandler) ReportMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.svc.ReportMaintenance(c.Request.Context(), middleware.UserID(c), &models.UnitMaintenance{
		UnitID:      c.Param("id"),
		IssueType:   req.IssueType,
		Description: req.Description,
		Priority:    req.Priority,
		ReportedBy:  middleware.UserID(c),
	})
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type maintenanceUpdateRequest struct {
	Status          string        `json:"status"`
	AssignedTo      string        `json:"assignedTo"`
	EstimatedCost   *money.Amount `json:"estimatedCost"`
	ActualCost      *money.Amount `json:"actualCost"`
	ResolutionNotes string        `json:"resolutionNotes"`
}

func (h *PropertyHandler) UpdateMaintenance(c *gin.Context) {
	var req maintenanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.svc.UpdateMaintenance(c.Request.Context(), middleware.UserID(c), c.Param("id"), property.MaintenanceUpdate{
		Status:          req.Status,
		AssignedTo:      req.AssignedTo,
		EstimatedCost:   req.EstimatedCost,
		ActualCost:      req.ActualCost,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *PropertyHandler) ListMaintenance(c *gin.Context) {
	items, err := h.svc.ListMaintenance(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": items, "count": len(items)})
}

type unitTypeRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	DefaultLayout json.RawMessage `json:"defaultLayout"`
}

func (h *PropertyHandler) CreateUnitType(c *gin.Context) {
	var req unitTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.CreateUnitType(c.Request.Context(), &models.UnitType{
		Name:          req.Name,
		Description:   req.Description,
		DefaultLayout: req.DefaultLayout,
	})
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *PropertyHandler) ListUnitTypes(c *gin.Context) {
	types, err := h.svc.ListUnitTypes(c.Request.Context())
	if err != nil {
		propertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unitTypes": types, "count": len(types)})
}
