package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/money"
	"github.com/wapangaji/kiganjani/internal/property"
	"github.com/wapangaji/kiganjani/internal/sms"
	"github.com/wapangaji/kiganjani/internal/storage"
	"github.com/wapangaji/kiganjani/internal/tenant"
	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/middleware"
)

const maxDocumentSize = 20 << 20 // 20 MiB

// TenantHandler holds dependencies
type TenantHandler struct {
	cfg     *config.Config
	svc     *tenant.Service
	storage *storage.MinIOStorage
}

func NewTenantHandler(cfg *config.Config, svc *tenant.Service, st *storage.MinIOStorage) *TenantHandler {
	return &TenantHandler{cfg: cfg, svc: svc, storage: st}
}

// Register routes under /tenants and /occupancies (all authenticated)
func (h *TenantHandler) Register(rg *gin.RouterGroup) {
	t := rg.Group("/tenants", middleware.JWTAuth(h.cfg))
	t.GET("", h.List)
	t.POST("", h.Create)
	t.GET("/:id", h.Get)
	t.PATCH("/:id", h.Update)
	t.DELETE("/:id", h.Deactivate)
	t.POST("/assign", h.Assign)
	t.GET("/:id/occupancies", h.OccupancyHistory)
	t.GET("/:id/notes", h.ListNotes)
	t.POST("/:id/notes", h.AddNote)
	t.GET("/:id/documents", h.ListDocuments)
	t.POST("/:id/documents", h.UploadDocument)
	t.POST("/:id/id-image", h.UploadIDImage)
	t.POST("/:id/profile-image", h.UploadProfileImage)
	t.POST("/:id/send-reminder", h.SendReminder)

	o := rg.Group("/occupancies", middleware.JWTAuth(h.cfg))
	o.GET("/:id", h.GetOccupancy)
	o.POST("/:id/vacate", h.Vacate)
	o.POST("/:id/contract", h.UploadContract)
	o.GET("/:id/contract", h.ContractURL)

	d := rg.Group("/tenant-documents", middleware.JWTAuth(h.cfg))
	d.GET("/:id/url", h.DocumentURL)
}

// tenantError maps service errors to HTTP responses.
func tenantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tenant.ErrNotFound), errors.Is(err, property.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, property.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, tenant.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "phone number already registered to a tenant"})
	case errors.Is(err, tenant.ErrUnitOccupied):
		c.JSON(http.StatusConflict, gin.H{"error": "unit already occupied"})
	case errors.Is(err, tenant.ErrValidation), errors.Is(err, property.ErrValidation),
		errors.Is(err, tenant.ErrNoOccupancy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sms.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sms gateway not configured"})
	default:
		logger.Errorf("tenant operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// List pages tenants with optional search/status/property filters.
func (h *TenantHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	f := tenant.ListFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("ordering"),
	}
	tenants, total, err := h.svc.ListTenants(c.Request.Context(), middleware.UserID(c), c.Query("property"), f)
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants, "total": total})
}

type tenantRequest struct {
	FullName         string                  `json:"fullName"`
	PhoneNumber      string                  `json:"phoneNumber"`
	AltPhoneNumber   string                  `json:"altPhoneNumber"`
	Email            string                  `json:"email"`
	DateOfBirth      *time.Time              `json:"dateOfBirth"`
	IDType           string                  `json:"idType"`
	IDNumber         string                  `json:"idNumber"`
	Emergency        models.EmergencyContact `json:"emergency"`
	Occupation       string                  `json:"occupation"`
	Employer         string                  `json:"employer"`
	Status           string                  `json:"status"`
	Language         string                  `json:"language"`
	PreferredContact string                  `json:"preferredContact"`
}

func (r tenantRequest) model() *models.Tenant {
	return &models.Tenant{
		FullName:         r.FullName,
		PhoneNumber:      r.PhoneNumber,
		AltPhoneNumber:   r.AltPhoneNumber,
		Email:            r.Email,
		DateOfBirth:      r.DateOfBirth,
		IDType:           r.IDType,
		IDNumber:         r.IDNumber,
		Emergency:        r.Emergency,
		Occupation:       r.Occupation,
		Employer:         r.Employer,
		Status:           r.Status,
		Language:         r.Language,
		PreferredContact: r.PreferredContact,
	}
}

func (h *TenantHandler) Create(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.CreateTenant(c.Request.Context(), middleware.UserID(c), req.model())
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TenantHandler) Get(c *gin.Context) {
	t, err := h.svc.GetTenant(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TenantHandler) Update(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := req.model()
	m.ID = c.Param("id")
	t, err := h.svc.UpdateTenant(c.Request.Context(), middleware.UserID(c), m)
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TenantHandler) Deactivate(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.DeactivateTenant(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Reason); err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tenant deactivated"})
}

type assignRequest struct {
	TenantID          string         `json:"tenantId"`
	Tenant            *tenantRequest `json:"tenant"`
	UnitID            string         `json:"unitId" binding:"required"`
	StartDate         time.Time      `json:"startDate"`
	RentAmount        *money.Amount  `json:"rentAmount"`
	DepositAmount     money.Amount   `json:"depositAmount"`
	KeyDeposit        money.Amount   `json:"keyDeposit"`
	UtilitiesIncluded bool           `json:"utilitiesIncluded"`
	PaymentFrequency  string         `json:"paymentFrequency"`
	PaymentDay        int            `json:"paymentDay"`
	GracePeriodDays   int            `json:"gracePeriodDays"`
	LateFeeAmount     money.Amount   `json:"lateFeeAmount"`
	AllowedOccupants  int            `json:"allowedOccupants"`
	ActualOccupants   int            `json:"actualOccupants"`
	SpecialConditions string         `json:"specialConditions"`
}

// Assign moves a tenant (existing or new) into a unit.
func (h *TenantHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := tenant.AssignInput{
		TenantID:          req.TenantID,
		UnitID:            req.UnitID,
		StartDate:         req.StartDate,
		RentAmount:        req.RentAmount,
		DepositAmount:     req.DepositAmount,
		KeyDeposit:        req.KeyDeposit,
		UtilitiesIncluded: req.UtilitiesIncluded,
		PaymentFrequency:  req.PaymentFrequency,
		PaymentDay:        req.PaymentDay,
		GracePeriodDays:   req.GracePeriodDays,
		LateFeeAmount:     req.LateFeeAmount,
		AllowedOccupants:  req.AllowedOccupants,
		ActualOccupants:   req.ActualOccupants,
		SpecialConditions: req.SpecialConditions,
	}
	if req.Tenant != nil {
		in.NewTenant = req.Tenant.model()
	}
	o, err := h.svc.Assign(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type vacateRequest struct {
	MoveOutDate         time.Time     `json:"moveOutDate"`
	Reason              string        `json:"reason"`
	DepositRefundAmount *money.Amount `json:"depositRefundAmount"`
	MoveOutChecklist    []string      `json:"moveOutChecklist"`
}

// Vacate ends an occupancy and frees its unit.
func (h *TenantHandler) Vacate(c *gin.Context) {
	var req vacateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := h.svc.Vacate(c.Request.Context(), middleware.UserID(c), c.Param("id"), tenant.VacateInput{
		MoveOutDate:         req.MoveOutDate,
		Reason:              req.Reason,
		DepositRefundAmount: req.DepositRefundAmount,
		MoveOutChecklist:    req.MoveOutChecklist,
	})
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *TenantHandler) GetOccupancy(c *gin.Context) {
	o, err := h.svc.GetOccupancy(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	nextDue := tenant.NextPaymentDate(o)
	c.JSON(http.StatusOK, gin.H{"occupancy": o, "nextPaymentDate": nextDue})
}

func (h *TenantHandler) OccupancyHistory(c *gin.Context) {
	occs, err := h.svc.OccupancyHistory(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupancies": occs, "count": len(occs)})
}

type noteRequest struct {
	OccupancyID string `json:"occupancyId"`
	NoteType    string `json:"noteType"`
	Title       string `json:"title"`
	Content     string `json:"content" binding:"required"`
	IsPrivate   bool   `json:"isPrivate"`
}

func (h *TenantHandler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.AddNote(c.Request.Context(), middleware.UserID(c), &models.TenantNote{
		TenantID:    c.Param("id"),
		OccupancyID: req.OccupancyID,
		NoteType:    req.NoteType,
		Title:       req.Title,
		Content:     req.Content,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   middleware.UserID(c),
	})
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *TenantHandler) ListNotes(c *gin.Context) {
	notes, err := h.svc.ListNotes(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

// UploadDocument stores the file in object storage, then records its metadata.
func (h *TenantHandler) UploadDocument(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if fh.Size > maxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	docID := uuid.NewString()
	key := storage.TenantDocumentKey(docID)
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()
	if err := h.storage.UploadFile(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		logger.Errorf("document upload for tenant %s failed: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		title = fh.Filename
	}
	d, err := h.svc.RecordDocument(c.Request.Context(), middleware.UserID(c), &models.TenantDocument{
		ID:          docID,
		TenantID:    c.Param("id"),
		OccupancyID: c.PostForm("occupancyId"),
		DocType:     c.PostForm("docType"),
		Title:       title,
		ObjectKey:   key,
		Description: c.PostForm("description"),
	})
	if err != nil {
		// best effort cleanup of the orphaned object
		if derr := h.storage.DeleteFile(c.Request.Context(), key); derr != nil {
			logger.Warnf("orphaned object %s cleanup failed: %v", key, derr)
		}
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// UploadIDImage stores the tenant's identification scan.
func (h *TenantHandler) UploadIDImage(c *gin.Context) {
	h.uploadTenantImage(c, storage.TenantIDKey(c.Param("id")), h.svc.SetIDImage)
}

// UploadProfileImage stores the tenant's profile photo.
func (h *TenantHandler) UploadProfileImage(c *gin.Context) {
	h.uploadTenantImage(c, storage.TenantProfileKey(c.Param("id")), h.svc.SetProfileImage)
}

func (h *TenantHandler) uploadTenantImage(c *gin.Context, key string, set func(context.Context, string, string, string) error) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
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
	if err := h.storage.UploadFile(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		logger.Errorf("image upload for tenant %s failed: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	if err := set(c.Request.Context(), middleware.UserID(c), c.Param("id"), key); err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageKey": key})
}

func (h *TenantHandler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// DocumentURL returns a short-lived presigned URL for a stored document.
func (h *TenantHandler) DocumentURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	d, err := h.svc.GetDocument(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	u, err := h.storage.GetPresignedURL(c.Request.Context(), d.ObjectKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

// UploadContract stores the signed contract for an occupancy.
func (h *TenantHandler) UploadContract(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	occupancyID := c.Param("id")
	// ownership check before touching storage
	if _, err := h.svc.GetOccupancy(c.Request.Context(), middleware.UserID(c), occupancyID); err != nil {
		tenantError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if fh.Size > maxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()
	key := storage.ContractKey(occupancyID)
	if err := h.storage.UploadFile(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		logger.Errorf("contract upload for occupancy %s failed: %v", occupancyID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	if err := h.svc.SetContract(c.Request.Context(), middleware.UserID(c), occupancyID, key); err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contractKey": key})
}

// ContractURL returns a short-lived presigned URL for the signed contract.
func (h *TenantHandler) ContractURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	o, err := h.svc.GetOccupancy(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		tenantError(c, err)
		return
	}
	if o.ContractKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no contract"})
		return
	}
	u, err := h.storage.GetPresignedURL(c.Request.Context(), o.ContractKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

type reminderRequest struct {
	OccupancyID string `json:"occupancyId"`
	TemplateID  string `json:"templateId"`
	Message     string `json:"message"`
}

// SendReminder delivers a rent reminder SMS to the tenant.
func (h *TenantHandler) SendReminder(c *gin.Context) {
	var req reminderRequest
	_ = c.ShouldBindJSON(&req)
	err := h.svc.SendReminder(c.Request.Context(), middleware.UserID(c), c.Param("id"), tenant.ReminderInput{
		OccupancyID: req.OccupancyID,
		TemplateID:  req.TemplateID,
		Message:     req.Message,
	})
	if err != nil {
		tenantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reminder sent"})
}
