package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/notification"
	"github.com/wapangaji/kiganjani/internal/sms"
	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/middleware"
)

// NotificationHandler holds dependencies
type NotificationHandler struct {
	cfg *config.Config
	svc *notification.Service
	sms *sms.Service
}

func NewNotificationHandler(cfg *config.Config, svc *notification.Service, smsSvc *sms.Service) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, svc: svc, sms: smsSvc}
}

// Register routes under /notifications and /sms-templates (all authenticated)
func (h *NotificationHandler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications", middleware.JWTAuth(h.cfg))
	n.GET("", h.List)
	n.GET("/unread", h.Unread)
	n.GET("/counts", h.Counts)
	n.POST("/:id/read", h.MarkRead)
	n.POST("/mark-all-read", h.MarkAllRead)
	n.GET("/preferences", h.Preferences)
	n.PATCH("/preferences", h.UpdatePreferences)

	t := rg.Group("/sms-templates", middleware.JWTAuth(h.cfg))
	t.POST("", h.CreateTemplate)
	t.GET("", h.ListTemplates)
	t.GET("/:id", h.GetTemplate)
	t.PUT("/:id", h.UpdateTemplate)
	t.DELETE("/:id", h.DeleteTemplate)
	t.POST("/:id/test", h.TestTemplate)

	rg.GET("/sms-logs", middleware.JWTAuth(h.cfg), h.ListLogs)
}

func notificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, notification.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, notification.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("notification operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) Unread(c *gin.Context) {
	items, err := h.svc.Unread(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) Counts(c *gin.Context) {
	total, unread, err := h.svc.Counts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.svc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), middleware.UserID(c)); err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

func (h *NotificationHandler) Preferences(c *gin.Context) {
	p, err := h.svc.Preferences(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type preferenceRequest struct {
	RentReminderDays    *int     `json:"rentReminderDays"`
	PaymentConfirmation *bool    `json:"paymentConfirmation"`
	MaintenanceUpdates  *bool    `json:"maintenanceUpdates"`
	TenantUpdates       *bool    `json:"tenantUpdates"`
	EmailNotifications  *bool    `json:"emailNotifications"`
	PushNotifications   *bool    `json:"pushNotifications"`
	NotificationTypes   []string `json:"notificationTypes"`
}

func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.UpdatePreferences(c.Request.Context(), middleware.UserID(c), notification.PreferenceUpdate{
		RentReminderDays:    req.RentReminderDays,
		PaymentConfirmation: req.PaymentConfirmation,
		MaintenanceUpdates:  req.MaintenanceUpdates,
		TenantUpdates:       req.TenantUpdates,
		EmailNotifications:  req.EmailNotifications,
		PushNotifications:   req.PushNotifications,
		NotificationTypes:   req.NotificationTypes,
	})
	if err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- SMS template management ---

type templateRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Text     string `json:"text" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

func validTemplateType(t string) bool {
	switch t {
	case sms.TemplateRentReminder, sms.TemplatePaymentConfirmation,
		sms.TemplateMaintenance, sms.TemplateWelcome, sms.TemplateCustom:
		return true
	}
	return false
}

func (h *NotificationHandler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validTemplateType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template type"})
		return
	}
	tpl := &sms.Template{Name: req.Name, Type: req.Type, Text: req.Text, IsActive: true}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	if err := h.sms.Templates().Create(c.Request.Context(), tpl); err != nil {
		logger.Errorf("template create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *NotificationHandler) ListTemplates(c *gin.Context) {
	tpls, err := h.sms.Templates().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": tpls, "count": len(tpls)})
}

func (h *NotificationHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.sms.Templates().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sms.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *NotificationHandler) UpdateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validTemplateType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template type"})
		return
	}
	tpl, err := h.sms.Templates().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sms.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	tpl.Name = req.Name
	tpl.Type = req.Type
	tpl.Text = req.Text
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	if err := h.sms.Templates().Update(c.Request.Context(), tpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *NotificationHandler) DeleteTemplate(c *gin.Context) {
	if err := h.sms.Templates().Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, sms.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
}

// TestTemplate renders a template with a sample context and sends it to the
// given number so the owner can preview the real message.
func (h *NotificationHandler) TestTemplate(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sample := map[string]string{
		"tenant_name": "Juma Hassan",
		"amount":      "350000",
		"due_date":    "01/01/2026",
		"unit_number": "1-01",
	}
	err := h.sms.SendTemplate(c.Request.Context(), "test", req.PhoneNumber, c.Param("id"), sample)
	if err != nil {
		switch {
		case errors.Is(err, sms.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		case errors.Is(err, sms.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sms gateway not configured"})
		default:
			logger.Errorf("template test send failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "send failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "test message sent"})
}

// ListLogs returns the most recent delivery log entries.
func (h *NotificationHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	logs, err := h.sms.Logs().ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
