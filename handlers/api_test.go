package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/notification"
	"github.com/wapangaji/kiganjani/internal/property"
	"github.com/wapangaji/kiganjani/internal/sms"
	"github.com/wapangaji/kiganjani/internal/tenant"
	"github.com/wapangaji/kiganjani/internal/tokens"
)

// noSendGateway succeeds silently so SMS-side effects don't fail the flows.
type noSendGateway struct{}

func (noSendGateway) SendPIN(ctx context.Context, phoneNumber string) (string, error) {
	return "pin", nil
}
func (noSendGateway) VerifyPIN(ctx context.Context, pinID, code string) (bool, error) {
	return true, nil
}
func (noSendGateway) SendMessage(ctx context.Context, phoneNumber, message string) error {
	return nil
}

type apiFixture struct {
	router     *gin.Engine
	cfg        *config.Config
	props      *property.Service
	tenants    *tenant.Service
	notifs     *notification.Service
	smsSvc     *sms.Service
	ownerToken string
	otherToken string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "api-test-secret-32-bytes-xxxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute

	notifSvc := notification.NewService(notification.NewMemoryRepository(), notification.NewMemoryPreferenceRepository())
	propSvc := property.NewService(property.NewMemoryRepositories(), notifSvc)
	smsSvc := sms.NewService(noSendGateway{}, sms.NewMemoryTemplateRepository(), sms.NewMemoryLogRepository())
	tenantSvc := tenant.NewService(tenant.NewMemoryRepositories(), propSvc, smsSvc, notifSvc)

	r := gin.New()
	root := r.Group("/")
	NewPropertyHandler(cfg, propSvc, nil).Register(root)
	NewTenantHandler(cfg, tenantSvc, nil).Register(root)
	NewNotificationHandler(cfg, notifSvc, smsSvc).Register(root)

	owner := &models.User{ID: "owner-1", PhoneNumber: "+255754111111", FullName: "Mwajuma Saidi", Language: "sw"}
	other := &models.User{ID: "owner-2", PhoneNumber: "+255754222222", FullName: "Baraka Mollel", Language: "sw"}
	ownerToken, err := tokens.GenerateAccessToken(cfg, owner, time.Hour)
	require.NoError(t, err)
	otherToken, err := tokens.GenerateAccessToken(cfg, other, time.Hour)
	require.NoError(t, err)

	return &apiFixture{
		router: r, cfg: cfg,
		props: propSvc, tenants: tenantSvc, notifs: notifSvc, smsSvc: smsSvc,
		ownerToken: ownerToken, otherToken: otherToken,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var got map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	return w.Code, got
}

func (f *apiFixture) createProperty(t *testing.T) string {
	t.Helper()
	code, got := f.do(t, "POST", "/properties",
		`{"name":"Sinza Court","category":"apartment","totalFloors":2,"address":"Sinza, Dar es Salaam"}`,
		f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	return got["id"].(string)
}

func (f *apiFixture) addFloor(t *testing.T, propertyID string) []any {
	t.Helper()
	body := `{
		"floorNumber": 0,
		"totalUnits": 4,
		"layoutType": "rectangular",
		"creationMethod": "auto",
		"boundary": [{"x":0,"y":0},{"x":40,"y":0},{"x":40,"y":20},{"x":0,"y":20}],
		"rentAmount": "300000",
		"paymentFrequency": "monthly",
		"maxOccupants": 3
	}`
	code, got := f.do(t, "POST", "/properties/"+propertyID+"/floors", body, f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	return got["units"].([]any)
}

func TestPropertyEndpointsRequireAuth(t *testing.T) {
	f := newAPIFixture(t)
	code, _ := f.do(t, "GET", "/properties", "", "")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestPropertyLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)

	units := f.addFloor(t, id)
	require.Len(t, units, 4)
	first := units[0].(map[string]any)
	require.Equal(t, "0-01", first["unitNumber"])
	require.Equal(t, "available", first["status"])
	require.Equal(t, "300000", first["rentAmount"])

	// owner scoping: the other landlord sees nothing
	code, _ := f.do(t, "GET", "/properties/"+id, "", f.otherToken)
	require.Equal(t, http.StatusForbidden, code)

	code, got := f.do(t, "GET", "/properties/"+id+"/summary", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 4, got["totalUnits"])
	require.EqualValues(t, 0, got["occupancyRate"])

	// bad category -> 400
	code, _ = f.do(t, "POST", "/properties", `{"name":"X","category":"castle"}`, f.ownerToken)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestUnitUpdateOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)
	units := f.addFloor(t, id)
	unitID := units[0].(map[string]any)["id"].(string)

	code, got := f.do(t, "PATCH", "/units/"+unitID,
		`{"rentAmount":"420000.50","status":"maintenance"}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "420000.5", got["rentAmount"])
	require.Equal(t, "maintenance", got["status"])
}

func TestAssignAndVacateOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)
	units := f.addFloor(t, id)
	unitID := units[0].(map[string]any)["id"].(string)

	body := fmt.Sprintf(`{
		"unitId": %q,
		"tenant": {"fullName":"Juma Hassan","phoneNumber":"0754123456"},
		"depositAmount": "300000",
		"paymentDay": 5
	}`, unitID)
	code, occ := f.do(t, "POST", "/tenants/assign", body, f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "active", occ["status"])
	occupancyID := occ["id"].(string)

	// unit now occupied
	code, unit := f.do(t, "GET", "/units/"+unitID, "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "occupied", unit["status"])

	// second assignment to the same unit fails
	body2 := fmt.Sprintf(`{"unitId": %q, "tenant": {"fullName":"Neema John","phoneNumber":"0754654321"}}`, unitID)
	code, _ = f.do(t, "POST", "/tenants/assign", body2, f.ownerToken)
	require.Equal(t, http.StatusConflict, code)

	// assignment raised an in-app notification for the owner
	code, notifs := f.do(t, "GET", "/notifications", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, notifs["count"])

	// vacate frees the unit
	code, _ = f.do(t, "POST", "/occupancies/"+occupancyID+"/vacate",
		`{"reason":"relocation","depositRefundAmount":"250000"}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)

	code, unit = f.do(t, "GET", "/units/"+unitID, "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "available", unit["status"])
}

func TestTenantListingOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	for i := 1; i <= 3; i++ {
		code, _ := f.do(t, "POST", "/tenants",
			fmt.Sprintf(`{"fullName":"Tenant %d","phoneNumber":"07541000%02d"}`, i, i), f.ownerToken)
		require.Equal(t, http.StatusCreated, code)
	}

	code, got := f.do(t, "GET", "/tenants?pageSize=2", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, got["total"])
	require.Len(t, got["tenants"].([]any), 2)

	code, got = f.do(t, "GET", "/tenants?search=Tenant+2", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got["tenants"].([]any), 1)
}

func TestMaintenanceFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)
	units := f.addFloor(t, id)
	unitID := units[0].(map[string]any)["id"].(string)

	code, m := f.do(t, "POST", "/units/"+unitID+"/maintenance",
		`{"issueType":"plumbing","description":"Bomba linavuja","priority":"high"}`, f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "pending", m["status"])
	mid := m["id"].(string)

	code, m = f.do(t, "PATCH", "/maintenance/"+mid,
		`{"status":"completed","actualCost":"50000","resolutionNotes":"Bomba limebadilishwa"}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "completed", m["status"])
	require.NotEmpty(t, m["completionDate"])

	// high priority report produced a high priority notification
	code, notifs := f.do(t, "GET", "/notifications/unread", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	items := notifs["notifications"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "high", items[0].(map[string]any)["priority"])
}

func TestNotificationPreferencesOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	code, got := f.do(t, "GET", "/notifications/preferences", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, got["rentReminderDays"])

	code, got = f.do(t, "PATCH", "/notifications/preferences",
		`{"rentReminderDays":7,"tenantUpdates":false}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 7, got["rentReminderDays"])
	require.Equal(t, false, got["tenantUpdates"])

	code, _ = f.do(t, "PATCH", "/notifications/preferences", `{"rentReminderDays":99}`, f.ownerToken)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestSMSTemplateCRUDOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	code, tpl := f.do(t, "POST", "/sms-templates",
		`{"name":"Kumbusho la kodi","type":"rent_reminder","text":"Habari {tenant_name}, kodi ya {unit_number} ni TZS {amount}, tarehe {due_date}."}`,
		f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	tplID := tpl["id"].(string)
	require.Equal(t, true, tpl["isActive"])

	code, got := f.do(t, "GET", "/sms-templates", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, got["count"])

	// test-send renders with the sample context and logs the delivery
	code, _ = f.do(t, "POST", "/sms-templates/"+tplID+"/test", `{"phoneNumber":"+255754111111"}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)

	code, logs := f.do(t, "GET", "/sms-logs", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, logs["count"])
	entry := logs["logs"].([]any)[0].(map[string]any)
	require.Contains(t, entry["message"], "Juma Hassan")
	require.Contains(t, entry["message"], "1-01")

	code, _ = f.do(t, "DELETE", "/sms-templates/"+tplID, "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, "GET", "/sms-templates/"+tplID, "", f.ownerToken)
	require.Equal(t, http.StatusNotFound, code)

	// unknown type rejected
	code, _ = f.do(t, "POST", "/sms-templates", `{"name":"x","type":"bogus","text":"y"}`, f.ownerToken)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestSendReminderOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)
	units := f.addFloor(t, id)
	unitID := units[0].(map[string]any)["id"].(string)

	body := fmt.Sprintf(`{"unitId": %q, "tenant": {"fullName":"Juma Hassan","phoneNumber":"0754123456"}}`, unitID)
	code, occ := f.do(t, "POST", "/tenants/assign", body, f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	tenantID := occ["tenantId"].(string)

	code, _ = f.do(t, "POST", "/tenants/"+tenantID+"/send-reminder", `{}`, f.ownerToken)
	require.Equal(t, http.StatusOK, code)

	// welcome SMS + reminder SMS in the log
	code, logs := f.do(t, "GET", "/sms-logs", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, logs["count"])
}

func TestTenantIsolationBetweenOwnersOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createProperty(t)
	units := f.addFloor(t, id)
	unitID := units[0].(map[string]any)["id"].(string)

	body := fmt.Sprintf(`{"unitId": %q, "tenant": {"fullName":"Juma Hassan","phoneNumber":"0754123456"}}`, unitID)
	code, occ := f.do(t, "POST", "/tenants/assign", body, f.ownerToken)
	require.Equal(t, http.StatusCreated, code)
	tenantID := occ["tenantId"].(string)

	// another landlord's listing comes back empty
	code, got := f.do(t, "GET", "/tenants", "", f.otherToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 0, got["total"])

	// their direct reads see nothing, not a forbidden hint
	code, _ = f.do(t, "GET", "/tenants/"+tenantID, "", f.otherToken)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = f.do(t, "GET", "/tenants/"+tenantID+"/occupancies", "", f.otherToken)
	require.Equal(t, http.StatusNotFound, code)

	// and they cannot push an SMS to that tenant
	code, _ = f.do(t, "POST", "/tenants/"+tenantID+"/send-reminder", `{"message":"Lipa kodi leo"}`, f.otherToken)
	require.Equal(t, http.StatusNotFound, code)
	code, logs := f.do(t, "GET", "/sms-logs", "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, logs["count"]) // the welcome message only

	// the owner still reads their own record
	code, tn := f.do(t, "GET", "/tenants/"+tenantID, "", f.ownerToken)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Juma Hassan", tn["fullName"])
}
