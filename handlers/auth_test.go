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

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wapangaji/kiganjani/internal/accounts"
	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/otp"
	"github.com/wapangaji/kiganjani/internal/sessions"
)

// stubPinGateway accepts a single hardcoded code.
type stubPinGateway struct {
	code  string
	sends int
}

func (g *stubPinGateway) SendPIN(ctx context.Context, phoneNumber string) (string, error) {
	g.sends++
	return fmt.Sprintf("pin-%d", g.sends), nil
}

func (g *stubPinGateway) VerifyPIN(ctx context.Context, pinID, code string) (bool, error) {
	return code == g.code, nil
}

// fakeSessionsRepo is an in-memory refresh session store.
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func (f *fakeSessionsRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	for k, s := range f.store {
		if s.UserID == userID {
			delete(f.store, k)
		}
	}
	return nil
}

type authFixture struct {
	router  *gin.Engine
	handler *AuthHandler
	gateway *stubPinGateway
	mr      *mr.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour

	gateway := &stubPinGateway{code: "123456"}
	accountsSvc := accounts.NewService(accounts.NewMemoryUserRepository(), accounts.NewMemorySessionAuditRepository())
	otpSvc := otp.NewService(otp.NewStore(client, "otp:"), gateway, 15*time.Minute, 3)
	sessionsSvc := sessions.NewService(&fakeSessionsRepo{})

	h := NewAuthHandler(cfg, accountsSvc, otpSvc, sessionsSvc)
	r := gin.New()
	h.Register(r.Group("/"))

	return &authFixture{router: r, handler: h, gateway: gateway, mr: m}
}

func (f *authFixture) post(t *testing.T, path, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	resp := w.Result()
	var got map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&got)
	return resp, got
}

func (f *authFixture) registerAndVerify(t *testing.T, phone string) map[string]any {
	t.Helper()
	resp, _ := f.post(t, "/auth/register",
		fmt.Sprintf(`{"phoneNumber":"%s","fullName":"Asha Mushi","password":"super-secret"}`, phone), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, got := f.post(t, "/auth/verify-otp",
		fmt.Sprintf(`{"phoneNumber":"%s","otp":"123456"}`, phone), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return got
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	f := newAuthFixture(t)

	got := f.registerAndVerify(t, "0754000001")
	require.NotEmpty(t, got["accessToken"])
	require.NotEmpty(t, got["refreshToken"])
	user := got["user"].(map[string]any)
	require.Equal(t, "+255754000001", user["phoneNumber"])
	require.Equal(t, true, user["isActive"])

	// login with the password used at registration
	resp, got := f.post(t, "/auth/login", `{"phoneNumber":"0754000001","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, got["accessToken"])
	require.EqualValues(t, 900, got["expiresIn"])
}

func TestLoginBeforeVerification(t *testing.T) {
	f := newAuthFixture(t)
	resp, _ := f.post(t, "/auth/register",
		`{"phoneNumber":"0754000002","fullName":"Neema John","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.post(t, "/auth/login", `{"phoneNumber":"0754000002","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t, "0754000003")

	resp, got := f.post(t, "/auth/login", `{"phoneNumber":"0754000003","password":"wrong-password"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid credentials", got["error"])

	// unknown number yields the same error, nothing leaks
	resp, got = f.post(t, "/auth/login", `{"phoneNumber":"0754999999","password":"whatever"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid credentials", got["error"])
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	resp, _ := f.post(t, "/auth/register",
		`{"phoneNumber":"0754000004","fullName":"Juma Hassan","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.post(t, "/auth/verify-otp", `{"phoneNumber":"0754000004","otp":"000000"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// third wrong attempt exhausts the record
	f.post(t, "/auth/verify-otp", `{"phoneNumber":"0754000004","otp":"000000"}`, nil)
	resp, _ = f.post(t, "/auth/verify-otp", `{"phoneNumber":"0754000004","otp":"000000"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t, "0754000005")

	resp, _ := f.post(t, "/auth/register",
		`{"phoneNumber":"0754000005","fullName":"Other Person","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	got := f.registerAndVerify(t, "0754000006")
	refresh := got["refreshToken"].(string)
	access := got["accessToken"].(string)

	resp, got2 := f.post(t, "/auth/refresh", fmt.Sprintf(`{"refreshToken":"%s"}`, refresh), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, got2["accessToken"])

	// logout blacklists the access token and kills the refresh session
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: f.mr.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	resp, _ = f.post(t, "/auth/logout", fmt.Sprintf(`{"refreshToken":"%s"}`, refresh),
		map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, f.mr.Exists("blacklist:access:"+access))

	resp, _ = f.post(t, "/auth/refresh", fmt.Sprintf(`{"refreshToken":"%s"}`, refresh), nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	got := f.registerAndVerify(t, "0754000007")
	access := got["accessToken"].(string)
	firstRefresh := got["refreshToken"].(string)

	// second session from a login
	resp, got2 := f.post(t, "/auth/login", `{"phoneNumber":"0754000007","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	secondRefresh := got2["refreshToken"].(string)

	resp, _ = f.post(t, "/auth/logout-all", `{}`,
		map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, rt := range []string{firstRefresh, secondRefresh} {
		resp, _ = f.post(t, "/auth/refresh", fmt.Sprintf(`{"refreshToken":"%s"}`, rt), nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t, "0754000008")

	resp, _ := f.post(t, "/auth/password-reset", `{"phoneNumber":"0754000008"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.post(t, "/auth/password-reset/confirm",
		`{"phoneNumber":"0754000008","otp":"123456","newPassword":"brand-new-pass"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// old password is gone, new one works
	resp, _ = f.post(t, "/auth/login", `{"phoneNumber":"0754000008","password":"super-secret"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = f.post(t, "/auth/login", `{"phoneNumber":"0754000008","password":"brand-new-pass"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPasswordResetUnknownNumberDoesNotLeak(t *testing.T) {
	f := newAuthFixture(t)
	resp, got := f.post(t, "/auth/password-reset", `{"phoneNumber":"0754888888"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, got["message"], "if the number is registered")
}

func TestMe(t *testing.T) {
	f := newAuthFixture(t)
	got := f.registerAndVerify(t, "0754000009")
	access := got["accessToken"].(string)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var user map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, "+255754000009", user["phoneNumber"])

	// no token -> 401
	req = httptest.NewRequest("GET", "/me", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
