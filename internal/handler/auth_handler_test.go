package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/travelguru/rentgate/internal/metrics"
	"github.com/travelguru/rentgate/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn          func(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error)
	loginFn             func(ctx context.Context, email, password string) (*model.Session, error)
	getLoginURLFn       func(state string) string
	federatedCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn            func(ctx context.Context, sessionID string) error
	getCurrentUserFn    func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password, name, avatarURL)
	}
	return &model.Session{ID: "sess-1", UserID: "u1", Email: email, Name: name}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.Session{ID: "sess-1", UserID: "u1", Email: email}, nil
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleFederatedCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.federatedCallbackFn != nil {
		return m.federatedCallbackFn(ctx, code)
	}
	return &model.Session{ID: "sess-1", UserID: "u1"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewSessionNotFoundError()
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func newTestAuthHandler(svc AuthServiceInterface) *AuthHandler {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	return NewAuthHandler(svc, AuthHandlerConfig{
		BaseURL:       "http://localhost:8080",
		SessionMaxAge: 86400,
	}, collector)
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	return nil
}

// --- POST /auth/register テスト ---

func TestAuthHandler_Register_SetsSessionCookie(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	body := `{"email":"user@example.com","password":"Passw0rd","confirmPassword":"Passw0rd","name":"Tanaka"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cookie := sessionCookieFrom(t, resp)
	if cookie == nil || cookie.Value != "sess-1" {
		t.Errorf("session cookie = %+v, want sess-1", cookie)
	}
	if cookie != nil && !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestAuthHandler_Register_ValidationErrors_ReturnFields(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		registerFn: func(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error) {
			t.Error("service should not be called for invalid form")
			return nil, nil
		},
	})

	// パスワードに大文字なし・確認不一致
	body := `{"email":"user@example.com","password":"passw0rd","confirmPassword":"other"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var errResp apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if errResp.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want VALIDATION_FAILED", errResp.Code)
	}
	if len(errResp.Fields) == 0 {
		t.Error("fields should be included in validation error response")
	}
}

func TestAuthHandler_Register_EmailExists_SurfacesProviderMessage(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		registerFn: func(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error) {
			return nil, model.NewAuthError("EMAIL_EXISTS")
		},
	})

	body := `{"email":"user@example.com","password":"Passw0rd","confirmPassword":"Passw0rd"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var errResp apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	// IdPのメッセージをそのまま表示すること
	if errResp.Message != "EMAIL_EXISTS" {
		t.Errorf("message = %q, want EMAIL_EXISTS", errResp.Message)
	}
	if errResp.Category != "auth" {
		t.Errorf("category = %q, want auth", errResp.Category)
	}
}

// --- POST /auth/login テスト ---

func TestAuthHandler_Login_HonorsFromParam(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	body := `{"email":"user@example.com","password":"Passw0rd"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login?from=%2FmyVehicles", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	var resp authSuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.ReturnTo != "/myVehicles" {
		t.Errorf("returnTo = %q, want /myVehicles", resp.ReturnTo)
	}
}

func TestAuthHandler_Login_ExternalFromParam_FallsBackToRoot(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	body := `{"email":"user@example.com","password":"Passw0rd"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login?from=https%3A%2F%2Fevil.example.com", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	var resp authSuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	// オープンリダイレクト防止
	if resp.ReturnTo != "/" {
		t.Errorf("returnTo = %q, want /", resp.ReturnTo)
	}
}

func TestAuthHandler_Login_InvalidPassword_Returns401(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewAuthError("INVALID_PASSWORD")
		},
	})

	body := `{"email":"user@example.com","password":"Wrong1pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// --- Google連携ログインテスト ---

func TestAuthHandler_GoogleLogin_RedirectsWithStateCookie(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login?from=%2FmyBookings", nil)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", resp.StatusCode)
	}

	var stateCookie, fromCookie *http.Cookie
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "oauth_state":
			stateCookie = c
		case "oauth_from":
			fromCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Error("oauth_state cookie should be set")
	}
	if fromCookie == nil || fromCookie.Value != "/myBookings" {
		t.Errorf("oauth_from cookie = %+v, want /myBookings", fromCookie)
	}

	loc := resp.Header.Get("Location")
	if stateCookie != nil && !strings.Contains(loc, stateCookie.Value) {
		t.Errorf("redirect URL %q should contain state", loc)
	}
}

func TestAuthHandler_GoogleCallback_StateMismatch_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		federatedCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			t.Error("callback should not reach the service on state mismatch")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "genuine"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthHandler_GoogleCallback_Success_RedirectsToFrom(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	req.AddCookie(&http.Cookie{Name: "oauth_from", Value: "/myVehicles"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "http://localhost:8080/myVehicles" {
		t.Errorf("Location = %q, want http://localhost:8080/myVehicles", loc)
	}
	if cookie := sessionCookieFrom(t, resp); cookie == nil || cookie.Value != "sess-1" {
		t.Errorf("session cookie = %+v, want sess-1", cookie)
	}
}

func TestAuthHandler_GoogleCallback_UserCancelled_RedirectsToLogin(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	// 同意画面でキャンセルするとcodeなしで戻る
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "http://localhost:8080/login" {
		t.Errorf("Location = %q, want http://localhost:8080/login", loc)
	}
}

// --- POST /auth/logout テスト ---

func TestAuthHandler_Logout_ClearsCookieEvenOnServiceError(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return model.NewSessionNotFoundError()
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cookie := sessionCookieFrom(t, resp)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Errorf("session cookie = %+v, want MaxAge -1", cookie)
	}
}

// --- GET /auth/me テスト ---

func TestAuthHandler_Me_ReturnsCurrentUser(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "u1", Email: "user@example.com", Name: "Tanaka", AvatarURL: "https://example.com/a.png"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["email"] != "user@example.com" {
		t.Errorf("email = %v, want user@example.com", body["email"])
	}
	if body["photoURL"] != "https://example.com/a.png" {
		t.Errorf("photoURL = %v, want avatar URL", body["photoURL"])
	}
}

func TestAuthHandler_Me_NoCookie_Returns401(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthHandler_Register_InvalidJSON_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
