// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/travelguru/rentgate/internal/guard"
	"github.com/travelguru/rentgate/internal/metrics"
	"github.com/travelguru/rentgate/internal/model"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"
	oauthFromCookie   = "oauth_from"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	GetLoginURL(state string) string
	HandleFederatedCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
// パスワード認証とGoogle連携ログインの両方を扱う。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: collector,
	}
}

// authSuccessResponse はログイン・新規登録成功時のレスポンス。
// ReturnToはfromパラメータから決定した戻り先パス。
type authSuccessResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL,omitempty"`
	ReturnTo string `json:"returnTo"`
}

// Register は新規登録を処理する。
// POST /auth/register?from=/myVehicles
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form model.RegisterForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if errs := form.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	session, err := h.service.Register(r.Context(), form.Email, form.Password, form.Name, form.AvatarURL)
	if err != nil {
		h.metrics.RecordAuthAttempt("failure")
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordAuthAttempt("success")

	h.setSessionCookie(w, session.ID)
	h.writeAuthSuccess(w, r, session)
}

// Login はパスワードログインを処理する。
// POST /auth/login?from=/myVehicles
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form model.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if errs := form.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	session, err := h.service.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.metrics.RecordAuthAttempt("failure")
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordAuthAttempt("success")

	h.setSessionCookie(w, session.ID)
	h.writeAuthSuccess(w, r, session)
}

// GoogleLogin はGoogle連携ログインフローを開始する。
// GET /auth/google/login?from=/myVehicles
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 戻り先パスをCookieで運び、コールバック後に復元する
	if from := guard.ReturnPath(r.URL.Query().Get("from"), ""); from != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     oauthFromCookie,
			Value:    from,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はGoogle連携ログインのコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}
	clearCookie(w, oauthStateCookie, h.config)

	// 2. 認可コードの取得。ユーザーが同意画面でキャンセルした場合は
	// codeなしで戻ってくるため、中断としてログインページへ返す。
	code := r.URL.Query().Get("code")
	if code == "" {
		h.metrics.RecordAuthAttempt("failure")
		clearCookie(w, oauthFromCookie, h.config)
		http.Redirect(w, r, h.config.BaseURL+"/login", http.StatusTemporaryRedirect)
		return
	}

	// 3. 認証処理
	session, err := h.service.HandleFederatedCallback(r.Context(), code)
	if err != nil {
		h.metrics.RecordAuthAttempt("failure")
		slog.Error("federated callback failed", slog.String("error", err.Error()))
		clearCookie(w, oauthFromCookie, h.config)
		http.Redirect(w, r, h.config.BaseURL+"/login", http.StatusTemporaryRedirect)
		return
	}
	h.metrics.RecordAuthAttempt("success")

	// 4. セッションCookieを設定（HTTP Only）
	h.setSessionCookie(w, session.ID)

	// 5. 元のリクエストパス（なければトップ）へリダイレクト
	returnTo := "/"
	if fromCookie, err := r.Cookie(oauthFromCookie); err == nil {
		returnTo = guard.ReturnPath(fromCookie.Value, "/")
	}
	clearCookie(w, oauthFromCookie, h.config)
	http.Redirect(w, r, h.config.BaseURL+returnTo, http.StatusTemporaryRedirect)
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	clearCookie(w, sessionCookieName, h.config)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"photoURL": user.AvatarURL,
	})
}

// setSessionCookie はセッションIDをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeAuthSuccess はログイン成功レスポンスを書き込む。
// fromパラメータから戻り先を決定し、外部URLへのリダイレクトは許可しない。
func (h *AuthHandler) writeAuthSuccess(w http.ResponseWriter, r *http.Request, session *model.Session) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authSuccessResponse{
		Email:    session.Email,
		Name:     session.Name,
		PhotoURL: session.AvatarURL,
		ReturnTo: guard.ReturnPath(r.URL.Query().Get("from"), "/"),
	})
}

// clearCookie は指定した名前のCookieを削除する。
func clearCookie(w http.ResponseWriter, name string, config AuthHandlerConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
