package handler

import (
	"encoding/json"
	"net/http"

	"github.com/travelguru/rentgate/internal/model"
)

const (
	themeCookieName = "theme"

	// ThemeLight / ThemeDark は選択可能なテーマ。
	ThemeLight = "light"
	ThemeDark  = "dark"

	themeCookieMaxAge = 365 * 24 * 60 * 60 // 1年
)

// ThemeHandler はテーマ設定のHTTPハンドラー。
// テーマはCookieに保持し、ログイン状態とは独立に動作する。
type ThemeHandler struct {
	cookieSecure bool
	cookieDomain string
}

// NewThemeHandler はThemeHandlerを生成する。
func NewThemeHandler(cookieSecure bool, cookieDomain string) *ThemeHandler {
	return &ThemeHandler{
		cookieSecure: cookieSecure,
		cookieDomain: cookieDomain,
	}
}

// themeResponse はテーマ設定のレスポンスおよびPUTリクエストのボディ。
type themeResponse struct {
	Theme string `json:"theme"`
}

// Get は現在のテーマ設定を返す。Cookieが未設定の場合はlight。
// GET /api/theme
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	theme := ThemeLight
	if cookie, err := r.Cookie(themeCookieName); err == nil && isValidTheme(cookie.Value) {
		theme = cookie.Value
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(themeResponse{Theme: theme})
}

// Put はテーマ設定を更新する。
// PUT /api/theme
func (h *ThemeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req themeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if !isValidTheme(req.Theme) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("テーマにはlightまたはdarkを指定してください。"))
		return
	}

	// フロントエンドが初期描画で読めるよう、HttpOnlyにはしない
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    req.Theme,
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   themeCookieMaxAge,
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(themeResponse{Theme: req.Theme})
}

// isValidTheme はテーマ値が定義済みかを判定する。
func isValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}
