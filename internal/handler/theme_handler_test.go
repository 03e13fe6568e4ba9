package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestThemeHandler_Get_DefaultsToLight(t *testing.T) {
	h := NewThemeHandler(false, "")

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	var resp themeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Theme != ThemeLight {
		t.Errorf("theme = %q, want light", resp.Theme)
	}
}

func TestThemeHandler_Get_ReadsCookie(t *testing.T) {
	h := NewThemeHandler(false, "")

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	w := httptest.NewRecorder()

	h.Get(w, req)

	var resp themeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Theme != ThemeDark {
		t.Errorf("theme = %q, want dark", resp.Theme)
	}
}

func TestThemeHandler_Get_InvalidCookieValue_FallsBackToLight(t *testing.T) {
	h := NewThemeHandler(false, "")

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "neon"})
	w := httptest.NewRecorder()

	h.Get(w, req)

	var resp themeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Theme != ThemeLight {
		t.Errorf("theme = %q, want light", resp.Theme)
	}
}

func TestThemeHandler_Put_PersistsCookie(t *testing.T) {
	h := NewThemeHandler(false, "")

	req := httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"dark"}`))
	w := httptest.NewRecorder()

	h.Put(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "theme" && c.Value == "dark" {
			found = true
			if c.HttpOnly {
				t.Error("theme cookie should not be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("theme cookie should be set to dark")
	}
}

func TestThemeHandler_Put_InvalidTheme_Returns400(t *testing.T) {
	h := NewThemeHandler(false, "")

	req := httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"neon"}`))
	w := httptest.NewRecorder()

	h.Put(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
