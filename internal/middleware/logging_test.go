package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/travelguru/rentgate/internal/model"
)

func captureLog(t *testing.T, status int, authenticated bool) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	if authenticated {
		req = req.WithContext(ContextWithSession(req.Context(), &model.Session{ID: "s1", UserID: "u1"}))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	return entry
}

func TestLoggingMiddleware_RecordsRequestFields(t *testing.T) {
	entry := captureLog(t, http.StatusOK, true)

	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v, want http_request", entry["msg"])
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/vehicles" {
		t.Errorf("path = %v, want /api/vehicles", entry["path"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms should be recorded")
	}
	if entry["user_id"] != "u1" {
		t.Errorf("user_id = %v, want u1", entry["user_id"])
	}
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		entry := captureLog(t, tt.status, false)
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, entry["level"], tt.level)
		}
	}
}

func TestLoggingMiddleware_Unauthenticated_OmitsUserID(t *testing.T) {
	entry := captureLog(t, http.StatusOK, false)
	if _, ok := entry["user_id"]; ok {
		t.Error("user_id should not be recorded for unauthenticated requests")
	}
}
