package guard

import (
	"testing"

	"github.com/travelguru/rentgate/internal/model"
	"github.com/travelguru/rentgate/internal/session"
)

func TestEvaluate_Loading_Waits(t *testing.T) {
	// 認証状態が未解決の間はコンテンツもリダイレクトも出さない
	snap := session.Snapshot{Loading: true, Session: nil}
	if got := Evaluate(snap); got != DecisionWait {
		t.Errorf("Evaluate() = %v, want DecisionWait", got)
	}

	// loading中はセッション値があっても判定を保留する
	snap = session.Snapshot{Loading: true, Session: &model.Session{ID: "s1"}}
	if got := Evaluate(snap); got != DecisionWait {
		t.Errorf("Evaluate() = %v, want DecisionWait", got)
	}
}

func TestEvaluate_NoSession_Redirects(t *testing.T) {
	snap := session.Snapshot{Loading: false, Session: nil}
	if got := Evaluate(snap); got != DecisionRedirect {
		t.Errorf("Evaluate() = %v, want DecisionRedirect", got)
	}
}

func TestEvaluate_SessionPresent_Allows(t *testing.T) {
	snap := session.Snapshot{Loading: false, Session: &model.Session{ID: "s1"}}
	if got := Evaluate(snap); got != DecisionAllow {
		t.Errorf("Evaluate() = %v, want DecisionAllow", got)
	}
}

func TestRedirectURL_CarriesRequestedPath(t *testing.T) {
	got := RedirectURL("/login", "/myVehicles")
	want := "/login?from=%2FmyVehicles"
	if got != want {
		t.Errorf("RedirectURL() = %q, want %q", got, want)
	}
}

func TestRedirectURL_EmptyPath_NoParam(t *testing.T) {
	if got := RedirectURL("/login", ""); got != "/login" {
		t.Errorf("RedirectURL() = %q, want /login", got)
	}
}

func TestReturnPath(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"empty falls back", "", "/"},
		{"relative path honored", "/myVehicles", "/myVehicles"},
		{"absolute URL rejected", "https://evil.example.com/", "/"},
		{"protocol-relative rejected", "//evil.example.com", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReturnPath(tt.from, "/"); got != tt.want {
				t.Errorf("ReturnPath(%q) = %q, want %q", tt.from, got, tt.want)
			}
		})
	}
}
