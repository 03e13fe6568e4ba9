// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/travelguru/rentgate/internal/guard"
	"github.com/travelguru/rentgate/internal/model"
	"github.com/travelguru/rentgate/internal/session"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// snapshotContextKey はリクエストコンテキストに認証スナップショットを格納するためのキー。
var snapshotContextKey = contextKey("session_snapshot")

// SessionResolver はセッションの解決に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only CookieからセッションIDを読み取り、
// 解決結果をスナップショットとしてリクエストコンテキストに注入するミドルウェアを返す。
// Cookieが存在しない・期限切れの場合もリクエストは拒否せず、セッションなしの
// スナップショットを注入する。表示可否の判定はガードミドルウェアが行う。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			sess, err := resolver.ResolveSession(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			snap := session.Snapshot{Session: sess, Loading: false}
			ctx := context.WithValue(r.Context(), snapshotContextKey, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewAPIGuardMiddleware は未認証のAPIリクエストに401を返すミドルウェアを返す。
// セッションミドルウェアの後に配置する。
func NewAPIGuardMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard.Evaluate(SnapshotFromContext(r.Context())) != guard.DecisionAllow {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loadingShell は認証状態が未確定の間に返すプレースホルダ。
// 保護対象のコンテンツもリダイレクトも返さない。
const loadingShell = `<!DOCTYPE html><html lang="ja"><body><p>読み込み中...</p></body></html>`

// NewPageGuardMiddleware は保護ページへの未認証アクセスをサインインページへ
// リダイレクトするミドルウェアを返す。元のリクエストパスはfromパラメータで運び、
// ログイン成功後に元の場所へ戻せるようにする。
// 認証状態が未確定の間はプレースホルダを返し、早まったリダイレクトを防ぐ。
func NewPageGuardMiddleware(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch guard.Evaluate(SnapshotFromContext(r.Context())) {
			case guard.DecisionAllow:
				next.ServeHTTP(w, r)
			case guard.DecisionWait:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				fmt.Fprint(w, loadingShell)
			default:
				http.Redirect(w, r, guard.RedirectURL(loginPath, r.URL.RequestURI()), http.StatusSeeOther)
			}
		})
	}
}

// SnapshotFromContext はリクエストコンテキストから認証スナップショットを取得する。
// セッションミドルウェアを通過していない場合は未確定（loading）のスナップショットを返す。
func SnapshotFromContext(ctx context.Context) session.Snapshot {
	if snap, ok := ctx.Value(snapshotContextKey).(session.Snapshot); ok {
		return snap
	}
	return session.Snapshot{Loading: true}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// ガードミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*model.Session, error) {
	snap := SnapshotFromContext(ctx)
	if snap.Loading || snap.Session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return snap.Session, nil
}

// ContextWithSession はコンテキストに解決済みセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, snapshotContextKey, session.Snapshot{Session: sess, Loading: false})
}
