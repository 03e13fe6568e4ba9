// Package guard はナビゲーション先の表示可否を判定するルートガードを提供する。
package guard

import (
	"net/url"

	"github.com/travelguru/rentgate/internal/session"
)

// Decision はルートガードの判定結果。
type Decision int

const (
	// DecisionWait は認証状態が未確定のため判定を保留する（プレースホルダ表示）。
	// セッションが未解決のまま認証済みユーザーをリダイレクトしてしまうことを防ぐ。
	DecisionWait Decision = iota
	// DecisionRedirect は未認証のためサインインページへリダイレクトする。
	DecisionRedirect
	// DecisionAllow は認証済みのため要求されたコンテンツを表示する。
	DecisionAllow
)

// Evaluate はセッションストアのスナップショットからガード判定を行う。
// ガード自体は状態を持たず、スナップショットの純粋関数として振る舞う。
func Evaluate(snap session.Snapshot) Decision {
	if snap.Loading {
		return DecisionWait
	}
	if snap.Session == nil {
		return DecisionRedirect
	}
	return DecisionAllow
}

// fromParam はリダイレクト時に元のリクエストパスを運ぶクエリパラメータ名。
const fromParam = "from"

// RedirectURL はサインインページへのリダイレクトURLを生成する。
// 元々要求されていたパスをfromパラメータに載せ、ログイン成功後に
// ユーザーを元の場所へ戻せるようにする。
func RedirectURL(loginPath, requestedPath string) string {
	if requestedPath == "" || requestedPath == loginPath {
		return loginPath
	}
	return loginPath + "?" + url.Values{fromParam: {requestedPath}}.Encode()
}

// ReturnPath はログイン成功後の戻り先パスを決定する。
// fromパラメータが空、または外部URL・プロトコル相対URLの場合は
// オープンリダイレクトを避けてフォールバック先を返す。
func ReturnPath(from, fallback string) string {
	if from == "" {
		return fallback
	}
	if from[0] != '/' || (len(from) > 1 && from[1] == '/') {
		return fallback
	}
	return from
}
