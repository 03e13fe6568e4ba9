// Package auth は外部IdPへのゲートウェイとセッション管理を提供する。
package auth

import "context"

// ProviderIdentity はIdPが保持するアカウント情報を表す。
type ProviderIdentity struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	IDToken        string // プロフィール更新等の後続操作に使うトークン
}

// IdentityProvider はパスワード認証IdPのインターフェース。
// 実装はIdPのREST APIを呼び出す。失敗時はIdPのメッセージを保持した
// model.APIError（カテゴリauth）を返す。
type IdentityProvider interface {
	// SignUp は新規アカウントを作成する。
	// メールアドレス重複・弱いパスワードはIdP側で拒否される。
	SignUp(ctx context.Context, email, password string) (*ProviderIdentity, error)

	// SignInWithPassword はメールアドレスとパスワードで認証する。
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderIdentity, error)

	// UpdateProfile はアカウントの表示名・アバターURLをIdPプロフィールに保存する。
	UpdateProfile(ctx context.Context, idToken, name, avatarURL string) error
}

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google" 等
}

// OAuthProvider は連携ログイン（OAuth）プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}
