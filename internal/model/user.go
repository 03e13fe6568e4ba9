// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// プロフィール情報（表示名・アバターURL）はIdPのプロフィールと同期する。
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// パスワード認証（provider="password"）とGoogle認証（provider="google"）の
// 両方を同一構造で扱う。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// Email/Name/AvatarURLは発行時点のユーザープロフィールのスナップショット。
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	AvatarURL string
	ExpiresAt time.Time
	CreatedAt time.Time
}
