// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// カテゴリ: auth（IdP由来）, api（レンタルAPI由来）, validation（クライアントローカル検証）, system
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, api, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeAuthCancelled     = "AUTH_CANCELLED"
	ErrCodeUpstreamFailed    = "UPSTREAM_FAILED"
	ErrCodeVehicleNotFound   = "VEHICLE_NOT_FOUND"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidSort       = "INVALID_SORT"
	ErrCodePastBookingDate   = "PAST_BOOKING_DATE"
	ErrCodeNotOwner          = "NOT_OWNER"
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeSSRFBlocked       = "SSRF_BLOCKED"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
)

// NewAuthError はIdP由来の認証エラーを生成する。
// providerMessageにはIdPが返した人間可読メッセージをそのまま保持する。
// 認証エラーは自動リトライせず、常にユーザーへ表示する。
func NewAuthError(providerMessage string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  providerMessage,
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewAuthCancelledError は連携ログインフローの中断エラーを生成する。
func NewAuthCancelledError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthCancelled,
		Message:  "連携ログインがキャンセルされました。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewUpstreamError はレンタルAPI由来のエラーを生成する。
// serverMessageが空の場合は汎用の通信失敗メッセージを使用する。
func NewUpstreamError(serverMessage string) *APIError {
	msg := serverMessage
	if msg == "" {
		msg = "レンタルAPIとの通信に失敗しました。"
	}
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  msg,
		Category: "api",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewVehicleNotFoundError は車両未検出エラーを生成する。
func NewVehicleNotFoundError(vehicleID string) *APIError {
	return &APIError{
		Code:     ErrCodeVehicleNotFound,
		Message:  fmt.Sprintf("指定された車両が見つかりません: %s", vehicleID),
		Category: "api",
		Action:   "車両一覧から車両を選び直してください。",
	}
}

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "カテゴリには SUV、Electric、Van、Sedan、Truck、Motorcycle のいずれかを指定してください。",
	}
}

// NewInvalidSortError は無効なソート指定エラーを生成する。
func NewInvalidSortError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効なソート指定です: %s", field),
		Category: "validation",
		Action:   "ソートには price または date を、順序には asc または desc を指定してください。",
	}
}

// NewPastBookingDateError は過去日付の予約エラーを生成する。
// ネットワーク層に到達する前のクライアントローカル検証で使用する。
func NewPastBookingDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodePastBookingDate,
		Message:  fmt.Sprintf("予約日に過去の日付は指定できません: %s", date),
		Category: "validation",
		Action:   "本日以降の日付を選択してください。",
	}
}

// NewNotOwnerError は所有者以外による変更操作のエラーを生成する。
// このチェックはUI上の利便性のためのものであり、最終的な認可はレンタルAPI側の責務。
func NewNotOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotOwner,
		Message:  "この車両を変更する権限がありません。",
		Category: "validation",
		Action:   "自分が登録した車両のみ編集・削除できます。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewValidationError はフォーム検証エラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "エラーが表示された項目を修正してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewSessionNotFoundError はセッションが無効または期限切れの場合のエラーを生成する。
func NewSessionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  "セッションが無効または期限切れです。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
