package model

import (
	"strings"
	"time"
)

// FieldError はフォーム検証で検出された項目単位のエラーを表す。
// Codeは機械可読なエラーコード、Messageはユーザー向けの説明。
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// フォーム検証のエラーコード
const (
	FieldCodeRequired         = "REQUIRED"
	FieldCodeInvalidEmail     = "INVALID_EMAIL"
	FieldCodeTooShort         = "TOO_SHORT"
	FieldCodeMissingUpper     = "MISSING_UPPERCASE"
	FieldCodeMissingLower     = "MISSING_LOWERCASE"
	FieldCodeMismatch         = "MISMATCH"
	FieldCodeInvalidCategory  = "INVALID_CATEGORY"
	FieldCodeNegativePrice    = "NEGATIVE_PRICE"
	FieldCodeInvalidDate      = "INVALID_DATE"
	FieldCodePastDate         = "PAST_DATE"
)

// RegisterForm は新規登録フォームの入力を表す。
type RegisterForm struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
	AvatarURL       string `json:"photoURL"`
}

// Validate はフォーム入力を検証し、項目単位のエラー一覧を返す。
// 検証は純粋関数であり、I/Oを伴わない。エラーがなければnilを返す。
func (f RegisterForm) Validate() []FieldError {
	var errs []FieldError

	if f.Email == "" {
		errs = append(errs, FieldError{Field: "email", Code: FieldCodeRequired, Message: "メールアドレスを入力してください。"})
	} else if !looksLikeEmail(f.Email) {
		errs = append(errs, FieldError{Field: "email", Code: FieldCodeInvalidEmail, Message: "メールアドレスの形式が正しくありません。"})
	}

	errs = append(errs, validatePassword(f.Password)...)

	if f.Password != f.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirmPassword", Code: FieldCodeMismatch, Message: "パスワードが一致しません。"})
	}

	return errs
}

// LoginForm はログインフォームの入力を表す。
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate はフォーム入力を検証し、項目単位のエラー一覧を返す。
func (f LoginForm) Validate() []FieldError {
	var errs []FieldError
	if f.Email == "" {
		errs = append(errs, FieldError{Field: "email", Code: FieldCodeRequired, Message: "メールアドレスを入力してください。"})
	}
	if f.Password == "" {
		errs = append(errs, FieldError{Field: "password", Code: FieldCodeRequired, Message: "パスワードを入力してください。"})
	}
	return errs
}

// VehicleForm は車両登録・更新フォームの入力を表す。
// 元のSPAが動的なkey-valueオブジェクトで扱っていた状態を、
// 項目ごとに型付けされた明示的な構造体として表現する。
type VehicleForm struct {
	VehicleName  string  `json:"vehicleName"`
	OwnerName    string  `json:"ownerName"`
	Category     string  `json:"category"`
	PricePerDay  float64 `json:"pricePerDay"`
	Location     string  `json:"location"`
	Availability bool    `json:"availability"`
	Description  string  `json:"description"`
	CoverImage   string  `json:"coverImage"`
}

// Validate はフォーム入力を検証し、項目単位のエラー一覧を返す。
func (f VehicleForm) Validate() []FieldError {
	var errs []FieldError

	if f.VehicleName == "" {
		errs = append(errs, FieldError{Field: "vehicleName", Code: FieldCodeRequired, Message: "車両名を入力してください。"})
	}
	if f.OwnerName == "" {
		errs = append(errs, FieldError{Field: "ownerName", Code: FieldCodeRequired, Message: "オーナー名を入力してください。"})
	}
	if f.Category == "" {
		errs = append(errs, FieldError{Field: "category", Code: FieldCodeRequired, Message: "カテゴリを選択してください。"})
	} else if !IsValidCategory(f.Category) {
		errs = append(errs, FieldError{Field: "category", Code: FieldCodeInvalidCategory, Message: "カテゴリの値が正しくありません。"})
	}
	if f.PricePerDay < 0 {
		errs = append(errs, FieldError{Field: "pricePerDay", Code: FieldCodeNegativePrice, Message: "1日あたりの料金には0以上の値を入力してください。"})
	}
	if f.Location == "" {
		errs = append(errs, FieldError{Field: "location", Code: FieldCodeRequired, Message: "場所を入力してください。"})
	}

	return errs
}

// BookingForm は予約フォームの入力を表す。
type BookingForm struct {
	VehicleID   string `json:"vehicleId"`
	BookingDate string `json:"bookingDate"`
}

// Validate はフォーム入力を検証し、項目単位のエラー一覧を返す。
// 予約日が今日（now基準の日付）より前の場合は、ネットワーク呼び出しに
// 到達する前にここで拒否する。
func (f BookingForm) Validate(now time.Time) []FieldError {
	var errs []FieldError

	if f.VehicleID == "" {
		errs = append(errs, FieldError{Field: "vehicleId", Code: FieldCodeRequired, Message: "車両を選択してください。"})
	}

	if f.BookingDate == "" {
		errs = append(errs, FieldError{Field: "bookingDate", Code: FieldCodeRequired, Message: "予約日を選択してください。"})
		return errs
	}

	date, err := ParseBookingDate(f.BookingDate)
	if err != nil {
		errs = append(errs, FieldError{Field: "bookingDate", Code: FieldCodeInvalidDate, Message: "予約日の形式が正しくありません（YYYY-MM-DD）。"})
		return errs
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		errs = append(errs, FieldError{Field: "bookingDate", Code: FieldCodePastDate, Message: "予約日に過去の日付は指定できません。"})
	}

	return errs
}

// validatePassword はパスワードの強度要件を検証する。
// 6文字以上、大文字・小文字を各1文字以上含むこと。
func validatePassword(password string) []FieldError {
	var errs []FieldError
	if len(password) < 6 {
		errs = append(errs, FieldError{Field: "password", Code: FieldCodeTooShort, Message: "パスワードは6文字以上で入力してください。"})
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, FieldError{Field: "password", Code: FieldCodeMissingUpper, Message: "パスワードには大文字を1文字以上含めてください。"})
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, FieldError{Field: "password", Code: FieldCodeMissingLower, Message: "パスワードには小文字を1文字以上含めてください。"})
	}
	return errs
}

// looksLikeEmail はメールアドレスの形式を簡易的に検証する。
// 厳密なRFC準拠の検証はIdP側の責務であり、ここでは明白な誤入力のみ弾く。
func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t")
}
