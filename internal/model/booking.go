package model

import "time"

// Booking は車両予約を表す。
// VehicleNameとPricePerDayは予約時点のスナップショット。
// 予約はクライアントから作成のみ可能で、変更・削除のAPIは存在しない。
type Booking struct {
	ID          string    `json:"_id,omitempty"`
	VehicleID   string    `json:"vehicleId"`
	VehicleName string    `json:"vehicleName"`
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName"`
	BookingDate string    `json:"bookingDate"` // "2006-01-02" 形式
	PricePerDay float64   `json:"pricePerDay"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`

	// Vehicle はレンタルAPIが予約一覧に埋め込む車両スナップショット。
	// 車両が削除済みの場合は省略される。
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

// bookingDateLayout は予約日のワイヤフォーマット。
const bookingDateLayout = "2006-01-02"

// ParseBookingDate は予約日文字列を日付として解釈する。
func ParseBookingDate(s string) (time.Time, error) {
	return time.Parse(bookingDateLayout, s)
}
