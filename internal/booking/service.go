// Package booking は車両予約に関するビジネスロジックを提供する。
package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/travelguru/rentgate/internal/cache"
	"github.com/travelguru/rentgate/internal/model"
	"github.com/travelguru/rentgate/internal/rental"
)

// ResourceBookings は予約読み取りのキャッシュリソース種別。
const ResourceBookings = "bookings"

// Service は車両予約に関するビジネスロジックを提供する。
// 予約は作成のみ可能で、変更・削除の操作は存在しない。
type Service struct {
	api   rental.API
	cache *cache.QueryCache
	now   func() time.Time // テストで時刻を固定するためのフック
}

// NewService はServiceを生成する。
func NewService(api rental.API, queryCache *cache.QueryCache) *Service {
	return &Service{
		api:   api,
		cache: queryCache,
		now:   time.Now,
	}
}

// Create は予約を作成する。
// 過去日付の予約はレンタルAPIへのリクエストに到達する前にここで拒否する。
// 車両名と価格は予約時点の車両から取得したスナップショット。
// 成功時は予約キャッシュを無効化する。
func (s *Service) Create(ctx context.Context, form model.BookingForm, sess *model.Session) (*model.Booking, error) {
	if errs := form.Validate(s.now()); len(errs) > 0 {
		for _, fe := range errs {
			if fe.Code == model.FieldCodePastDate {
				return nil, model.NewPastBookingDateError(form.BookingDate)
			}
		}
		return nil, model.NewValidationError(errs[0].Message)
	}

	vehicle, err := s.api.GetVehicle(ctx, form.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, model.NewVehicleNotFoundError(form.VehicleID)
	}

	booking := &model.Booking{
		VehicleID:   form.VehicleID,
		VehicleName: vehicle.VehicleName,
		UserEmail:   sess.Email,
		UserName:    sess.Name,
		BookingDate: form.BookingDate,
		PricePerDay: vehicle.PricePerDay,
	}

	created, err := s.api.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ResourceBookings)
	slog.Info("booking created",
		slog.String("booking_id", created.ID),
		slog.String("vehicle_id", form.VehicleID),
		slog.String("booking_date", form.BookingDate),
	)

	return created, nil
}

// ListMine はセッションのユーザーの予約一覧を取得する。
// 各予約にはレンタルAPIが車両スナップショットを埋め込む（削除済み車両は省略）。
func (s *Service) ListMine(ctx context.Context, sess *model.Session) ([]model.Booking, error) {
	val, err := s.cache.Do(ctx, ResourceBookings, "email:"+sess.Email, func(ctx context.Context) (interface{}, error) {
		return s.api.ListBookings(ctx, sess.Email)
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Booking), nil
}
