package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/travelguru/rentgate/internal/middleware"
	"github.com/travelguru/rentgate/internal/model"
)

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	Create(ctx context.Context, form model.BookingForm, sess *model.Session) (*model.Booking, error)
	ListMine(ctx context.Context, sess *model.Session) ([]model.Booking, error)
}

// BookingHandler は車両予約のHTTPハンドラー。
// 予約は作成と一覧取得のみ。変更・削除のエンドポイントは存在しない。
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create は予約を作成する。
// POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	var form model.BookingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), form, sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// ListMine はログインユーザーの予約一覧を返す。
// GET /api/bookings
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	bookings, err := h.service.ListMine(r.Context(), sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if bookings == nil {
		bookings = []model.Booking{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookings)
}
