package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/travelguru/rentgate/internal/middleware"
	"github.com/travelguru/rentgate/internal/model"
)

// defaultLatestLimit はGET /api/vehicles/latestのデフォルト件数。
const defaultLatestLimit = 6

// VehicleServiceInterface は車両ハンドラーが必要とするサービスインターフェース。
type VehicleServiceInterface interface {
	List(ctx context.Context, query model.VehicleQuery) ([]model.Vehicle, error)
	Get(ctx context.Context, id string) (*model.Vehicle, error)
	Latest(ctx context.Context, limit int) ([]model.Vehicle, error)
	TopRated(ctx context.Context) ([]model.Vehicle, error)
	Mine(ctx context.Context, ownerEmail string) ([]model.Vehicle, error)
	Create(ctx context.Context, form model.VehicleForm, sess *model.Session) (*model.Vehicle, error)
	Update(ctx context.Context, id string, form model.VehicleForm, sess *model.Session) (*model.Vehicle, error)
	Delete(ctx context.Context, id string, sess *model.Session) error
}

// VehicleHandler は車両リスティングのHTTPハンドラー。
type VehicleHandler struct {
	service VehicleServiceInterface
}

// NewVehicleHandler はVehicleHandlerを生成する。
func NewVehicleHandler(service VehicleServiceInterface) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// List は車両一覧を返す。フィルタ・ソートはクエリパラメータで指定する。
// GET /api/vehicles?category=SUV&location=Tokyo&sortBy=price&sortOrder=asc
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.VehicleQuery{
		Category:  q.Get("category"),
		Location:  q.Get("location"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	vehicles, err := h.service.List(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeVehicleList(w, vehicles)
}

// Latest は新着順の車両一覧を返す。
// GET /api/vehicles/latest?limit=6
func (h *VehicleHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit := defaultLatestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	vehicles, err := h.service.Latest(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeVehicleList(w, vehicles)
}

// TopRated は評価上位の車両一覧を返す。
// GET /api/vehicles/top-rated
func (h *VehicleHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.TopRated(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeVehicleList(w, vehicles)
}

// Mine はログインユーザーが登録した車両一覧を返す。
// GET /api/vehicles/mine
func (h *VehicleHandler) Mine(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	vehicles, err := h.service.Mine(r.Context(), sess.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeVehicleList(w, vehicles)
}

// Get は車両詳細を返す。
// GET /api/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

// Create は車両リスティングを登録する。
// POST /api/vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	var form model.VehicleForm
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

// Update は車両リスティングを更新する。
// PUT /api/vehicles/{id}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	var form model.VehicleForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), form, sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete は車両リスティングを削除する。
// DELETE /api/vehicles/{id}
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionNotFoundError())
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), sess); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeVehicleList は車両一覧をJSONで書き込む。空の場合も空配列を返す。
func writeVehicleList(w http.ResponseWriter, vehicles []model.Vehicle) {
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}
