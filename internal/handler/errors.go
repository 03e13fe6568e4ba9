package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/travelguru/rentgate/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`

	// Fields はフォーム検証エラーの場合のみ項目単位のエラーを含む。
	Fields []model.FieldError `json:"fields,omitempty"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeFieldErrors はフォーム検証エラーを項目単位の詳細付きで書き込む。
// ステータスは常に400。
func writeFieldErrors(w http.ResponseWriter, fieldErrs []model.FieldError) {
	apiErr := model.NewValidationError(fieldErrs[0].Message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Fields:   fieldErrs,
	})
}

// writeInvalidRequestBody はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthFailed, model.ErrCodeAuthCancelled:
		return http.StatusUnauthorized
	case model.ErrCodeSessionNotFound, model.ErrCodeUserNotFound:
		return http.StatusUnauthorized
	case model.ErrCodeVehicleNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidCategory, model.ErrCodeInvalidSort,
		model.ErrCodeValidationFailed, model.ErrCodeInvalidURL,
		model.ErrCodePastBookingDate:
		return http.StatusBadRequest
	case model.ErrCodeNotOwner, model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
