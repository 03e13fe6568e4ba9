// Package rental はレンタルAPI（車両・予約を管理するバックエンド）のクライアントを提供する。
package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/travelguru/rentgate/internal/metrics"
	"github.com/travelguru/rentgate/internal/model"
)

// API はレンタルAPIの操作インターフェース。
// サービス層はこのインターフェースに依存する。
type API interface {
	ListVehicles(ctx context.Context, query model.VehicleQuery) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)
	LatestVehicles(ctx context.Context, limit int) ([]model.Vehicle, error)
	TopRatedVehicles(ctx context.Context) ([]model.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	CreateBooking(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	ListBookings(ctx context.Context, userEmail string) ([]model.Booking, error)
}

// Client はレンタルAPIのHTTPクライアント。
// 冪等なGETは一時的障害（接続エラー・429・5xx）に対して1回だけ再試行する。
// 変更系リクエストは二重実行を避けるため再試行しない。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		metrics:    collector,
	}
}

// upstreamErrorResponse はレンタルAPIのエラーレスポンスボディ。
type upstreamErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ListVehicles は条件に合致する車両一覧を取得する。
func (c *Client) ListVehicles(ctx context.Context, query model.VehicleQuery) ([]model.Vehicle, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var vehicles []model.Vehicle
	if err := c.getJSON(ctx, "/vehicles", query.Params(), &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// GetVehicle は指定IDの車両を取得する。見つからない場合は(nil, nil)を返す。
func (c *Client) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	body, status, err := c.doWithRetry(ctx, http.MethodGet, "/vehicles/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if ClassifyHTTPStatus(status) != RequestResultOK {
		return nil, c.upstreamError(status, body)
	}

	var vehicle model.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to parse vehicle response: %w", err)
	}
	return &vehicle, nil
}

// LatestVehicles は新着順の車両一覧を取得する。
func (c *Client) LatestVehicles(ctx context.Context, limit int) ([]model.Vehicle, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var vehicles []model.Vehicle
	if err := c.getJSON(ctx, "/vehicles/latest", params, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// TopRatedVehicles は評価上位の車両一覧を取得する。
func (c *Client) TopRatedVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	if err := c.getJSON(ctx, "/vehicles/top-rated", nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CreateVehicle は車両リスティングを登録する。
func (c *Client) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	var created model.Vehicle
	if err := c.mutateJSON(ctx, http.MethodPost, "/vehicles", vehicle, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateVehicle は車両リスティングを更新する。
func (c *Client) UpdateVehicle(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error) {
	var updated model.Vehicle
	if err := c.mutateJSON(ctx, http.MethodPut, "/vehicles/"+url.PathEscape(id), vehicle, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteVehicle は車両リスティングを削除する。
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.mutateJSON(ctx, http.MethodDelete, "/vehicles/"+url.PathEscape(id), nil, nil)
}

// CreateBooking は予約を作成する。
func (c *Client) CreateBooking(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	var created model.Booking
	if err := c.mutateJSON(ctx, http.MethodPost, "/bookings", booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListBookings は指定ユーザーの予約一覧を取得する。
// 各予約にはレンタルAPIが車両スナップショットを埋め込む。
func (c *Client) ListBookings(ctx context.Context, userEmail string) ([]model.Booking, error) {
	params := url.Values{}
	params.Set("userEmail", userEmail)

	var bookings []model.Booking
	if err := c.getJSON(ctx, "/bookings", params, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// getJSON はGETリクエストを実行し、レスポンスをoutにデコードする。
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	body, status, err := c.doWithRetry(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if ClassifyHTTPStatus(status) != RequestResultOK {
		return c.upstreamError(status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// mutateJSON は変更系リクエストを実行し、outが非nilならレスポンスをデコードする。
// 変更系は再試行しない。
func (c *Client) mutateJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = b
	}

	body, status, err := c.doWithRetry(ctx, method, path, nil, reqBody)
	if err != nil {
		return err
	}
	if ClassifyHTTPStatus(status) != RequestResultOK {
		return c.upstreamError(status, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// doWithRetry はHTTPリクエストを実行する。冪等なGETに限り、接続エラーまたは
// 一時的障害ステータス（429/5xx）に対して1回だけ再試行する。
func (c *Client) doWithRetry(ctx context.Context, method, path string, params url.Values, reqBody []byte) ([]byte, int, error) {
	attempts := 1
	if IsRetryableMethod(method) {
		attempts = maxGETAttempts
	}

	var lastErr error
	var body []byte
	var status int

	for i := 0; i < attempts; i++ {
		if i > 0 {
			if c.metrics != nil {
				c.metrics.RecordUpstreamRetry()
			}
			c.logger.Warn("レンタルAPIへのリクエストを再試行します",
				slog.String("method", method),
				slog.String("path", path),
			)
		}

		body, status, lastErr = c.do(ctx, method, path, params, reqBody)
		if lastErr != nil {
			// 接続エラーは一時的障害として扱い、再試行対象とする
			continue
		}
		if ClassifyHTTPStatus(status) == RequestResultTransient {
			lastErr = nil
			continue
		}
		return body, status, nil
	}

	if lastErr != nil {
		return nil, 0, model.NewUpstreamError("")
	}
	// 再試行しても一時的障害が解消しなかった
	return body, status, nil
}

// do は単一のHTTPリクエストを実行し、レスポンスボディとステータスを返す。
func (c *Client) do(ctx context.Context, method, path string, params url.Values, reqBody []byte) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("レンタルAPIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(method, resp.StatusCode)
		c.metrics.RecordUpstreamLatency(time.Since(start))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// upstreamError は非2xxレスポンスをAPIError（カテゴリapi）に変換する。
// レスポンスボディのエラーメッセージがあればそれを保持する。
func (c *Client) upstreamError(status int, body []byte) error {
	c.logger.Error("レンタルAPIがエラーステータスを返しました",
		slog.Int("http_status", status),
	)

	var errResp upstreamErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return model.NewUpstreamError(errResp.Error)
		}
		if errResp.Message != "" {
			return model.NewUpstreamError(errResp.Message)
		}
	}
	return model.NewUpstreamError(fmt.Sprintf("レンタルAPIがステータス %d を返しました", status))
}

// compile-time interface check
var _ API = (*Client)(nil)
