package rental

import "net/http"

// maxGETAttempts は冪等なGETリクエストの最大試行回数。
// 一時的障害に対して1回だけ再試行する。
const maxGETAttempts = 2

// RequestResult はHTTPステータスコードに基づくリクエスト結果の分類。
type RequestResult int

const (
	// RequestResultOK はリクエスト成功（2xx）。
	RequestResultOK RequestResult = iota
	// RequestResultNotFound はリソース未検出（404）。
	RequestResultNotFound
	// RequestResultTransient は一時的障害（429/5xx）。冪等なリクエストのみ再試行可能。
	RequestResultTransient
	// RequestResultPermanent は恒久的エラー（その他の4xx）。再試行しない。
	RequestResultPermanent
)

// ClassifyHTTPStatus はHTTPステータスコードをリクエスト結果に分類する。
func ClassifyHTTPStatus(statusCode int) RequestResult {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return RequestResultOK
	case statusCode == http.StatusNotFound:
		return RequestResultNotFound
	case statusCode == http.StatusTooManyRequests:
		return RequestResultTransient
	case statusCode >= 500:
		return RequestResultTransient
	default:
		return RequestResultPermanent
	}
}

// IsRetryableMethod は再試行可能なHTTPメソッドかを判定する。
// 再試行は冪等なGETに限る。POST/PUT/DELETEは二重実行を避けるため再試行しない。
func IsRetryableMethod(method string) bool {
	return method == http.MethodGet
}
