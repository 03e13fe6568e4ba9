package handler

import (
	"fmt"
	"net/http"
)

// pageShellTemplate はSPAを起動するHTMLシェル。
// data-theme属性にはCookieのテーマ設定を反映し、初期描画のちらつきを防ぐ。
const pageShellTemplate = `<!DOCTYPE html>
<html lang="ja" data-theme="%s">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>TravelGuru</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body>
<div id="root"></div>
<script type="module" src="/assets/app.js"></script>
</body>
</html>
`

// PageHandler はSPAのページシェルを配信するハンドラー。
// ルーティングの実体はフロントエンド側にあり、サーバーはどのページパスにも
// 同一のシェルを返す。保護ページの表示可否はページガードミドルウェアが判定する。
type PageHandler struct{}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Shell はページシェルを返す。
func (h *PageHandler) Shell(w http.ResponseWriter, r *http.Request) {
	theme := ThemeLight
	if cookie, err := r.Cookie(themeCookieName); err == nil && isValidTheme(cookie.Value) {
		theme = cookie.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShellTemplate, theme)
}

// NotFound は未定義パスへの404レスポンスを返す。
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `<!DOCTYPE html><html lang="ja"><body><h1>404</h1><p>お探しのページは見つかりませんでした。</p></body></html>`)
}
