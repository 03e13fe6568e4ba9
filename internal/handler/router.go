package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/travelguru/rentgate/internal/metrics"
	"github.com/travelguru/rentgate/internal/middleware"
)

// loginPagePath は未認証の保護ページアクセスのリダイレクト先。
const loginPagePath = "/login"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	VehicleService VehicleServiceInterface
	BookingService BookingServiceInterface

	// 観測
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session(解決のみ)
//
// 表示可否の判定はルートグループごとのガードミドルウェアが行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	vehicleHandler := NewVehicleHandler(deps.VehicleService)
	bookingHandler := NewBookingHandler(deps.BookingService)
	themeHandler := NewThemeHandler(deps.AuthConfig.CookieSecure, deps.AuthConfig.CookieDomain)
	pageHandler := NewPageHandler()

	// --- 運用エンドポイント ---

	r.Get("/healthz", healthzHandler)
	r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(deps.Gatherer))

	// --- 認証ルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/google/login", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- APIルート ---

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// テーマ設定はログイン状態と独立
		r.Get("/theme", themeHandler.Get)
		r.Put("/theme", themeHandler.Put)

		// 公開の車両読み取り
		r.Get("/vehicles", vehicleHandler.List)
		r.Get("/vehicles/latest", vehicleHandler.Latest)
		r.Get("/vehicles/top-rated", vehicleHandler.TopRated)

		// 認証が必要なルート: APIガード → API全般レート制限
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAPIGuardMiddleware())
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Route("/vehicles", func(r chi.Router) {
				// 登録は専用レート制限を追加
				r.With(deps.RateLimiter.ListingCreationMiddleware()).Post("/", vehicleHandler.Create)
				r.Get("/mine", vehicleHandler.Mine)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", vehicleHandler.Get)
					r.Put("/", vehicleHandler.Update)
					r.Delete("/", vehicleHandler.Delete)
				})
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", bookingHandler.ListMine)
				r.Post("/", bookingHandler.Create)
			})
		})
	})

	// --- ページルート ---

	// 公開ページ
	for _, path := range []string{"/", "/login", "/register", "/allVehicles", "/about"} {
		r.Get(path, pageHandler.Shell)
	}

	// 保護ページ: 未認証はfromパラメータ付きでログインページへリダイレクト
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewPageGuardMiddleware(loginPagePath))

		r.Get("/vehicle/{id}", pageHandler.Shell)
		r.Get("/addVehicle", pageHandler.Shell)
		r.Get("/myVehicles", pageHandler.Shell)
		r.Get("/updateVehicle/{id}", pageHandler.Shell)
		r.Get("/myBookings", pageHandler.Shell)
	})

	r.NotFound(pageHandler.NotFound)

	return r
}

// healthzHandler はヘルスチェックエンドポイント。
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
