// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/travelguru/rentgate/internal/auth"
	"github.com/travelguru/rentgate/internal/booking"
	"github.com/travelguru/rentgate/internal/cache"
	"github.com/travelguru/rentgate/internal/config"
	"github.com/travelguru/rentgate/internal/database"
	"github.com/travelguru/rentgate/internal/handler"
	"github.com/travelguru/rentgate/internal/logger"
	"github.com/travelguru/rentgate/internal/metrics"
	"github.com/travelguru/rentgate/internal/middleware"
	"github.com/travelguru/rentgate/internal/rental"
	"github.com/travelguru/rentgate/internal/repository"
	"github.com/travelguru/rentgate/internal/security"
	"github.com/travelguru/rentgate/internal/session"
	"github.com/travelguru/rentgate/internal/vehicle"
	"github.com/travelguru/rentgate/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はBFFサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)

	// 3. 観測基盤の初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セキュリティサービスの初期化
	urlGuard := security.NewURLGuard()
	sanitizer := security.NewContentSanitizer()

	// 5. 認証サービスの初期化
	idp := auth.NewIdentityToolkitProvider(auth.IdentityToolkitConfig{
		APIKey: cfg.IdentityAPIKey,
	}, nil)
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	sessionStore := session.NewStore()
	unsubscribeAuth := observeAuthState(sessionStore)
	defer unsubscribeAuth()
	// 初期状態を「未ログイン」として解決し、ストアのloadingを解除する
	sessionStore.Set(nil)

	authService := auth.NewService(
		idp, oauthProvider, userRepo, identRepo, sessionRepo, sessionStore,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	// 6. レンタルAPIクライアントとドメインサービスの初期化
	apiClient := rental.NewClient(
		cfg.RentalAPIBaseURL,
		&http.Client{Timeout: cfg.UpstreamTimeout},
		slog.Default(),
		collector,
	)
	queryCache := cache.NewQueryCache(collector)
	vehicleService := vehicle.NewService(apiClient, queryCache, sanitizer, urlGuard)
	bookingService := booking.NewService(apiClient, queryCache)

	// 7. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configのレート制限値はreq/min単位なのでreq/secに変換する
	if cfg.RateLimitGeneral > 0 {
		rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitListing > 0 {
		rateLimiterCfg.ListingRate = rate.Limit(float64(cfg.RateLimitListing) / 60.0)
		rateLimiterCfg.ListingBurst = cfg.RateLimitListing
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		SessionResolver:   authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		VehicleService: vehicleService,
		BookingService: bookingService,

		Metrics:  collector,
		Gatherer: registry,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 期限切れセッションのスイープをバックグラウンドで定期実行
	sweepJob := cleanup.NewSweepJob(db, slog.Default())
	go func() {
		// 起動直後に1回実行
		if err := sweepJob.Run(ctx); err != nil {
			slog.Error("session sweep failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sweepJob.Run(ctx); err != nil {
					slog.Error("session sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	go func() {
		slog.Info("BFF server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down BFF server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("BFF server stopped gracefully")
	return nil
}

// observeAuthState は認証状態ストアを購読し、ログイン・ログアウトの遷移を
// 構造化ログへ記録する。ストアはプロセス単位の遷移ストリームであり、
// リクエスト単位のセッション解決はここには流れない。
// 戻り値は購読解除関数。
func observeAuthState(store *session.Store) func() {
	return store.Subscribe(func(snap session.Snapshot) {
		if snap.Loading {
			return
		}
		if snap.Session != nil {
			slog.Info("auth state changed",
				slog.Bool("authenticated", true),
				slog.String("user_id", snap.Session.UserID),
			)
			return
		}
		slog.Info("auth state changed", slog.Bool("authenticated", false))
	})
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
