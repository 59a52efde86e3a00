package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/aether/internal/metrics"
	"github.com/hitoshi/aether/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	Provisioner ProfileProvisioner
	AuthConfig  AuthHandlerConfig

	// プロフィール・取引
	ProfileService     ProfileServiceInterface
	TransactionService TransactionServiceInterface

	// 運用
	HealthChecker    HealthChecker
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer
	Logger           *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Logging → Metrics → Recovery
//	→ (認証ルート) SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）とサインアップ（POST /api/profile）はセッション
// ミドルウェアの外に配置する。CSRF検証は/api配下の状態変更メソッドに適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsCollector != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.MetricsCollector))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Provisioner, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	transactionHandler := NewTransactionHandler(deps.TransactionService)

	// --- 認証不要のルート ---

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/login", authHandler.Login)
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// サインアップはサインイン前に行われるため認証の外に置く
	r.With(middleware.NewCSRFMiddleware(deps.CSRFConfig)).Post("/api/profile", profileHandler.CreateProfile)

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 運用エンドポイント
	if deps.HealthChecker != nil {
		healthHandler := NewHealthHandler(deps.HealthChecker)
		r.Get("/health", healthHandler.Check)
	}
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: CSRF → Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィール
		r.Get("/api/profile/me", profileHandler.GetMyProfile)

		// 取引台帳
		r.Route("/api/transactions", func(r chi.Router) {
			// POST /api/transactions - 取引追記（書き込み専用レート制限を追加）
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", transactionHandler.CreateTransaction)
			r.Get("/", transactionHandler.ListTransactions)
		})
	})

	return r
}
