package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/haddriax/MisinformationGame-API/internal/metrics"
	"github.com/haddriax/MisinformationGame-API/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// スタディ
	StudyService  StudyServiceInterface
	ImageUploader ImageUploader

	// 結果
	ResultService ResultServiceInterface

	// ダッシュボード
	DashboardService DashboardServiceInterface

	// ヘルスチェック
	HealthChecker HealthChecker

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → (グループごとのレート制限・セッション)
//
// 管理ルート（/study/*, /dashboard/*）はセッション認証とユーザー単位の
// レート制限を要求する。参加者向けルート（/result/*, /study/get, /study/all,
// /login）は未認証で、クライアントIP単位のレート制限のみを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	studyHandler := NewStudyHandler(deps.StudyService, deps.ImageUploader, deps.Metrics)
	resultHandler := NewResultHandler(deps.ResultService, deps.Metrics)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 運用エンドポイント（レート制限なし） ---

	r.Get("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証不要のルート ---
	// 参加者クライアントとログインフォームが使う。IP単位のレート制限を適用。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.PublicMiddleware())

		r.Post("/login", authHandler.Login)
		r.Get("/login/{user_id}", authHandler.GetUser)
		r.Post("/logout", authHandler.Logout)

		// 参加者クライアントがゲーム開始時にスタディを取得する
		r.Get("/study/get/{study_id}", studyHandler.Get)
		r.Get("/study/all", studyHandler.ListAll)

		// 結果のアップロードと取得
		r.Route("/result", func(r chi.Router) {
			r.Post("/upload", resultHandler.Upload)
			r.Post("/get_all/{study_id}", resultHandler.ListByStudy)
			r.Post("/get_all_from_latest", resultHandler.ListFromLatest)
		})
	})

	// --- 認証が必要な管理ルート ---
	// ミドルウェアスタック: Session → RateLimit(Admin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.AdminMiddleware())

		r.Route("/study", func(r chi.Router) {
			r.Post("/upload", studyHandler.Upload)
			r.Put("/enable", studyHandler.SetEnabled)
			r.Delete("/delete/{study_id}", studyHandler.Delete)
			r.Post("/upload-base64-image", studyHandler.UploadBase64Image)
		})

		r.Post("/dashboard/{study_id}", dashboardHandler.ParticipantCount)
	})

	return r
}
