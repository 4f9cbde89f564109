package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/librarium/internal/catalog/handler"
	"github.com/xela07ax/librarium/internal/infra"
	"github.com/xela07ax/librarium/internal/infra/auth"
	"go.uber.org/zap"
)

// Pinger — healthcheck-контракт к хранилищу.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CatalogServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	guard   *auth.Guard
	metrics *Metrics
	store   Pinger
	promReg *prometheus.Registry

	// Обработчики бизнес-доменов
	authHandler *handler.AuthHandler // /auth/*
	userHandler *handler.UserHandler // /v1/users
	bookHandler *handler.BookHandler // /v1/books
}

// NewCatalogServer инициализирует HTTP-сервер каталога со всеми зависимостями
func NewCatalogServer(
	cfg *infra.Config,
	logger *zap.Logger,
	guard *auth.Guard,
	store Pinger,
	promReg *prometheus.Registry,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	bookH *handler.BookHandler,
) *CatalogServer {
	s := &CatalogServer{
		router:      chi.NewRouter(),
		logger:      logger.Named("catalog-api"),
		cfg:         cfg,
		guard:       guard,
		metrics:     NewMetrics(promReg),
		store:       store,
		promReg:     promReg,
		authHandler: authH,
		userHandler: userH,
		bookHandler: bookH,
	}

	s.routes()
	return s
}

func (s *CatalogServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Регистрация и логин должны быть доступны без токена
		r.Post("/auth/register", s.authHandler.Register)
		r.Post("/auth/login", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", s.health)

		// Метрики Prometheus
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют валидный токен) ---
	// Точечные admin-операции получают второй гейт через With(RequireAdmin).
	r.Group(func(r chi.Router) {
		r.Use(s.guard.Authenticate)

		// Пользователи
		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", s.userHandler.List)
			r.With(s.guard.RequireAdmin).Post("/", s.userHandler.Create) // Создание привилегированных аккаунтов
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.userHandler.Get)
				r.With(s.guard.RequireAdmin).Delete("/", s.userHandler.Delete)
			})
		})

		// Каталог книг
		r.Route("/v1/books", func(r chi.Router) {
			r.Get("/", s.bookHandler.List)
			r.Post("/", s.bookHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.bookHandler.Get)
				r.Post("/borrow", s.bookHandler.Borrow)
				r.Post("/return", s.bookHandler.Return)
				r.With(s.guard.RequireAdmin).Delete("/", s.bookHandler.Delete)
			})
		})
	})
}

func (s *CatalogServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// requestLogger пишет структурированную строку на каждый запрос с trace_id.
func (s *CatalogServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request completed",
			zap.String("trace_id", extractTraceID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// ServeHTTP позволяет использовать CatalogServer как стандартный http.Handler
func (s *CatalogServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
