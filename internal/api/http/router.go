package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ilog "github.com/amakane-hakari/weakcache/internal/log"
)

type routerConfig struct {
	logger  ilog.Logger
	metrics http.Handler
}

// RouterOption はルーターのオプションです。
type RouterOption func(*routerConfig)

// WithAccessLog はアクセスログとパニック時のログを出力するロガーを設定します。
func WithAccessLog(l ilog.Logger) RouterOption {
	return func(c *routerConfig) { c.logger = l }
}

// WithMetricsHandler は /metrics で公開するハンドラを設定します。
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(c *routerConfig) { c.metrics = h }
}

// NewRouter はキャッシュを公開する HTTP ルーターを作成します。
func NewRouter(st Cache, opts ...RouterOption) http.Handler {
	var cfg routerConfig
	for _, o := range opts {
		o(&cfg)
	}

	r := chi.NewRouter()
	r.Use(RecoverMiddleware(cfg.logger))
	r.Use(RequestIDMiddleware())
	r.Use(AccessLog(cfg.logger))

	r.Get("/health", healthHandler(st))
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	h := &cacheHandler{st: st}
	h.mount(r)
	return r
}
