package httpserver

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/handlers"
)

// NewServer creates the HTTP server with the status, health, metrics and webhook endpoints.
func NewServer(cfg config.Config, h handlers.WebhookHandler, log *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewRouter(cfg, h, log),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
}

// NewRouter registers the routes on a chi router.
func NewRouter(cfg config.Config, h handlers.WebhookHandler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverer(log))

	status := func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "webhook server active",
			"service": cfg.Server.ServiceName,
		})
	}
	r.Get("/", status)
	r.Get("/healthz", status)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post(cfg.WebhookPath(), h.Handle)
	for _, alias := range cfg.Server.RouteAliases {
		if alias == "" || alias == cfg.WebhookPath() {
			continue
		}
		r.Post(alias, h.Handle)
	}

	return r
}

// recoverer turns a panic into a logged 500 with a JSON body.
func recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in handler",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.ByteString("stack", debug.Stack()),
					)
					handlers.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
