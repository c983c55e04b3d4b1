package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/latticefs/lattice/internal/logger"
	"github.com/latticefs/lattice/internal/naming/service"
	"github.com/latticefs/lattice/internal/telemetry"
)

// NewRegistrationRouter builds the router bound to the registration port
// (§6): Storage Nodes announce themselves here, before they are reachable
// on the service port's client-facing endpoints.
func NewRegistrationRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := New(svc)
	r.Post("/register", h.Register)
	r.Get("/schema", h.Schema)
	r.Get("/debug/status", h.DebugStatus)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewServiceRouter builds the router bound to the service port (§6): every
// namespace, lock, and storage-location query a client issues.
func NewServiceRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	// Lock acquisition can legitimately block for as long as a writer holds
	// a lock; a short fixed timeout would turn §4.5's fairness queue into a
	// client-visible error instead of a wait.
	r.Use(middleware.Timeout(5 * time.Minute))

	h := New(svc)
	r.Post("/is_valid_path", h.IsValidPath)
	r.Post("/getstorage", h.GetStorage)
	r.Post("/list", h.List)
	r.Post("/is_directory", h.IsDirectory)
	r.Post("/is_file", h.IsFile)
	r.Post("/create_directory", h.CreateDirectory)
	r.Post("/create_file", h.CreateFile)
	r.Post("/delete", h.Delete)
	r.Post("/lock", h.Lock)
	r.Post("/unlock", h.Unlock)

	return r
}

// requestLogger logs each request's start and completion through the
// shared internal logger, mirroring the teacher's access-log shape.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ctx, span := telemetry.StartProtocolSpan(r.Context(), "naming", r.URL.Path)
		defer span.End()
		r = r.WithContext(ctx)

		logger.Debug("naming API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("naming API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
