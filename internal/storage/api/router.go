package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/latticefs/lattice/internal/logger"
	"github.com/latticefs/lattice/internal/storage"
	"github.com/latticefs/lattice/internal/telemetry"
)

// NewClientRouter builds the router bound to a Storage Node's client port
// (§6): storage_size, storage_read, storage_write.
func NewClientRouter(node *storage.Node) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := New(node)
	r.Post("/storage_size", h.Size)
	r.Post("/storage_read", h.Read)
	r.Post("/storage_write", h.Write)

	return r
}

// NewCommandRouter builds the router bound to a Storage Node's command port
// (§6): storage_create, storage_delete, storage_copy — issued only by the
// Naming Service.
func NewCommandRouter(node *storage.Node) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	// storage_copy blocks on a peer pull of the whole file; give it more
	// room than a plain byte read/write gets.
	r.Use(middleware.Timeout(time.Minute))

	h := New(node)
	r.Post("/storage_create", h.Create)
	r.Post("/storage_delete", h.Delete)
	r.Post("/storage_copy", h.Copy)
	r.Get("/debug/status", h.DebugStatus)
	r.Get("/health", h.Health)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ctx, span := telemetry.StartProtocolSpan(r.Context(), "storage", r.URL.Path)
		defer span.End()
		r = r.WithContext(ctx)

		logger.Debug("storage API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("storage API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
