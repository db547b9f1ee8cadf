package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-collage/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config)
	collageHandler := handlers.NewCollageHandler(s.config, s.generator, s.logger)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)
		r.Post("/layout", collageHandler.Layout)
		r.Post("/collage", collageHandler.Collage)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a short page pointing at the API
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Photo Collage</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 4rem auto; color: #222; }
        code { background: #f2f2f2; padding: 2px 6px; border-radius: 4px; }
    </style>
</head>
<body>
    <h1>Photo Collage</h1>
    <p>Layout defaults and presets: <a href="/api/v1/config">/api/v1/config</a></p>
    <p>Compute a layout: <code>POST /api/v1/layout {"dir": "receipts"}</code></p>
    <p>Download the PDF: <code>POST /api/v1/collage {"dir": "receipts", "preset": "quad"}</code></p>
</body>
</html>`))
}
