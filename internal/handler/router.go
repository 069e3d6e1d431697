package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joestump/title-optimizer/internal/llm"
	"github.com/joestump/title-optimizer/internal/logger"
	"github.com/joestump/title-optimizer/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Completer   llm.Completer
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter assembles the chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	// Only JSON clients on other origins need this; the HTML form posts same-origin.
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", logger.RequestIDHeader},
			ExposedHeaders: []string{logger.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	// Static assets (embedded). fs.Sub so the file server sees css/app.css directly.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	optimize := NewOptimizeHandler(deps.Completer)
	r.Get("/", optimize.Form)
	r.Post("/optimize", optimize.Optimize)

	theme := NewThemeHandler()
	r.Post("/theme", theme.Toggle)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
