package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"dpformance-site/pkg/logging"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	StaticDir    string
	PublicPrefix string
	CORSOrigins  []string
	Logger       zerolog.Logger
}

// NewRouter wires every route of the site
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(opts.Logger))
	r.Use(logging.Recoverer(opts.Logger))

	r.Get("/health", h.HealthHandler)

	r.Get("/", h.IndexHandler)
	r.Get("/works/{key}/view", h.ViewerHandler)
	r.Post("/lang", h.LanguageHandler)

	r.Route("/api", func(r chi.Router) {
		// extra segments are ignored and a missing folder lists nothing
		r.Get("/gallery", h.GalleryListHandler)
		r.Get("/gallery/", h.GalleryListHandler)
		r.Get("/gallery/{folder}", h.GalleryListHandler)
		r.Get("/gallery/{folder}/*", h.GalleryListHandler)
		r.Post("/contact", h.ContactHandler)
	})

	prefix := strings.TrimSuffix("/"+strings.Trim(opts.PublicPrefix, "/"), "/")
	if prefix == "" {
		r.Get("/{folder}/{file}", h.MediaHandler)
	} else {
		// nothing under the prefix reaches the static file server
		r.Route(prefix, func(r chi.Router) {
			r.Get("/{file}", h.MediaHandler)
			r.Get("/{folder}/{file}", h.MediaHandler)
			r.NotFound(http.NotFound)
		})
	}

	if opts.StaticDir != "" {
		r.Handle("/*", staticFiles(opts.StaticDir))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(r)
}

// staticFiles serves dir without directory listings
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
