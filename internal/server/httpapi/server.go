// Package httpapi exposes the BlogKeeper services over HTTP with a chi
// router: public auth endpoints, the authorization gate middleware, admin
// account management, blog posts, health and Prometheus metrics.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes the transport.
type Options struct {
	// MaxImageSize caps the multipart body of post uploads.
	MaxImageSize       int64
	CORSAllowedOrigins []string
	// Registry receives the HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry
}

// Server wires HTTP handlers to the services.
type Server struct {
	auth     *services.AuthService
	accounts *services.AccountService
	posts    *services.PostService
	logger   logging.Logger
	metrics  *Metrics
	opts     Options
}

func NewServer(auth *services.AuthService, accounts *services.AccountService, posts *services.PostService,
	logger logging.Logger, opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	return &Server{
		auth:     auth,
		accounts: accounts,
		posts:    posts,
		logger:   logger.With("module", "http"),
		metrics:  NewMetrics(opts.Registry),
		opts:     opts,
	}
}

// Routes builds the request router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Good"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", s.signUp)
			r.Post("/login", s.login)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/logout", s.logout)
				r.Post("/logout-all", s.logoutAll)
				r.Get("/my-profile", s.myProfile)
			})
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.requireRole(models.RoleAdmin))
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)
			r.Patch("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", s.listBlogs)
			r.Get("/{id}", s.getBlog)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/", s.createBlog)
				r.Patch("/{id}", s.updateBlog)
				r.Delete("/{id}", s.deleteBlog)
			})
		})
	})

	return r
}
