package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

const requestTimeout = 60 * time.Second

// Routes builds the router. Everything lives under /api/v1; routes outside
// the public groups require a bearer access token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondFailure(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", s.health)

		// public
		v1.Group(func(pub chi.Router) {
			pub.With(s.rateLimit).Post("/auth/login", s.login)
			pub.With(s.rateLimit).Post("/auth/refresh", s.refresh)

			pub.Post("/users", s.createUser)
			pub.With(s.rateLimit).Post("/users/forgot-my-password", s.forgotPassword)
			pub.With(s.rateLimit).Post("/users/reset-password", s.resetPassword)

			pub.Post("/products/generate-order", s.generateOrder)
		})

		// bearer
		v1.Group(func(priv chi.Router) {
			priv.Use(jwtauth.Verifier(s.tokenAuth))
			priv.Use(s.authenticator)

			priv.Post("/auth/logout", s.logout)

			priv.Get("/users", s.listUsers)
			priv.Get("/users/{id}", s.getUser)
			priv.Put("/users/{id}", s.updateUser)
			priv.Delete("/users/{id}", s.deleteUser)

			priv.Post("/products", s.createProduct)
			priv.Get("/products", s.listProducts)
			priv.Get("/products/low-stock", s.lowStock)
			priv.Get("/products/{id}", s.getProduct)
			priv.Patch("/products/{id}", s.updateProduct)
			priv.Delete("/products/{id}", s.deleteProduct)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
