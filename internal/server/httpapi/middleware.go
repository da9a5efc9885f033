package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type ctxKey string

const payloadKey ctxKey = "payload"

// accessLog writes one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			s.logger.Info(r.Context(), "request served",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// authenticator rejects requests whose bearer token failed verification and
// stores the token payload in the request context.
func (s *Server) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			s.respondError(w, r, common.Unauthorized(common.MsgUnauthorized))
			return
		}

		id, _ := claims["id"].(string)
		if id == "" {
			s.respondError(w, r, common.Unauthorized(common.MsgUnauthorized))
			return
		}
		email, _ := claims["email"].(string)
		name, _ := claims["name"].(string)

		ctx := context.WithValue(r.Context(), payloadKey, models.Payload{ID: id, Email: email, Name: name})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func payloadFromContext(ctx context.Context) (models.Payload, bool) {
	p, ok := ctx.Value(payloadKey).(models.Payload)
	return p, ok
}

// rateLimit throttles by client address. A limiter backend failure lets the
// request through.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			s.logger.Warn(r.Context(), "rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			s.respondFailure(w, http.StatusTooManyRequests, common.MsgTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
