package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
)

// requestLogger puts a request-scoped logger in the context, then logs and
// counts the request under its route pattern once it completes.
func requestLogger(base *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), log)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
			log.Info("http_request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed))
		})
	}
}

type principalKey struct{}

type principal struct {
	Subject string
	Role    auth.Role
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// userID returns the authenticated user's id, or "" for guests and admins.
func userID(r *http.Request) string {
	if p, ok := principalFrom(r.Context()); ok && p.Role == auth.RoleUser {
		return p.Subject
	}
	return ""
}

var errNoToken = errors.New("missing bearer token")

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errNoToken
	}
	return strings.TrimSpace(token), nil
}

type guard struct{ tokens *auth.Tokens }

func (g guard) authenticate(r *http.Request) (principal, error) {
	raw, err := bearer(r)
	if err != nil {
		return principal{}, err
	}
	c, err := g.tokens.Parse(raw)
	if err != nil {
		return principal{}, err
	}
	return principal{Subject: c.Subject, Role: c.Role}, nil
}

func (g guard) require(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.authenticate(r)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, msg{"error": "Unauthorized"})
				return
			}
			if p.Role != role {
				writeJSON(w, http.StatusForbidden, msg{"error": "Forbidden"})
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, p)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(
				zap.String("subject", p.Subject), zap.String("role", string(p.Role))))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// optional attaches the principal when a valid token is sent and otherwise
// lets the request through as a guest.
func (g guard) optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, err := g.authenticate(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), principalKey{}, p))
		}
		next.ServeHTTP(w, r)
	})
}
