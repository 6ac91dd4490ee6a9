// Package httpx exposes the storefront over a chi router mounted at /api.
package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/invoice"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/livechat"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
)

type Deps struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil hides /metrics
	Health   func(ctx context.Context) error

	Tokens   *auth.Tokens
	Auth     *auth.Service
	Products Catalog
	Carts    Carts
	Orders   *orders.Service
	Invoices invoice.Renderer
	Chat     *livechat.Service
	Contact  Contacts

	// OTPVerifyLimit caps OTP verification attempts per client IP per minute.
	OTPVerifyLimit int
}

func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.OTPVerifyLimit <= 0 {
		d.OTPVerifyLimit = 10
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Logger, d.Metrics), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				logHealth(r, err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	g := guard{tokens: d.Tokens}
	user, admin := g.require(auth.RoleUser), g.require(auth.RoleAdmin)
	otpLimit := httprate.LimitByIP(d.OTPVerifyLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		a := &authHandler{svc: d.Auth}
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup/request-otp", a.requestSignupOTP)
			r.With(otpLimit).Post("/signup", a.signup)
			r.Post("/login", a.login)
			r.Post("/admin-login", a.adminLogin)
			r.Post("/admin-forgot-password/request-otp", a.requestAdminReset)
			r.With(otpLimit).Post("/admin-forgot-password/verify-otp", a.resetAdmin)
			r.Post("/user-forgot-password/request-otp", a.requestUserReset)
			r.With(otpLimit).Post("/user-forgot-password/verify-otp", a.resetUser)
			r.With(admin).Get("/users", a.listUsers)
		})

		p := &productsHandler{store: d.Products}
		r.Route("/products", func(r chi.Router) {
			r.Get("/", p.list)
			r.Get("/{id}", p.get)
			r.With(admin).Post("/", p.create)
			r.With(admin).Put("/{id}", p.update)
			r.With(admin).Delete("/{id}", p.remove)
		})

		c := &cartHandler{store: d.Carts}
		r.Route("/cart", func(r chi.Router) {
			r.Use(user)
			r.Get("/", c.get)
			r.Post("/items", c.add)
			r.Put("/items/{productId}", c.setQuantity)
			r.Delete("/items/{productId}", c.remove)
		})

		o := &ordersHandler{svc: d.Orders, invoices: d.Invoices}
		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(user)
				r.Post("/place", o.place)
				r.Post("/payment-order", o.paymentOrder)
				r.Post("/verify-payment", o.verifyPayment)
				r.Get("/mine", o.mine)
				r.Get("/{id}/invoice", o.invoice)
				r.Put("/{id}/cancel", o.cancel)
			})
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/admin", o.adminList)
				r.Get("/admin/insights", o.insights)
				r.Put("/{id}/status", o.setStatus)
			})
		})

		ch := &chatHandler{svc: d.Chat}
		r.Route("/live-chat", func(r chi.Router) {
			r.With(g.optional).Post("/", ch.create)
			r.With(user).Get("/mine", ch.mine)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/admin", ch.adminList)
				r.Put("/admin/{id}/reply", ch.reply)
				r.Put("/admin/{id}/close", ch.close)
			})
		})

		ct := &contactHandler{store: d.Contact}
		r.Post("/contact", ct.create)
		r.With(admin).Get("/contact/admin", ct.list)
	})
	return r
}
