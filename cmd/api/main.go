package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/catalog"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/contact"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/httpx"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/inventory"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/invoice"
	kafkax "github.com/Hshshssjsjjsjsqq/vercel-backend/internal/kafka"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/livechat"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/mailer"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/otp"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/payment"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNew(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMax)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			log.Fatal("migrate_failed", zap.Error(err))
		}
		log.Info("migrations_applied", zap.Strings("files", applied))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// OTP
	var store otp.Store
	switch cfg.OTP.Backend {
	case "redis":
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Fatal("redis_connect_failed", zap.Error(err))
		}
		store = otp.NewRedisStore(rdb, cfg.OTP.TTL)
	default:
		mem := otp.NewMemoryStore(cfg.OTP.TTL)
		go sweepOTP(ctx, mem, cfg.OTP.TTL)
		store = mem
	}
	otpSvc := &otp.Service{Store: store, Metrics: m}
	if mail := mailer.FromConfig(cfg.Mail, log); mail.Configured() {
		otpSvc.Notifier = mail
	} else {
		log.Warn("mail_unconfigured")
	}

	// Orders
	carts := &cart.Repo{DB: db}
	orderSvc := &orders.Service{
		Store: &orders.Repo{
			DB:     db,
			Carts:  carts,
			Ledger: &inventory.Ledger{Metrics: m},
		},
		Carts:    carts,
		Metrics:  m,
		Producer: cfg.ServiceName,
	}
	if cfg.Razorpay.Configured() {
		orderSvc.Verifier = payment.NewVerifier(cfg.Razorpay.KeySecret)
		orderSvc.Gateway = payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	} else {
		log.Warn("razorpay_unconfigured")
	}

	// Kafka producer
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start()
		orderSvc.Publisher = prod
	} else {
		log.Warn("kafka_disabled")
	}

	users := &auth.Repo{DB: db}
	tokens := auth.NewTokens(cfg.JWTSecret)
	router := httpx.NewRouter(httpx.Deps{
		Logger:   log,
		Metrics:  m,
		Gatherer: reg,
		Health:   db.Ping,
		Tokens:   tokens,
		Auth: &auth.Service{
			Store:    users,
			OTP:      otpSvc,
			Tokens:   tokens,
			EnvAdmin: cfg.Admin,
		},
		Products:       &catalog.Repo{DB: db},
		Carts:          carts,
		Orders:         orderSvc,
		Invoices:       invoice.Renderer{Compress: true},
		Chat:           &livechat.Service{Store: &livechat.Repo{DB: db}, Users: users},
		Contact:        &contact.Repo{DB: db},
		OTPVerifyLimit: cfg.OTP.VerifyLimit,
	})

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info("http_listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http_listen_failed", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting_down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("http_shutdown", zap.Error(err))
	}
	cancel()
	if prod != nil {
		prod.Close() // flush pending events
		prod.WaitClosed()
	}
}

func sweepOTP(ctx context.Context, s *otp.MemoryStore, ttl time.Duration) {
	t := time.NewTicker(ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				zap.L().Debug("otp_swept", zap.Int("removed", n))
			}
		}
	}
}
