package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/config"
	kafkax "github.com/Hshshssjsjjsjsqq/vercel-backend/internal/kafka"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/mailer"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/notifications"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/redisx"
)

const serviceName = "storefront-notifier"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.MustNew(serviceName, cfg.Env)
	defer func() { _ = log.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("kafka_brokers_missing")
	}
	mail := mailer.FromConfig(cfg.Mail, log)
	if !mail.Configured() {
		log.Fatal("mail_unconfigured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMax)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatal("redis_connect_failed", zap.Error(err))
	}

	svc := &notifications.Service{
		Users:  &auth.Repo{DB: db},
		Mail:   mail,
		Dedup:  &notifications.RedisDedup{RDB: rdb, Service: serviceName},
		Logger: log,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Notifier.Group, orders.Topics, cfg.Notifier.Workers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("consumer_started",
			zap.String("group", cfg.Notifier.Group),
			zap.Strings("topics", orders.Topics),
			zap.Int("workers", cfg.Notifier.Workers))
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Error("consumer_exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting_down")
	cancel()
	<-done
}
