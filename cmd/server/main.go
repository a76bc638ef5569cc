package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"atelier/internal/commons"
	"atelier/internal/config"
	"atelier/internal/infrastructure/logger"
	"atelier/internal/infrastructure/mailer"
	"atelier/internal/infrastructure/mysql"
	"atelier/internal/infrastructure/rabbitmq"
	"atelier/internal/notification"
	"atelier/internal/order"
	"atelier/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := commons.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var workers sync.WaitGroup
	sender, closeMail := buildEmailSender(ctx, cfg, zapLogger, &workers)
	defer closeMail()

	orderCtrl := order.NewModule(db, cfg, zapLogger, sender)
	router := server.NewRouter(orderCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	workers.Wait()

	zapLogger.Info("server stopped gracefully")
}

// buildEmailSender picks the mail transport. With the queue transport the
// service publishes to RabbitMQ and, when enabled, runs the delivery worker
// in-process until ctx is cancelled.
func buildEmailSender(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger, workers *sync.WaitGroup) (notification.EmailSender, func()) {
	switch cfg.Mail.Transport {
	case config.MailTransportHTTP:
		return mailer.NewHTTPSender(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.Timeout, zapLogger), func() {}
	case config.MailTransportQueue:
	default:
		return mailer.NewLogSender(zapLogger), func() {}
	}

	conn, err := rabbitmq.NewConnection(ctx, cfg.RabbitMQ.URL(), zapLogger)
	if err != nil {
		zapLogger.Fatal("connecting to rabbitmq", zap.Error(err))
	}
	if err := conn.DeclareQueue(cfg.RabbitMQ.EmailQueue); err != nil {
		zapLogger.Fatal("declaring email queue", zap.Error(err))
	}

	if cfg.RabbitMQ.RunConsumer {
		delivery := mailer.NewHTTPSender(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.Timeout, zapLogger)
		consumer := rabbitmq.NewEmailConsumer(conn, cfg.RabbitMQ.EmailQueue, delivery, zapLogger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			consumer.Run(ctx)
		}()
	}

	closeConn := func() {
		if err := conn.Close(); err != nil {
			zapLogger.Error("closing rabbitmq connection", zap.Error(err))
		}
	}
	return rabbitmq.NewEmailPublisher(conn, cfg.RabbitMQ.EmailQueue, zapLogger), closeConn
}
