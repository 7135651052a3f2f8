package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/event"
	"github.com/tuanvumaihuynh/product-catalog/internal/health"
	"github.com/tuanvumaihuynh/product-catalog/internal/http"
	"github.com/tuanvumaihuynh/product-catalog/internal/log"
	"github.com/tuanvumaihuynh/product-catalog/internal/metric"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalog/internal/telemetry"
	"github.com/tuanvumaihuynh/product-catalog/pkg/cmdutil"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Kafka    config.Kafka
		Notifier config.Notifier
		Auth     config.Auth
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	checkers := []health.Checker{health.NewPostgresChecker(dbClient)}

	var notifier event.Notifier
	if cfg.Notifier.Enabled {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		notifier = event.NewKafkaNotifier(cfg.Notifier, logger, kafkaProducer)
		checkers = append(checkers, health.NewKafkaChecker(kafkaProducer))
		logger.InfoContext(ctx, "product events are published to kafka",
			slog.String("created_topic", cfg.Notifier.ProductCreatedTopic),
			slog.String("updated_topic", cfg.Notifier.ProductUpdatedTopic))
	} else {
		notifier = event.NewLogNotifier(logger)
		logger.InfoContext(ctx, "product events are only logged")
	}

	metrics := metric.New(prometheus.DefaultRegisterer)

	productRepository := repository.NewProductRepository(dbClient)
	productService := service.NewProductService(logger, productRepository, notifier,
		service.WithNotificationCounter(metrics.Notifications))

	credentials, err := auth.NewStaticCredentials(cfg.Auth.Users)
	if err != nil {
		return fmt.Errorf("error loading credentials: %w", err)
	}
	if len(cfg.Auth.Users) == 0 {
		logger.WarnContext(ctx, "no users configured, login will always fail")
	}
	jwt := auth.NewJWT(cfg.Auth)

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	svc := http.New(cfg.HTTP, logger, http.Deps{
		ProductSvc:  productService,
		HealthSvc:   health.NewService(logger, checkers...),
		Credentials: credentials,
		Issuer:      jwt,
		Tokens:      jwt,
		Validator:   v,
		Metrics:     metrics,
		Gatherer:    prometheus.DefaultGatherer,
	})

	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
