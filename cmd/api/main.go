package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/connection"
	"github.com/Ramsey-B/clover/internal/repositories/creditaccount"
	"github.com/Ramsey-B/clover/internal/repositories/order"
	"github.com/Ramsey-B/clover/pkg/cache"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/ingest"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/linker"
	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/redis"
	accountroutes "github.com/Ramsey-B/clover/pkg/routes/account"
	connectionroutes "github.com/Ramsey-B/clover/pkg/routes/connection"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	orderroutes "github.com/Ramsey-B/clover/pkg/routes/order"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppName)
	ctx := context.Background()

	tp, err := setupTracing(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to set up tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to set up database")
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *redis.Client
	var resultCache linker.ResultCache = cache.Nop{}
	var redisPinger health.Pinger
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to connect to redis")
			os.Exit(1)
		}
		defer redisClient.Close()
		resultCache = cache.New(redisClient, logger, cfg.CacheTTL)
		redisPinger = redisClient
	}

	var emitter linker.EventEmitter = events.NopEmitter{}
	if cfg.KafkaProducerEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaEventsTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	accountRepo := creditaccount.NewRepository(db, logger)
	orderRepo := order.NewRepository(db, logger)
	connRepo := connection.NewRepository(db, logger)

	engine := matching.NewEngine(matching.Config{
		NameWeight:    cfg.MatchNameWeight,
		ValueWeight:   cfg.MatchValueWeight,
		DateWeight:    cfg.MatchDateWeight,
		MinConfidence: cfg.MatchMinConfidence,
		MaxMatches:    cfg.MatchMaxMatches,
	})

	linkerSvc := linker.NewService(logger, accountRepo, orderRepo, connRepo, engine, emitter, resultCache)
	ingestSvc := ingest.NewService(logger, accountRepo, orderRepo, resultCache)

	if cfg.KafkaConsumerEnabled {
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaRecomputeTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
		}, logger, recomputeHandler(linkerSvc, logger))
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start kafka consumer")
			os.Exit(1)
		}
		defer consumer.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	checker := health.NewChecker(db, redisPinger, version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	accountroutes.NewHandler(accountRepo, ingestSvc, linkerSvc, logger).RegisterRoutes(api)
	orderroutes.NewHandler(orderRepo, ingestSvc, linkerSvc, logger).RegisterRoutes(api)
	connectionroutes.NewHandler(linkerSvc, logger).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Infof("Starting %s on port %d", cfg.AppName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	checker.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down HTTP server cleanly")
	}
}

func setupTracing(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(version),
	)

	var exporter sdktrace.SpanExporter = &exporters.ConsoleExporter{}
	if cfg.TracingEnabled {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Insecure: true,
		})
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp, nil
}

func setupDatabase(ctx context.Context, cfg *config.Config, logger ectologger.Logger) (*database.DatabaseInstance, error) {
	port, err := strconv.Atoi(cfg.DatabasePort)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx, logger, database.ConnectionConfig{
		Host:            cfg.DatabaseHost,
		Port:            port,
		User:            cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	driver, err := migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	if err != nil {
		return nil, err
	}

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return nil, err
	}

	return db, nil
}

func recomputeHandler(svc *linker.Service, logger ectologger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.IncomingMessage) error {
		if !msg.IsRecomputeRequest() {
			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"eventType": msg.EventType(),
			}).Debug("Ignoring unrelated event")
			return nil
		}

		req, err := msg.ParseRecomputeRequest()
		if err != nil {
			logger.WithContext(ctx).WithError(err).Error("Failed to parse recompute request")
			// Malformed requests are not retryable; commit and move on.
			return nil
		}

		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"requestedBy": req.RequestedBy,
			"reason":      req.Reason,
		}).Info("Received recompute request")

		_, err = svc.Recompute(ctx, "kafka")
		return err
	}
}
