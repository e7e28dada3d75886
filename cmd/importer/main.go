// The importer loads dashboard JSON export files into the database and
// optionally asks the API to recompute connections afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/creditaccount"
	"github.com/Ramsey-B/clover/internal/repositories/order"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/ingest"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/logging"
)

func main() {
	accountsPath := flag.String("accounts", "", "path to a credit account export JSON file")
	ordersPath := flag.String("orders", "", "path to an order export JSON file")
	recompute := flag.Bool("recompute", true, "request a linking run after importing")
	flag.Parse()

	if *accountsPath == "" && *ordersPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to import: pass -accounts and/or -orders")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("clover-importer")
	ctx := context.Background()

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to set up database")
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := creditaccount.NewRepository(db, logger)
	orderRepo := order.NewRepository(db, logger)
	svc := ingest.NewService(logger, accountRepo, orderRepo, nil)

	if *accountsPath != "" {
		count, err := svc.ImportAccountFile(ctx, *accountsPath)
		if err != nil {
			logger.WithError(err).Errorf("Failed to import accounts from %s", *accountsPath)
			os.Exit(1)
		}
		logger.Infof("Imported %d credit accounts from %s", count, *accountsPath)
	}

	if *ordersPath != "" {
		count, err := svc.ImportOrderFile(ctx, *ordersPath)
		if err != nil {
			logger.WithError(err).Errorf("Failed to import orders from %s", *ordersPath)
			os.Exit(1)
		}
		logger.Infof("Imported %d orders from %s", count, *ordersPath)
	}

	if *recompute && cfg.KafkaProducerEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaEventsTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()

		req := &kafka.RecomputeRequest{
			RequestedBy: "clover-importer",
			Reason:      "new export files imported",
		}
		if err := producer.PublishRecomputeRequest(ctx, cfg.KafkaRecomputeTopic, req); err != nil {
			logger.WithError(err).Error("Failed to request a linking run")
			os.Exit(1)
		}
		logger.Info("Requested a linking run")
	}
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
