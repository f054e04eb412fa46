package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/reservation-service/pkg/kafka"
	"github.com/Astemirdum/reservation-service/pkg/logger"
	"github.com/Astemirdum/reservation-service/pkg/postgres"
	"github.com/Astemirdum/reservation-service/reservation/config"
	"github.com/Astemirdum/reservation-service/reservation/internal/events"
	"github.com/Astemirdum/reservation-service/reservation/internal/handler"
	"github.com/Astemirdum/reservation-service/reservation/internal/repository"
	"github.com/Astemirdum/reservation-service/reservation/internal/server"
	"github.com/Astemirdum/reservation-service/reservation/internal/service"
	"github.com/Astemirdum/reservation-service/reservation/migrations"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "reservation")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	opts := make([]service.Option, 0, 1)
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		publisher := events.NewPublisher(producer, cfg.Kafka.Topic, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("publisher.Close", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(publisher))
	} else {
		log.Info("kafka is not configured, reservation events are not published")
	}

	svc := service.NewService(repo, log, opts...)
	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(gCtx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("in-memory storage: reservations are lost on restart")
		return repository.NewMemoryRepository(log), func() {}, nil
	}

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("db init: %w", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("repo reservations: %w", err)
	}
	return repo, db.Close, nil
}
