package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"animal-donations/cmd/donationportal/config"
	"animal-donations/internal/donationportal"
	"animal-donations/internal/donationportal/data/database"
	"animal-donations/internal/donationportal/data/dbrepository"
	"animal-donations/internal/donationportal/events"
	"animal-donations/internal/donationportal/metrics"
	"animal-donations/internal/donationportal/ordersmonitor"
	"animal-donations/internal/donationportal/paymentgateway"
	"animal-donations/internal/donationportal/service"
	"animal-donations/pkg/logging"
	"animal-donations/pkg/pgxstorage"
)

type eventsPublisher interface {
	service.DonationEvents
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewZapLogger(level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	dbFactory := database.NewPgxDatabaseFactory(cfg.DB)
	storage, err := pgxstorage.New(rootCtx, dbFactory)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()
	repository := dbrepository.New(storage, logger)
	transactionManager := pgxstorage.NewTransactionsManager(storage)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	gateway := paymentgateway.New(cfg.Gateway, logger.Named("payment-gateway"))
	if !gateway.Configured() {
		logger.WarnCtx(rootCtx, "Razorpay credentials are not set, donation endpoints will answer with a configuration error")
	}

	publisher, err := newEventsPublisher(cfg.Kafka, logger.Named("events"))
	if err != nil {
		log.Fatal(err)
	}

	catalog := service.NewCatalog(repository)
	donations := service.NewDonations(
		service.DonationsConfig{KeySecret: cfg.Gateway.KeySecret},
		transactionManager,
		repository,
		repository,
		gateway,
		publisher,
		logger,
	)

	var tokenAuth *jwtauth.JWTAuth
	if cfg.JWTConfig.Secret != "" {
		tokenAuth = jwtauth.New(cfg.JWTConfig.Algorithm, []byte(cfg.JWTConfig.Secret), nil)
	}

	server := donationportal.NewServer(cfg.Server, tokenAuth, catalog, donations, storage, registry, logger)

	var monitor *ordersmonitor.OrdersMonitor
	if cfg.Monitor.TickPeriod > 0 && gateway.Configured() {
		monitor = ordersmonitor.NewOrdersMonitor(
			cfg.Monitor,
			repository,
			donations,
			transactionManager,
			gateway,
			logger.Named("orders-monitor"),
		)
	}

	if err := run(rootCtx, cfg, server, monitor, publisher, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

func newEventsPublisher(cfg config.KafkaConfig, logger *logging.ZapLogger) (eventsPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return events.Noop{}, nil
	}
	asyncProducer, err := sarama.NewAsyncProducer(cfg.Brokers, events.NewSaramaConfig("donation-portal"))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	producer := events.NewProducer(asyncProducer, cfg.Topic, logger)
	producer.Start()
	return producer, nil
}

func run(
	rootCtx context.Context,
	cfg *config.Config,
	server *donationportal.Server,
	monitor *ordersmonitor.OrdersMonitor,
	publisher eventsPublisher,
	logger *logging.ZapLogger,
) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		logger.InfoCtx(ctx, "Starting server", zap.String("address", cfg.Server.ServerAddress))
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if monitor != nil {
		g.Go(func() error {
			monitor.Run()
			return nil
		})
	}

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		// Both the monitor and the handlers publish events, so they stop first.
		if monitor != nil {
			monitor.Stop()
		}
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		if err := publisher.Close(); err != nil {
			return fmt.Errorf("failed to close events publisher: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
