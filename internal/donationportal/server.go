package donationportal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animal-donations/internal/donationportal/handlers"
	"animal-donations/internal/donationportal/middleware"
	"animal-donations/pkg/logging"
)

type Config struct {
	ServerAddress      string
	ShutdownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

type CatalogService interface {
	handlers.AnimalsService
	handlers.AnimalCreationService
}

type DonationsService interface {
	handlers.OrderCreationService
	handlers.PaymentVerificationService
	handlers.DonationsGettingService
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

// NewServer builds the HTTP surface. A nil tokenAuth leaves catalog writes open.
func NewServer(
	cfg Config,
	tokenAuth *jwtauth.JWTAuth,
	catalog CatalogService,
	donations DonationsService,
	store handlers.Pinger,
	gatherer prometheus.Gatherer,
	logger *logging.ZapLogger,
) *Server {
	srv := &http.Server{
		Addr: cfg.ServerAddress,
		Handler: createMux(
			cfg,
			tokenAuth,
			catalog,
			donations,
			store,
			gatherer,
			logger,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func createMux(
	cfg Config,
	tokenAuth *jwtauth.JWTAuth,
	catalog CatalogService,
	donations DonationsService,
	store handlers.Pinger,
	gatherer prometheus.Gatherer,
	logger *logging.ZapLogger,
) *chi.Mux {
	animalsGettingHandler := handlers.NewAnimalsGettingHandler(catalog, logger)
	animalGettingHandler := handlers.NewAnimalGettingHandler(catalog, logger)
	animalCreationHandler := handlers.NewAnimalCreationHandler(catalog, logger)
	orderCreationHandler := handlers.NewOrderCreationHandler(donations, logger)
	paymentVerificationHandler := handlers.NewPaymentVerificationHandler(donations, logger)
	donationsGettingHandler := handlers.NewDonationsGettingHandler(donations, logger)
	readinessHandler := handlers.NewReadinessHandler(store, logger)

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.NewLoggerContext().CreateHandler)
	router.Use(middleware.NewPanicRecover(logger).CreateHandler)
	router.Use(middleware.NewMetrics().CreateHandler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", handlers.Liveness)
	router.Get("/readyz", readinessHandler.ServeHTTP)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api", func(router chi.Router) {
		if cfg.RequestTimeout > 0 {
			router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		router.Route("/animals", func(router chi.Router) {
			router.Get("/", animalsGettingHandler.ServeHTTP)
			router.Get("/{id}", animalGettingHandler.ServeHTTP)
			router.Group(func(router chi.Router) {
				if tokenAuth != nil {
					router.Use(jwtauth.Verifier(tokenAuth))
					router.Use(middleware.NewAdminAuth(logger).CreateHandler)
				}
				router.Post("/", animalCreationHandler.ServeHTTP)
			})
		})

		router.Route("/donations", func(router chi.Router) {
			router.Post("/create-order", orderCreationHandler.ServeHTTP)
			router.Post("/verify-payment", paymentVerificationHandler.ServeHTTP)
			router.Get("/animal/{animalID}", donationsGettingHandler.ServeHTTP)
		})
	})

	return router
}
