package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"animal-donations/internal/donationportal"
	"animal-donations/internal/donationportal/data/database"
	"animal-donations/internal/donationportal/ordersmonitor"
	"animal-donations/internal/donationportal/paymentgateway"
)

const (
	serverAddressFlag         = "a"
	serverAddressEnv          = "RUN_ADDRESS"
	serverAddressDefault      = ":5000"
	dbConnectionStringFlag    = "d"
	dbConnectionStringEnv     = "DATABASE_URI"
	dbConnectionStringDefault = "postgres://localhost:5432/animal_donations?sslmode=disable"

	razorpayKeyIDEnv     = "RAZORPAY_KEY_ID"
	razorpayKeySecretEnv = "RAZORPAY_KEY_SECRET"
	razorpayBaseURLEnv   = "RAZORPAY_BASE_URL"
	gatewayTimeoutEnv    = "GATEWAY_TIMEOUT"
	requestTimeoutEnv    = "REQUEST_TIMEOUT"
	shutdownTimeoutEnv   = "SHUTDOWN_TIMEOUT"
	monitorTickPeriodEnv = "MONITOR_TICK_PERIOD"
	monitorWorkersEnv    = "MONITOR_WORKERS"
	pendingTTLEnv        = "PENDING_TTL"
	adminJWTSecretEnv    = "ADMIN_JWT_SECRET"
	corsOriginsEnv       = "CORS_ALLOWED_ORIGINS"
	kafkaBrokersEnv      = "KAFKA_BROKERS"
	kafkaTopicEnv        = "KAFKA_DONATIONS_TOPIC"
	logLevelEnv          = "LOG_LEVEL"

	defaultGatewayTimeout    = 10 * time.Second
	defaultRequestTimeout    = 15 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
	defaultMonitorTickPeriod = time.Minute
	defaultMonitorWorkers    = 2
	defaultPendingTTL        = 24 * time.Hour
	defaultMinPendingAge     = 15 * time.Minute
)

type Config struct {
	Server          donationportal.Config
	DB              database.Config
	Gateway         paymentgateway.Config
	Monitor         ordersmonitor.Config
	JWTConfig       JWTConfig
	Kafka           KafkaConfig
	LogLevel        string
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Algorithm string
	// Secret enables the admin guard on catalog writes when set.
	Secret string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads .env (if present), flags, then environment variables. The
// environment wins over flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	serverAddress := flag.String(
		serverAddressFlag,
		serverAddressDefault,
		"Server address host:port",
	)

	dbConnectionString := flag.String(
		dbConnectionStringFlag,
		dbConnectionStringDefault,
		"PostgreSQL connection string",
	)

	flag.Parse()

	if valStr, ok := os.LookupEnv(serverAddressEnv); ok {
		*serverAddress = valStr
	}

	if valStr, ok := os.LookupEnv(dbConnectionStringEnv); ok {
		*dbConnectionString = valStr
	}

	return fromEnv(*serverAddress, *dbConnectionString)
}

func fromEnv(serverAddress, dbConnectionString string) (*Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	gatewayTimeout := duration(gatewayTimeoutEnv, defaultGatewayTimeout)
	requestTimeout := duration(requestTimeoutEnv, defaultRequestTimeout)
	shutdownTimeout := duration(shutdownTimeoutEnv, defaultShutdownTimeout)
	tickPeriod := duration(monitorTickPeriodEnv, defaultMonitorTickPeriod)
	pendingTTL := duration(pendingTTLEnv, defaultPendingTTL)

	workers, err := intEnv(monitorWorkersEnv, defaultMonitorWorkers)
	if err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Config{
		Server: donationportal.Config{
			ServerAddress:      serverAddress,
			ShutdownTimeout:    shutdownTimeout,
			RequestTimeout:     requestTimeout,
			CORSAllowedOrigins: listEnv(corsOriginsEnv),
		},
		DB: database.Config{
			ConnectionString: dbConnectionString,
			RetryAttemptDelays: []time.Duration{
				0,
				time.Second,
				3 * time.Second,
				5 * time.Second,
			},
		},
		Gateway: paymentgateway.Config{
			BaseURL:   stringEnv(razorpayBaseURLEnv, paymentgateway.DefaultBaseURL),
			KeyID:     os.Getenv(razorpayKeyIDEnv),
			KeySecret: os.Getenv(razorpayKeySecretEnv),
			Timeout:   gatewayTimeout,
		},
		Monitor: ordersmonitor.Config{
			TickPeriod:     tickPeriod,
			WorkersCount:   workers,
			MinPendingAge:  min(defaultMinPendingAge, pendingTTL),
			PendingTTL:     pendingTTL,
			GatewayTimeout: gatewayTimeout,
		},
		JWTConfig: JWTConfig{
			Algorithm: "HS256",
			Secret:    os.Getenv(adminJWTSecretEnv),
		},
		Kafka: KafkaConfig{
			Brokers: listEnv(kafkaBrokersEnv),
			Topic:   os.Getenv(kafkaTopicEnv),
		},
		LogLevel:        os.Getenv(logLevelEnv),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func stringEnv(key, def string) string {
	if valStr, ok := os.LookupEnv(key); ok && valStr != "" {
		return valStr
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		return def, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		return def, nil
	}
	v, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return v, nil
}

func listEnv(key string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return nil
	}
	parts := strings.Split(valStr, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
