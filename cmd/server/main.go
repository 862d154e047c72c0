package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cashmachine/internal/application"
	"github.com/eugenenazirov/cashmachine/internal/config"
	"github.com/eugenenazirov/cashmachine/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("cashmachine", "Cash Machine - dispenses amounts using the fewest available banknotes")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a .env file seeding environment variables").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	banknotesStr := kingpinApp.Flag("banknotes", "Initial cassettes as nominal:count pairs, e.g. 500:4,100:3").String()
	strategy := kingpinApp.Flag("strategy", "Default collect strategy (optimal, greedy)").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	metricsFlag := kingpinApp.Flag("metrics", "Expose Prometheus metrics on /metrics").Default("true").Bool()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *banknotesStr != "" {
		overrides.BanknotesStr = banknotesStr
	}

	if *strategy != "" {
		overrides.Strategy = strategy
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if !*metricsFlag {
		overrides.MetricsEnabled = metricsFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	logger.Info("cassettes loaded",
		zap.Any("banknotes", cfg.Banknotes),
		zap.Stringer("strategy", cfg.Strategy),
	)

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
