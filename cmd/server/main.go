package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/everfaz/ses-compliance/internal/api"
	"github.com/everfaz/ses-compliance/internal/config"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
	"github.com/everfaz/ses-compliance/internal/ratelimit"
	"github.com/everfaz/ses-compliance/internal/repository/postgres"
	"github.com/everfaz/ses-compliance/internal/service/consent"
	"github.com/everfaz/ses-compliance/internal/service/reputation"
	"github.com/everfaz/ses-compliance/internal/service/sending"
	"github.com/everfaz/ses-compliance/internal/service/suppression"
	"github.com/everfaz/ses-compliance/internal/transport/ses"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		logger.Info("DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("database connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport, err := ses.NewClient(ctx, cfg.SES)
	if err != nil {
		log.Fatalf("Failed to create SES client: %v", err)
	}

	// Repositories
	suppressionRepo := postgres.NewSuppressionRepo(db)
	eventRepo := postgres.NewEventRepo(db)
	metricsRepo := postgres.NewMetricsRepo(db)
	consentRepo := postgres.NewConsentRepo(db)
	contactRepo := postgres.NewContactRepo(db)

	// Services
	suppressionSvc := suppression.NewService(suppressionRepo)
	consentSvc := consent.NewService(consentRepo, contactRepo, suppressionSvc, suppressionSvc)
	reputationSvc := reputation.NewService(eventRepo, metricsRepo, suppressionSvc, consentSvc, nil)

	var limiter sending.RateLimiter = ratelimit.Unlimited{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		rl, err := ratelimit.NewLimiterFromAddr(cfg.Redis.Addr, cfg.RateLimit.SendsPerSecond)
		if err != nil {
			// Sending still works unpaced; the provider quota is the backstop.
			logger.Error("rate limiter unavailable, sending unpaced", "error", err.Error())
		} else {
			limiter = rl
			defer rl.Close()
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
			defer redisClient.Close()
		}
	}

	orchestrator := sending.NewOrchestrator(transport, suppressionSvc, consentSvc, reputationSvc, limiter, cfg.Compliance)

	handlers := api.NewHandlers(consentSvc, suppressionSvc, reputationSvc, orchestrator, metricsRepo)
	handlers.Attach(api.NewHealthChecker(db, redisClient))

	server := api.NewServer(cfg.Server, handlers)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		logger.Info("server starting", "addr", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
