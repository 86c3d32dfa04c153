package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genesis-admin/internal/config"
	"genesis-admin/internal/domain/ports/adapter"
	llAdapter "genesis-admin/internal/infra/adapters/lastlink"
	payAdapter "genesis-admin/internal/infra/adapters/payment"
	"genesis-admin/internal/infra/adapters/rates"
	pg "genesis-admin/internal/infra/db/postgres"
	"genesis-admin/internal/infra/logging"
	"genesis-admin/internal/infra/metrics"
	red "genesis-admin/internal/infra/redis"
	"genesis-admin/internal/infra/sched"
	"genesis-admin/internal/infra/web"
	"genesis-admin/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop adapters when keys are missing)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateCache := red.NewRateCache(redisClient, cfg.Rates.CacheTTL, logger)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	planRepo := pg.NewPlanRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)

	// ---- Adapters ----
	bcb := rates.NewBCBClient(&cfg.Rates, logger)

	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payAdapter.NewNoopGateway()
		logger.Info().Msg("payment gateway: noop (dev mode)")
	} else {
		gateway = payAdapter.NewAsaasGateway(&cfg.Asaas, settingsRepo, logger)
	}

	var lastlink adapter.LastlinkClient
	if cfg.Lastlink.APIKey == "" {
		lastlink = llAdapter.NewNoopClient()
		logger.Warn().Msg("lastlink.api_key not set; using noop client")
	} else {
		lastlink = llAdapter.NewClient(&cfg.Lastlink, logger)
	}

	// ---- Use cases ----
	rateUC := usecase.NewRateUseCase(bcb, settingsRepo, rateCache, logger)
	planUC := usecase.NewPlanUseCase(planRepo, paymentRepo)
	ledgerUC := usecase.NewLedgerUseCase(paymentRepo, planRepo, userRepo, gateway, txm, logger)
	activationUC := usecase.NewActivationUseCase(userRepo, lastlink, logger)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, gateway, logger)
	checkoutUC := usecase.NewCheckoutUseCase(planRepo, settingsRepo, rateUC, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, ledgerUC)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.SecureCookie, cfg.Server.CookieDomain, cfg.Server.SessionTTL)
	srv := web.NewServer(auth, cfg.Server.AdminAPIKey, rateUC, planUC, ledgerUC, activationUC, settingsUC, checkoutUC, statsUC, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Lastlink sync worker ----
	worker := sched.NewLastlinkSyncWorker(cfg.Lastlink.SyncInterval, activationUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
