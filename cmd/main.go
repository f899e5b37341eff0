package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"

	"eventreg/cmd/buildCFG"
	"eventreg/internal/api/api"
	"eventreg/internal/audit"
	"eventreg/internal/database"
	"eventreg/internal/notify"
	"eventreg/internal/rabbit"
	"eventreg/internal/repo"
	"eventreg/internal/service"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	storeCfg := buildCFG.BuildStoreConfig(cfg, &log)
	authCfg := buildCFG.BuildAuthConfig(cfg, &log)

	db, err := database.Open(storeCfg.Path)
	if err != nil {
		log.Fatal().Msgf("failed to open store: %v", err)
	}
	defer db.Close()

	auditLog := audit.NewWriter(storeCfg.AuditLog)

	repository, err := repo.NewRepository(db, auditLog, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}

	// Migration and admin bootstrap must finish before the listener
	// starts: nothing is reachable over an unmigrated schema.
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.Initialize(initCtx, authCfg.AdminUsername, authCfg.AdminPassword); err != nil {
		initCancel()
		log.Fatal().Err(err).Msg("store initialization failed")
	}
	initCancel()
	log.Info().Msg("schema migrated and admin bootstrapped")

	var publisher service.Publisher
	var worker *notify.Worker
	rabbitCfg := buildCFG.BuildRabbitConfig(cfg, &log)
	if rabbitCfg.Enabled {
		rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
		if err != nil {
			log.Fatal().Msgf("failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		publisher = rmq

		workerCtx, cancelWorker := context.WithCancel(context.Background())
		defer cancelWorker()
		worker = notify.NewWorker(rmq, buildCFG.BuildSMTPConfig(cfg))
		worker.Start(workerCtx)
	}

	serviceInstance := service.NewService(
		repository,
		&log,
		publisher,
		authCfg.JWTSecret,
		time.Duration(authCfg.TokenTTLMin)*time.Minute,
	)
	app := api.NewRouters(&api.Routers{Service: serviceInstance, JWTSecret: authCfg.JWTSecret})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := app.Run(":" + serverCfg.Port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	if worker != nil {
		worker.Stop()
	}

	log.Info().Msg("Shutdown complete")
}
