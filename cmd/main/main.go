package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"market-sync/src/aggregator"
	"market-sync/src/config"
	"market-sync/src/connection"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/request"
	"market-sync/src/scheduler"
	"market-sync/src/server"
	"market-sync/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Optional .env for local secret overrides
	godotenv.Load()

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if token := os.Getenv("MARKET_SYNC_AUTH_TOKEN"); token != "" {
		cfg.Remote.AuthToken = token
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)
	clock := utils.NewSystemClock()

	// 2. Stream side
	dialer := connection.NewWebsocketDialer(cfg.Remote.AuthToken)
	manager := connection.NewManager(cfg.Connection, cfg.Remote.WSURL, dialer, clock, appLogger)

	manager.On(connection.EventError, "main", func(msg models.MMessage) {
		appLogger.Debug("Connection error event: %s", string(msg.Payload))
	})

	// 3. REST side
	client := request.NewClient(cfg.Request, cfg.Remote.APIBaseURL, cfg.Remote.AuthToken, clock, appLogger)

	// 4. Aggregation
	agg := aggregator.NewAggregator(cfg.Sync, client, manager, clock, appLogger)

	// A failed first dial is not fatal; the retry cycle keeps going in the
	// background while the REST snapshots bootstrap the view.
	if err := manager.Connect(); err != nil {
		appLogger.Warning("Initial connect failed: %v", err)
	}
	if err := agg.Initialize(); err != nil {
		appLogger.Critical("Aggregator init failed: %v", err)
	}

	// 5. Maintenance jobs
	sched := scheduler.NewScheduler(cfg.Sync, agg, client, appLogger)
	sched.Start()

	// 6. Status server
	srv := server.NewStatusServer(cfg.MConfig, agg, manager, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Status server failed: %v", err)
		}
	}()

	appLogger.Info("Sync layer running for %d symbols", len(cfg.Sync.Symbols))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	sched.Stop()
	agg.Close()
}
