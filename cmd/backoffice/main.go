package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/stockresizer/cmd/initialize"
	"github.com/denismitr/stockresizer/internal/backoffice"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	initialize.DotEnv()

	cfg, err := initialize.ConfigFromEnv()
	if err != nil {
		panic(err)
	}

	log := initialize.Logger(cfg.LogLevel)

	storage, err := initialize.Storage(cfg, log)
	if err != nil {
		log.Fatalf("could not initialize %s storage: %v", cfg.Storage, err)
	}

	resolver := initialize.Resolver(cfg, storage, prometheus.NewRegistry(), log)
	variants := backoffice.NewVariantService(storage, resolver, log)

	server := backoffice.NewServer(echo.New(), cfg.BackofficePort, variants, log)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatal(err)
	}
}
