package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/stockresizer/cmd/initialize"
	"github.com/denismitr/stockresizer/internal/proxy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	resolver := initialize.Resolver(cfg, storage, prometheus.DefaultRegisterer, log)

	server := proxy.NewServer(proxy.Config{
		Port:         cfg.ProxyPort,
		ReadTimeout:  10 * time.Second,
		MaxDimension: cfg.MaxDimension,
		CacheMaxAge:  cfg.CacheMaxAge,
		TLSCertFile:  cfg.TLSCertFile,
		TLSKeyFile:   cfg.TLSKeyFile,
	}, log, resolver, promhttp.Handler())

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatal(err)
	}
}
