// Package main provides the entry point for the gateway proxy server. It
// multiplexes OpenAI-compatible clients across a pool of upstream bearer
// credentials, translating reasoning-effort hints and routing around
// exhausted keys transparently.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/routekeeper/gatewayproxy/internal/api"
	"github.com/routekeeper/gatewayproxy/internal/config"
	"github.com/routekeeper/gatewayproxy/internal/dispatcher"
	"github.com/routekeeper/gatewayproxy/internal/keypool"
	"github.com/routekeeper/gatewayproxy/internal/logging"
	"github.com/routekeeper/gatewayproxy/internal/modelcatalog"
	"github.com/routekeeper/gatewayproxy/internal/registry"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	var configPath string
	var portFlag int
	flag.StringVar(&configPath, "config", "", "path to an optional YAML defaults file")
	flag.IntVar(&portFlag, "port", 0, "override the listen port")
	flag.Parse()

	cfg := config.Load(configPath, portFlag)
	logging.SetupBaseLogger(cfg.LogLevel, cfg.LogFile)

	log.Infof("gatewayproxy %s (commit %s, built %s)", Version, Commit, BuildDate)

	pool, err := keypool.New(cfg.KeyCooldown, cfg.ExtraKeyFileSearchPaths...)
	if err != nil {
		log.Errorf("startup: %v", err)
		os.Exit(1)
	}
	if pool.Len() == 0 {
		log.Error("startup: no credentials loaded from any key file")
		os.Exit(1)
	}

	reg := registry.Global()
	d := dispatcher.New(pool, reg, cfg.UpstreamHost, cfg.EnableParamsConversion)
	catalog := modelcatalog.New(pool, cfg.UpstreamHost, cfg.ModelsCacheTTL)

	server := api.NewServer(api.Options{
		Port:       cfg.Port,
		AuthKey:    cfg.AuthKey,
		Pool:       pool,
		Registry:   reg,
		Dispatcher: d,
		Catalog:    catalog,
		Version:    Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start()
	})
	group.Go(func() error {
		server.RunReloader(groupCtx)
		return nil
	})
	go func() {
		if err := pool.WatchDir(groupCtx, "data/keys"); err != nil {
			log.Warnf("key-file watcher stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown: signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}

	if err := group.Wait(); err != nil {
		log.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
	fmt.Println("gatewayproxy stopped")
}
