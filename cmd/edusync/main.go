// Package main runs the edusync daemon: the offline-first synchronization
// and content-availability engine of the Estrateji education portal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estrateji/edusync/internal/api"
	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/config"
	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/modstate"
	"github.com/estrateji/edusync/internal/netmon"
	"github.com/estrateji/edusync/internal/prefetch"
	"github.com/estrateji/edusync/internal/queue"
	"github.com/estrateji/edusync/internal/storage"
	"github.com/estrateji/edusync/internal/syncer"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "edusync: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(os.Stdout, cfg.LogLevel)
	logging.Info("edusync starting", logging.Fields{
		"version":  Version,
		"data_dir": cfg.DataDir,
		"api":      cfg.APIBaseURL,
	})

	kv, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor := netmon.NewMonitor(true)
	var heartbeat *netmon.Heartbeat
	if cfg.HeartbeatURL != "" {
		heartbeat = netmon.NewHeartbeat(cfg.HeartbeatURL, monitor)
		heartbeat.Start(ctx)
	}

	client := api.NewHTTP(cfg.APIBaseURL, cfg.RequestTimeout)
	validator := queue.NewValidator()
	store := queue.NewStore(kv, validator)
	courses := cache.NewCourseCache(kv)
	modules := cache.NewModuleCache(kv)
	manager := modstate.NewManager(kv, modules, client, modstate.NewProgressStore(kv))

	engine := syncer.NewEngine(store, validator, client, courses)
	engine.SetWarmer(prefetch.New(client, modules, manager, cfg.PrefetchCount))

	scheduler := syncer.NewScheduler(engine, monitor, cfg.SyncInterval)
	scheduler.Start(ctx)

	// Messages get their own faster cadence so the inbox feels near-real-time.
	messages := syncer.NewRetryHelper(engine, monitor, models.TopicMessages, cfg.RetryInterval)
	messages.Start(ctx)

	<-ctx.Done()
	logging.Info("edusync shutting down", nil)

	messages.Stop()
	scheduler.Stop()
	if heartbeat != nil {
		heartbeat.Stop()
	}
	return nil
}
