package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/foteam/sessionstore/internal/core/service"
	"github.com/foteam/sessionstore/internal/infra/buildinfo"
	"github.com/foteam/sessionstore/internal/infra/confloader"
	"github.com/foteam/sessionstore/internal/infra/shutdown"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/server/httpserver"
	"github.com/foteam/sessionstore/internal/server/httpserver/handler"
	"github.com/foteam/sessionstore/internal/storage/filestore"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
	"github.com/foteam/sessionstore/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("foteam-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting foteam-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	var reg *metric.Registry
	if cfg.Metrics.Enabled {
		reg = metric.NewRegistry()
	}

	store, err := filestore.Open(filestore.Config{
		Dir:     cfg.Session.Dir,
		TTL:     cfg.Session.TTL,
		Logger:  log,
		Metrics: reg,
	})
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if reg != nil {
		reg.MustRegister(metric.NewCollector(store.Count))
	}

	gcCfg := service.DefaultGCConfig()
	gcCfg.MaxLifetime = cfg.Session.GCMaxLifetime
	gcCfg.Probability = cfg.Session.GCProbability
	gcCfg.Divisor = cfg.Session.GCDivisor
	gc := service.NewGCScheduler(store, gcCfg)

	manager := service.NewManager(store,
		service.WithLogger(log),
		service.WithGCScheduler(gc),
	)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Manager:      manager,
		Cookie:       cfg.Session.Cookie,
		Logger:       log,
		Metrics:      reg,
		MetricsPath:  cfg.Metrics.Path,
		MetricsToken: cfg.Metrics.Token,
		HandlerOptions: []handler.Option{
			handler.WithReadiness(func(context.Context) error {
				_, err := store.Count()
				return err
			}),
		},
	})
	server := httpserver.New(cfg.Server.HTTP, router)

	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)

	// Hooks run in reverse: HTTP first, then background work.
	sh.OnShutdown(func(context.Context) error {
		cancel()
		return nil
	})

	if cfg.Session.GCInterval > 0 {
		go gc.Run(ctx, cfg.Session.GCInterval)
	}

	if *configFile != "" {
		w, err := watchConfig(*configFile, log, store, gc)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown(func(context.Context) error {
				return w.Stop()
			})
		}
	}

	sh.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", ln.Addr().String(),
			"tls", cfg.Server.HTTP.TLSCertFile != "")
		if err := server.Serve(ln); err != nil {
			log.Error("HTTP server error", "error", err)
			sh.Trigger("http server failed")
		}
	}()

	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// watchConfig reloads the runtime-adjustable settings when the file changes.
func watchConfig(path string, log logger.Logger, store *filestore.Store, gc *service.GCScheduler) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		applyReload(cfg, store, gc)
		log.Info("config reloaded",
			"log_level", logger.GetLevel(),
			"ttl", store.TTL().String(),
			"gc_max_lifetime", gc.MaxLifetime().String())
	})
	w.StartAsync()
	return w, nil
}

func applyReload(cfg *config.ServerConfig, store *filestore.Store, gc *service.GCScheduler) {
	logger.SetLevel(cfg.Log.Level)
	store.SetTTL(cfg.Session.TTL)
	gc.SetMaxLifetime(cfg.Session.GCMaxLifetime)
}
