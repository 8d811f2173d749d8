package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockfeed/config"
	"github.com/rustyeddy/stockfeed/hub"
	"github.com/rustyeddy/stockfeed/provider"
	"github.com/rustyeddy/stockfeed/registry"
	"github.com/rustyeddy/stockfeed/resolver"
	"github.com/rustyeddy/stockfeed/scheduler"
	"github.com/rustyeddy/stockfeed/server"
	"github.com/rustyeddy/stockfeed/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the price feed service",
	Long: `Start the stockfeed service: the HTTP query endpoint, the websocket
gateway and the background broadcast scheduler, wired from a config file.

Example:
  stockfeed serve -f stockfeed.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ttl, err := cfg.Provider.ParseCacheTTL()
	if err != nil {
		return fmt.Errorf("parse cache_ttl: %w", err)
	}
	interval, err := cfg.Broadcast.ParseInterval()
	if err != nil {
		return fmt.Errorf("parse interval: %w", err)
	}

	// Process-wide shared state, created once and handed by reference.
	reg := registry.New()
	h := hub.New(log)

	prov := provider.New(&provider.Client{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
	}, ttl, log)

	res := resolver.New(db, prov, reg, log)
	sched := scheduler.New(db, reg, h, interval, cfg.Broadcast.MaxChange, log)
	srv := server.New(res, h, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("scheduler exited")
		}
	}()

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()

	log.WithField("addr", cfg.Server.Addr).Info("stockfeed listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
