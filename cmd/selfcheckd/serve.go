package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	api "github.com/mind-engage/mindengage-selfcheck/internal/api/http"
	"github.com/mind-engage/mindengage-selfcheck/internal/auth"
	authmw "github.com/mind-engage/mindengage-selfcheck/internal/auth/middleware"
	"github.com/mind-engage/mindengage-selfcheck/internal/catalog"
	"github.com/mind-engage/mindengage-selfcheck/internal/config"
	"github.com/mind-engage/mindengage-selfcheck/internal/db"
	"github.com/mind-engage/mindengage-selfcheck/internal/logging"
	"github.com/mind-engage/mindengage-selfcheck/internal/metrics"
	"github.com/mind-engage/mindengage-selfcheck/internal/storage"
	"github.com/mind-engage/mindengage-selfcheck/internal/store"
	syncx "github.com/mind-engage/mindengage-selfcheck/internal/sync"
)

func newServeCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "optional config file (yaml/json/toml); env vars take precedence")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	st, err := store.NewCachedStore(store.NewSQLStore(dbh), cfg.CacheSize)
	if err != nil {
		return err
	}

	// --- Definitions: built-ins, then the optional directory (which may override) ---
	cat, err := catalog.Builtin()
	if err != nil {
		return err
	}
	defs := cat.List()
	if cfg.CatalogDir != "" {
		extra, err := catalog.Load(os.DirFS(cfg.CatalogDir))
		if err != nil {
			return err
		}
		defs = append(defs, extra.List()...)
	}
	if err := store.Seed(ctx, st, defs); err != nil {
		return err
	}
	log.Info("assessments loaded", "count", len(defs))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	var google *auth.GoogleOAuth
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI,
			cfg.GoogleAllowedHD, cfg.PublicURL, cfg.Mode == config.ModeOnline)
	}

	router := api.NewRouter(api.Deps{
		Store: st,
		Blobs: bs,
		Auth:  authmw.NewAuthService(cfg.AuthHMACSecret),
		Creds: authmw.Credentials{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			AllowDevUsers: cfg.Mode == config.ModeOffline,
		},
		Google:          google,
		Events:          syncx.NewEventRepo(dbh),
		Metrics:         metrics.New(),
		Log:             log,
		CORSOrigins:     cfg.CORSOrigins(),
		EnableLocalAuth: cfg.EnableLocalAuth,
		SecureCookies:   cfg.Mode == config.ModeOnline,
		Timeout:         cfg.RequestTimeout,
		Ready:           dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
