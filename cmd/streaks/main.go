package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	adapthttp "streaks/internal/adapter/http"
	"streaks/internal/adapter/postgres"
	"streaks/internal/adapter/sqlite"
	"streaks/internal/app"
	"streaks/internal/config"
	"streaks/internal/domain"
	"streaks/migrations"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "streaks",
	Short:   "Newsletter reading streak and opening-rate service",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// store bundles the repository implementations of the selected driver.
type store struct {
	users    domain.UserRepository
	reads    domain.ReadRepository
	admins   domain.AdminRepository
	sessions domain.SessionRepository
	close    func() error
}

func openStore() (*store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &store{
			users:    db.Users(),
			reads:    db.Reads(),
			admins:   db.Admins(),
			sessions: db.Sessions(),
			close:    db.Close,
		}, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &store{
			users:    db.Users(),
			reads:    db.Reads(),
			admins:   db.Admins(),
			sessions: db.Sessions(),
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Database.Driver)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		loc := cfg.Location()

		readSvc := app.NewReadService(st.users, st.reads, loc, logger)
		statsSvc := app.NewStatsService(st.users, st.reads, loc)
		adminSvc := app.NewAdminService(st.users, st.reads, loc, logger)
		authSvc := app.NewAuthService(st.admins, st.sessions)

		var limiter app.RateLimiter
		if cfg.RateLimit.Requests > 0 {
			limiter = app.NewWindowLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window.Std())
		}

		oidcConfig, err := buildOIDC(cmd.Context())
		if err != nil {
			return err
		}

		go reapSessions(cmd.Context(), st.sessions, logger)

		srv := adapthttp.New(readSvc, statsSvc, adminSvc, authSvc, limiter, oidcConfig, logger)
		logger.Info("listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func buildOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	if !cfg.SSO.Enabled {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.SSO.IssuerURL)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.SSO.ClientID,
			ClientSecret: cfg.SSO.ClientSecret,
			RedirectURL:  cfg.SSO.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func reapSessions(ctx context.Context, sessions domain.SessionRepository, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

var migrateCmd = &cobra.Command{
	Use:       "migrate {up|down|status|version}",
	Short:     "Manage database schema migrations",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		driver := cfg.Database.Driver
		db, err := sql.Open(driverName(driver), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		switch args[0] {
		case "up":
			return migrations.Up(db, driver)
		case "down":
			return migrations.Down(db, driver)
		case "status":
			return migrations.Status(db, driver)
		case "version":
			return migrations.Version(db, driver)
		default:
			return fmt.Errorf("unknown migrate command %q", args[0])
		}
	},
}

func driverName(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username> <password>",
	Short: "Create an admin account for the dashboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		authSvc := app.NewAuthService(st.admins, st.sessions)
		if err := authSvc.CreateAdmin(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("admin %q created\n", args[0])
		return nil
	},
}
