package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"healthease/internal/api/middleware"
	"healthease/internal/client"
	"healthease/internal/config"
	"healthease/internal/seed"
	"healthease/internal/services"
	"healthease/internal/sim"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "healthease",
		Short:         "HealthEase hospital API and live ambulance map",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config and builds the root logger.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(cfg), nil
}

// newLogger writes JSON to stdout, or human-readable lines in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout)
	if cfg.IsDev() || cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the map simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Storage.Seed, _ = cmd.Flags().GetBool("seed")
			}
			return runServer(cfg, logger)
		},
	}
	cmd.Flags().Bool("seed", false, "Seed demo data into an empty store (overrides storage.seed)")
	return cmd
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	app.tracking.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      app.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Bool("auth", cfg.Auth.Enabled).
			Msg("starting HealthEase server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo data into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := seed.Run(ctx, store, time.Now(), nil)
			if err != nil {
				return err
			}
			if res == (seed.Result{}) {
				logger.Info().Msg("store already has data, nothing seeded")
				return nil
			}
			logger.Info().
				Int("ambulances", res.Ambulances).
				Int("doctors", res.Doctors).
				Int("medicines", res.Medicines).
				Int("telecalls", res.Telecalls).
				Msg("seeding done")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			role, _ := cmd.Flags().GetString("role")
			subject, _ := cmd.Flags().GetString("subject")

			token, err := middleware.NewAuthenticator(cfg.Auth).IssueToken(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("role", middleware.RoleStaff, "Token role: staff or patient")
	cmd.Flags().String("subject", "cli", "Token subject")
	return cmd
}

// watchCmd runs the map simulation headless against a remote API and prints
// the roster and status lines.
func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Track a remote fleet and print its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			apiURL, _ := cmd.Flags().GetString("api-url")
			if apiURL == "" {
				apiURL = cfg.Sync.APIURL
			}
			if apiURL == "" {
				return errors.New("--api-url or sync.api_url is required")
			}
			every, _ := cmd.Flags().GetDuration("every")
			token, _ := cmd.Flags().GetString("token")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			remote := client.New(apiURL, token, &http.Client{Timeout: 10 * time.Second})
			if err := remote.Health(ctx); err != nil {
				return fmt.Errorf("api %s unreachable: %w", apiURL, err)
			}

			tracking := services.NewTrackingService(services.TrackingConfig{
				FrameInterval: cfg.Map.FrameInterval,
				FrameWidth:    cfg.Map.FrameWidth,
				FrameHeight:   cfg.Map.FrameHeight,
				Sync: sim.SyncConfig{
					Interval:   cfg.Sync.Interval,
					MinVisible: cfg.Sync.MinVisible,
					Center:     mapCenter(cfg),
				},
			}, remote, nil, nil, nil, logger)
			tracking.Start(ctx)
			defer tracking.Close()

			out := cmd.OutOrStdout()
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					printRoster(out, tracking)
				}
			}
		},
	}
	cmd.Flags().String("api-url", "", "Base URL of the HealthEase API (default sync.api_url)")
	cmd.Flags().String("token", "", "Bearer token for the API")
	cmd.Flags().Duration("every", 5*time.Second, "How often to print")
	return cmd
}

func printRoster(out io.Writer, tracking *services.TrackingService) {
	view := tracking.Roster()
	fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
	if view.Error != "" {
		fmt.Fprintf(out, "! %s\n", view.Error)
	}
	for _, e := range view.Ambulances {
		fmt.Fprintf(out, "%-20s %s\n", e.Ambulance.DisplayName(), e.Badge)
	}
	for _, line := range tracking.Status() {
		fmt.Fprintln(out, line)
	}
}
