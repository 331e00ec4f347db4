package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"savings-calculator/config"
	"savings-calculator/domain"
	httpLayer "savings-calculator/http"
	"savings-calculator/logging"
	"savings-calculator/repository"
	"savings-calculator/service"
	"savings-calculator/tui"
)

const appVersion = "0.3.0"

func main() {
	root := &cobra.Command{
		Use:          "savings",
		Short:        "Savings calculator: goal = contribution × duration",
		SilenceUsage: true,
	}
	root.Version = appVersion
	root.SetVersionTemplate("savings v{{.Version}}\n")

	root.AddCommand(newServeCommand(), newTUICommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the savings calculator HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.ApplyEnv(os.Getenv)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.Configure("savings", cfg.LogOptions())
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	return cmd
}

func newTUICommand() *cobra.Command {
	var (
		variant string
		target  string
		auto    bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the savings calculator in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Configure("savings-tui", logging.TestOptions())

			v, err := domain.ParseVariant(variant)
			if err != nil {
				return err
			}
			t, err := domain.ParseField(target)
			if err != nil {
				return err
			}
			policy, err := domain.PolicyFor(v, t, auto)
			if err != nil {
				return err
			}
			engine, err := service.NewEngine(policy)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(tui.New(engine), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&variant, "variant", string(domain.VariantTwoField), "two-field, auto-calculate or goal-seeking")
	cmd.Flags().StringVar(&target, "target", "", "Field to solve for in goal-seeking (goal, contribution, duration)")
	cmd.Flags().BoolVar(&auto, "auto", true, "Start with auto-calculate on (auto-calculate variant)")
	return cmd
}

func serve(parent context.Context, cfg config.Config, logger zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}

	var cache repository.CacheRepository
	if cfg.Redis.Enabled {
		redisCache := repository.NewRedisCache(repository.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisCache.Close()
		if err := redisCache.Ping(parent); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		cache = redisCache
	} else {
		cache = repository.NewMockCache()
		logger.Warn().Msg("redis disabled, sessions are kept in memory")
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	sessions := repository.NewSessionRepositoryCache(cache, cfg.Redis.SessionTTL.Duration)
	sessionService, err := service.NewSessionService(sessions, policy)
	if err != nil {
		return err
	}
	savingsHandler := httpLayer.NewSavingsHandler(sessionService)
	projectionHandler := httpLayer.NewProjectionHandler(service.NewProjectionService(sessionService))

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill.Duration)
	defer rateLimiter.Stop()
	router := httpLayer.NewRouter(rateLimiter, savingsHandler, projectionHandler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpLayer.RequestLogger(logger, router),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("variant", string(policy.Variant)).
			Msg("savings API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}
