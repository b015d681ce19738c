package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/server"
	"github.com/de-tools/medical-reports/pkg/services/config"
	"github.com/de-tools/medical-reports/pkg/services/lifecycle"
	"github.com/de-tools/medical-reports/pkg/services/report"
	"github.com/de-tools/medical-reports/pkg/services/report/render"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	reportstore "github.com/de-tools/medical-reports/pkg/store/report"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	cfgPath string
	envPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the medical report server",
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional config file (yaml, json or toml)")
	rootCmd.Flags().StringVar(&envPath, "env-file", ".env",
		"Path to an optional .env file loaded before the environment is read")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Environment() == domain.EnvironmentDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.LogLevel()).With().Timestamp().Logger()
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		fmt.Printf("Error loading env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	dir, err := filesystem.NewDirectory(cfg.Report.Dir)
	if err != nil {
		return err
	}

	firstSequence := 1
	if cfg.Report.ResumeSequence {
		highest, err := dir.HighestSequence()
		if err != nil {
			return fmt.Errorf("failed to scan existing reports: %w", err)
		}
		firstSequence = highest + 1
	}
	store := reportstore.NewStore(firstSequence)

	generator := report.NewFileGenerator(dir, render.NewPDFRenderer(render.DefaultPDFOptions()), report.Options{
		Template:   domain.DefaultTemplate(),
		Location:   cfg.Location(),
		TimeLayout: cfg.Report.TimeLayout,
		Validator:  render.NewPDFValidator(),
	})
	manager := lifecycle.NewManager(generator, store, cfg.Report.GenerationTimeout)

	scheduler, err := lifecycle.NewScheduler(logger, cfg.Report.Schedule, cfg.Location(), manager)
	if err != nil {
		return err
	}

	// A failed first generation leaves the service up without a report; the next tick retries.
	if err := manager.Init(ctx); err != nil {
		logger.Error().Err(err).Msg("initial report generation failed")
	}

	logger.Info().
		Str("env", cfg.Environment().String()).
		Str("dir", dir.Path()).
		Str("schedule", scheduler.Schedule()).
		Strs("allowed_origins", cfg.CORS.AllowedOrigins).
		Msg("configuration loaded")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		Dependencies: server.Dependencies{
			Reports: store,
			Files:   dir,
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		return api.Start(gctx)
	})

	return g.Wait()
}
