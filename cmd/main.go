package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aspet/simple-bank/internal/config"
	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/internal/handlers"
	"github.com/aspet/simple-bank/internal/jobs"
	"github.com/aspet/simple-bank/internal/logging"
	"github.com/aspet/simple-bank/internal/routes"
	"github.com/aspet/simple-bank/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "simple-bank",
	Short:        "Account ledger HTTP service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the account API and the ops endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $BANK_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPinsCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRepository connects to the configured database and makes sure the
// schema exists.
func openRepository(ctx context.Context) (database.AccountRepository, error) {
	repo, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	pins, err := service.NewPinVerifier(cfg.Security.PinHashing)
	if err != nil {
		return err
	}
	accounts := service.NewAccountService(repo, pins, logger)

	gin.SetMode(cfg.HTTP.GinMode)
	servers := []*http.Server{{
		Addr:              cfg.HTTP.Addr,
		Handler:           routes.SetupRouter(handlers.NewAccountHandler(accounts, logger), logger, cfg.HTTP.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.HTTP.OpsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.HTTP.OpsAddr,
			Handler:           routes.SetupOpsRouter(handlers.NewOpsHandler(repo, logger)),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	if cfg.Jobs.SummarySchedule != "" {
		c, err := jobs.ScheduleLedgerSummary(logger, repo, cfg.Jobs.SummarySchedule)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})
	return g.Wait()
}
