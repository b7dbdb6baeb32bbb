package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/config"
	"github.com/chazo1994/Creatory/internal/devserver"
	"github.com/chazo1994/Creatory/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "studio-devserver",
	Short: "Local in-memory backend for studioctl",
	Long: `studio-devserver serves the studio HTTP API from memory so studioctl can be
exercised end to end: auth, workspaces, dual-thread conversations, director
chat turns with a run event stream, and workflow templates. Nothing is
persisted; restarting the server forgets every account.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	// Define flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default ./configs/devserver.yaml when present)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		return err
	}

	slog.Info("studio-devserver starting...",
		"version", version,
		"config", cfgFile,
	)

	srv, err := devserver.New(cfg, slog.Default())
	if err != nil {
		return err
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Seed(seedCtx); err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		slog.Info("server listening",
			"address", cfg.GetServerAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.Hertz.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Hertz.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
