package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the HTTP API over the attendance ledger and the enrollment
store: daily reports, per-user history, statistics and embedding lookups.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Environment)
	ctx := cmd.Context()

	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	index, err := buildIndex(ctx, cfg, store)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg, host, port, attendance, store, index, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
