package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/kiosk"
	"github.com/kozaktomas/punchclock/internal/recognizer"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the interactive attendance station",
	Long: `Start an attendance session against the recognition sidecar.
The session polls the sidecar for camera frames, tracks liveness, and marks
attendance on operator commands read from stdin:

  a  mark attendance for the currently recognized face
  r  reset the liveness window
  q  quit the session`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(kioskCmd)
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Environment)
	ctx := cmd.Context()

	client, err := recognizer.New(cfg.Recognizer.URL)
	if err != nil {
		return err
	}
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("recognition sidecar not ready: %w", err)
	}

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	enrolled, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(enrolled) == 0 {
		log.Warn("no enrolled users, every face will be unknown")
	}

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	session := kiosk.NewSession(cfg, client, attendance, enrolled, log)
	return session.Run(ctx, os.Stdin)
}
