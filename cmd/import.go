package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/database/mariadb"
	"github.com/kozaktomas/punchclock/internal/ledger"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import attendance rows from the legacy MariaDB system",
	Long: `Reads the legacy attendance table (LEGACY_DATABASE_DSN) and appends
rows to the CSV ledger. Rows whose (name, date) pair already exists are
skipped, so re-running the import is safe.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	pool, err := mariadb.NewPool(cfg.Database.LegacyDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	total, err := pool.CountAttendance(ctx)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Importing attendance rows"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var rows []ledger.Record
	err = pool.ReadAttendance(ctx, func(r ledger.Record) error {
		rows = append(rows, r)
		return bar.Add(1)
	})
	if err != nil {
		return err
	}

	added, err := attendance.Import(rows)
	if err != nil {
		return err
	}

	fmt.Printf("\nImported %d of %d rows (%d already present)\n", added, total, total-added)
	return nil
}
