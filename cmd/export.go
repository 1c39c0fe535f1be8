package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
)

var exportCmd = &cobra.Command{
	Use:   "export [target]",
	Short: "Export the attendance ledger to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	if err := attendance.Export(args[0]); err != nil {
		return err
	}
	fmt.Printf("Exported attendance ledger to %s\n", args[0])
	return nil
}
