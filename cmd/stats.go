package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger-wide statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	stats, err := attendance.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Records:           %d\n", stats.TotalRecords)
	fmt.Printf("Unique users:      %d\n", stats.UniqueUsers)
	fmt.Printf("Days covered:      %d\n", stats.UniqueDates)
	fmt.Printf("Liveness verified: %d\n", stats.LivenessVerified)
	return nil
}
