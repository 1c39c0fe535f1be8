package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show one user's attendance history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("days", 30, "How many days back to include")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	days := mustGetInt(cmd, "days")

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	entries, err := attendance.UserHistory(args[0], days, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("History for %s (last %d days)\n", args[0], days)
	if len(entries) == 0 {
		fmt.Println("  no records")
		return nil
	}

	var total time.Duration
	for _, e := range entries {
		duration := "-"
		if e.HasDuration {
			duration = e.Duration.String()
			total += e.Duration
		}
		out := e.PunchOut
		if out == "" {
			out = "-"
		}
		fmt.Printf("  %s  %s -> %-10s %s\n", e.Date, e.PunchIn, out, duration)
	}
	fmt.Printf("Total: %s over %d days\n", total, len(entries))
	return nil
}
