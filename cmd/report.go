package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Show attendance for one day",
	Long: `Prints every attendance record for the given day (YYYY-MM-DD).
Without an argument the report covers today.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	date := time.Now().Format(ledger.DateLayout)
	if len(args) == 1 {
		date = args[0]
		if _, err := time.Parse(ledger.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
	}

	attendance, err := openLedger(cfg)
	if err != nil {
		return err
	}

	records, err := attendance.DailyReport(date)
	if err != nil {
		return err
	}

	fmt.Printf("Attendance for %s\n", date)
	if len(records) == 0 {
		fmt.Println("  no records")
		return nil
	}

	fmt.Printf("%-25s %-10s %-10s %-12s %s\n", "NAME", "IN", "OUT", "CONFIDENCE", "LIVENESS")
	for _, r := range records {
		out := r.PunchOut
		if out == "" {
			out = "-"
		}
		fmt.Printf("%-25s %-10s %-10s %-12s %s\n", r.Name, r.PunchIn, out, r.Confidence, r.LivenessCheck)
	}
	return nil
}
