package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "punchclock",
	Short: "Face recognition attendance station",
	Long: `Punchclock is a face recognition attendance system. It talks to a
recognition sidecar for camera frames and embeddings, verifies liveness by
motion analysis, and records punch-in/punch-out times in a CSV ledger.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
