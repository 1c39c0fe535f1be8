package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [vector-file]",
	Short: "Find the enrolled users nearest to an embedding",
	Long: `Reads an embedding from a vector file and prints the nearest enrolled
identities by cosine distance, using the HNSW index.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Int("k", 3, "Number of neighbors to return")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	k := mustGetInt(cmd, "k")

	query, err := readVectorFile(args[0])
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

	matches, err := index.Nearest(query, k)
	if err != nil {
		return err
	}

	for i, m := range matches {
		fmt.Printf("%d. %-25s distance %.4f\n", i+1, m.Name, m.Distance)
	}
	return nil
}
