package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/recognizer"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage enrolled users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled users",
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Enroll a user",
	Long: `Enroll a user with a reference embedding. The embedding comes either
from a vector file (--file, whitespace-separated values) or from the
recognition sidecar's current frame (--from-camera).`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersAdd,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove an enrolled user",
	Long:  `Removes a user. Name matching ignores case, diacritics and dashes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

var usersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the enrolled user list to a text file",
	RunE:  runUsersExport,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersExportCmd)

	usersAddCmd.Flags().String("file", "", "Vector file with the reference embedding")
	usersAddCmd.Flags().Bool("from-camera", false, "Capture the embedding from the recognition sidecar")

	usersExportCmd.Flags().String("output", "registered_users.txt", "Output file path")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	enrolled, err := store.List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Enrolled users: %d\n", len(enrolled))
	for _, e := range enrolled {
		fmt.Printf("  %s (%d-dim)\n", e.Name, len(e.Embedding))
	}
	return nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	name := args[0]

	file := mustGetString(cmd, "file")
	fromCamera := mustGetBool(cmd, "from-camera")
	if (file != "") == fromCamera {
		return fmt.Errorf("exactly one of --file or --from-camera is required")
	}

	var embedding []float32
	if file != "" {
		embedding, err = readVectorFile(file)
		if err != nil {
			return err
		}
	} else {
		client, err := recognizer.New(cfg.Recognizer.URL)
		if err != nil {
			return err
		}
		obs, err := client.Observe(ctx)
		if err != nil {
			return err
		}
		if obs.Faces != 1 || len(obs.Embedding) == 0 {
			return fmt.Errorf("need exactly one face in view, saw %d", obs.Faces)
		}
		embedding = obs.Embedding
	}

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Save(ctx, name, embedding); err != nil {
		return err
	}
	fmt.Printf("Enrolled %s (%d-dim embedding)\n", name, len(embedding))
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runUsersExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	output := mustGetString(cmd, "output")

	store, closeStore, err := openEnrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	enrolled, err := store.List(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(enrolled))
	for i, e := range enrolled {
		names[i] = e.Name
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("REGISTERED USERS\n")
	sb.WriteString("Generated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")
	for _, name := range names {
		sb.WriteString(name + "\n")
	}

	if err := os.WriteFile(output, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write user list: %w", err)
	}
	fmt.Printf("Wrote %d users to %s\n", len(names), output)
	return nil
}

// readVectorFile parses a whitespace-separated float vector file.
func readVectorFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vector file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, fmt.Errorf("vector file %s is empty", path)
	}

	vec := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("parse value %d in %s: %w", i, path, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}
