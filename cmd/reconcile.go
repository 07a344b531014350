package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"steam-library/core/reconcile"

	"github.com/spf13/cobra"
)

var reconcileJSON bool

// reconcileCmd runs a full library reconciliation and prints the result.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile installed and owned games into a single library",
	Long: `Reconcile merges the locally installed games, the configured accounts'
owned games, and family-shared games into a single deduplicated library.

Examples:
  # Human-readable table
  steam-library reconcile

  # Machine-readable output
  steam-library reconcile --json`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the result as JSON")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	engine, _ := buildEngine(cfg, l)

	l.Info("Starting reconciliation")
	result := engine.Run(ctx)

	if reconcileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printGames(result.Games)
	if result.Err != nil {
		fmt.Printf("\nPartial result: %v\n", result.Err)
	}
	return nil
}

func printGames(games []reconcile.GameRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME ID\tNAME\tSOURCE\tINSTALLED\tPLAYTIME")
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			g.GameID, g.Name, g.Source, g.Installed, formatPlaytime(g.Playtime))
	}
	w.Flush()
	fmt.Printf("\n%d games\n", len(games))
}

func formatPlaytime(seconds uint64) string {
	if seconds == 0 {
		return "-"
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, seconds%3600/60)
}
