package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"steam-library/feature/owned"

	"github.com/spf13/cobra"
)

var ownedJSON bool

// ownedCmd fetches the primary account's owned games without reconciling.
var ownedCmd = &cobra.Command{
	Use:   "owned",
	Short: "Fetch the primary account's owned games",
	Long: `Fetches the configured account's owned games from the Steam Web API,
or from the public profile page when private mode is off.`,
	RunE: runOwned,
}

func init() {
	ownedCmd.Flags().BoolVar(&ownedJSON, "json", false, "Print the result as JSON")
	RootCmd.AddCommand(ownedCmd)
}

func runOwned(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	fetcher := owned.NewFetcher(&http.Client{Timeout: 30 * time.Second}, l)
	games, err := fetcher.Fetch(context.Background(), cfg.Steam.Account())
	if err != nil {
		return err
	}

	if ownedJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(games)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "APP ID\tNAME\tPLAYTIME")
	for _, g := range games {
		fmt.Fprintf(w, "%d\t%s\t%s\n", g.AppID, g.Name, formatPlaytime(uint64(g.PlaytimeForever)*60))
	}
	w.Flush()
	fmt.Printf("\n%d games\n", len(games))
	return nil
}
