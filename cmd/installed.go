package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var installedJSON bool

// installedCmd scans the local library folders without touching the network.
var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List locally installed games and mods",
	Long: `Scans the configured Steam installation and every registered library
folder for installed games, including GoldSrc and Source mods.`,
	RunE: runInstalled,
}

func init() {
	installedCmd.Flags().BoolVar(&installedJSON, "json", false, "Print the result as JSON")
	RootCmd.AddCommand(installedCmd)
}

func runInstalled(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	_, scanner := buildEngine(cfg, l)

	games, err := scanner.Scan(context.Background())
	if err != nil {
		return err
	}

	if installedJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(games)
	}

	printGames(games)
	return nil
}
