package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"plusdb/service"
)

// scanCmd prints every record in a table in ascending key order.
var scanCmd = &cobra.Command{
	Use:   "scan <table>",
	Short: "List every record in a table in key order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]

		store, err := service.Open(dataDir, service.Options{Order: order})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		entries, err := store.Scan(table)
		if err != nil {
			return err
		}

		for _, e := range entries {
			out, err := json.Marshal(map[string]any{"key": e.Key.Raw(), "value": e.Value})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
