package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"plusdb/service"
)

// getCmd reads a single record from a table.
var getCmd = &cobra.Command{
	Use:   "get <table> <key>",
	Short: "Read a record from a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, rawKey := args[0], args[1]

		key, err := parseCLIKey(rawKey)
		if err != nil {
			return err
		}

		store, err := service.Open(dataDir, service.Options{Order: order})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		value, err := store.Read(table, key)
		if err != nil {
			return err
		}

		out, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
