package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"plusdb/bplustree"
	"plusdb/dbkey"
	"plusdb/service"
)

// putCmd inserts or updates a single record in one table and saves the
// store immediately, since the CLI has no long-lived process to call save
// on later.
var putCmd = &cobra.Command{
	Use:   "put <table> <key> <json-value>",
	Short: "Insert or update a record and save the store",
	Long: `Insert or update a record in a table, then persist the store.

Example:
  plusdbd put users 1 '{"name":"ada"}'`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, rawKey, rawValue := args[0], args[1], args[2]

		key, err := parseCLIKey(rawKey)
		if err != nil {
			return err
		}

		var value bplustree.Record
		if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
			return fmt.Errorf("value must be a JSON object: %w", err)
		}

		store, err := service.Open(dataDir, service.Options{Order: order})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		if err := store.CreateTable(table); err != nil && !isAlreadyExists(err) {
			return err
		}
		if err := store.Insert(table, key, value); err != nil {
			if err := store.Update(table, key, value); err != nil {
				return err
			}
		}
		if err := store.Save(); err != nil {
			return fmt.Errorf("saving: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}

// parseCLIKey accepts a bare number or string on the command line,
// preferring the numeric interpretation when the argument parses cleanly
// as JSON (so "1" becomes a number key, matching the first-insert-
// determines-kind rule a caller would expect from typing a bare digit).
func parseCLIKey(raw string) (dbkey.Key, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		if k, err := dbkey.FromAny(v); err == nil {
			return k, nil
		}
	}
	return dbkey.String(raw), nil
}
