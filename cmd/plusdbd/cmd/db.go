package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"plusdb/dbadmin"
)

var dbBaseDir string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Create, drop, and list named database directories",
}

var dbCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new database directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := dbadmin.New(dbBaseDir)
		if err != nil {
			return err
		}
		if err := m.Create(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

var dbDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Remove a database directory and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := dbadmin.New(dbBaseDir)
		if err != nil {
			return err
		}
		if err := m.Drop(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List database directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := dbadmin.New(dbBaseDir)
		if err != nil {
			return err
		}
		names, err := m.List()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	},
}

func init() {
	dbCmd.PersistentFlags().StringVar(&dbBaseDir, "base-dir", "./databases", "base directory holding named database directories")
	dbCmd.AddCommand(dbCreateCmd, dbDropCmd, dbListCmd)
	rootCmd.AddCommand(dbCmd)
}
