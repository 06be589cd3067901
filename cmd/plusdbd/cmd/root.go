package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dataDir string
var order int

var rootCmd = &cobra.Command{
	Use:   "plusdbd",
	Short: "plusdb - embedded B+Tree multi-table key/value store",
	Long: `plusdbd runs and operates a plusdb store: a multi-table key/value
store backed by an in-memory B+Tree per table, with durable snapshot
persistence to a directory of per-table files.`,
}

// Execute adds all child commands to the root command and runs it. This is
// called by main.main, once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "snapshot directory for the store")
	rootCmd.PersistentFlags().IntVar(&order, "order", 64, "B+Tree order for newly created tables")
}
