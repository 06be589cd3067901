package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"plusdb/config"
)

var initConfigPath string

// initCmd bootstraps a new configuration file with freshly generated
// security keys.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a new plusdb configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists(initConfigPath) {
			return fmt.Errorf("config already exists at %s", initConfigPath)
		}
		cfg, err := config.Bootstrap(initConfigPath, dataDir)
		if err != nil {
			return err
		}
		fmt.Printf("wrote config to %s\n", initConfigPath)
		fmt.Printf("api key:        %s\n", cfg.Security.APIKey)
		fmt.Printf("encryption key: %s\n", cfg.Security.EncryptionKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initConfigPath, "config", "./plusdb.yaml", "path to write the new config file")
}
