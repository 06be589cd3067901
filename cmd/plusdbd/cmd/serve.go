package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"plusdb/api"
	"plusdb/config"
	"plusdb/service"
)

var (
	servePort   int
	serveBind   string
	serveAPIKey string
	configPath  string
)

// serveCmd starts the HTTP surface over a store.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the plusdb REST API server",
	Long: `Start the plusdb REST API server.

Example:
  plusdbd serve --config ./plusdb.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
			cfg.DataDir = dataDir
			cfg.Order = order
			cfg.Bind = serveBind
			cfg.Port = servePort
			cfg.Security.APIKey = serveAPIKey
		}

		encKey, err := cfg.EncryptionKeyBytes()
		if err != nil {
			return err
		}

		store, err := service.Open(cfg.DataDir, service.Options{
			Order:         cfg.Order,
			EncryptionKey: encKey,
			CacheSize:     256,
		})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		fmt.Printf("plusdb listening on %s:%d (data dir %s)\n", cfg.Bind, cfg.Port, cfg.DataDir)
		return api.ListenAndServe(store, api.ServerConfig{
			Bind:   cfg.Bind,
			Port:   cfg.Port,
			APIKey: cfg.Security.APIKey,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides other flags)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringVar(&serveBind, "bind", "127.0.0.1", "address to bind")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "API key required on protected routes (empty disables auth)")
}
