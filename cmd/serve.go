package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes pipeline over an authenticated HTTP API",
	Long: `Serve the notes pipeline over HTTP.

Every request must carry the shared secret from API_KEY (or api_key in
config.toml) in the X-API-Key header. Endpoints live under /youtube_notes/.`,
	Example: `  # Listen on the configured address (default :1621)
  API_KEY=secret ytnotes serve

  # Listen on another address
  ytnotes serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.ServerAddr = addr
		}

		logger := internal.NewLoggerFromConfig(config)
		app, err := internal.NewApp(config, logger)
		if err != nil {
			return err
		}
		server, err := internal.NewServer(app, config.APIKey, logger)
		if err != nil {
			return err
		}
		return server.ListenAndServe(cmd.Context(), config.ServerAddr)
	},
}

func init() {
	internal.AddOpenAIFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :1621)")
	rootCmd.AddCommand(serveCmd)
}
