package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rolznz/zap.stream/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the overlay server",
	Long: `Run the overlay server: subscribe to the configured relays, follow the
configured stream, and serve the overlay and control websocket endpoints.
Configuration comes from the environment (or a .env file).`,
	Run: func(cmd *cobra.Command, args []string) {
		s := server.New()
		s.RegisterRoutes()
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
