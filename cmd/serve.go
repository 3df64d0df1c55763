package cmd

import (
	"fmt"

	"github.com/philipparndt/gcodeview/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser and playback over HTTP",
	Long: `Start an HTTP server with the endpoints
  POST /api/parse        parse a program (body) and return a summary
  POST /api/validate     check chunk continuity
  GET  /events/progress  loader progress as server-sent events
  GET  /ws/simulate      websocket playback`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
	return server.New(server.Options{Config: cfg}).ListenAndServe(cmd.Context(), addr)
}
