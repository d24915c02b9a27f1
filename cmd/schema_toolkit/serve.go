package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server that exposes the analysis operations as REST endpoints. Run history is recorded when DATABASE_URL is set.",
	RunE:  runServe,
}

var (
	servePort int
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		CodeSetPath: cfg.CodeSetPath,
		MaxDepth:    cfg.MaxDepth,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
