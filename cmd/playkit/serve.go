package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/playkit/internal/practice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the practice backend",
	Long: `Starts the bundled practice backend: a small REST and websocket server
holding the demo app's users, todos, events, posts and kanban board in a
local SQLite database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		dbPath, _ := cmd.Flags().GetString("db")
		secret, _ := cmd.Flags().GetString("jwt-secret")
		if dbPath == "" {
			dbPath = filepath.Join(cfg.GetString("data-dir"), "practice.db")
		}

		server, err := practice.New(practice.Config{
			DBPath:    dbPath,
			JWTSecret: secret,
			Logger:    slog.Default(),
		})
		if err != nil {
			return err
		}
		slog.Info("practice backend starting", "db", dbPath)
		return server.Run(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8800", "Listen address")
	serveCmd.Flags().String("db", "", "SQLite database path (defaults to <data-dir>/practice.db)")
	serveCmd.Flags().String("jwt-secret", "playkit-dev-secret", "HMAC secret for token signing")
	rootCmd.AddCommand(serveCmd)
}
