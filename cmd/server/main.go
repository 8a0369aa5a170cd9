package main

import (
	"fmt"
	"os"

	"newsdesk/internal/config"
	"newsdesk/internal/db"
	"newsdesk/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "newsdesk - news publishing backend",
	Long: `newsdesk serves the JSON API for a news publishing platform:
articles organized by categories and tags, comments, likes, bookmarks
and full-text search, with role based permissions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(cfg.LogLevel, cfg.LogFormat)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase 连接数据库并执行自动迁移
func openDatabase() (*gorm.DB, error) {
	conn, err := db.Init(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}
