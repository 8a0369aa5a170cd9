package main

import (
	"newsdesk/internal/db"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// seed flags
	demoPassword string
	withDemo     bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openDatabase(); err != nil {
			return err
		}
		log.Info().Msg("migration finished")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed default categories and optional demo content",
	Long: `Seed the default category tree. With --demo also create an editor,
journalists, readers, tags, published articles, comments and likes.

Examples:
  newsdesk seed
  newsdesk seed --demo --password secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDatabase()
		if err != nil {
			return err
		}
		if withDemo {
			if err := db.SeedDemo(conn, demoPassword); err != nil {
				return err
			}
			log.Info().Msg("demo data seeded")
			return nil
		}
		return seedDefaults(conn)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&withDemo, "demo", false, "Also create demo users, tags, articles and comments")
	seedCmd.Flags().StringVar(&demoPassword, "password", "password123", "Password for demo users")
}

func seedDefaults(conn *gorm.DB) error {
	return db.SeedCategories(conn)
}
