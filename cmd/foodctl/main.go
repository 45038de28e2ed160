// Command foodctl loads catalog data and manages users from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

var (
	verbose bool
	migrate bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "foodctl",
	Short: "Foodgram administration tool",
	Long: `Administration commands for the Foodgram backend.

Available subcommands:
  load-ingredients - Import ingredients from a JSON file
  load-tags        - Import tags from a YAML file
  create-user      - Create a user account`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&migrate, "migrate", false, "Auto-migrate the schema before running")

	rootCmd.AddCommand(loadIngredientsCmd)
	rootCmd.AddCommand(loadTagsCmd)
	rootCmd.AddCommand(createUserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs to talk to the database.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *logger.Logger
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	mode := "production"
	if verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if migrate || cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return &env{cfg: cfg, db: db, log: log}, nil
}
