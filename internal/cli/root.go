package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dbhandler/internal/config"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

var rootCmd = &cobra.Command{
	Use:   "dbhandler",
	Short: "Resilient database queries from the command line",
	Long: `dbhandler runs SQL against PostgreSQL or SQLite through a single managed
connection. Every query call reconnects first and is retried up to a bounded
number of attempts. A call whose attempts all fail yields an empty result
unless --strict is given.

Connection sources, highest precedence first:
  --connection flag
  --profile / --credentials flags (credentials document)
  DBHANDLER_CONNECTION_STRING, or DBHANDLER_HOST and friends
  credentials.path / credentials.profile in dbhandler.yaml
  ~/access_information.json

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or credentials
  11 - Database connection failed
  13 - Every query attempt failed (--strict only)`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

var globalFlags struct {
	verbose    bool
	configPath string
	envFile    string
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configPath, "config", "",
		"Path to the config file (default: ./"+config.ConfigFileName+" when present)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", "",
		"Load environment variables from this file (default: ./.env when present)")
}

// loadEnvFile loads --env-file, or ./.env when it exists. Variables already
// set in the environment are not overwritten.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if globalFlags.envFile == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(globalFlags.envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w: %w", globalFlags.envFile, dbhandler.ErrInvalidConfig, err)
	}
	return nil
}
