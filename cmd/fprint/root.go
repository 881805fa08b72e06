// Command fprint is the CLI for building and querying a local audio
// fingerprint catalog.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fprint/config"
	"fprint/internal/catalog"
	"fprint/internal/logging"
)

var (
	configPath string
	cfg        config.Config
	log        *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fprint",
	Short: "Offline audio fingerprint recognition engine",
	Long: `fprint ingests a local music library into a fingerprint catalog and
recognizes short audio clips against it, in the style of the
Shazam/Wang constellation algorithm.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log = logging.New(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "fprint.yaml", "path to YAML config file")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(recognizeCmd)
	rootCmd.AddCommand(statsCmd)
}

func openCatalog(ctx context.Context) (*catalog.Store, error) {
	dsn := cfg.DBPath
	if dsn == "" {
		dsn = os.Getenv("FPRINT_DSN")
	}
	if dsn == "" {
		return nil, fmt.Errorf("no catalog DSN configured: set db_path in %s or FPRINT_DSN", configPath)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return catalog.Open(ctx, dsn, cfg.DBMaxConns)
}
