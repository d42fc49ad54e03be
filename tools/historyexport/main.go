// Package main provides historyexport, a tool that copies the mediaseed run
// history from its SQLite database into MySQL for shared reporting.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be set via ldflags during build)
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &Config{}
	cmd := &cobra.Command{
		Use:     "historyexport",
		Short:   "Copy mediaseed run history from SQLite to MySQL",
		Version: version,
		Long: `Copies every recorded run and its failed batches from the mediaseed
history database into MySQL. Original ids are preserved and rows that already
exist in the target are skipped, so the export can be repeated.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.SQLitePath, "sqlite-path", "", "Path to the history database (default: history.path from config)")
	fl.StringVar(&cfg.MySQLDSN, "mysql-dsn", "", "MySQL connection string (e.g., user:pass@tcp(host:3306)/dbname)")
	fl.StringVar(&cfg.MySQLHost, "mysql-host", "localhost", "MySQL host (alternative to DSN)")
	fl.IntVar(&cfg.MySQLPort, "mysql-port", 3306, "MySQL port")
	fl.StringVar(&cfg.MySQLUser, "mysql-user", "mediaseed", "MySQL username")
	fl.StringVar(&cfg.MySQLPass, "mysql-pass", "", "MySQL password")
	fl.StringVar(&cfg.MySQLDatabase, "mysql-database", "mediaseed", "MySQL database name")
	fl.IntVar(&cfg.BatchSize, "batch-size", 500, "Number of rows per batch")
	fl.BoolVar(&cfg.SkipVerify, "skip-verify", false, "Skip post-export verification")
	fl.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
	fl.StringVar(&cfg.ConfigPath, "config", "", "Path to mediaseed config.yaml (for the history path)")
	return cmd
}

func runExport(cmd *cobra.Command, cfg *Config) error {
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		fmt.Fprintf(out, "Source: %s\n", cfg.SQLitePath)
		fmt.Fprintf(out, "Target: %s\n", cfg.GetSanitizedMySQLDSN())
		fmt.Fprintf(out, "Batch size: %d\n", cfg.BatchSize)
	}

	migrator, err := NewMigrator(cfg, out)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	stats, err := migrator.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	stats.Print(out)

	if !cfg.SkipVerify {
		if err := NewVerifier(migrator.sourceDB, migrator.targetDB, out).Verify(); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}
	return nil
}
