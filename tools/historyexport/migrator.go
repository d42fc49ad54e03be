package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tphakala/mediaseed/internal/datastore"
)

// Migrator copies history tables from the SQLite database to the target.
type Migrator struct {
	sourceDB  *gorm.DB
	targetDB  *gorm.DB
	batchSize int
	verbose   bool
	out       io.Writer
}

// MigrationStats tracks migration statistics.
type MigrationStats struct {
	StartTime time.Time
	EndTime   time.Time
	Tables    []TableStats
}

// TableStats tracks per-table migration statistics.
type TableStats struct {
	Name     string
	Migrated int64
	Skipped  int64
	Errors   int64
	Duration time.Duration
}

// Print outputs the migration statistics.
func (s *MigrationStats) Print(out io.Writer) {
	fmt.Fprintln(out, "\n=== Export Summary ===")
	fmt.Fprintf(out, "Duration: %s\n\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
	fmt.Fprintf(out, "%-20s %10s %10s %10s %12s\n", "Table", "Migrated", "Skipped", "Errors", "Duration")
	fmt.Fprintln(out, strings.Repeat("-", 66))

	var total TableStats
	for _, t := range s.Tables {
		fmt.Fprintf(out, "%-20s %10d %10d %10d %12s\n",
			t.Name, t.Migrated, t.Skipped, t.Errors, t.Duration.Round(time.Millisecond))
		total.Migrated += t.Migrated
		total.Skipped += t.Skipped
		total.Errors += t.Errors
	}
	fmt.Fprintln(out, strings.Repeat("-", 66))
	fmt.Fprintf(out, "%-20s %10d %10d %10d\n", "TOTAL", total.Migrated, total.Skipped, total.Errors)
}

// NewMigrator opens the SQLite source and the MySQL target.
func NewMigrator(cfg *Config, out io.Writer) (*Migrator, error) {
	logLevel := logger.Silent
	if cfg.Verbose {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	sourceDB, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	targetDB, err := gorm.Open(mysql.Open(cfg.GetMySQLDSN()), gormConfig)
	if err != nil {
		closeDB(sourceDB)
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	m := newMigrator(sourceDB, targetDB, cfg.BatchSize, cfg.Verbose, out)
	for name, db := range map[string]*gorm.DB{"SQLite": sourceDB, "MySQL": targetDB} {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to ping %s database: %w", name, err)
		}
	}

	fmt.Fprintln(out, "Database connections established successfully")
	return m, nil
}

func newMigrator(sourceDB, targetDB *gorm.DB, batchSize int, verbose bool, out io.Writer) *Migrator {
	return &Migrator{sourceDB: sourceDB, targetDB: targetDB, batchSize: batchSize, verbose: verbose, out: out}
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Close closes both database connections.
func (m *Migrator) Close() {
	closeDB(m.sourceDB)
	closeDB(m.targetDB)
}

// Run creates the target tables and copies runs, then failed batches.
func (m *Migrator) Run(ctx context.Context) (*MigrationStats, error) {
	stats := &MigrationStats{StartTime: time.Now()}
	target := m.targetDB.WithContext(ctx)

	if err := target.AutoMigrate(&datastore.Run{}, &datastore.BatchFailureRow{}); err != nil {
		return nil, fmt.Errorf("failed to create target tables: %w", err)
	}

	if target.Dialector.Name() == "mysql" {
		if err := target.Exec("SET FOREIGN_KEY_CHECKS=0").Error; err != nil {
			return nil, fmt.Errorf("failed to disable foreign key checks: %w", err)
		}
		defer target.Exec("SET FOREIGN_KEY_CHECKS=1")
	}

	runs, err := migrateTable[datastore.Run](ctx, m, "runs")
	if err != nil {
		return stats, fmt.Errorf("failed to migrate runs: %w", err)
	}
	stats.Tables = append(stats.Tables, *runs)

	failures, err := migrateTable[datastore.BatchFailureRow](ctx, m, "batch_failures")
	if err != nil {
		return stats, fmt.Errorf("failed to migrate batch_failures: %w", err)
	}
	stats.Tables = append(stats.Tables, *failures)

	stats.EndTime = time.Now()
	return stats, nil
}

// migrateTable copies every row of T in batches, keeping primary keys.
// Rows already present in the target are skipped.
func migrateTable[T any](ctx context.Context, m *Migrator, tableName string) (*TableStats, error) {
	start := time.Now()
	stats := &TableStats{Name: tableName}
	fmt.Fprintf(m.out, "Migrating %s...\n", tableName)

	var sourceCount int64
	if err := m.sourceDB.WithContext(ctx).Model(new(T)).Count(&sourceCount).Error; err != nil {
		return stats, fmt.Errorf("failed to count source records: %w", err)
	}
	if sourceCount == 0 {
		fmt.Fprintf(m.out, "  %s: no records to migrate\n", tableName)
		stats.Duration = time.Since(start)
		return stats, nil
	}

	var processed int64
	err := m.sourceDB.WithContext(ctx).Model(new(T)).FindInBatches(new([]T), m.batchSize, func(tx *gorm.DB, batch int) error {
		rows := tx.Statement.Dest.(*[]T)

		result := m.targetDB.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(rows)
		if result.Error != nil {
			stats.Errors += int64(len(*rows))
			fmt.Fprintf(m.out, "  Batch %d error: %v\n", batch, result.Error)
			return nil //nolint:nilerr // a failed batch is counted and the export continues
		}

		stats.Migrated += result.RowsAffected
		stats.Skipped += int64(len(*rows)) - result.RowsAffected
		processed += int64(len(*rows))
		if m.verbose {
			fmt.Fprintf(m.out, "  %s: %d/%d (%.1f%%)\n", tableName, processed, sourceCount,
				float64(processed)/float64(sourceCount)*100)
		}
		return ctx.Err()
	}).Error
	if err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	fmt.Fprintf(m.out, "  %s: completed (%d migrated, %d skipped, %d errors) in %s\n",
		tableName, stats.Migrated, stats.Skipped, stats.Errors, stats.Duration.Round(time.Millisecond))
	return stats, nil
}
