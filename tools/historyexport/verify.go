package main

import (
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/tphakala/mediaseed/internal/datastore"
)

// Verifier compares the source and target after an export.
type Verifier struct {
	sourceDB *gorm.DB
	targetDB *gorm.DB
	out      io.Writer
}

// NewVerifier creates a new Verifier.
func NewVerifier(sourceDB, targetDB *gorm.DB, out io.Writer) *Verifier {
	return &Verifier{sourceDB: sourceDB, targetDB: targetDB, out: out}
}

// Verify checks row counts and that every source run id exists in the target
// with the same counters.
func (v *Verifier) Verify() error {
	if err := v.verifyCounts(); err != nil {
		return fmt.Errorf("count verification failed: %w", err)
	}
	if err := v.verifyRuns(); err != nil {
		return fmt.Errorf("run verification failed: %w", err)
	}
	fmt.Fprintln(v.out, "Verification passed!")
	return nil
}

func (v *Verifier) verifyCounts() error {
	tables := []struct {
		name  string
		model any
	}{
		{"runs", &datastore.Run{}},
		{"batch_failures", &datastore.BatchFailureRow{}},
	}

	allMatch := true
	fmt.Fprintf(v.out, "%-20s %12s %12s %8s\n", "Table", "Source", "Target", "Match")
	for _, t := range tables {
		var sourceCount, targetCount int64
		if err := v.sourceDB.Model(t.model).Count(&sourceCount).Error; err != nil {
			return fmt.Errorf("failed to count source %s: %w", t.name, err)
		}
		if err := v.targetDB.Model(t.model).Count(&targetCount).Error; err != nil {
			return fmt.Errorf("failed to count target %s: %w", t.name, err)
		}
		match := "yes"
		if sourceCount > targetCount {
			match = "no"
			allMatch = false
		}
		fmt.Fprintf(v.out, "%-20s %12d %12d %8s\n", t.name, sourceCount, targetCount, match)
	}
	if !allMatch {
		return fmt.Errorf("target is missing rows")
	}
	return nil
}

func (v *Verifier) verifyRuns() error {
	var runs []datastore.Run
	if err := v.sourceDB.Find(&runs).Error; err != nil {
		return fmt.Errorf("failed to read source runs: %w", err)
	}
	for i := range runs {
		src := &runs[i]
		var target datastore.Run
		if err := v.targetDB.Where("run_id = ?", src.RunID).First(&target).Error; err != nil {
			return fmt.Errorf("run %s not found in target: %w", src.RunID, err)
		}
		if src.Generated != target.Generated || src.Indexed != target.Indexed || src.Seed != target.Seed {
			return fmt.Errorf("run %s differs between source and target", src.RunID)
		}
	}
	return nil
}
