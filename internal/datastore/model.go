package datastore

import "time"

// Run is one completed generate invocation.
type Run struct {
	ID            uint      `gorm:"primaryKey"`
	RunID         string    `gorm:"uniqueIndex;size:36"`
	StartedAt     time.Time `gorm:"index"`
	FinishedAt    time.Time
	Seed          string `gorm:"size:20"` // decimal; uint64 exceeds sqlite's signed integer
	ReferenceTime time.Time
	Requested     int
	Generated     int
	Failed        int
	Indexed       int
	IndexTotal    int
	Output        string
	Duration      time.Duration
	Failures      []BatchFailureRow `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// BatchFailureRow is one failed bulk batch of a run.
type BatchFailureRow struct {
	ID       uint   `gorm:"primaryKey"`
	RunID    uint   `gorm:"index;not null"`
	TenantID string `gorm:"index"`
	Index    string
	Batch    int
	Size     int
	Failed   int
	Omitted  int
	Error    string
	Samples  string // JSON array of sampled document errors
}

// TableName keeps the table name stable across struct renames.
func (BatchFailureRow) TableName() string { return "batch_failures" }
