package audit

import "time"

// JobRecord is the audit trail of one option-chain fetch request, mirroring
// the Job table the original implementation declared but never wired up.
type JobRecord struct {
	ID           string `gorm:"primaryKey"`
	JobType      string `gorm:"index"`
	IndexName    string `gorm:"index"`
	Expiry       string
	Status       string `gorm:"index"` // pending, running, completed, failed
	ParamsJSON   string
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

func (JobRecord) TableName() string { return "jobs" }

// SnapshotRecord is the audit trail of one successfully persisted snapshot,
// mirroring the original's dropped Snapshot table.
type SnapshotRecord struct {
	ID              string `gorm:"primaryKey"`
	SnapshotID      string `gorm:"index"`
	IndexName       string `gorm:"index"`
	ExpiryDate      string
	UnderlyingValue float64
	ATMStrike       int64
	CSVPath         string
	JSONPath        string
	CreatedAt       time.Time
}

func (SnapshotRecord) TableName() string { return "snapshots" }
