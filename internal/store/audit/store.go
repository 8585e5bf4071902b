package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikasavnish/marketaggregator/internal/logging"
)

// Store is the gorm-backed audit trail for option-chain jobs and snapshots.
// It is never consulted to serve a read path — the filesystem CSV/JSON pair
// remains the source of truth — it only answers "what happened" questions.
type Store struct {
	db  *gorm.DB
	log *logging.Logger
}

func New(db *gorm.DB, log *logging.Logger) (*Store, error) {
	if err := db.AutoMigrate(&JobRecord{}, &SnapshotRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// StartJob records a new job row in "running" status and returns its id.
func (s *Store) StartJob(jobType, indexName, expiry, paramsJSON string) string {
	id := uuid.NewString()
	rec := JobRecord{
		ID:         id,
		JobType:    jobType,
		IndexName:  indexName,
		Expiry:     expiry,
		Status:     "running",
		ParamsJSON: paramsJSON,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		s.log.WithError(err).Warn("audit: failed to record job start")
	}
	return id
}

// CompleteJob marks a job as completed.
func (s *Store) CompleteJob(id string) {
	now := time.Now().UTC()
	if err := s.db.Model(&JobRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": "completed", "completed_at": &now}).Error; err != nil {
		s.log.WithError(err).Warn("audit: failed to mark job completed")
	}
}

// FailJob marks a job as failed with the given error message.
func (s *Store) FailJob(id string, errMsg string) {
	now := time.Now().UTC()
	if err := s.db.Model(&JobRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": "failed", "error_message": errMsg, "completed_at": &now}).Error; err != nil {
		s.log.WithError(err).Warn("audit: failed to mark job failed")
	}
}

// RecordSnapshot inserts one SnapshotRecord row for a successfully persisted
// snapshot. Persistence failures here are only logged; they never change
// the HTTP response the caller receives.
func (s *Store) RecordSnapshot(snapshotID, indexName, expiry string, underlyingValue float64, atmStrike int64, csvPath, jsonPath string) {
	rec := SnapshotRecord{
		ID:              uuid.NewString(),
		SnapshotID:      snapshotID,
		IndexName:       indexName,
		ExpiryDate:      expiry,
		UnderlyingValue: underlyingValue,
		ATMStrike:       atmStrike,
		CSVPath:         csvPath,
		JSONPath:        jsonPath,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		s.log.WithError(err).Warn("audit: failed to record snapshot")
	}
}
