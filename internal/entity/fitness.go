package entity

import (
	"context"
	"encoding/json"
	"time"
)

// Record kinds for the append-only fitness log. Payloads are opaque JSON:
// nothing computes over them, they are read back into prompts and the
// data export.
const (
	RecordWorkout  = "workout"
	RecordProgress = "progress_metric"
	RecordRPE      = "rpe_entry"
)

type FitnessRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type FitnessRecordRepositoryInterface interface {
	Append(ctx context.Context, rec *FitnessRecord) error
	Recent(ctx context.Context, userID, kind string, limit int) ([]FitnessRecord, error)
	AllByUser(ctx context.Context, userID string) ([]FitnessRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
}
