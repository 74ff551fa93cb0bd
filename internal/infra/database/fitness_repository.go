package database

import (
	"context"
	"database/sql"

	"github.com/willpowerfitness/coach-api/internal/entity"
)

type FitnessRecordRepository struct {
	DB *sql.DB
}

func NewFitnessRecordRepository(db *sql.DB) *FitnessRecordRepository {
	return &FitnessRecordRepository{DB: db}
}

func (r *FitnessRecordRepository) Append(ctx context.Context, rec *entity.FitnessRecord) error {
	query := `
		INSERT INTO fitness_records (id, user_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.DB.ExecContext(ctx, query, rec.ID, rec.UserID, rec.Kind, []byte(rec.Payload))
	return err
}

func (r *FitnessRecordRepository) Recent(ctx context.Context, userID, kind string, limit int) ([]entity.FitnessRecord, error) {
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM fitness_records
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	return r.collect(ctx, query, userID, kind, limit)
}

func (r *FitnessRecordRepository) AllByUser(ctx context.Context, userID string) ([]entity.FitnessRecord, error) {
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM fitness_records
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	return r.collect(ctx, query, userID)
}

func (r *FitnessRecordRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM fitness_records WHERE user_id = $1`, userID)
	return err
}

func (r *FitnessRecordRepository) collect(ctx context.Context, query string, args ...any) ([]entity.FitnessRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []entity.FitnessRecord
	for rows.Next() {
		var rec entity.FitnessRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
