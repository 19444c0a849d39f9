package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type difficultyRepo struct {
	db *sql.DB
}

func (r *difficultyRepo) Upsert(ctx context.Context, rec *DifficultyRecord) error {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO difficulty_state (user_id, topic, level, attempts, successes, avg_confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, topic) DO UPDATE SET
			level = excluded.level,
			attempts = excluded.attempts,
			successes = excluded.successes,
			avg_confidence = excluded.avg_confidence,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.Topic, rec.Level, rec.Attempts, rec.Successes, rec.AvgConfidence, updatedAt,
	)
	return storageErr("difficulty.upsert", err)
}

func (r *difficultyRepo) Get(ctx context.Context, userID, topic string) (*DifficultyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, topic, level, attempts, successes, avg_confidence, updated_at
		FROM difficulty_state WHERE user_id = ? AND topic = ?`,
		userID, topic,
	)

	var rec DifficultyRecord
	err := row.Scan(&rec.UserID, &rec.Topic, &rec.Level, &rec.Attempts, &rec.Successes, &rec.AvgConfidence, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("difficulty.get", err)
	}
	return &rec, nil
}
