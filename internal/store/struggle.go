package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type struggleRepo struct {
	db *sql.DB
}

func (r *struggleRepo) Upsert(ctx context.Context, rec *StruggleRecord) error {
	confirmedAt := rec.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO struggles (session_id, question_id, description, clarity, confidence, confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			description = excluded.description,
			clarity = excluded.clarity,
			confidence = excluded.confidence,
			confirmed_at = excluded.confirmed_at`,
		rec.SessionID, rec.QuestionID, rec.Description, rec.Clarity, rec.Confidence, confirmedAt,
	)
	return storageErr("struggle.upsert", err)
}

func (r *struggleRepo) Get(ctx context.Context, sessionID, questionID string) (*StruggleRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, question_id, description, clarity, confidence, confirmed_at
		FROM struggles WHERE session_id = ? AND question_id = ?`,
		sessionID, questionID,
	)

	var rec StruggleRecord
	err := row.Scan(&rec.SessionID, &rec.QuestionID, &rec.Description, &rec.Clarity, &rec.Confidence, &rec.ConfirmedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("struggle.get", err)
	}
	return &rec, nil
}
