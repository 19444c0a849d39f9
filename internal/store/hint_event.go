package store

import (
	"context"
	"database/sql"
	"time"
)

type hintEventRepo struct {
	db *sql.DB
}

func (r *hintEventRepo) Append(ctx context.Context, data HintEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hint_events (session_id, question_type, source, latency_ms, tokens, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.QuestionType, data.Source, data.LatencyMs, data.Tokens, data.CostUSD, time.Now().UTC(),
	)
	return storageErr("hint_event.append", err)
}

func (r *hintEventRepo) Recent(ctx context.Context, limit int) ([]HintEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, question_type, source, latency_ms, tokens, cost_usd, created_at
		FROM hint_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("hint_event.recent", err)
	}
	defer rows.Close()

	var events []HintEvent
	for rows.Next() {
		var ev HintEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.QuestionType, &ev.Source, &ev.LatencyMs, &ev.Tokens, &ev.CostUSD, &ev.Timestamp); err != nil {
			return nil, storageErr("hint_event.recent", err)
		}
		events = append(events, ev)
	}
	return events, storageErr("hint_event.recent", rows.Err())
}
