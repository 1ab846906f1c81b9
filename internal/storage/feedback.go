package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeedbackRepository handles feedback persistence.
type FeedbackRepository struct {
	db *DB
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback row. A session id is assigned when missing.
func (r *FeedbackRepository) Create(ctx context.Context, fb *Feedback) error {
	if fb.SessionID == "" {
		fb.SessionID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	if r.db.Driver == DriverPostgres {
		query := `
			INSERT INTO feedback (created_at, session_id, goal, experience_level, rpe, adherence, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
		`
		return r.db.QueryRowContext(ctx, query,
			fb.CreatedAt, fb.SessionID, fb.Goal, fb.ExperienceLevel, fb.RPE, fb.Adherence, fb.Notes,
		).Scan(&fb.ID)
	}

	query := `
		INSERT INTO feedback (created_at, session_id, goal, experience_level, rpe, adherence, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		fb.CreatedAt, fb.SessionID, fb.Goal, fb.ExperienceLevel, fb.RPE, fb.Adherence, fb.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	fb.ID, err = res.LastInsertId()
	return err
}

// ListRecent returns the most recent feedback rows, newest first.
func (r *FeedbackRepository) ListRecent(ctx context.Context, limit int) ([]Feedback, error) {
	query := fmt.Sprintf(`
		SELECT id, created_at, session_id, goal, experience_level, rpe, adherence, notes
		FROM feedback ORDER BY created_at DESC, id DESC LIMIT %s
	`, r.db.placeholder(1))

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.CreatedAt, &fb.SessionID, &fb.Goal, &fb.ExperienceLevel, &fb.RPE, &fb.Adherence, &fb.Notes); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}
