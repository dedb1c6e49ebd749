package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/tuskheart/internal/core"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) AddCompletion(ctx context.Context, c core.ActivityCompletion) (int64, error) {
	if strings.TrimSpace(c.Activity) == "" {
		return 0, fmt.Errorf("activity name is empty")
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_completions (subject_key, activity, completed_at) VALUES (?, ?, ?)`,
		c.SubjectKey, c.Activity, toMillis(c.CompletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity completion: %w", err)
	}
	return res.LastInsertId()
}

// LastInteraction returns the newest of the subject's ratings and activity
// completions, whichever source it came from.
func (r *ActivityRepo) LastInteraction(ctx context.Context, subjectKey string) (time.Time, bool, error) {
	query := `
		SELECT MAX(ts) FROM (
			SELECT MAX(recorded_at) AS ts FROM mood_ratings WHERE subject_key = ?
			UNION ALL
			SELECT MAX(completed_at) AS ts FROM activity_completions WHERE subject_key = ?
		)`

	var last sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, subjectKey, subjectKey).Scan(&last); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last interaction: %w", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return fromMillis(last.Int64), true, nil
}
