package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/pkg/log"
)

type RatingsRepo struct {
	db *sql.DB
}

func NewRatingsRepo(db *sql.DB) *RatingsRepo {
	return &RatingsRepo{db: db}
}

func (r *RatingsRepo) AddRating(ctx context.Context, rec core.RatingRecord) (int64, error) {
	if rec.Rating < core.MinRating || rec.Rating > core.MaxRating {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", core.ErrInvalidRating, rec.Rating, core.MinRating, core.MaxRating)
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO mood_ratings (subject_key, rating, recorded_at) VALUES (?, ?, ?)`,
		rec.SubjectKey, rec.Rating, toMillis(rec.RecordedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert rating: %w", err)
	}
	return res.LastInsertId()
}

func (r *RatingsRepo) RatingsSince(ctx context.Context, subjectKey string, since time.Time) ([]core.RatingRecord, error) {
	query := `
		SELECT id, rating, recorded_at
		FROM mood_ratings
		WHERE subject_key = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, subjectKey, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var out []core.RatingRecord
	for rows.Next() {
		rec := core.RatingRecord{SubjectKey: subjectKey}
		var recordedAt int64
		if err := rows.Scan(&rec.ID, &rec.Rating, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		rec.RecordedAt = fromMillis(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(out)).Msg("loaded mood ratings")
	return out, nil
}
