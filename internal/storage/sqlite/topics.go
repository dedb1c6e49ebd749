package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/tuskheart/internal/core"
)

var ErrTopicNotFound = errors.New("topic not found")

type TopicsRepo struct {
	db *sql.DB
}

func NewTopicsRepo(db *sql.DB) *TopicsRepo {
	return &TopicsRepo{db: db}
}

// SaveTopic inserts a topic, or updates it in place when ID is set.
func (r *TopicsRepo) SaveTopic(ctx context.Context, t core.MemoryTopic) (int64, error) {
	if !t.Kind.Valid() {
		return 0, fmt.Errorf("unknown topic kind %q", t.Kind)
	}
	if strings.TrimSpace(t.Content) == "" {
		return 0, fmt.Errorf("topic content is empty")
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}

	if t.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO memory_topics (subject_key, kind, content, updated_at, active) VALUES (?, ?, ?, ?, ?)`,
			t.SubjectKey, string(t.Kind), t.Content, toMillis(t.UpdatedAt), t.Active,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert topic: %w", err)
		}
		return res.LastInsertId()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE memory_topics SET kind = ?, content = ?, updated_at = ?, active = ? WHERE id = ?`,
		string(t.Kind), t.Content, toMillis(t.UpdatedAt), t.Active, t.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrTopicNotFound, t.ID)
	}
	return t.ID, nil
}

func (r *TopicsRepo) SetTopicActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE memory_topics SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: id %d", ErrTopicNotFound, id)
	}
	return nil
}

func (r *TopicsRepo) RecentTopics(ctx context.Context, q core.TopicQuery) ([]core.MemoryTopic, error) {
	if len(q.Kinds) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(q.Kinds)+3)
	args = append(args, q.SubjectKey)
	for _, k := range q.Kinds {
		args = append(args, string(k))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, toMillis(q.Since), limit)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.Kinds)), ", ")
	query := fmt.Sprintf(`
		SELECT id, kind, content, updated_at
		FROM memory_topics
		WHERE subject_key = ? AND active = 1 AND kind IN (%s) AND updated_at >= ?
		ORDER BY updated_at DESC, id DESC
		LIMIT ?`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var out []core.MemoryTopic
	for rows.Next() {
		t := core.MemoryTopic{SubjectKey: q.SubjectKey, Active: true}
		var kind string
		var updatedAt int64
		if err := rows.Scan(&t.ID, &kind, &t.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		t.Kind = core.TopicKind(kind)
		t.UpdatedAt = fromMillis(updatedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}
