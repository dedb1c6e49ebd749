package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ConsentRepo struct {
	db *sql.DB
}

func NewConsentRepo(db *sql.DB) *ConsentRepo {
	return &ConsentRepo{db: db}
}

func (r *ConsentRepo) SetConsent(ctx context.Context, subjectKey, feature string, granted bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consents (subject_key, feature, granted, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (subject_key, feature) DO UPDATE SET granted = excluded.granted, updated_at = excluded.updated_at`,
		subjectKey, feature, granted, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save consent: %w", err)
	}
	return nil
}

func (r *ConsentRepo) Consent(ctx context.Context, subjectKey, feature string) (bool, bool, error) {
	var granted bool
	err := r.db.QueryRowContext(ctx,
		`SELECT granted FROM consents WHERE subject_key = ? AND feature = ?`,
		subjectKey, feature,
	).Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to query consent: %w", err)
	}
	return granted, true, nil
}
