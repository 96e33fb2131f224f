// Package score persists the per-user moderation score: a monotonically
// increasing integer adjusted only by fast-filter outcomes. It lives in
// the same per-user moderation document as the safety profile but is
// owned by this package; the classifier never touches it.
package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store manages moderation scores in PostgreSQL. The increment is a single
// atomic upsert, so concurrent blocks for the same user never lose an
// update.
type Store struct {
	db *sql.DB
}

// NewStore creates a score store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Increment adds delta to the user's moderation score, creating the
// moderation document on first offense. Scores only ever grow; a
// non-positive delta is a programming error.
func (s *Store) Increment(ctx context.Context, userID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("score: non-positive delta %d for user %s", delta, userID)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moderation_profiles (user_id, doc)
		 VALUES ($1, jsonb_build_object('moderationScore', $2::bigint, 'safety', '{}'::jsonb))
		 ON CONFLICT (user_id) DO UPDATE
		    SET doc = jsonb_set(moderation_profiles.doc, '{moderationScore}',
		              to_jsonb(COALESCE((moderation_profiles.doc->>'moderationScore')::bigint, 0) + $2::bigint), true),
		        updated_at = NOW()`,
		userID, delta)
	if err != nil {
		return fmt.Errorf("score: increment user=%s: %w", userID, err)
	}
	return nil
}

// Get returns the user's current moderation score, zero for unknown users.
func (s *Store) Get(ctx context.Context, userID string) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE((doc->>'moderationScore')::bigint, 0)
		   FROM moderation_profiles WHERE user_id = $1`,
		userID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("score: get user=%s: %w", userID, err)
	}
	return score, nil
}
