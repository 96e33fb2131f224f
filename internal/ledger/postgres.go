package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/murmur/sentinel/internal/metrics"
)

// Postgres error classes retried as write conflicts.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

const updateRetries = 3

// PostgresStore persists risk profiles as the "safety" sub-document of the
// per-user moderation document (moderation_profiles.doc). Updates take the
// user's row lock inside a transaction; a striped in-process mutex keeps
// local classifier workers from piling onto the same row.
type PostgresStore struct {
	db    *sql.DB
	locks [64]sync.Mutex
	now   func() time.Time
}

// NewPostgresStore creates a store backed by the given database handle.
// The moderation_profiles table must exist (see migrations/).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// Update loads the user's profile under a row lock, applies fn, and writes
// the safety sub-document back. Serialization failures and deadlocks are
// retried with a fresh read; fn must therefore be safe to re-run.
func (s *PostgresStore) Update(ctx context.Context, userID string, fn func(*RiskProfile) error) error {
	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		err := s.updateOnce(ctx, userID, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		metrics.LedgerConflictsTotal.Inc()
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrWriteConflict, lastErr)
}

func (s *PostgresStore) updateOnce(ctx context.Context, userID string, fn func(*RiskProfile) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc->'safety' FROM moderation_profiles WHERE user_id = $1 FOR UPDATE`,
		userID).Scan(&raw)
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("ledger: select profile: %w", err)
	}

	profile, err := decodeSafety(userID, raw)
	if err != nil {
		return err
	}
	if err := fn(profile); err != nil {
		return err
	}

	encoded, err := encodeSafety(profile, s.now())
	if err != nil {
		return fmt.Errorf("ledger: encode profile: %w", err)
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			`UPDATE moderation_profiles
			    SET doc = jsonb_set(doc, '{safety}', $2::jsonb, true),
			        updated_at = NOW()
			  WHERE user_id = $1`,
			userID, encoded)
	} else {
		// ON CONFLICT covers the race with another process inserting the
		// same user between our SELECT and this INSERT.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO moderation_profiles (user_id, doc)
			 VALUES ($1, jsonb_build_object('moderationScore', 0, 'safety', $2::jsonb))
			 ON CONFLICT (user_id) DO UPDATE
			    SET doc = jsonb_set(moderation_profiles.doc, '{safety}', $2::jsonb, true),
			        updated_at = NOW()`,
			userID, encoded)
	}
	if err != nil {
		return fmt.Errorf("ledger: write profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

// Get reads the user's profile without locking. Unknown users get a fresh
// empty profile.
func (s *PostgresStore) Get(ctx context.Context, userID string) (*RiskProfile, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc->'safety' FROM moderation_profiles WHERE user_id = $1`,
		userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return NewRiskProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: select profile: %w", err)
	}
	return decodeSafety(userID, raw)
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
}
