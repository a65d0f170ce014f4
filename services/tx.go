package services

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// txRetries bounds the internal retries on serialization conflicts before the
// failure surfaces as a TransientError.
const txRetries = 3

// withRetry runs fn in a transaction. Deterministic domain errors pass through
// unchanged; Postgres serialization failures and deadlocks are retried.
func withRetry(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txRetries; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		log.Printf("[TX] serialization conflict (attempt %d/%d): %v", attempt, txRetries, err)
	}
	return &TransientError{Err: err}
}

// isSerializationFailure reports whether err is a lock/serialization conflict
// worth retrying. 40001 = serialization_failure, 40P01 = deadlock_detected.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// lockForUpdate adds a FOR UPDATE row lock on Postgres. SQLite (used by the
// tests) rejects the clause; its single-writer transactions already serialize
// the check-and-act paths.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isDuplicateKey reports a unique-index violation. Requires the connection to
// be opened with gorm.Config{TranslateError: true}.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
