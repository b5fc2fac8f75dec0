package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

// Is makes any criticalError match errCritical, the terminal error passed to repeater
func (e *criticalError) Is(target error) bool {
	return target == errCritical
}

var errCritical = errors.New("critical database error")

// unwrapCritical strips the criticalError wrapper from an error returned by the retrier
func unwrapCritical(err error) error {
	var ce *criticalError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// isUniqueViolation checks if an error comes from a UNIQUE constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// retrier repeats writes contending on sqlite locks, critical errors stop it immediately
type retrier struct {
	rpt *repeater.Repeater
}

func newRetrier() retrier {
	return retrier{rpt: repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))}
}

func (r retrier) Do(ctx context.Context, fn func() error) error {
	return r.rpt.Do(ctx, fn, errCritical)
}

// dbTime converts a timestamp to the representation stored in the database.
// All timestamps are stored in UTC so text ordering matches time ordering.
func dbTime(t time.Time) time.Time {
	return t.UTC()
}

// txErr keeps lock errors retryable and marks everything else as critical
func txErr(op string, err error) error {
	if isLockError(err) {
		return err
	}
	return &criticalError{err: fmt.Errorf("%s: %w", op, err)}
}
