package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/domain"
)

// SourceRepository handles source-related database operations
type SourceRepository struct {
	db    *sqlx.DB
	clock clock.Clock
	loc   *time.Location
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *sqlx.DB, clk clock.Clock, loc *time.Location) *SourceRepository {
	return &SourceRepository{db: db, clock: clk, loc: loc}
}

// AddSource registers a source for the platform. The handle is normalized first.
// An active duplicate returns domain.ErrAlreadyExists, an inactive one is reactivated.
func (r *SourceRepository) AddSource(ctx context.Context, platform domain.Platform, handle string) (*domain.Source, error) {
	handle = domain.NormalizeHandle(handle)
	if handle == "" {
		return nil, fmt.Errorf("add source: empty handle")
	}

	var id int64
	err := newRetrier().Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer func() { _ = tx.Rollback() }()

		now := dbTime(r.clock.Now())
		var existing sourceRow
		err = tx.GetContext(ctx, &existing, "SELECT * FROM sources WHERE platform = ? AND handle = ?", platform, handle)
		switch {
		case err == nil && existing.Active:
			return &criticalError{err: fmt.Errorf("source %s/%s: %w", platform, handle, domain.ErrAlreadyExists)}
		case err == nil:
			// reactivate, keeping cursor and resolved user id
			if _, err = tx.ExecContext(ctx, `UPDATE sources SET active = 1, error_count = 0, last_error = '', updated_at = ?
				WHERE id = ?`, now, existing.ID); err != nil {
				return txErr("reactivate source", err)
			}
			id = existing.ID
		case errors.Is(err, sql.ErrNoRows):
			res, insErr := tx.ExecContext(ctx, `INSERT INTO sources (platform, handle, active, created_at, updated_at)
				VALUES (?, ?, 1, ?, ?)`, platform, handle, now, now)
			if insErr != nil {
				if isUniqueViolation(insErr) {
					return &criticalError{err: fmt.Errorf("source %s/%s: %w", platform, handle, domain.ErrAlreadyExists)}
				}
				return txErr("insert source", insErr)
			}
			if id, err = res.LastInsertId(); err != nil {
				return &criticalError{err: fmt.Errorf("get insert id: %w", err)}
			}
		default:
			return txErr("check source", err)
		}

		if err := tx.Commit(); err != nil {
			return txErr("commit transaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, unwrapCritical(err)
	}
	return r.GetSource(ctx, id)
}

// GetSource retrieves a source by ID
func (r *SourceRepository) GetSource(ctx context.Context, id int64) (*domain.Source, error) {
	var row sourceRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM sources WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return toDomainSource(&row, r.loc), nil
}

// ListSources returns sources ordered by id, optionally filtered by platform and active flag
func (r *SourceRepository) ListSources(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error) {
	var conds []string
	var args []any
	if platform != nil {
		conds = append(conds, "platform = ?")
		args = append(args, *platform)
	}
	if activeOnly {
		conds = append(conds, "active = 1")
	}

	query := "SELECT * FROM sources"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	var rows []sourceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	res := make([]domain.Source, len(rows))
	for i := range rows {
		res[i] = *toDomainSource(&rows[i], r.loc)
	}
	return res, nil
}

// DeactivateSource stops polling of the source, messages are kept
func (r *SourceRepository) DeactivateSource(ctx context.Context, id int64) error {
	return r.exec(ctx, "deactivate source", id, "UPDATE sources SET active = 0, updated_at = ? WHERE id = ?",
		dbTime(r.clock.Now()), id)
}

// PurgeSource deletes the source together with all its messages
func (r *SourceRepository) PurgeSource(ctx context.Context, id int64) error {
	err := newRetrier().Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer func() { _ = tx.Rollback() }()

		if _, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE source_id = ?", id); err != nil {
			return txErr("delete source messages", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
		if err != nil {
			return txErr("delete source", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &criticalError{err: fmt.Errorf("source %d: %w", id, domain.ErrNotFound)}
		}

		if err := tx.Commit(); err != nil {
			return txErr("commit transaction", err)
		}
		return nil
	})
	return unwrapCritical(err)
}

// AdvanceCursor sets the source cursor to externalID if it is newer than the stored one.
// Returns true if the cursor moved.
func (r *SourceRepository) AdvanceCursor(ctx context.Context, id int64, externalID string) (bool, error) {
	if externalID == "" {
		return false, nil
	}

	var moved bool
	err := newRetrier().Do(ctx, func() error {
		moved = false
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer func() { _ = tx.Rollback() }()

		var current string
		err = tx.GetContext(ctx, &current, "SELECT cursor FROM sources WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return &criticalError{err: fmt.Errorf("source %d: %w", id, domain.ErrNotFound)}
		}
		if err != nil {
			return txErr("get cursor", err)
		}
		if current != "" && domain.CompareExternalIDs(externalID, current) <= 0 {
			return nil // never move backward
		}

		if _, err = tx.ExecContext(ctx, "UPDATE sources SET cursor = ?, updated_at = ? WHERE id = ?",
			externalID, dbTime(r.clock.Now()), id); err != nil {
			return txErr("update cursor", err)
		}
		if err := tx.Commit(); err != nil {
			return txErr("commit transaction", err)
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, unwrapCritical(err)
	}
	return moved, nil
}

// MarkPolled records a successful poll and clears the error state
func (r *SourceRepository) MarkPolled(ctx context.Context, id int64) error {
	now := dbTime(r.clock.Now())
	return r.exec(ctx, "mark source polled", id,
		"UPDATE sources SET last_polled = ?, error_count = 0, last_error = '', updated_at = ? WHERE id = ?", now, now, id)
}

// MarkFailed records a failed poll on the source
func (r *SourceRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	now := dbTime(r.clock.Now())
	return r.exec(ctx, "mark source failed", id,
		"UPDATE sources SET last_polled = ?, error_count = error_count + 1, last_error = ?, updated_at = ? WHERE id = ?",
		now, errMsg, now, id)
}

// UpdateMeta stores metadata discovered by an adapter, empty fields are left unchanged
func (r *SourceRepository) UpdateMeta(ctx context.Context, id int64, upd domain.SourceUpdate) error {
	return r.exec(ctx, "update source meta", id, `UPDATE sources SET
			platform_user_id = CASE WHEN ? != '' THEN ? ELSE platform_user_id END,
			display_name = CASE WHEN ? != '' THEN ? ELSE display_name END,
			updated_at = ?
		WHERE id = ?`,
		upd.PlatformUserID, upd.PlatformUserID, upd.DisplayName, upd.DisplayName, dbTime(r.clock.Now()), id)
}

// exec runs a single-row update with lock retries, domain.ErrNotFound if no row matched
func (r *SourceRepository) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	err := newRetrier().Do(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("%s: %w", op, err)}
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &criticalError{err: fmt.Errorf("source %d: %w", id, domain.ErrNotFound)}
		}
		return nil
	})
	return unwrapCritical(err)
}
