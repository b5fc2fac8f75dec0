package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/tradescope/pkg/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// MessageRepository handles message-related database operations
type MessageRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sqlx.DB, loc *time.Location) *MessageRepository {
	return &MessageRepository{db: db, loc: loc}
}

// SaveIfNew stores the message unless one with the same platform and external id exists.
// The existence check and the insert run in one transaction, the unique constraint
// catches anything that slips between them. On insert msg.ID is set.
func (r *MessageRepository) SaveIfNew(ctx context.Context, msg *domain.Message) (domain.SaveResult, error) {
	if msg.ExternalID == "" {
		return domain.SaveSkipped, fmt.Errorf("save message: empty external id")
	}

	row := toMessageRow(msg)
	result := domain.SaveSkipped
	err := newRetrier().Do(ctx, func() error {
		result = domain.SaveSkipped
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer func() { _ = tx.Rollback() }()

		var exists bool
		if err = tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM messages WHERE platform = ? AND external_id = ?)",
			row.Platform, row.ExternalID); err != nil {
			return txErr("check message exists", err)
		}
		if exists {
			return nil
		}

		query := `
			INSERT INTO messages (platform, external_id, source_id, author, body, published,
				likes, shares, replies, views, media_url, lang, link, visible, ingested_at)
			VALUES (:platform, :external_id, :source_id, :author, :body, :published,
				:likes, :shares, :replies, :views, :media_url, :lang, :link, :visible, :ingested_at)
			ON CONFLICT(platform, external_id) DO NOTHING
		`
		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return txErr("insert message", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		if affected == 0 {
			return nil // lost the race to a concurrent writer
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get insert id: %w", err)}
		}

		if err := tx.Commit(); err != nil {
			return txErr("commit transaction", err)
		}
		msg.ID = id
		result = domain.SaveInserted
		return nil
	})
	if err != nil {
		return domain.SaveSkipped, unwrapCritical(err)
	}
	return result, nil
}

// ListLatestMessages returns messages ordered by published time descending
func (r *MessageRepository) ListLatestMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	var conds []string
	var args []any
	if filter.Platform != nil {
		conds = append(conds, "platform = ?")
		args = append(args, *filter.Platform)
	}
	if filter.SourceID > 0 {
		conds = append(conds, "source_id = ?")
		args = append(args, filter.SourceID)
	}
	if !filter.IncludeHidden {
		conds = append(conds, "visible = 1")
	}

	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	query := "SELECT * FROM messages"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY published DESC, id DESC LIMIT ?"
	args = append(args, limit)

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list latest messages: %w", err)
	}

	res := make([]domain.Message, len(rows))
	for i := range rows {
		res[i] = *toDomainMessage(&rows[i], r.loc)
	}
	return res, nil
}

// SetVisibility hides or shows a message
func (r *MessageRepository) SetVisibility(ctx context.Context, id int64, visible bool) error {
	err := newRetrier().Do(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "UPDATE messages SET visible = ? WHERE id = ?", visible, id)
		if err != nil {
			return txErr("set message visibility", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &criticalError{err: fmt.Errorf("message %d: %w", id, domain.ErrNotFound)}
		}
		return nil
	})
	return unwrapCritical(err)
}

// CountMessages returns the number of stored messages, sourceID 0 counts all
func (r *MessageRepository) CountMessages(ctx context.Context, sourceID int64) (int, error) {
	query := "SELECT COUNT(*) FROM messages"
	var args []any
	if sourceID > 0 {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
