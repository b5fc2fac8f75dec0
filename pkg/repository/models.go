package repository

import (
	"database/sql"
	"time"

	"github.com/umputun/tradescope/pkg/domain"
)

// sourceRow is the sources table row
type sourceRow struct {
	ID             int64        `db:"id"`
	Platform       string       `db:"platform"`
	Handle         string       `db:"handle"`
	PlatformUserID string       `db:"platform_user_id"`
	DisplayName    string       `db:"display_name"`
	Active         bool         `db:"active"`
	Cursor         string       `db:"cursor"`
	LastPolled     sql.NullTime `db:"last_polled"`
	LastError      string       `db:"last_error"`
	ErrorCount     int          `db:"error_count"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

// messageRow is the messages table row
type messageRow struct {
	ID         int64         `db:"id"`
	Platform   string        `db:"platform"`
	ExternalID string        `db:"external_id"`
	SourceID   int64         `db:"source_id"`
	Author     string        `db:"author"`
	Body       string        `db:"body"`
	Published  time.Time     `db:"published"`
	Likes      sql.NullInt64 `db:"likes"`
	Shares     sql.NullInt64 `db:"shares"`
	Replies    sql.NullInt64 `db:"replies"`
	Views      sql.NullInt64 `db:"views"`
	MediaURL   string        `db:"media_url"`
	Lang       string        `db:"lang"`
	Link       string        `db:"link"`
	Visible    bool          `db:"visible"`
	IngestedAt time.Time     `db:"ingested_at"`
}

func toDomainSource(r *sourceRow, loc *time.Location) *domain.Source {
	res := &domain.Source{
		ID:             r.ID,
		Platform:       domain.Platform(r.Platform),
		Handle:         r.Handle,
		PlatformUserID: r.PlatformUserID,
		DisplayName:    r.DisplayName,
		Active:         r.Active,
		Cursor:         r.Cursor,
		LastError:      r.LastError,
		ErrorCount:     r.ErrorCount,
		CreatedAt:      r.CreatedAt.In(loc),
		UpdatedAt:      r.UpdatedAt.In(loc),
	}
	if r.LastPolled.Valid {
		t := r.LastPolled.Time.In(loc)
		res.LastPolled = &t
	}
	return res
}

func toMessageRow(m *domain.Message) *messageRow {
	return &messageRow{
		ID:         m.ID,
		Platform:   string(m.Platform),
		ExternalID: m.ExternalID,
		SourceID:   m.SourceID,
		Author:     m.Author,
		Body:       m.Body,
		Published:  dbTime(m.Published),
		Likes:      nullInt(m.Engagement.Likes),
		Shares:     nullInt(m.Engagement.Shares),
		Replies:    nullInt(m.Engagement.Replies),
		Views:      nullInt(m.Engagement.Views),
		MediaURL:   m.MediaURL,
		Lang:       m.Lang,
		Link:       m.Link,
		Visible:    m.Visible,
		IngestedAt: dbTime(m.IngestedAt),
	}
}

func toDomainMessage(r *messageRow, loc *time.Location) *domain.Message {
	return &domain.Message{
		ID:         r.ID,
		Platform:   domain.Platform(r.Platform),
		ExternalID: r.ExternalID,
		SourceID:   r.SourceID,
		Author:     r.Author,
		Body:       r.Body,
		Published:  r.Published.In(loc),
		Engagement: domain.Engagement{
			Likes:   intPtr(r.Likes),
			Shares:  intPtr(r.Shares),
			Replies: intPtr(r.Replies),
			Views:   intPtr(r.Views),
		},
		MediaURL:   r.MediaURL,
		Lang:       r.Lang,
		Link:       r.Link,
		Visible:    r.Visible,
		IngestedAt: r.IngestedAt.In(loc),
	}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
