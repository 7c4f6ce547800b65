package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

// MessageRepository handles persistence for direct messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListForUser returns messages sent to or by the user, newest first.
func (r *MessageRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]types.Message, int, error) {
	var total int
	const countQuery = `SELECT COUNT(*) FROM messages WHERE sender_id = $1 OR receiver_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, sender_id, receiver_id, COALESCE(subject, ''), body, read_at, created_at
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Subject, &m.Body, &m.ReadAt, &m.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

func (r *MessageRepository) Create(ctx context.Context, message types.Message) (types.Message, error) {
	message.CreatedAt = time.Now()

	const query = `
		INSERT INTO messages (id, sender_id, receiver_id, subject, body, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.SenderID,
		message.ReceiverID,
		message.Subject,
		message.Body,
		message.CreatedAt,
	)
	if err != nil {
		return types.Message{}, mapError(err)
	}
	return message, nil
}

// MarkRead stamps a message as read by its receiver. Only the receiver
// can mark it.
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID string) error {
	const query = `
		UPDATE messages
		SET read_at = $1
		WHERE id = $2 AND receiver_id = $3 AND read_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, receiverID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// NoticeRepository handles persistence for notices.
type NoticeRepository struct {
	db *sql.DB
}

func NewNoticeRepository(db *sql.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

const noticeColumns = `
	id, title, body, COALESCE(audience, ''), author_id, published_at, created_at, updated_at`

func (r *NoticeRepository) GetByID(ctx context.Context, id string) (types.Notice, error) {
	const query = `
		SELECT` + noticeColumns + `
		FROM notices
		WHERE id = $1`
	var n types.Notice
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Body, &n.Audience, &n.AuthorID, &n.PublishedAt,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Notice{}, ErrNotFound
		}
		return types.Notice{}, err
	}
	return n, nil
}

// List returns published notices visible to the audience. An empty
// audience argument returns only notices addressed to everyone.
func (r *NoticeRepository) List(ctx context.Context, audience string, offset, limit int) ([]types.Notice, int, error) {
	var total int
	const countQuery = `
		SELECT COUNT(*) FROM notices
		WHERE published_at IS NOT NULL AND (audience IS NULL OR audience = $1)`
	if err := r.db.QueryRowContext(ctx, countQuery, audience).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT` + noticeColumns + `
		FROM notices
		WHERE published_at IS NOT NULL AND (audience IS NULL OR audience = $1)
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, audience, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notices []types.Notice
	for rows.Next() {
		var n types.Notice
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Body, &n.Audience, &n.AuthorID, &n.PublishedAt,
			&n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		notices = append(notices, n)
	}
	return notices, total, rows.Err()
}

func (r *NoticeRepository) Create(ctx context.Context, notice types.Notice) (types.Notice, error) {
	now := time.Now()
	notice.CreatedAt = now
	notice.UpdatedAt = now

	const query = `
		INSERT INTO notices (id, title, body, audience, author_id, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		notice.ID,
		notice.Title,
		notice.Body,
		notice.Audience,
		notice.AuthorID,
		notice.PublishedAt,
		notice.CreatedAt,
		notice.UpdatedAt,
	)
	if err != nil {
		return types.Notice{}, mapError(err)
	}
	return notice, nil
}

func (r *NoticeRepository) Update(ctx context.Context, notice types.Notice) (types.Notice, error) {
	notice.UpdatedAt = time.Now()

	const query = `
		UPDATE notices
		SET title = $1,
			body = $2,
			audience = NULLIF($3, ''),
			published_at = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		notice.Title,
		notice.Body,
		notice.Audience,
		notice.PublishedAt,
		notice.UpdatedAt,
		notice.ID,
	)
	if err != nil {
		return types.Notice{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Notice{}, err
	}
	if affected == 0 {
		return types.Notice{}, ErrNotFound
	}
	return notice, nil
}

func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notices WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
