package notification

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifyhub/pkg/pg"
)

const (
	columns = `id, recipient_id, type, message, related_user_id, related_username,
		related_post_id, related_reel_id, is_read, created_at, event_id`

	insertQuery = `INSERT INTO notifications (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (recipient_id, event_id) DO NOTHING
		RETURNING id`
)

// PostgresStore stores notifications in the notifications table created by Migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateBatch sends every insert in one round trip inside a transaction, so a
// failing row rolls the whole batch back.
func (s *PostgresStore) CreateBatch(ctx context.Context, rows []Notification) ([]Notification, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	var created []Notification
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(insertQuery, insertArgs(r)...)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		created = created[:0]
		for _, r := range rows {
			var id string
			err := results.QueryRow().Scan(&id)
			if pg.IsNotFoundError(err) {
				continue // duplicate (recipient, event)
			}
			if err != nil {
				return err
			}
			created = append(created, r)
		}
		return results.Close()
	})
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return created, nil
}

func (s *PostgresStore) Create(ctx context.Context, row Notification) (bool, error) {
	if err := row.Validate(); err != nil {
		return false, err
	}

	var id string
	err := s.pool.QueryRow(ctx, insertQuery, insertArgs(row)...).Scan(&id)
	switch {
	case pg.IsNotFoundError(err), pg.IsDuplicateKeyError(err):
		return false, nil
	case err != nil:
		return false, errors.Join(ErrStore, err)
	}
	return true, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Notification, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+columns+` FROM notifications WHERE id = $1`, id)
	n, err := scan(row)
	switch {
	case pg.IsNotFoundError(err), pg.IsInvalidTextError(err):
		return Notification{}, ErrNotFound
	case err != nil:
		return Notification{}, errors.Join(ErrStore, err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, recipientID string, opts ListOptions) ([]Notification, error) {
	query := `SELECT ` + columns + ` FROM notifications WHERE recipient_id = $1`
	if opts.OnlyUnread {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, seq DESC OFFSET $2`

	args := []any{recipientID, opts.Offset}
	if opts.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, errors.Join(ErrStore, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return out, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if pg.IsInvalidTextError(err) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	return n, nil
}

func insertArgs(n Notification) []any {
	return []any{
		n.ID, n.RecipientID, string(n.Type), n.Message,
		nullable(n.RelatedUserID), nullable(n.RelatedUsername),
		nullable(n.RelatedPostID), nullable(n.RelatedReelID),
		n.IsRead, n.CreatedAt, nullable(n.EventID),
	}
}

func scan(row pgx.Row) (Notification, error) {
	var (
		n                                    Notification
		typ                                  string
		userID, username, postID, reelID, ev *string
		createdAt                            time.Time
	)
	err := row.Scan(&n.ID, &n.RecipientID, &typ, &n.Message, &userID, &username,
		&postID, &reelID, &n.IsRead, &createdAt, &ev)
	if err != nil {
		return Notification{}, err
	}
	n.Type = Type(typ)
	n.RelatedUserID = deref(userID)
	n.RelatedUsername = deref(username)
	n.RelatedPostID = deref(postID)
	n.RelatedReelID = deref(reelID)
	n.EventID = deref(ev)
	n.CreatedAt = createdAt.UTC()
	return n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
