package livechat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

const columns = `id, user_id, user_name, user_email, message, admin_reply, replied_at, status, created_at, updated_at`

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, m Message) (Message, error) {
	out, err := scan(r.DB.QueryRow(ctx, `
		INSERT INTO chat_messages(id, user_id, user_name, user_email, message)
		VALUES ($1,$2,$3,$4,$5) RETURNING `+columns,
		uuid.NewString(), m.UserID, m.UserName, m.UserEmail, m.Message))
	if err != nil {
		return Message{}, apperr.Persistence("create chat message", err)
	}
	return out, nil
}

func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Message, error) {
	return r.list(ctx, `SELECT `+columns+` FROM chat_messages ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Message, error) {
	return r.list(ctx, `SELECT `+columns+` FROM chat_messages WHERE user_id=$2
		ORDER BY created_at ASC LIMIT $1`, limit, userID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Message, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Persistence("list chat messages", err)
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, apperr.Persistence("scan chat message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list chat messages", err)
	}
	return out, nil
}

func (r *Repo) Reply(ctx context.Context, id, reply string, at time.Time) (Message, error) {
	m, err := scan(r.DB.QueryRow(ctx, `
		UPDATE chat_messages SET admin_reply=$2, replied_at=$3, updated_at=now()
		WHERE id=$1 RETURNING `+columns, id, reply, at))
	if postgres.IsNoRows(err) {
		return Message{}, apperr.NotFound("Chat message not found.")
	}
	if err != nil {
		return Message{}, apperr.Persistence("reply chat message", err)
	}
	return m, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM chat_messages WHERE id=$1`, id)
	if err != nil {
		return apperr.Persistence("delete chat message", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chat message not found.")
	}
	return nil
}

func scan(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.UserID, &m.UserName, &m.UserEmail, &m.Message,
		&m.AdminReply, &m.RepliedAt, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
