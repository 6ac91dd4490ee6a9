// Package contact stores messages sent through the storefront contact form.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

const listLimit = 200

type Message struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims the fields and lowercases the address.
func (m *Message) Normalize() error {
	m.FullName = strings.TrimSpace(m.FullName)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Message = strings.TrimSpace(m.Message)
	if m.FullName == "" || m.Email == "" || m.Message == "" {
		return apperr.Validation("Full name, email, and message are required.")
	}
	return nil
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, m Message) (Message, error) {
	if err := m.Normalize(); err != nil {
		return Message{}, err
	}
	m.ID = uuid.NewString()
	err := r.DB.QueryRow(ctx, `
		INSERT INTO contact_messages(id, full_name, email, message) VALUES ($1,$2,$3,$4)
		RETURNING created_at`, m.ID, m.FullName, m.Email, m.Message).Scan(&m.CreatedAt)
	if err != nil {
		return Message{}, apperr.Persistence("create contact message", err)
	}
	return m, nil
}

// List returns the newest messages first.
func (r *Repo) List(ctx context.Context) ([]Message, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, full_name, email, message, created_at
		FROM contact_messages ORDER BY created_at DESC LIMIT $1`, listLimit)
	if err != nil {
		return nil, apperr.Persistence("list contact messages", err)
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan contact message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list contact messages", err)
	}
	return out, nil
}
