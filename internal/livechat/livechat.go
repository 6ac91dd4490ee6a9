// Package livechat stores support messages from shoppers and admin replies.
package livechat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
)

const (
	guestName = "Guest User"
	listLimit = 100
)

type Message struct {
	ID         string     `json:"id"`
	UserID     *string    `json:"userId"`
	UserName   string     `json:"userName"`
	UserEmail  string     `json:"userEmail"`
	Message    string     `json:"message"`
	AdminReply string     `json:"adminReply"`
	RepliedAt  *time.Time `json:"repliedAt,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Store interface {
	Create(ctx context.Context, m Message) (Message, error)
	ListRecent(ctx context.Context, limit int) ([]Message, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Message, error)
	Reply(ctx context.Context, id, reply string, at time.Time) (Message, error)
	Delete(ctx context.Context, id string) error
}

// Users resolves the display name of a signed-in sender. *auth.Repo implements it.
type Users interface {
	UserByID(ctx context.Context, id string) (auth.User, error)
}

type Service struct {
	Store Store
	Users Users
	Now   func() time.Time
}

// Create records a message. userID is empty for guests; an id that no longer
// resolves to a user is kept but shown as a guest.
func (s *Service) Create(ctx context.Context, userID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, apperr.Validation("Message is required.")
	}
	m := Message{UserName: guestName, Message: text}
	if userID != "" {
		m.UserID = &userID
		u, err := s.Users.UserByID(ctx, userID)
		switch {
		case err == nil:
			if u.Name != "" {
				m.UserName = u.Name
			}
			m.UserEmail = u.Email
		case errors.Is(err, apperr.ErrNotFound):
			logging.FromContext(ctx).Warn("chat_unknown_user", zap.String("user_id", userID))
		default:
			return Message{}, err
		}
	}
	return s.Store.Create(ctx, m)
}

// AdminList returns the newest messages first.
func (s *Service) AdminList(ctx context.Context) ([]Message, error) {
	return s.Store.ListRecent(ctx, listLimit)
}

// Mine returns a user's conversation oldest first.
func (s *Service) Mine(ctx context.Context, userID string) ([]Message, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required.")
	}
	return s.Store.ListByUser(ctx, userID, listLimit)
}

func (s *Service) Reply(ctx context.Context, id, reply string) (Message, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Message{}, apperr.Validation("Reply is required.")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Store.Reply(ctx, id, reply, now())
}

// Close removes the conversation entry.
func (s *Service) Close(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}
