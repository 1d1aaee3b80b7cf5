package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/database"
	"github.com/jengzang/healthtwin-backend/internal/models"
)

// MaxChatMessages is how many messages are kept per user
const MaxChatMessages = 50

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append stores messages in order and trims the user's history to MaxChatMessages
func (r *ChatRepository) Append(ctx context.Context, userID string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, m := range msgs {
			createdAt := m.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO chat_messages (user_id, role, content, source, created_at) VALUES (?, ?, ?, ?, ?)",
				userID, m.Role, m.Content, m.Source, createdAt)
			if err != nil {
				return fmt.Errorf("failed to insert chat message: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			DELETE FROM chat_messages WHERE user_id = ? AND id NOT IN (
				SELECT id FROM chat_messages WHERE user_id = ? ORDER BY id DESC LIMIT ?
			)`, userID, userID, MaxChatMessages)
		if err != nil {
			return fmt.Errorf("failed to trim chat messages: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit of the user's latest messages, oldest first
func (r *ChatRepository) Recent(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > MaxChatMessages {
		limit = MaxChatMessages
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, source, created_at
		FROM chat_messages WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Source, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Clear deletes the user's chat history
func (r *ChatRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}
