package models

import "time"

// Chat roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the advisor conversation
type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Source    string    `json:"source,omitempty" db:"source"` // ai or fallback
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Recipient types for email reports
const (
	RecipientGuider = "guider"
	RecipientDoctor = "doctor"
)

// Report is a sent email report record
type Report struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"-" db:"user_id"`
	RecipientType string    `json:"recipient_type" db:"recipient_type"`
	ToEmail       string    `json:"-" db:"to_email"`
	Subject       string    `json:"subject" db:"subject"`
	MessageID     string    `json:"message_id,omitempty" db:"message_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
