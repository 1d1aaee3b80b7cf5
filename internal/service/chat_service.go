package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/platform/apierr"
	"github.com/jengzang/healthtwin-backend/internal/platform/gemini"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
)

const (
	// chatHistoryTurns is how many stored messages are replayed into the prompt.
	chatHistoryTurns  = 10
	maxChatMessageLen = 2000
)

var (
	ErrEmptyMessage   = apierr.BadRequest("message_required", errors.New("message is required"))
	ErrMessageTooLong = apierr.BadRequest("message_too_long", fmt.Errorf("message exceeds %d characters", maxChatMessageLen))
)

// ChatStore persists conversation turns.
type ChatStore interface {
	Append(ctx context.Context, userID string, msgs ...models.ChatMessage) error
	Recent(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	Clear(ctx context.Context, userID string) error
}

// KeyStatser reports API key usage.
type KeyStatser interface {
	Stats() gemini.KeyStats
}

// ChatReply is the advisor's answer to one message.
type ChatReply struct {
	Response string    `json:"response"`
	Source   string    `json:"source"`
	At       time.Time `json:"at"`
}

// ChatStatus reports whether the advisor can reach the text service.
type ChatStatus struct {
	Status string           `json:"status"`
	Keys   *gemini.KeyStats `json:"keys,omitempty"`
}

// ChatService answers health questions in the context of the user's progress.
type ChatService struct {
	progress *ProgressService
	store    ChatStore
	text     TextGenerator
	keys     KeyStatser
	opts     AIOptions
	log      *logger.Logger
	now      func() time.Time
}

// NewChatService creates a chat service. text and keys may be nil.
func NewChatService(progress *ProgressService, store ChatStore, text TextGenerator, keys KeyStatser, log *logger.Logger, opts AIOptions) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatService{
		progress: progress,
		store:    store,
		text:     text,
		keys:     keys,
		opts:     opts.withDefaults(),
		log:      log.With("service", "ChatService"),
		now:      time.Now,
	}
}

// Send answers message and records both turns.
func (s *ChatService) Send(ctx context.Context, userID, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > maxChatMessageLen {
		return nil, ErrMessageTooLong
	}

	st, err := s.progress.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.Recent(ctx, userID, chatHistoryTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	reply := &ChatReply{Source: SourceFallback}
	if s.text != nil {
		genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		text, err := s.text.Generate(genCtx, chatPrompt(st, history, message))
		cancel()
		if err != nil {
			s.log.Warn("Chat generation failed, using canned reply", "user_id", userID, "error", err)
		} else if text = strings.TrimSpace(text); text != "" {
			reply.Response = text
			reply.Source = SourceAI
		}
	}
	if reply.Source == SourceFallback {
		reply.Response = cannedReply(message)
	}
	reply.At = s.now().UTC()

	err = s.store.Append(ctx, userID,
		models.ChatMessage{Role: models.ChatRoleUser, Content: message, CreatedAt: reply.At},
		models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply.Response, Source: reply.Source, CreatedAt: reply.At},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat messages: %w", err)
	}
	return reply, nil
}

// History returns the stored conversation, oldest first.
func (s *ChatService) History(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	msgs, err := s.store.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return msgs, nil
}

// ClearHistory deletes the user's conversation.
func (s *ChatService) ClearHistory(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}

// Status reports text service availability and key usage.
func (s *ChatService) Status() ChatStatus {
	if s.text == nil || s.keys == nil {
		return ChatStatus{Status: "offline"}
	}
	stats := s.keys.Stats()
	if stats.TotalKeys == 0 {
		return ChatStatus{Status: "offline", Keys: &stats}
	}
	return ChatStatus{Status: "ok", Keys: &stats}
}

var cannedTopics = []struct {
	words []string
	reply string
}{
	{[]string{"pain", "hurt", "injur", "symptom", "dizzy", "chest"},
		"I'm sorry you're feeling that way. Please stop any activity that causes pain and talk to your doctor about these symptoms. I'm an AI advisor, not a doctor, so a professional should take a look."},
	{[]string{"medication", "medicine", "pill", "dose", "diagnos"},
		"Questions about medication or diagnoses are best answered by your doctor, who knows your full history. I can help you stay on track with today's tasks in the meantime!"},
	{[]string{"tired", "motivat", "give up", "lazy", "hard"},
		"Some days are harder than others, and that's okay. Try finishing just one small task today; every completed task keeps your companion happy and builds your streak."},
	{[]string{"eat", "diet", "food", "meal", "protein"},
		"A balanced plate with vegetables, lean protein and whole grains supports every health goal. Drinking enough water helps too. What does a typical day of eating look like for you?"},
	{[]string{"sleep", "rest"},
		"Aim for 7-9 hours of sleep and a consistent bedtime. Recovery is when your body adapts to the work you put in."},
}

// cannedReply answers without the text service.
func cannedReply(message string) string {
	lower := strings.ToLower(message)
	for _, t := range cannedTopics {
		for _, w := range t.words {
			if strings.Contains(lower, w) {
				return t.reply
			}
		}
	}
	return "I'm having trouble reaching my knowledge service right now, but keep going with today's tasks! Consistency is the biggest driver of your long-term health. Ask me again in a little while."
}
