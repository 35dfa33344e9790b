// Package session holds the per-client state of a movie recommender chat.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrNotFound = errors.New("session not found")

type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Question string `json:"question,omitempty"`
}

type Options struct {
	SearchService      string `json:"search_service"`
	Model              string `json:"model"`
	NumRetrievedChunks int    `json:"num_retrieved_chunks"`
	NumChatMessages    int    `json:"num_chat_messages"`
	UseChatHistory     bool   `json:"use_chat_history"`
	Debug              bool   `json:"debug"`
}

type Session struct {
	ID             string    `json:"id"`
	Messages       []Message `json:"messages"`
	Options        Options   `json:"options"`
	LastQuestionID string    `json:"last_question_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func New(options Options) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Messages:  []Message{},
		Options:   options,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the end of the conversation.
func (s *Session) Append(m Message) {
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now()
}

// Clear drops the conversation but keeps the options.
func (s *Session) Clear() {
	s.Messages = []Message{}
	s.LastQuestionID = ""
	s.UpdatedAt = time.Now()
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
