package models

import (
	"time"
)

// DefaultTitle is the title a session carries until its first user message.
const DefaultTitle = "New Chat"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageKind lets clients style OCR text and failure notices without parsing the text.
type MessageKind string

const (
	KindPrompt  MessageKind = "prompt"
	KindOCRText MessageKind = "ocr_text"
	KindReply   MessageKind = "reply"
	KindError   MessageKind = "error"
)

// Message is one entry of a session transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text"`
	Time      string      `json:"time"` // HH:MM
	CreatedAt time.Time   `json:"created_at"`
	Image     string      `json:"image,omitempty"`     // base64 PNG, user messages only
	ImageKey  string      `json:"image_key,omitempty"` // object storage key when archived
}

// Session represents one conversation.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: len(s.Messages),
		LastUpdated:  s.LastUpdated,
		CreatedAt:    s.CreatedAt,
	}
}

// PendingImage is the transient OCR context of the current upload cycle.
type PendingImage struct {
	Text string
	PNG  []byte
}
