// Package conversation holds the append-only message history for one
// ordering session.
//
// The history is the single source of truth for every model call: each
// round-trip submits the full snapshot, so messages are never reordered or
// deleted. The first message is always the system prompt and is never
// mutated after the session is created. History grows without bound for the
// lifetime of the session; a session covers exactly one customer order.
package conversation

import "sync"

// Role tags the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the conversation state for a single customer order.
//
// Appends are strictly ordered. The mutex enforces single-writer discipline
// when the session is driven from an HTTP handler; it does not make the
// session suitable for multiple concurrent conversations; one session
// serves one conversation.
type Session struct {
	mu       sync.Mutex
	messages []Message
}

// NewSession creates a session seeded with the system prompt.
func NewSession(systemPrompt string) *Session {
	return &Session{
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a message to the end of the history.
func (s *Session) Append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: role, Content: content})
}

// Snapshot returns a copy of the full history, in append order.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the history.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
