// Package conversation holds the append-only log of human and assistant
// turns for one session.
package conversation

import (
	"fmt"
	"sync"
	"time"
)

const DefaultGreeting = "Hello! I'm a SQL assistant. Ask me anything about your database."

type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func Human(text string) Turn     { return Turn{Role: RoleHuman, Text: text} }
func Assistant(text string) Turn { return Turn{Role: RoleAssistant, Text: text} }

// Log only grows. There is no way to edit or drop a turn once appended.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
	now   func() time.Time
}

func New(greeting string) *Log {
	return NewWithClock(greeting, time.Now)
}

func NewWithClock(greeting string, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	if greeting == "" {
		greeting = DefaultGreeting
	}
	log := &Log{now: now}
	log.Append(Assistant(greeting))
	return log
}

func (l *Log) Append(turn Turn) Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = l.now().UTC()
	}
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a copy; callers cannot reach the backing array.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Speaker is the label used when a turn is shown to a person or a model.
func Speaker(role Role) string {
	switch role {
	case RoleHuman:
		return "Human"
	case RoleAssistant:
		return "AI"
	default:
		panic(fmt.Sprintf("conversation: unknown role %q", role))
	}
}

func Render(turn Turn) string {
	return Speaker(turn.Role) + ": " + turn.Text
}
