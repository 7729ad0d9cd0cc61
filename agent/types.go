package agent

import (
	"errors"
	"time"

	"github.com/tbxark/depositagent/types"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Session is the whole mutable state of one dialogue.
type Session struct {
	ID          string        `json:"id"`
	Variant     types.Variant `json:"variant"`
	Phase       types.Phase   `json:"phase"`
	Slots       types.SlotSet `json:"slots"`
	History     []Turn        `json:"history"`
	CreatedAt   time.Time     `json:"created_at"`
	LastUpdated time.Time     `json:"last_updated"`
}

func (s *Session) clone() *Session {
	out := *s
	out.Slots = s.Slots.Clone()
	out.History = append([]Turn(nil), s.History...)
	return &out
}

type StartRequest struct {
	Variant types.Variant    `json:"variant"`
	Prefill types.Extraction `json:"prefill,omitempty"`
}

type StartResponse struct {
	SessionID     string            `json:"session_id"`
	WelcomePrompt string            `json:"welcome_prompt"`
	Phase         types.Phase       `json:"phase"`
	Slots         map[string]string `json:"slots"`
}

type TurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type CompleteRequest struct {
	SessionID string `json:"session_id"`
}

// Completion is the final account-opening payload.
type Completion struct {
	Reference   string            `json:"reference"`
	Variant     types.Variant     `json:"variant"`
	Slots       map[string]string `json:"slots"`
	CompletedAt time.Time         `json:"completed_at"`
}

type TurnResponse struct {
	SessionID  string                  `json:"session_id"`
	Slots      map[string]string       `json:"slots"`
	NextPrompt string                  `json:"next_prompt"`
	Phase      types.Phase             `json:"phase"`
	Missing    []types.FieldInfo       `json:"missing_fields,omitempty"`
	Violations []types.ValidationError `json:"violations,omitempty"`
	Completion *Completion             `json:"completion,omitempty"`
}
