package domain

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Status is the session liveness flag. It is independent of the stage.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// ConversationState is the full record of one user's progress through the flow.
type ConversationState struct {
	// SessionKey is the stable lookup key (e.g. employee id).
	SessionKey string

	// Identity is the user identity supplied on first contact (e.g. email).
	Identity string

	// History is the transcript. Only append to it.
	History []Turn

	// Pending holds the partially built asset request.
	Pending PendingRequest

	Status Status

	Created time.Time
	Updated time.Time

	stage Stage
}

// NewConversationState creates a clean state at the entry stage.
func NewConversationState(sessionKey, identity string) *ConversationState {
	return &ConversationState{
		SessionKey: sessionKey,
		Identity:   identity,
		History:    []Turn{},
		Status:     StatusActive,
		stage:      StageInitial,
	}
}

// Stage returns the current stage. An unset stage reads as StageInitial.
func (s *ConversationState) Stage() Stage {
	if s.stage == "" {
		return StageInitial
	}
	return s.stage
}

// SetStage moves the session to the given stage.
// It fails with *InvalidStageError if stage is not a member of the enumeration.
func (s *ConversationState) SetStage(stage Stage) error {
	if !stage.Valid() {
		return &InvalidStageError{Value: string(stage)}
	}
	s.stage = stage
	return nil
}

// AppendUser records a user turn.
func (s *ConversationState) AppendUser(content string) {
	s.History = append(s.History, Turn{Role: RoleUser, Content: content})
}

// AppendAssistant records an assistant turn.
func (s *ConversationState) AppendAssistant(content string) {
	s.History = append(s.History, Turn{Role: RoleAssistant, Content: content})
}

// LastAssistant returns the content of the most recent assistant turn.
func (s *ConversationState) LastAssistant() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAssistant {
			return s.History[i].Content, true
		}
	}
	return "", false
}

// Clone returns a deep copy, safe to hand out for inspection.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	out.History = make([]Turn, len(s.History))
	copy(out.History, s.History)
	return &out
}

type stateJSON struct {
	SessionKey string         `json:"session_key"`
	Identity   string         `json:"identity,omitempty"`
	Stage      Stage          `json:"stage"`
	Status     Status         `json:"status"`
	History    []Turn         `json:"history"`
	Pending    PendingRequest `json:"pending_request"`
	Created    time.Time      `json:"created"`
	Updated    time.Time      `json:"updated"`
}

func (s *ConversationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		SessionKey: s.SessionKey,
		Identity:   s.Identity,
		Stage:      s.Stage(),
		Status:     s.Status,
		History:    s.History,
		Pending:    s.Pending,
		Created:    s.Created,
		Updated:    s.Updated,
	})
}

func (s *ConversationState) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.History == nil {
		raw.History = []Turn{}
	}
	if raw.Status == "" {
		raw.Status = StatusActive
	}
	if raw.Stage == "" {
		raw.Stage = StageInitial
	}
	*s = ConversationState{
		SessionKey: raw.SessionKey,
		Identity:   raw.Identity,
		History:    raw.History,
		Pending:    raw.Pending,
		Status:     raw.Status,
		Created:    raw.Created,
		Updated:    raw.Updated,
		stage:      raw.Stage,
	}
	return nil
}
