package domain

// StateDiff represents the changes a turn made to a conversation.
// It is designed to be serialized to JSON for logging and inspection.
type StateDiff struct {
	// SessionKey is always present to identify the target.
	SessionKey string `json:"session_key"`

	Stage  *Stage  `json:"stage,omitempty"`
	Status *Status `json:"status,omitempty"`

	// Pending is set when any pending request field changed.
	Pending *PendingRequest `json:"pending_request,omitempty"`

	// History contains the turns appended since the old snapshot.
	History *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta lists turns appended to the transcript.
type HistoryDelta struct {
	Appended []Turn `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *ConversationState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionKey: newState.SessionKey}

	if oldState == nil || oldState.Stage() != newState.Stage() {
		stage := newState.Stage()
		diff.Stage = &stage
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	if oldState == nil || oldState.Pending != newState.Pending {
		pending := newState.Pending
		diff.Pending = &pending
	}
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory assumes append-only history.
func diffHistory(old, new *ConversationState) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}
	if len(new.History) > len(old.History) {
		return &HistoryDelta{Appended: new.History[len(old.History):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Stage == nil &&
		d.Status == nil &&
		d.Pending == nil &&
		d.History == nil
}
