package domain

import (
	"encoding/json"
	"fmt"
)

// Stage identifies where a session currently is in the request flow.
// Only the values declared below are valid.
type Stage string

const (
	StageInitial               Stage = "initial"
	StageAwaitingAssetType     Stage = "awaiting_asset_type"
	StageAwaitingConfiguration Stage = "awaiting_configuration"
	StageAwaitingReason        Stage = "awaiting_reason"
	StageRequestCompleted      Stage = "request_completed"
	StageInvalid               Stage = "invalid"
)

// Stages lists every valid stage in flow order.
var Stages = []Stage{
	StageInitial,
	StageAwaitingAssetType,
	StageAwaitingConfiguration,
	StageAwaitingReason,
	StageRequestCompleted,
	StageInvalid,
}

// Valid reports whether s is a member of the stage enumeration.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a raw identifier into a Stage.
// The empty string maps to StageInitial (an unset stage is the entry stage).
func ParseStage(raw string) (Stage, error) {
	if raw == "" {
		return StageInitial, nil
	}
	s := Stage(raw)
	if !s.Valid() {
		return "", &InvalidStageError{Value: raw}
	}
	return s, nil
}

// MarshalJSON rejects stages outside the enumeration.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, &InvalidStageError{Value: string(s)}
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON validates the stage so a persisted state can never hold an unknown value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stage must be a string: %w", err)
	}
	parsed, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
