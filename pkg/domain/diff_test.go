package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func stateAt(stage Stage, turns ...Turn) *ConversationState {
	s := NewConversationState("emp-1", "emp-1@example.com")
	_ = s.SetStage(stage)
	s.History = append(s.History, turns...)
	return s
}

func TestDiff(t *testing.T) {
	hello := Turn{Role: RoleUser, Content: "hi"}
	prompt := Turn{Role: RoleAssistant, Content: "What asset?"}

	tests := []struct {
		name        string
		old         *ConversationState
		new         *ConversationState
		wantNil     bool
		wantStage   *Stage
		wantHistory *HistoryDelta
	}{
		{
			name:        "Initial Load (Old is Nil)",
			old:         nil,
			new:         stateAt(StageInitial, hello),
			wantStage:   &[]Stage{StageInitial}[0],
			wantHistory: &HistoryDelta{Appended: []Turn{hello}},
		},
		{
			name:    "No Changes",
			old:     stateAt(StageAwaitingReason, hello),
			new:     stateAt(StageAwaitingReason, hello),
			wantNil: true,
		},
		{
			name:        "Stage Advance With Append",
			old:         stateAt(StageInitial, hello),
			new:         stateAt(StageAwaitingAssetType, hello, prompt),
			wantStage:   &[]Stage{StageAwaitingAssetType}[0],
			wantHistory: &HistoryDelta{Appended: []Turn{prompt}},
		},
		{
			name:        "Append Without Stage Change",
			old:         stateAt(StageAwaitingAssetType, hello),
			new:         stateAt(StageAwaitingAssetType, hello, prompt),
			wantHistory: &HistoryDelta{Appended: []Turn{prompt}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}
			if !reflect.DeepEqual(got.Stage, tt.wantStage) {
				t.Errorf("Diff().Stage = %v, want %v", got.Stage, tt.wantStage)
			}
			if !reflect.DeepEqual(got.History, tt.wantHistory) {
				t.Errorf("Diff().History = %v, want %v", got.History, tt.wantHistory)
			}
		})
	}
}

func TestDiff_PendingChange(t *testing.T) {
	old := stateAt(StageAwaitingAssetType)
	updated := old.Clone()
	if err := updated.Pending.SetAssetType("laptop"); err != nil {
		t.Fatal(err)
	}

	diff := Diff(old, updated)
	if diff == nil || diff.Pending == nil {
		t.Fatalf("expected pending change, got %+v", diff)
	}
	if got, _ := diff.Pending.AssetType(); got != "laptop" {
		t.Errorf("Pending.AssetType = %q, want laptop", got)
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	old := stateAt(StageAwaitingConfiguration)
	_ = old.Pending.SetAssetType("laptop")
	updated := old.Clone()
	_ = updated.Pending.SetConfiguration("MacBook Pro M1")
	_ = updated.SetStage(StageAwaitingReason)

	bytes, err := json.Marshal(Diff(old, updated))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(bytes)
	if !strings.Contains(out, `"stage":"awaiting_reason"`) {
		t.Errorf("expected stage in JSON, got %s", out)
	}
	if !strings.Contains(out, `"configuration":"MacBook Pro M1"`) {
		t.Errorf("expected configuration in JSON, got %s", out)
	}
	if strings.Contains(out, `"status"`) {
		t.Errorf("unchanged status should be omitted, got %s", out)
	}
}
