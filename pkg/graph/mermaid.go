package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/assetbot/pkg/domain"
)

// Overlay contains session data to highlight on the rendered table.
type Overlay struct {
	CurrentStage domain.Stage
	VisitedNodes []NodeID
}

// GenerateMermaid produces a Mermaid flowchart of the table.
// Stages render as stadiums, handler nodes as subroutines, and every edge is labelled
// with its evaluation order and guard:
//
//	awaiting_reason(["awaiting_reason"]) -- "1: not_empty" --> node_reason[["reason"]]
func GenerateMermaid(t *Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[NodeID]bool)
	for _, stage := range t.Stages() {
		stageID := sanitizeMermaidID(string(stage))
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", stageID, stage))

		for i, e := range t.Edges(stage) {
			nodeID := "node_" + sanitizeMermaidID(string(e.Target))
			if !declared[e.Target] {
				declared[e.Target] = true
				sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", nodeID, e.Target))
			}
			label := strings.ReplaceAll(e.Guard.String(), "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s -- \"%d: %s\" --> %s\n", stageID, i+1, label, nodeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[NodeID]bool)
		for _, id := range overlay.VisitedNodes {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class node_%s visited;\n", sanitizeMermaidID(string(id))))
		}
		if overlay.CurrentStage != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentStage))))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
