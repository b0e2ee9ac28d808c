package config

import (
	"fmt"
	"os"

	"github.com/aretw0/assetbot/pkg/adapters/inventory"
	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/aretw0/assetbot/pkg/nodes"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DialogueFile is the layout of a dialogue YAML file. Every section is optional.
//
//	vocabulary: [laptop, monitor]
//	greetings: [hi, hello]
//	prompts:
//	  greeting: "Hi! Which asset? ({asset_types})"
//	inventory:
//	  laptop: {available: true, configurations: [Dell i5 16GB]}
//	flow:
//	  awaiting_reason:
//	    - {target: reason, guard: {kind: not_empty}}
//	    - {target: invalid, guard: {kind: always}}
type DialogueFile struct {
	nodes.Dialogue `mapstructure:",squash"`

	Inventory map[string]inventory.Item `mapstructure:"inventory"`
	Flow      graph.Definition          `mapstructure:"flow"`
}

// Dialogue is the loaded, default-filled content of a DialogueFile.
type Dialogue struct {
	Dialogue nodes.Dialogue

	// Inventory is nil unless the file declares stock.
	Inventory map[string]inventory.Item

	// Table is the file's flow, or the default flow over the dialogue's vocabulary.
	Table *graph.Table
}

// LoadDialogue reads path. An empty path yields the defaults.
func LoadDialogue(path string) (*Dialogue, error) {
	if path == "" {
		return ParseDialogue(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue file: %w", err)
	}
	d, err := ParseDialogue(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDialogue decodes YAML into a generic map, then into typed structures, so
// unknown keys are reported instead of silently ignored.
func ParseDialogue(data []byte) (*Dialogue, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue yaml: %w", err)
	}

	var file DialogueFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &file,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode dialogue: %w", err)
	}

	out := &Dialogue{
		Dialogue:  file.Dialogue.WithDefaults(),
		Inventory: file.Inventory,
	}

	if len(file.Flow) == 0 {
		out.Table = graph.DefaultTable(out.Dialogue.Vocabulary, out.Dialogue.Greetings)
		return out, nil
	}
	table, err := graph.FromDefinition(file.Flow)
	if err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	if err := table.Validate(graph.AllNodes()...); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	out.Table = table
	return out, nil
}
