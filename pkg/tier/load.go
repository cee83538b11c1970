package tier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the on-disk catalog layout. Unknown fields are ignored.
type document struct {
	Version     string          `yaml:"version"`
	Tiers       yaml.Node       `yaml:"tiers"`
	Enforcement *enforcementDoc `yaml:"enforcement"`
}

type enforcementDoc struct {
	Mode                  string `yaml:"mode"`
	BlockOnViolation      *bool  `yaml:"blockOnViolation"`
	BlockOnViolationSnake *bool  `yaml:"block_on_violation"`
}

// tierDoc accepts both the snake_case layout and the legacy camelCase keys.
type tierDoc struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Range       []float64 `yaml:"range"`
	ScoreRange  []float64 `yaml:"score_range"`

	AllowDirectActions *bool `yaml:"allow_direct_actions"`
	AllowDirectTools   *bool `yaml:"allowDirectTools"`

	RequiredSteps  []string `yaml:"required_steps"`
	RequiredAgents []string `yaml:"requiredAgents"`

	MinimumSteps  *int `yaml:"minimum_steps"`
	MinimumAgents *int `yaml:"minimumAgents"`
}

// LoadFile reads and parses a catalog document from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	c, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	c.source = path

	return c, nil
}

// Parse parses a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var defs []Definition
	switch doc.Tiers.Kind {
	case yaml.SequenceNode:
		for i, item := range doc.Tiers.Content {
			var td tierDoc
			if err := item.Decode(&td); err != nil {
				return nil, fmt.Errorf("decode tier #%d: %w", i, err)
			}
			def, err := td.definition(td.Name)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}

	case yaml.MappingNode:
		// Mapping nodes keep document order as key/value pairs.
		for i := 0; i+1 < len(doc.Tiers.Content); i += 2 {
			name := doc.Tiers.Content[i].Value
			var td tierDoc
			if err := doc.Tiers.Content[i+1].Decode(&td); err != nil {
				return nil, fmt.Errorf("decode tier %q: %w", name, err)
			}
			def, err := td.definition(name)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}

	case 0:
		return nil, ErrEmptyCatalog

	default:
		return nil, fmt.Errorf("parse catalog: tiers must be a list or a map")
	}

	c, err := New(defs)
	if err != nil {
		return nil, err
	}

	if doc.Enforcement != nil {
		e := Enforcement{Mode: doc.Enforcement.Mode, BlockOnViolation: true}
		switch {
		case doc.Enforcement.BlockOnViolation != nil:
			e.BlockOnViolation = *doc.Enforcement.BlockOnViolation
		case doc.Enforcement.BlockOnViolationSnake != nil:
			e.BlockOnViolation = *doc.Enforcement.BlockOnViolationSnake
		}
		c.enforcement = e
	}

	return c, nil
}

func (td tierDoc) definition(name string) (Definition, error) {
	if name == "" {
		name = td.Name
	}

	bounds := td.Range
	if len(bounds) == 0 {
		bounds = td.ScoreRange
	}
	if len(bounds) != 2 {
		return Definition{}, &DefinitionError{Tier: name, Message: fmt.Sprintf("range must have exactly 2 bounds, got %d", len(bounds))}
	}

	def := Definition{
		Name:        name,
		Description: td.Description,
		Range:       Range{Min: bounds[0], Max: bounds[1]},
	}

	switch {
	case td.AllowDirectActions != nil:
		def.AllowDirectActions = *td.AllowDirectActions
	case td.AllowDirectTools != nil:
		def.AllowDirectActions = *td.AllowDirectTools
	}

	def.RequiredSteps = td.RequiredSteps
	if def.RequiredSteps == nil {
		def.RequiredSteps = td.RequiredAgents
	}

	switch {
	case td.MinimumSteps != nil:
		def.MinimumSteps = *td.MinimumSteps
	case td.MinimumAgents != nil:
		def.MinimumSteps = *td.MinimumAgents
	}

	return def, nil
}
