package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/webforge/scenecore/internal/component"
)

// LoadInputBindings loads input_bindings.yaml, the action map a new scene
// starts with.
func LoadInputBindings(path string) ([]component.InputBinding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input bindings: %w", err)
	}
	var entries []component.InputBinding
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse input bindings: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for _, b := range entries {
		if b.Action == "" {
			return nil, fmt.Errorf("input binding without action")
		}
		if seen[b.Action] {
			return nil, fmt.Errorf("input binding %s: duplicate action", b.Action)
		}
		seen[b.Action] = true
	}
	return entries, nil
}
