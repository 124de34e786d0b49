package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://speakset/persisted-state.json"

var stateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"version":      map[string]any{"type": "string"},
		"setViewState": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
		"answeredSlides": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer", "minimum": 0},
		},
		"sequence": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"currentSlide": map[string]any{"type": "integer", "minimum": 0},
				"progress":     map[string]any{"type": "integer", "minimum": 0},
				"children":     map[string]any{},
			},
		},
	},
	"required": []any{"setViewState"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler expects a decoded JSON value, not Go literals.
		defBytes, err := json.Marshal(stateSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal state schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse state schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validate checks a parsed JSON document against the state schema.
func validate(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile state schema: %w", err)
	}
	return sch.Validate(doc)
}
