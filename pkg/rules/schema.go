package rules

import (
	"fmt"

	"github.com/canvion/canvion/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema constrains the fields every node's data bag carries.
var envelopeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status": map[string]any{
			"type": "string",
			"enum": []any{"idle", "running", "completed", "failed"},
		},
		"title":         map[string]any{"type": "string"},
		"estimatedCost": map[string]any{"type": "number"},
		"groupId":       map[string]any{"type": "string"},
		"hasUpstream":   map[string]any{"type": "boolean"},
		"inheritedFrom": map[string]any{"type": "string"},
	},
}

// Per-type payload schemas, merged over the envelope. Only the fields the
// engine itself reads are pinned down; node data stays an open bag beyond
// these.
var payloadSchemas = map[models.NodeType]map[string]any{
	models.NodeTypeTextInput: {
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeImageInput: {
		"type": "object",
		"properties": map[string]any{
			"images":       map[string]any{"type": "array", "items": map[string]any{"type": []any{"string", "object"}}},
			"sourceImages": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
	models.NodeTypeVideoInput: {
		"type": "object",
		"properties": map[string]any{
			"sourceVideo": map[string]any{"type": "string"},
		},
	},
}

// ValidateNodeData checks a node's data bag against the envelope schema and,
// when one exists, the per-type payload schema. Used at the workflow import
// boundary; live graph mutation never validates.
func ValidateNodeData(t models.NodeType, data map[string]any) error {
	if data == nil {
		return nil
	}

	docLoader := gojsonschema.NewGoLoader(data)

	schemas := []map[string]any{envelopeSchema}
	if payload, ok := payloadSchemas[t]; ok {
		schemas = append(schemas, payload)
	}

	for _, schema := range schemas {
		result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), docLoader)
		if err != nil {
			return fmt.Errorf("schema validation for node type %s: %w", t, err)
		}

		if !result.Valid() {
			errs := result.Errors()
			if len(errs) > 0 {
				return fmt.Errorf("invalid data for node type %s: %s", t, errs[0].String())
			}

			return fmt.Errorf("invalid data for node type %s", t)
		}
	}

	return nil
}
