package graph

import (
	"errors"
	"fmt"

	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/rules"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrUnknownNodeType is returned for node types the rules table has never
// heard of.
var ErrUnknownNodeType = errors.New("unknown node type")

// ValidateWorkflow checks an imported document before it is loaded onto a
// canvas: struct-level validation, known node types, per-type data schemas,
// referential integrity of edges and connection-rule compliance. Live graph
// mutation never runs these checks; this is the import boundary only.
func ValidateWorkflow(wf *models.Workflow) error {
	if wf == nil {
		return errors.New("workflow is nil")
	}

	if err := validate.Struct(wf); err != nil {
		return fmt.Errorf("workflow validation: %w", err)
	}

	byID := make(map[string]*models.Node, len(wf.Nodes))

	for _, n := range wf.Nodes {
		if _, ok := rules.Config(n.Type); !ok {
			return fmt.Errorf("node %s: %w: %s", n.ID, ErrUnknownNodeType, n.Type)
		}

		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}

		if err := rules.ValidateNodeData(n.Type, n.Data); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}

		byID[n.ID] = n
	}

	seen := make(map[string]bool, len(wf.Edges))

	for _, e := range wf.Edges {
		source, ok := byID[e.Source]
		if !ok {
			return fmt.Errorf("edge %s references missing source %s", e.ID, e.Source)
		}

		target, ok := byID[e.Target]
		if !ok {
			return fmt.Errorf("edge %s references missing target %s", e.ID, e.Target)
		}

		pair := e.Source + "\x00" + e.Target
		if seen[pair] {
			return fmt.Errorf("duplicate edge %s -> %s", e.Source, e.Target)
		}

		seen[pair] = true

		if !rules.CanConnect(source.Type, target.Type) {
			return fmt.Errorf("edge %s: %s cannot connect to %s", e.ID, source.Type, target.Type)
		}
	}

	return nil
}
