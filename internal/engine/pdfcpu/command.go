package pdfcpu

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/types"
)

type step struct {
	name  string
	apply func(ctx *model.Context) error
}

type command struct {
	doc   *document
	steps []step
}

// LoadParamsFromStream decodes an action batch and checks every action up front,
// so a bad batch is rejected before the document is touched.
func (c *command) LoadParamsFromStream(stm engine.MemStream, format engine.DataFormat) error {
	if format != engine.DataFormatJSON {
		return &engine.CommandError{Message: fmt.Sprintf("unsupported payload format %s", format)}
	}

	payload, err := engine.ReadAll(stm)
	if err != nil {
		return &engine.CommandError{Message: "failed to read payload", Cause: err}
	}

	var plan types.ActionPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return &engine.CommandError{Message: "failed to decode payload", Cause: err}
	}

	steps := make([]step, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		prepare, ok := actionCatalog[action.Name]
		if !ok {
			return &engine.CommandError{Action: action.Name, Message: "unknown action"}
		}
		apply, err := prepare(action)
		if err != nil {
			return &engine.CommandError{Action: action.Name, Message: "invalid params", Cause: err}
		}
		steps = append(steps, step{name: action.Name, apply: apply})
	}

	c.steps = steps
	return nil
}

// Run applies the loaded actions in order and stops at the first failure
func (c *command) Run(ctx context.Context) error {
	if c.doc.ctx == nil {
		return &engine.CommandError{Message: "cannot run", Cause: errClosed}
	}
	if c.steps == nil {
		return &engine.CommandError{Message: "no params loaded"}
	}

	for _, s := range c.steps {
		if err := ctx.Err(); err != nil {
			return &engine.CommandError{Action: s.name, Message: "cancelled", Cause: err}
		}
		if err := s.apply(c.doc.ctx); err != nil {
			return &engine.CommandError{Action: s.name, Message: "action failed", Cause: err}
		}
	}
	return nil
}
