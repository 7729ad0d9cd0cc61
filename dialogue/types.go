package dialogue

import (
	"context"

	"github.com/tbxark/depositagent/types"
)

type Request struct {
	Phase   types.Phase
	Variant types.Variant
	Slots   types.SlotSet

	MissingFields    []types.FieldInfo
	ValidationErrors []types.ValidationError

	// ChangedFields is set on the turn a change command cleared them.
	ChangedFields []string
	// Reference is the completion reference, set once the phase is completed.
	Reference string
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
