package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/depositagent/types"
)

const continuePrompt = "Please continue providing your account details."

// LocalDialogueGenerator renders prompts from templates; it never calls a model.
type LocalDialogueGenerator struct{}

func NewLocalDialogueGenerator() *LocalDialogueGenerator {
	return &LocalDialogueGenerator{}
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	if !req.Variant.Valid() {
		return "", fmt.Errorf("unknown account variant %q", req.Variant)
	}
	switch req.Phase {
	case types.PhaseConfirming:
		return FormatSummary(req.Variant, req.Slots), nil
	case types.PhaseCancelled:
		if len(req.MissingFields) == 0 && len(req.ValidationErrors) == 0 {
			return Cancelled(req.Variant), nil
		}
		sections := []string{Aborted(req.Variant)}
		if len(req.ValidationErrors) > 0 {
			sections = append(sections, FormatViolations(req.ValidationErrors))
		}
		if len(req.MissingFields) > 0 {
			sections = append(sections, formatFieldList("Missing information:", req.MissingFields))
		}
		return strings.Join(sections, "\n\n"), nil
	case types.PhaseCompleted:
		return Completed(req.Variant, req.Reference), nil
	default:
		var sections []string
		if len(req.ChangedFields) > 0 {
			sections = append(sections, formatChanged(req.Variant, req.ChangedFields))
		}
		if len(req.ValidationErrors) > 0 {
			sections = append(sections, FormatViolations(req.ValidationErrors))
		}
		if len(req.MissingFields) > 0 {
			sections = append(sections, FormatMissing(req.MissingFields))
		}
		if len(sections) == 0 {
			return continuePrompt, nil
		}
		return strings.Join(sections, "\n\n"), nil
	}
}

func (g *LocalDialogueGenerator) GenerateDialogueStream(ctx context.Context, req *Request) (*schema.StreamReader[string], error) {
	message, err := g.GenerateDialogue(ctx, req)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]string{message}), nil
}
