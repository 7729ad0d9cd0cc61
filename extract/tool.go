package extract

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/depositagent/structured"
	"github.com/tbxark/depositagent/types"
)

const (
	extractToolName        = "record_account_details"
	extractToolDescription = "Record the deposit account details the user stated in the current message. Omit every field the user did not mention."
)

// ToolBasedExtractor asks the model for a forced tool call shaped like the slot set.
type ToolBasedExtractor struct {
	chain *structured.Chain[*Request, types.SlotSet]
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel, opts ...model.Option) (*ToolBasedExtractor, error) {
	chain, err := structured.NewChain[*Request, types.SlotSet](
		chatModel,
		BuildMessages,
		extractToolName,
		extractToolDescription,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction chain: %w", err)
	}
	return &ToolBasedExtractor{chain: chain}, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (types.Extraction, error) {
	out, err := e.chain.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	return types.Extraction(out.Values()), nil
}
