package structured

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// Chain forces the model to answer through a single tool whose parameters are
// reflected from TOutput, then decodes the call arguments.
type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.ToolCallingChatModel
	ToolInfo      *schema.ToolInfo
	ModelOptions  []model.Option
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
	opts ...model.Option,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
		ToolInfo:      toolInfo,
		ModelOptions:  opts,
	}, nil
}

func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	opts := append([]model.Option{
		model.WithTools([]*schema.ToolInfo{s.ToolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.ToolInfo.Name),
	}, s.ModelOptions...)
	response, err := s.ChatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}

	args, ok := s.arguments(response)
	if !ok {
		return nil, fmt.Errorf("no %s tool call found in model response: %s", s.ToolInfo.Name, response.Content)
	}

	var result TOutput
	if err := sonic.UnmarshalString(args, &result); err != nil {
		return nil, fmt.Errorf("parse tool call arguments failed: %w", err)
	}

	return &result, nil
}

// arguments picks the call matching the tool name, falling back to the first
// unnamed call some providers return under forced choice.
func (s *Chain[TInput, TOutput]) arguments(msg *schema.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, call := range msg.ToolCalls {
		if call.Function.Name == s.ToolInfo.Name {
			return call.Function.Arguments, true
		}
	}
	for _, call := range msg.ToolCalls {
		if call.Function.Name == "" {
			return call.Function.Arguments, true
		}
	}
	return "", false
}

func (s *Chain[TInput, TOutput]) GetToolInfo() *schema.ToolInfo {
	return s.ToolInfo
}
