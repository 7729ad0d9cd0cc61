package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	calls int
	tools []*schema.ToolInfo
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	o := model.GetCommonOptions(nil, opts...)
	m.tools = o.Tools
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{m.reply}), m.err
}

func (m *fakeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type greeting struct {
	Name *string `json:"name,omitempty" jsonschema:"description=Person name"`
}

func prompt(ctx context.Context, input string) ([]*schema.Message, error) {
	return []*schema.Message{schema.UserMessage(input)}, nil
}

func toolCall(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func TestChainInvoke(t *testing.T) {
	t.Parallel()
	m := &fakeChatModel{reply: toolCall("greet", `{"name":"Asha"}`)}
	chain, err := NewChain[string, greeting](m, prompt, "greet", "Extract the name")
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	out, err := chain.Invoke(context.Background(), "hi, I am Asha")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out.Name == nil || *out.Name != "Asha" {
		t.Fatalf("name = %v", out.Name)
	}
	if len(m.tools) != 1 || m.tools[0].Name != "greet" {
		t.Fatalf("tool not forwarded to model: %v", m.tools)
	}
}

func TestChainInvokeWithoutToolCall(t *testing.T) {
	t.Parallel()
	m := &fakeChatModel{reply: schema.AssistantMessage("I cannot help", nil)}
	chain, err := NewChain[string, greeting](m, prompt, "greet", "Extract the name")
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if _, err := chain.Invoke(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when the model does not call the tool")
	}
}

func TestChainInvokeModelError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	chain, err := NewChain[string, greeting](&fakeChatModel{err: boom}, prompt, "greet", "Extract the name")
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if _, err := chain.Invoke(context.Background(), "hello"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestChainInvokeBadArguments(t *testing.T) {
	t.Parallel()
	chain, err := NewChain[string, greeting](&fakeChatModel{reply: toolCall("greet", `{"name":`)}, prompt, "greet", "Extract the name")
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	if _, err := chain.Invoke(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}
