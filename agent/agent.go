package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes the engine as an adk agent. The session is taken from the run
// context (see WithSessionID); the last input message is the user turn.
type Agent struct {
	name        string
	description string
	engine      *Engine
}

func NewAgent(name, description string, engine *Engine) *Agent {
	return &Agent{
		name:        name,
		description: description,
		engine:      engine,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: errors.New("no messages in input"),
			})
			return
		}
		sessionID, ok := SessionIDFromContext(ctx)
		if !ok {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("%w: no session id in context", ErrInvalidInput),
			})
			return
		}
		resp, err := a.engine.Turn(ctx, &TurnRequest{
			SessionID: sessionID,
			Message:   input.Messages[len(input.Messages)-1].Content,
		})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("turn failed: %w", err),
			})
			return
		}
		event := &adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: resp.NextPrompt,
					},
					Role: schema.Assistant,
				},
				CustomizedOutput: resp,
			},
		}
		if resp.Phase.Terminal() {
			event.Action = &adk.AgentAction{Exit: true}
		}
		gen.Send(event)
	}()
	return iter
}
