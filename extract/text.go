package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/depositagent/types"
)

const textReplyInstruction = `Return ONLY a valid JSON object whose keys are the field names above. Use null for anything the user did not state.`

// TextExtractor asks for a bare JSON object in the reply, for models without
// tool calling.
type TextExtractor struct {
	chatModel model.BaseChatModel
	opts      []model.Option
}

func NewTextExtractor(chatModel model.BaseChatModel, opts ...model.Option) *TextExtractor {
	return &TextExtractor{chatModel: chatModel, opts: opts}
}

func (e *TextExtractor) Extract(ctx context.Context, req *Request) (types.Extraction, error) {
	messages, err := BuildMessages(ctx, req)
	if err != nil {
		return nil, err
	}
	messages[0] = schema.SystemMessage(messages[0].Content + "\n\n" + textReplyInstruction)

	resp, err := e.chatModel.Generate(ctx, messages, e.opts...)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	return ParseJSONReply(resp.Content)
}

// ParseJSONReply decodes a JSON object reply, optionally wrapped in a markdown
// code fence. Nulls are absent keys; numbers keep their literal form.
func ParseJSONReply(reply string) (types.Extraction, error) {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)
	if body == "" {
		return types.Extraction{}, nil
	}

	var raw map[string]any
	if err := sonic.UnmarshalString(body, &raw); err != nil {
		return nil, fmt.Errorf("parse extraction reply failed: %w", err)
	}
	out := make(types.Extraction, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out, nil
}
