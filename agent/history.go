package agent

import (
	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps all system messages and the last N non-system messages.
// When N <= 0, it keeps only system messages.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	budget := t.N
	// walk backwards so the newest turns win the budget
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m == nil {
			continue
		}
		if m.Role == schema.System {
			out = append(out, m)
			continue
		}
		if budget > 0 {
			out = append(out, m)
			budget--
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// toMessages converts stored turns into chat messages for the extractor.
func toMessages(turns []Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Speaker {
		case SpeakerUser:
			out = append(out, schema.UserMessage(turn.Text))
		case SpeakerAssistant:
			out = append(out, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return out
}
