package extract

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/depositagent/types"
)

type Request struct {
	Variant      types.Variant
	SchemaPrompt string
	History      []*schema.Message
	Message      string
	Slots        types.SlotSet
	Missing      []types.FieldInfo
}

// Extractor turns free text into a partial field map. Values are unchecked; the
// merge engine decides what is kept.
type Extractor interface {
	Extract(ctx context.Context, req *Request) (types.Extraction, error)
}

type ExtractorFunc func(ctx context.Context, req *Request) (types.Extraction, error)

func (f ExtractorFunc) Extract(ctx context.Context, req *Request) (types.Extraction, error) {
	return f(ctx, req)
}
