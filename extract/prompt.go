package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/depositagent/slots"
	"github.com/tbxark/depositagent/types"
)

const extractionRules = `You are a precise banking assistant that extracts deposit account opening details from user messages.

Extraction rules:
1. amount: numbers near Rs, ₹, rupees or clearly about money. Return only the numeric value, e.g. "invest 10000 rupees" -> "10000".
2. tenure_months: durations in years, months or days, always converted to whole months, e.g. "2 years" -> "24".
3. Enumerated fields: return one of the listed values exactly, e.g. "at maturity" -> "AT_MATURITY".
4. nominee_name and nominee_relation: properly capitalised, e.g. "nominee is my son john" -> "John", "Son".
5. Only return fields the user actually stated in the current message. Leave everything else out.
6. Do not guess or approximate values.`

// SchemaPrompt describes the variant's fields as a JSON schema plus a markdown
// table of labels and allowed values.
func SchemaPrompt(variant types.Variant) (string, error) {
	spec := slots.For(variant)

	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	js := reflector.Reflect(&types.SlotSet{})
	js.Title = variant.DisplayName()
	js.Description = fmt.Sprintf("Details needed to open a %s account.", variant.DisplayName())
	var outside []string
	for pair := js.Properties.Oldest(); pair != nil; pair = pair.Next() {
		f, ok := spec.Field(pair.Key)
		if !ok {
			outside = append(outside, pair.Key)
			continue
		}
		for _, v := range f.Domain {
			pair.Value.Enum = append(pair.Value.Enum, v)
		}
	}
	for _, key := range outside {
		js.Properties.Delete(key)
	}
	js.Required = nil

	schemaJSON, err := sonic.MarshalString(js)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}

	var table strings.Builder
	tw := tablewriter.NewTable(&table, tablewriter.WithRenderer(renderer.NewMarkdown()))
	tw.Header("Field", "Label", "Required", "Allowed values")
	for _, f := range spec.Fields {
		required := "no"
		if f.Required {
			required = "yes"
		}
		allowed := f.Description
		if len(f.Domain) > 0 {
			allowed = strings.Join(f.Domain, ", ")
		}
		_ = tw.Append(f.Name, f.Label, required, allowed)
	}
	if err := tw.Render(); err != nil {
		return "", fmt.Errorf("failed to render field table: %w", err)
	}

	return fmt.Sprintf("# Account fields:\n%s\n# Field schema JSON:\n```json\n%s\n```", table.String(), schemaJSON), nil
}

func formatMissing(fields []types.FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return "# Still missing:\n" + strings.Join(names, ", ")
}

// BuildMessages lays out the system rules, the trimmed history and the current
// message with the already collected values.
func BuildMessages(ctx context.Context, req *Request) ([]*schema.Message, error) {
	slotsJSON, err := sonic.MarshalString(req.Slots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current slots: %w", err)
	}
	system := []string{
		extractionRules,
		fmt.Sprintf("# Current Date:\n%s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Account type:\n%s", req.Variant.DisplayName()),
	}
	if req.SchemaPrompt != "" {
		system = append(system, req.SchemaPrompt)
	}
	system = append(system, fmt.Sprintf("# Collected so far:\n```json\n%s\n```", slotsJSON))
	if s := formatMissing(req.Missing); s != "" {
		system = append(system, s)
	}

	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(strings.Join(system, "\n\n")))
	for _, m := range req.History {
		if m != nil && m.Role != schema.System {
			messages = append(messages, m)
		}
	}
	messages = append(messages, schema.UserMessage(req.Message))
	return messages, nil
}
