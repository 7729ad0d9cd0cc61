package command

import "context"

type Kind string

const (
	Cancel   Kind = "cancel"
	Confirm  Kind = "confirm"
	Change   Kind = "change"
	FreeForm Kind = "free_form"
)

// Command is a classified user utterance. Alias and Fields are only populated
// for Change.
type Command struct {
	Kind   Kind     `json:"kind"`
	Alias  string   `json:"alias,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

type Parser interface {
	ParseCommand(ctx context.Context, input string) (Command, error)
}
