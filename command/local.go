package command

import (
	"context"
	"strings"

	"github.com/tbxark/depositagent/types"
)

const changePrefix = "change "

var nomineePair = []string{types.FieldNomineeName, types.FieldNomineeRelation}

// DefaultAliases maps the words accepted after "change " to the fields they clear.
func DefaultAliases() map[string][]string {
	aliases := map[string][]string{
		"amount":       {types.FieldAmount},
		"principal":    {types.FieldAmount},
		"installment":  {types.FieldAmount},
		"tenure":       {types.FieldTenureMonths},
		"type":         {types.FieldFDType},
		"fd type":      {types.FieldFDType},
		"interest":     {types.FieldInterestPayout},
		"payout":       {types.FieldInterestPayout},
		"renewal":      {types.FieldRenewalOption},
		"nominee":      nomineePair,
		"relationship": nomineePair,
	}
	for _, f := range types.CanonicalFields {
		if _, ok := aliases[f]; !ok {
			aliases[f] = []string{f}
		}
	}
	aliases[types.FieldNomineeName] = nomineePair
	aliases[types.FieldNomineeRelation] = nomineePair
	return aliases
}

// LocalCommandParser classifies input by exact phrase. Cancel wins over confirm,
// which wins over change.
type LocalCommandParser struct {
	CancelKeywords  []string
	ConfirmKeywords []string
	Aliases         map[string][]string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		CancelKeywords:  []string{"exit", "quit", "cancel", "stop"},
		ConfirmKeywords: []string{"confirm"},
		Aliases:         DefaultAliases(),
	}
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, keyword := range p.CancelKeywords {
		if normalized == keyword {
			return Command{Kind: Cancel}, nil
		}
	}
	for _, keyword := range p.ConfirmKeywords {
		if normalized == keyword {
			return Command{Kind: Confirm}, nil
		}
	}
	if alias, ok := strings.CutPrefix(normalized, changePrefix); ok {
		alias = strings.Join(strings.Fields(alias), " ")
		if fields, found := p.Aliases[alias]; found {
			return Command{
				Kind:   Change,
				Alias:  alias,
				Fields: append([]string(nil), fields...),
			}, nil
		}
	}
	return Command{Kind: FreeForm}, nil
}

// FailbackCommandParser returns the first successful parse.
type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, input)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return Command{Kind: FreeForm}, lastErr
}
