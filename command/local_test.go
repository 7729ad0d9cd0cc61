package command

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbxark/depositagent/types"
)

func TestLocalCommandParser(t *testing.T) {
	t.Parallel()
	p := NewLocalCommandParser()
	cases := []struct {
		input  string
		kind   Kind
		fields []string
	}{
		{"cancel", Cancel, nil},
		{"  EXIT ", Cancel, nil},
		{"Stop", Cancel, nil},
		{"confirm", Confirm, nil},
		{"Confirm ", Confirm, nil},
		{"confirm it", FreeForm, nil},
		{"change tenure", Change, []string{types.FieldTenureMonths}},
		{"CHANGE  Amount", Change, []string{types.FieldAmount}},
		{"change fd type", Change, []string{types.FieldFDType}},
		{"change payout", Change, []string{types.FieldInterestPayout}},
		{"change nominee", Change, []string{types.FieldNomineeName, types.FieldNomineeRelation}},
		{"change relationship", Change, []string{types.FieldNomineeName, types.FieldNomineeRelation}},
		{"change nominee_name", Change, []string{types.FieldNomineeName, types.FieldNomineeRelation}},
		{"change renewal_option", Change, []string{types.FieldRenewalOption}},
		{"change colour", FreeForm, nil},
		{"change", FreeForm, nil},
		{"I want 10000 for 2 years", FreeForm, nil},
	}
	for _, tc := range cases {
		cmd, err := p.ParseCommand(context.Background(), tc.input)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.input, err)
		}
		if cmd.Kind != tc.kind {
			t.Errorf("%q: kind = %s, want %s", tc.input, cmd.Kind, tc.kind)
		}
		if !reflect.DeepEqual(cmd.Fields, tc.fields) {
			t.Errorf("%q: fields = %v, want %v", tc.input, cmd.Fields, tc.fields)
		}
	}
}

func TestChangeFieldsAreCopied(t *testing.T) {
	t.Parallel()
	p := NewLocalCommandParser()
	cmd, _ := p.ParseCommand(context.Background(), "change nominee")
	cmd.Fields[0] = "mutated"
	again, _ := p.ParseCommand(context.Background(), "change nominee")
	if again.Fields[0] != types.FieldNomineeName {
		t.Fatalf("alias table mutated through returned command: %v", again.Fields)
	}
}

type failingParser struct{}

func (failingParser) ParseCommand(context.Context, string) (Command, error) {
	return Command{}, errors.New("unavailable")
}

func TestFailbackCommandParser(t *testing.T) {
	t.Parallel()
	p := NewFailbackCommandParser(failingParser{}, NewLocalCommandParser())
	cmd, err := p.ParseCommand(context.Background(), "quit")
	if err != nil || cmd.Kind != Cancel {
		t.Fatalf("got %v, %v", cmd, err)
	}

	p = NewFailbackCommandParser(failingParser{})
	cmd, err = p.ParseCommand(context.Background(), "quit")
	if err == nil || cmd.Kind != FreeForm {
		t.Fatalf("expected free-form with error, got %v, %v", cmd, err)
	}
}
