package slots

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tbxark/depositagent/types"
)

type rule func(s *Schema, current types.SlotSet) *types.ValidationError

// rules run in this order so violation lists are deterministic.
var rules = []rule{
	checkAmount,
	checkTenure,
	checkRenewalOption,
}

// Validate checks the set fields of current against the variant's rules. An empty
// result says nothing about completeness.
func Validate(variant types.Variant, current types.SlotSet) []types.ValidationError {
	s := For(variant)
	var errs []types.ValidationError
	for _, r := range rules {
		if v := r(s, current); v != nil {
			errs = append(errs, *v)
		}
	}
	return errs
}

func violation(field, format string, args ...any) *types.ValidationError {
	return &types.ValidationError{
		Field:       field,
		JSONPointer: types.Pointer(field),
		Message:     fmt.Sprintf(format, args...),
	}
}

func checkAmount(s *Schema, current types.SlotSet) *types.ValidationError {
	raw, ok := current.Get(types.FieldAmount)
	if !ok {
		return nil
	}
	label := strings.ToLower(s.Label(types.FieldAmount))
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return violation(types.FieldAmount, "The %s must be a non-negative number, got %q.", label, raw)
	}
	if amount < s.MinAmount {
		return violation(types.FieldAmount, "The minimum %s for a %s is Rs. %s. Please provide a higher amount.",
			label, s.Variant.DisplayName(), strconv.FormatFloat(s.MinAmount, 'f', -1, 64))
	}
	return nil
}

func checkTenure(s *Schema, current types.SlotSet) *types.ValidationError {
	raw, ok := current.Get(types.FieldTenureMonths)
	if !ok {
		return nil
	}
	months, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return violation(types.FieldTenureMonths, "The tenure must be a whole number of months, got %q.", raw)
	}
	if s.FixedTenure > 0 {
		if months != s.FixedTenure {
			return violation(types.FieldTenureMonths, "A %s has a fixed lock-in of %d months (%d years); %d months is not allowed.",
				s.Variant.DisplayName(), s.FixedTenure, s.FixedTenure/12, months)
		}
		return nil
	}
	if months < MinTenureMonths {
		return violation(types.FieldTenureMonths, "The minimum tenure is %d months. Please provide a longer tenure.", MinTenureMonths)
	}
	return nil
}

func checkRenewalOption(s *Schema, current types.SlotSet) *types.ValidationError {
	raw, ok := current.Get(types.FieldRenewalOption)
	if !ok {
		return nil
	}
	f, _ := s.Field(types.FieldRenewalOption)
	if s.Allows(types.FieldRenewalOption, raw) {
		return nil
	}
	return violation(types.FieldRenewalOption, "%q is not a valid %s for a %s. Choose one of: %s.",
		raw, strings.ToLower(f.Label), s.Variant.DisplayName(), strings.Join(f.Domain, ", "))
}
