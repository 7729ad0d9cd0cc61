package types

import (
	"fmt"
	"strings"
)

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseConfirming Phase = "confirming"
	PhaseCompleted  Phase = "completed"
	PhaseCancelled  Phase = "cancelled"
)

// Terminal reports whether no further turns are accepted in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

// Variant is the deposit product a session collects details for.
type Variant string

const (
	VariantFDRegular  Variant = "FD_REGULAR"
	VariantFDTaxSaver Variant = "FD_TAX_SAVER"
	VariantRD         Variant = "RD"
)

var variants = []Variant{VariantFDRegular, VariantFDTaxSaver, VariantRD}

func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

// ParseVariant accepts the canonical names case-insensitively.
func ParseVariant(s string) (Variant, error) {
	normalized := Variant(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range variants {
		if v == normalized {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown account variant %q", s)
}

func (v Variant) Valid() bool {
	for _, known := range variants {
		if v == known {
			return true
		}
	}
	return false
}

func (v Variant) FixedDeposit() bool {
	return v == VariantFDRegular || v == VariantFDTaxSaver
}

func (v Variant) DisplayName() string {
	switch v {
	case VariantFDRegular:
		return "Fixed Deposit (Regular)"
	case VariantFDTaxSaver:
		return "Tax-Saver Fixed Deposit"
	case VariantRD:
		return "Recurring Deposit"
	default:
		return string(v)
	}
}

type FieldInfo struct {
	Field       string `json:"field"`
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type ValidationError struct {
	Field       string `json:"field"`
	JSONPointer string `json:"json_pointer"`
	Message     string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// Extraction is the partial field map returned by an extractor. Absent keys mean
// "no information"; values are not yet checked against any schema.
type Extraction map[string]string
