package slots

import (
	"fmt"
	"strings"

	"github.com/tbxark/depositagent/types"
)

var (
	fdRenewalOptions = []string{"RENEW_PRINCIPAL_AND_INTEREST", "RENEW_PRINCIPAL_ONLY", "DO_NOT_RENEW"}
	rdRenewalOptions = []string{"TRANSFER_TO_ACCOUNT", "CONVERT_TO_FD_PRINCIPAL", "CONVERT_TO_FD_PRINCIPAL_AND_INTEREST"}
	interestPayouts  = []string{"MONTHLY", "QUARTERLY", "ANNUALLY", "AT_MATURITY"}
)

const (
	MinTenureMonths      = 3
	TaxSaverTenureMonths = 60
)

// FieldSpec describes one slot of a variant.
type FieldSpec struct {
	Name        string
	Label       string
	Description string
	Required    bool
	// Domain lists the accepted enumerated values; empty means free text.
	Domain []string
}

func (f FieldSpec) Pointer() string {
	return types.Pointer(f.Name)
}

// Schema is the static slot definition of one account variant.
type Schema struct {
	Variant     types.Variant
	Fields      []FieldSpec
	MinAmount   float64
	FixedTenure int
}

var schemas = map[types.Variant]*Schema{
	types.VariantFDRegular: {
		Variant:   types.VariantFDRegular,
		MinAmount: 1000,
		Fields: []FieldSpec{
			{Name: types.FieldAmount, Label: "Principal Amount", Required: true, Description: "minimum Rs. 1000"},
			{Name: types.FieldTenureMonths, Label: "Tenure", Required: true, Description: "minimum 3 months"},
			{Name: types.FieldFDType, Label: "FD Type", Required: true, Domain: []string{"REGULAR"}},
			{Name: types.FieldInterestPayout, Label: "Interest Payout Frequency", Required: true, Domain: interestPayouts},
			{Name: types.FieldRenewalOption, Label: "Renewal Option", Required: true, Domain: fdRenewalOptions},
			{Name: types.FieldNomineeName, Label: "Nominee Name"},
			{Name: types.FieldNomineeRelation, Label: "Nominee Relationship"},
		},
	},
	types.VariantFDTaxSaver: {
		Variant:     types.VariantFDTaxSaver,
		MinAmount:   5000,
		FixedTenure: TaxSaverTenureMonths,
		Fields: []FieldSpec{
			{Name: types.FieldAmount, Label: "Principal Amount", Required: true, Description: "minimum Rs. 5000"},
			{Name: types.FieldTenureMonths, Label: "Tenure", Required: true, Description: "fixed 5-year lock-in (60 months)"},
			{Name: types.FieldFDType, Label: "FD Type", Required: true, Domain: []string{"TAX_SAVER"}},
			{Name: types.FieldInterestPayout, Label: "Interest Payout Frequency", Required: true, Domain: interestPayouts},
			{Name: types.FieldRenewalOption, Label: "Renewal Option", Required: true, Domain: fdRenewalOptions},
			{Name: types.FieldNomineeName, Label: "Nominee Name"},
			{Name: types.FieldNomineeRelation, Label: "Nominee Relationship"},
		},
	},
	types.VariantRD: {
		Variant:   types.VariantRD,
		MinAmount: 5000,
		Fields: []FieldSpec{
			{Name: types.FieldAmount, Label: "Monthly Installment", Required: true, Description: "minimum Rs. 5000"},
			{Name: types.FieldTenureMonths, Label: "Tenure", Required: true, Description: "minimum 3 months"},
			{Name: types.FieldRenewalOption, Label: "Maturity Instruction", Required: true, Domain: rdRenewalOptions},
			{Name: types.FieldNomineeName, Label: "Nominee Name"},
			{Name: types.FieldNomineeRelation, Label: "Nominee Relationship"},
		},
	},
}

// For returns the schema of v. An unknown variant is a programming error.
func For(v types.Variant) *Schema {
	s, ok := schemas[v]
	if !ok {
		panic(fmt.Sprintf("slots: unknown account variant %q", v))
	}
	return s
}

func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

func (s *Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (s *Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Label returns the friendly name of a field, falling back to the raw name.
func (s *Schema) Label(name string) string {
	if f, ok := s.Field(name); ok {
		return f.Label
	}
	return name
}

// AllowedJSONPointers lists the patch paths a merge may touch for this variant.
func (s *Schema) AllowedJSONPointers() []string {
	paths := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		paths = append(paths, f.Pointer())
	}
	return paths
}

// Normalize canonicalises an extracted value for field. Enumerated values are
// upper-cased with spaces and hyphens folded into underscores.
func (s *Schema) Normalize(field, value string) string {
	value = strings.TrimSpace(value)
	f, ok := s.Field(field)
	if !ok || len(f.Domain) == 0 {
		return value
	}
	value = strings.ToUpper(value)
	value = strings.NewReplacer(" ", "_", "-", "_").Replace(value)
	return value
}

// Allows is the field-level value-domain check applied during merge. Fields outside
// the variant never pass.
func (s *Schema) Allows(field, value string) bool {
	f, ok := s.Field(field)
	if !ok {
		return false
	}
	if len(f.Domain) == 0 {
		return true
	}
	for _, d := range f.Domain {
		if d == value {
			return true
		}
	}
	return false
}

// Missing returns the unset required fields in schema order.
func (s *Schema) Missing(current types.SlotSet) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, f := range s.Fields {
		if !f.Required || current.IsSet(f.Name) {
			continue
		}
		missing = append(missing, types.FieldInfo{
			Field:       f.Name,
			JSONPointer: f.Pointer(),
			DisplayName: f.Label,
			Description: f.Description,
			Required:    true,
		})
	}
	return missing
}

func (s *Schema) Validate(current types.SlotSet) []types.ValidationError {
	return Validate(s.Variant, current)
}
