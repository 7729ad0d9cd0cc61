package slots

import (
	"strings"
	"testing"

	"github.com/tbxark/depositagent/types"
)

func slotSet(values map[string]string) types.SlotSet {
	var s types.SlotSet
	for k, v := range values {
		s.Set(k, v)
	}
	return s
}

func violatedFields(errs []types.ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		variant types.Variant
		amount  string
		ok      bool
	}{
		{"regular at minimum", types.VariantFDRegular, "1000", true},
		{"regular below minimum", types.VariantFDRegular, "999.99", false},
		{"tax saver below minimum", types.VariantFDTaxSaver, "4000", false},
		{"tax saver at minimum", types.VariantFDTaxSaver, "5000", true},
		{"rd below minimum", types.VariantRD, "1000", false},
		{"negative", types.VariantFDRegular, "-5000", false},
		{"not a number", types.VariantFDRegular, "ten thousand", false},
		{"infinite", types.VariantFDRegular, "Inf", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			errs := Validate(tc.variant, slotSet(map[string]string{types.FieldAmount: tc.amount}))
			if tc.ok && len(errs) != 0 {
				t.Fatalf("unexpected violations: %v", errs)
			}
			if !tc.ok && (len(errs) != 1 || errs[0].Field != types.FieldAmount) {
				t.Fatalf("expected one amount violation, got %v", errs)
			}
		})
	}
}

func TestValidateTaxSaverTenureLock(t *testing.T) {
	t.Parallel()
	for _, tenure := range []string{"3", "12", "59", "61", "120"} {
		errs := Validate(types.VariantFDTaxSaver, slotSet(map[string]string{types.FieldTenureMonths: tenure}))
		if len(errs) != 1 || errs[0].Field != types.FieldTenureMonths {
			t.Errorf("tenure %s: expected violation, got %v", tenure, errs)
		}
	}
	if errs := Validate(types.VariantFDTaxSaver, slotSet(map[string]string{types.FieldTenureMonths: "60"})); len(errs) != 0 {
		t.Errorf("tenure 60: unexpected violations %v", errs)
	}
}

func TestValidateMinimumTenure(t *testing.T) {
	t.Parallel()
	errs := Validate(types.VariantRD, slotSet(map[string]string{types.FieldTenureMonths: "2"}))
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "3 months") {
		t.Fatalf("expected minimum tenure violation, got %v", errs)
	}
	errs = Validate(types.VariantFDRegular, slotSet(map[string]string{types.FieldTenureMonths: "1.5"}))
	if len(errs) != 1 {
		t.Fatalf("fractional tenure should be rejected, got %v", errs)
	}
}

func TestValidateRuleOrder(t *testing.T) {
	t.Parallel()
	errs := Validate(types.VariantFDRegular, slotSet(map[string]string{
		types.FieldRenewalOption: "TRANSFER_TO_ACCOUNT",
		types.FieldTenureMonths:  "1",
		types.FieldAmount:        "10",
	}))
	got := strings.Join(violatedFields(errs), ",")
	if got != "amount,tenure_months,renewal_option" {
		t.Fatalf("violation order = %s", got)
	}
}

func TestValidateIgnoresInterestPayoutForRD(t *testing.T) {
	t.Parallel()
	errs := Validate(types.VariantRD, slotSet(map[string]string{
		types.FieldAmount:         "5000",
		types.FieldInterestPayout: "WHENEVER",
	}))
	if len(errs) != 0 {
		t.Fatalf("interest payout should be ignored for rd, got %v", errs)
	}
}

func TestValidateUnsetFieldsAreNotViolations(t *testing.T) {
	t.Parallel()
	if errs := Validate(types.VariantFDTaxSaver, types.SlotSet{}); len(errs) != 0 {
		t.Fatalf("empty slot set should validate, got %v", errs)
	}
}
