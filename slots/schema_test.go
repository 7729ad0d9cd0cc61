package slots

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tbxark/depositagent/types"
)

func TestForRequiredFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		variant types.Variant
		want    []string
	}{
		{types.VariantFDRegular, []string{"amount", "tenure_months", "fd_type", "interest_payout", "renewal_option"}},
		{types.VariantFDTaxSaver, []string{"amount", "tenure_months", "fd_type", "interest_payout", "renewal_option"}},
		{types.VariantRD, []string{"amount", "tenure_months", "renewal_option"}},
	}
	for _, tc := range cases {
		if got := For(tc.variant).Required(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s required = %v, want %v", tc.variant, got, tc.want)
		}
	}
}

func TestForUnknownVariantPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown variant")
		}
	}()
	For(types.Variant("SAVINGS"))
}

func TestAmountLabelIsVariantAware(t *testing.T) {
	t.Parallel()
	if got := For(types.VariantRD).Label(types.FieldAmount); got != "Monthly Installment" {
		t.Fatalf("rd amount label = %q", got)
	}
	if got := For(types.VariantFDRegular).Label(types.FieldAmount); got != "Principal Amount" {
		t.Fatalf("fd amount label = %q", got)
	}
}

func TestNormalizeEnumValues(t *testing.T) {
	t.Parallel()
	s := For(types.VariantFDRegular)
	if got := s.Normalize(types.FieldInterestPayout, " at maturity "); got != "AT_MATURITY" {
		t.Fatalf("normalize payout = %q", got)
	}
	if got := s.Normalize(types.FieldRenewalOption, "do-not-renew"); got != "DO_NOT_RENEW" {
		t.Fatalf("normalize renewal = %q", got)
	}
	if got := s.Normalize(types.FieldNomineeName, " Asha Rao "); got != "Asha Rao" {
		t.Fatalf("free text should only be trimmed, got %q", got)
	}
}

func TestRenewalDomainIsolation(t *testing.T) {
	t.Parallel()
	fd := For(types.VariantFDRegular)
	rd := For(types.VariantRD)
	for _, v := range rdRenewalOptions {
		if fd.Allows(types.FieldRenewalOption, v) {
			t.Errorf("fd schema accepts rd renewal option %s", v)
		}
	}
	for _, v := range fdRenewalOptions {
		if rd.Allows(types.FieldRenewalOption, v) {
			t.Errorf("rd schema accepts fd renewal option %s", v)
		}
	}
	if rd.Allows(types.FieldInterestPayout, "MONTHLY") {
		t.Error("rd schema should not accept interest payout")
	}
}

func TestMissingInSchemaOrder(t *testing.T) {
	t.Parallel()
	var current types.SlotSet
	current.Set(types.FieldAmount, "10000")
	missing := For(types.VariantFDRegular).Missing(current)
	var names []string
	for _, m := range missing {
		names = append(names, m.Field)
	}
	want := []string{"tenure_months", "fd_type", "interest_payout", "renewal_option"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("missing = %v, want %v", names, want)
	}
	if missing[0].JSONPointer != "/tenure_months" {
		t.Fatalf("unexpected pointer %q", missing[0].JSONPointer)
	}
}

func TestAllowedJSONPointers(t *testing.T) {
	t.Parallel()
	got := strings.Join(For(types.VariantRD).AllowedJSONPointers(), ",")
	if got != "/amount,/tenure_months,/renewal_option,/nominee_name,/nominee_relation" {
		t.Fatalf("rd pointers = %s", got)
	}
}
