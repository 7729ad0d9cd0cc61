package patch

import (
	"reflect"
	"testing"

	"github.com/tbxark/depositagent/slots"
	"github.com/tbxark/depositagent/types"
)

func set(values map[string]string) types.SlotSet {
	var s types.SlotSet
	for k, v := range values {
		s.Set(k, v)
	}
	return s
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	schema := slots.For(types.VariantFDRegular)
	start := set(map[string]string{types.FieldAmount: "5000"})
	extraction := types.Extraction{
		types.FieldAmount:         "10000",
		types.FieldTenureMonths:   "12",
		types.FieldInterestPayout: "at maturity",
	}
	once, err := Merge(schema, start, extraction)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	twice, err := Merge(schema, once, extraction)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if !reflect.DeepEqual(once.Values(), twice.Values()) {
		t.Fatalf("merge not idempotent: %v vs %v", once.Values(), twice.Values())
	}
	want := map[string]string{
		types.FieldAmount:         "10000",
		types.FieldTenureMonths:   "12",
		types.FieldInterestPayout: "AT_MATURITY",
	}
	if !reflect.DeepEqual(once.Values(), want) {
		t.Fatalf("merged = %v, want %v", once.Values(), want)
	}
}

func TestMergeNeverClobbersWithEmpty(t *testing.T) {
	t.Parallel()
	schema := slots.For(types.VariantFDRegular)
	start := set(map[string]string{
		types.FieldAmount:      "10000",
		types.FieldNomineeName: "Asha",
	})
	merged, err := Merge(schema, start, types.Extraction{
		types.FieldAmount:      "",
		types.FieldNomineeName: "   ",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !reflect.DeepEqual(merged.Values(), start.Values()) {
		t.Fatalf("values clobbered: %v", merged.Values())
	}
	merged, err = Merge(schema, start, nil)
	if err != nil || !reflect.DeepEqual(merged.Values(), start.Values()) {
		t.Fatalf("nil extraction changed slots: %v, %v", merged.Values(), err)
	}
}

func TestMergeRenewalDomainIsolation(t *testing.T) {
	t.Parallel()
	fd, err := Merge(slots.For(types.VariantFDRegular), types.SlotSet{}, types.Extraction{
		types.FieldRenewalOption: "TRANSFER_TO_ACCOUNT",
	})
	if err != nil {
		t.Fatalf("merge fd: %v", err)
	}
	if fd.IsSet(types.FieldRenewalOption) {
		t.Fatal("rd renewal option accepted into fd session")
	}
	rd, err := Merge(slots.For(types.VariantRD), types.SlotSet{}, types.Extraction{
		types.FieldRenewalOption: "renew principal and interest",
	})
	if err != nil {
		t.Fatalf("merge rd: %v", err)
	}
	if rd.IsSet(types.FieldRenewalOption) {
		t.Fatal("fd renewal option accepted into rd session")
	}
}

func TestMergeDropsFieldsOutsideVariant(t *testing.T) {
	t.Parallel()
	merged, err := Merge(slots.For(types.VariantRD), types.SlotSet{}, types.Extraction{
		types.FieldInterestPayout: "MONTHLY",
		types.FieldFDType:         "REGULAR",
		"auto_debit":              "yes",
		types.FieldAmount:         "6000",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := map[string]string{types.FieldAmount: "6000"}
	if !reflect.DeepEqual(merged.Values(), want) {
		t.Fatalf("merged = %v, want %v", merged.Values(), want)
	}
}

func TestMergeKeepsInvalidButInDomainValues(t *testing.T) {
	t.Parallel()
	merged, err := Merge(slots.For(types.VariantFDTaxSaver), types.SlotSet{}, types.Extraction{
		types.FieldTenureMonths: "12",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if v, _ := merged.Get(types.FieldTenureMonths); v != "12" {
		t.Fatalf("tenure should be stored for the validator to reject, got %q", v)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	schema := slots.For(types.VariantFDRegular)
	start := set(map[string]string{
		types.FieldAmount:          "10000",
		types.FieldNomineeName:     "Asha",
		types.FieldNomineeRelation: "Sister",
	})
	cleared, err := Clear(schema, start, []string{types.FieldNomineeName, types.FieldNomineeRelation})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	want := map[string]string{types.FieldAmount: "10000"}
	if !reflect.DeepEqual(cleared.Values(), want) {
		t.Fatalf("cleared = %v, want %v", cleared.Values(), want)
	}
	again, err := Clear(schema, cleared, []string{types.FieldNomineeName})
	if err != nil || !reflect.DeepEqual(again.Values(), want) {
		t.Fatalf("clearing an unset field: %v, %v", again.Values(), err)
	}
	if _, err := Clear(slots.For(types.VariantRD), start, []string{types.FieldFDType}); err == nil {
		t.Fatal("expected error clearing a field outside the variant")
	}
}
