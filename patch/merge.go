package patch

import (
	"fmt"
	"log/slog"

	"github.com/tbxark/depositagent/slots"
	"github.com/tbxark/depositagent/types"
)

// Merge overlays the extracted values onto current. Values are normalised, then
// anything empty, outside the variant or outside its value domain is dropped.
// Nothing is ever cleared, and merging the same extraction twice is a no-op.
func Merge(schema *slots.Schema, current types.SlotSet, extracted types.Extraction) (types.SlotSet, error) {
	accepted := make(map[string]string, len(extracted))
	for field, raw := range extracted {
		if !schema.Has(field) {
			slog.Debug("Dropped extracted value for field outside variant", "variant", schema.Variant, "field", field)
			continue
		}
		value := schema.Normalize(field, raw)
		if value == "" {
			continue
		}
		if !schema.Allows(field, value) {
			slog.Debug("Dropped extracted value outside field domain", "variant", schema.Variant, "field", field, "value", value)
			continue
		}
		accepted[field] = value
	}

	ops := GeneratePatches(current, accepted)
	if len(ops) == 0 {
		return current.Clone(), nil
	}
	if err := ValidatePatchOperations(ops, schema.AllowedJSONPointers()); err != nil {
		return current, fmt.Errorf("invalid merge patch: %w", err)
	}
	merged, err := ApplyRFC6902(current, ops)
	if err != nil {
		return current, fmt.Errorf("failed to merge extraction: %w", err)
	}
	return merged, nil
}

// Clear unsets fields. It is the only way a set value becomes unset.
func Clear(schema *slots.Schema, current types.SlotSet, fields []string) (types.SlotSet, error) {
	ops := RemovePatches(fields)
	if err := ValidatePatchOperations(ops, schema.AllowedJSONPointers()); err != nil {
		return current, fmt.Errorf("invalid clear patch: %w", err)
	}
	cleared, err := ApplyRFC6902(current, ops)
	if err != nil {
		return current, fmt.Errorf("failed to clear fields: %w", err)
	}
	return cleared, nil
}
