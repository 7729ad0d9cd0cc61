package patch

import (
	"github.com/tbxark/depositagent/types"
)

// GeneratePatches diffs target values onto current in canonical field order.
// Empty target values are skipped, so the result never clears a field.
func GeneratePatches(current types.SlotSet, target map[string]string) []Operation {
	ops := make([]Operation, 0, len(target))
	for _, field := range types.CanonicalFields {
		value, ok := target[field]
		if !ok || value == "" {
			continue
		}
		existing, set := current.Get(field)
		switch {
		case !set:
			ops = append(ops, Operation{Op: OperationAdd, Path: types.Pointer(field), Value: value})
		case existing != value:
			ops = append(ops, Operation{Op: OperationReplace, Path: types.Pointer(field), Value: value})
		}
	}
	return ops
}

// RemovePatches emits one remove per field; FixOperation later drops those
// already unset.
func RemovePatches(fields []string) []Operation {
	ops := make([]Operation, 0, len(fields))
	for _, field := range fields {
		ops = append(ops, Operation{Op: OperationRemove, Path: types.Pointer(field)})
	}
	return ops
}
