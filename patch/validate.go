package patch

import (
	"fmt"
	"slices"
)

// ValidatePatchOperations rejects any op outside allowedPaths, and add or replace
// ops whose value is not a non-empty string.
func ValidatePatchOperations(ops []Operation, allowedPaths []string) error {
	for i, op := range ops {
		if !slices.Contains(allowedPaths, op.Path) {
			return fmt.Errorf("operation %d: path %q is not in the allowed paths set", i, op.Path)
		}
		switch op.Op {
		case OperationAdd, OperationReplace:
			if s, ok := op.Value.(string); !ok || s == "" {
				return fmt.Errorf("operation %d: %s %s needs a non-empty string value", i, op.Op, op.Path)
			}
		case OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
	}
	return nil
}
