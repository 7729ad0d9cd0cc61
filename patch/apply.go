package patch

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal current slots: %w", err)
	}

	ops = FixOperation(currentJSON, ops)
	if len(ops) == 0 {
		return current, nil
	}

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, fmt.Errorf("patched document no longer fits the slot set: %w", err)
	}

	return result, nil
}

// FixOperation turns replace on a missing member into add and drops removes of
// members that are already absent.
func FixOperation(currentJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case OperationReplace:
			if !memberExists(doc, op.Path) {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if memberExists(doc, op.Path) {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}

	return fixed
}

// memberExists resolves a single-token pointer; slot documents are flat.
func memberExists(doc map[string]any, path string) bool {
	token, ok := strings.CutPrefix(path, "/")
	if !ok || strings.Contains(token, "/") {
		return false
	}
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	_, ok = doc[token]
	return ok
}
