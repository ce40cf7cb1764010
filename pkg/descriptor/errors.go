package descriptor

import "fmt"

// TypeMismatch is the single error family produced by this package. Detail
// is either the raw offending data (the bytes, integer or string that
// failed to match) or a nested *TypeMismatch produced by a Composite,
// List or Union descriptor wrapping an inner failure.
type TypeMismatch struct {
	Descriptor Descriptor
	Detail     any
}

func (e *TypeMismatch) Error() string {
	if nested, ok := e.Detail.(*TypeMismatch); ok {
		return fmt.Sprintf("type mismatch at %s: %v", kindName(e.Descriptor), nested)
	}
	return fmt.Sprintf("type mismatch at %s: unexpected %#v", kindName(e.Descriptor), e.Detail)
}

// Unwrap exposes the nested TypeMismatch, if any, so errors.As/Is compose
// with the standard library.
func (e *TypeMismatch) Unwrap() error {
	if nested, ok := e.Detail.(*TypeMismatch); ok {
		return nested
	}
	return nil
}

func kindName(d Descriptor) string {
	switch d.(type) {
	case Constant:
		return "constant"
	case Integer:
		return "integer"
	case CString:
		return "c_octet_string"
	case OctetString:
		return "octet_string"
	case List:
		return "list"
	case Composite:
		return "composite"
	case Union:
		return "union"
	default:
		return "unknown"
	}
}

// Priority computes the error-ranking score for a TypeMismatch chain.
//
// depth starts at zero and is incremented once for every node visited
// while walking from err down through nested TypeMismatch causes,
// including the leaf node itself (the node whose Detail is raw data
// rather than another TypeMismatch). The leaf descriptor's kind then
// selects the weight added to 3*depth:
//
//	integer / c_octet_string / octet_string  ->  3*depth + 1
//	union / list / composite                 ->  3*depth + 2
//	constant or anything else                ->  3*depth + 0
//
// Deeper failures outrank shallower ones (more structure was validated
// before the mismatch); at equal depth, a composite/list/union leaf
// outranks a scalar leaf, and a constant leaf ranks lowest of all —
// rejection by command-id sentinel is the cheapest possible check.
func Priority(err *TypeMismatch) int {
	depth := 0
	cur := err
	for {
		depth++
		nested, ok := cur.Detail.(*TypeMismatch)
		if !ok {
			break
		}
		cur = nested
	}
	switch cur.Descriptor.(type) {
	case Integer, CString, OctetString:
		return 3*depth + 1
	case Union, List, Composite:
		return 3*depth + 2
	default:
		return 3 * depth
	}
}

// SelectBranchError picks the most informative error among a union's
// failed branches: the one with the highest Priority. Ties retain the
// earliest branch, matching the documented "≥ any competitor, ties keep
// the earlier one" rule. errs must be non-empty.
func SelectBranchError(errs []*TypeMismatch) *TypeMismatch {
	best := errs[0]
	bestPriority := Priority(best)
	for _, err := range errs[1:] {
		p := Priority(err)
		if p > bestPriority {
			best = err
			bestPriority = p
		}
	}
	return best
}

// Flatten walks a TypeMismatch chain from root to its deepest leaf and
// returns the path of descriptors visited, root first. It is meant for
// human-readable diagnostics: callers can render each step's kind name to
// pinpoint exactly which nested field rejected the input.
func Flatten(err *TypeMismatch) []Descriptor {
	var path []Descriptor
	cur := err
	for {
		path = append(path, cur.Descriptor)
		nested, ok := cur.Detail.(*TypeMismatch)
		if !ok {
			return path
		}
		cur = nested
	}
}
