package descriptor

// ListFitMode selects how Fit treats a List descriptor when asked to
// tighten its size. The source this codec was distilled from is
// ambiguous on this point — see Options for the documented resolution.
type ListFitMode int

const (
	// ListFitLegacy returns the List descriptor unchanged when fitting
	// to a smaller size, matching the observed (likely buggy) behavior
	// of the system this codec reproduces. This is the default: callers
	// that depend on bit-for-bit compatibility with existing TLV tables
	// get the same descriptor they always got.
	ListFitLegacy ListFitMode = iota
	// ListFitStrict tightens the List's Size field to new_size when
	// new_size is smaller, consistent with how Fit treats every other
	// size-bearing descriptor.
	ListFitStrict
)

// Options configures Fit. The zero value selects ListFitLegacy, matching
// the default documented behavior.
type Options struct {
	ListFitMode ListFitMode
}

// Fit tightens d to newSize using the default Options (ListFitLegacy).
func Fit(d Descriptor, newSize int) Descriptor {
	return FitWithOptions(d, newSize, Options{})
}

// FitWithOptions tightens d to newSize, used by the TLV layer to
// instantiate a generic descriptor against a TLV's declared length:
//
//   - Integer: Size becomes newSize if newSize < Size, else unchanged.
//   - CString/OctetString: if newSize <= Size, Size becomes newSize and
//     Fixed is forced true.
//   - List: behavior is controlled by opts.ListFitMode (see ListFitMode).
//   - Constant, Composite, Union: returned unchanged; fitting a
//     structural descriptor to a byte budget has no well-defined meaning
//     at this level.
func FitWithOptions(d Descriptor, newSize int, opts Options) Descriptor {
	switch desc := d.(type) {
	case Integer:
		if newSize < desc.Size {
			desc.Size = newSize
		}
		return desc
	case CString:
		if newSize <= desc.Size {
			desc.Size = newSize
			desc.Fixed = true
		}
		return desc
	case OctetString:
		if newSize <= desc.Size {
			desc.Size = newSize
			desc.Fixed = true
		}
		return desc
	case List:
		if newSize < desc.Size {
			switch opts.ListFitMode {
			case ListFitStrict:
				desc.Size = newSize
				return desc
			default:
				return desc
			}
		}
		return desc
	default:
		return d
	}
}
