package descriptor

// Decode consumes a prefix of in according to d and returns the decoded
// value together with the unconsumed remainder. On failure it returns a
// nil value and the original input is conceptually untouched — the
// returned remainder on error carries no meaning and should be ignored.
func Decode(in []byte, d Descriptor) (any, []byte, error) {
	switch desc := d.(type) {
	case Constant:
		return decodeConstant(desc, in)
	case Integer:
		return decodeInteger(desc, in)
	case CString:
		return decodeCString(desc, in)
	case OctetString:
		return decodeOctetString(desc, in)
	case List:
		return decodeList(desc, in)
	case Composite:
		return decodeComposite(desc, in)
	case Union:
		return decodeUnion(desc, in)
	default:
		panic("descriptor: unknown descriptor variant in Decode")
	}
}

// Encode renders v according to d, returning the emitted bytes or a
// TypeMismatch if v does not match the descriptor's shape or constraints.
func Encode(v any, d Descriptor) ([]byte, error) {
	switch desc := d.(type) {
	case Constant:
		return encodeConstant(desc, v)
	case Integer:
		return encodeInteger(desc, v)
	case CString:
		return encodeCString(desc, v)
	case OctetString:
		return encodeOctetString(desc, v)
	case List:
		return encodeList(desc, v)
	case Composite:
		return encodeComposite(desc, v)
	case Union:
		return encodeUnion(desc, v)
	default:
		panic("descriptor: unknown descriptor variant in Encode")
	}
}

// decodeList reads a length-prefix of LengthPrefixWidth(d.Size) octets,
// then decodes d.Inner exactly that many times, threading the remainder
// forward. Any element failure is wrapped as a list-level TypeMismatch.
func decodeList(d List, in []byte) (any, []byte, error) {
	width := LengthPrefixWidth(d.Size)
	if len(in) < width {
		return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
	}
	var n int
	for i := 0; i < width; i++ {
		n = n<<8 | int(in[i])
	}
	if n > d.Size {
		return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
	}
	rest := in[width:]
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, tail, err := Decode(rest, d.Inner)
		if err != nil {
			return nil, nil, &TypeMismatch{Descriptor: d, Detail: err.(*TypeMismatch)}
		}
		values = append(values, v)
		rest = tail
	}
	return values, rest, nil
}

// encodeList requires len(elements) <= d.Size, emits the count prefix,
// then each element in order.
func encodeList(d List, v any) ([]byte, error) {
	elements, ok := v.([]any)
	if !ok || len(elements) > d.Size {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	width := LengthPrefixWidth(d.Size)
	out := make([]byte, width)
	n := len(elements)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	for _, el := range elements {
		b, err := Encode(el, d.Inner)
		if err != nil {
			return nil, &TypeMismatch{Descriptor: d, Detail: err.(*TypeMismatch)}
		}
		out = append(out, b...)
	}
	return out, nil
}

// decodeComposite decodes each field in order, threading the remainder,
// and assembles an anonymous Tuple or a tagged Record depending on
// d.Named. Any field failure is wrapped as a composite-level TypeMismatch.
func decodeComposite(d Composite, in []byte) (any, []byte, error) {
	values := make([]any, 0, len(d.Fields))
	rest := in
	for _, field := range d.Fields {
		v, tail, err := Decode(rest, field)
		if err != nil {
			return nil, nil, &TypeMismatch{Descriptor: d, Detail: err.(*TypeMismatch)}
		}
		values = append(values, v)
		rest = tail
	}
	if d.Named {
		return Record{Name: d.Name, Fields: values}, rest, nil
	}
	return Tuple(values), rest, nil
}

// encodeComposite requires v to be a Tuple (anonymous) or a Record with
// a matching Name (tagged), of exactly the right field arity.
func encodeComposite(d Composite, v any) ([]byte, error) {
	var values []any
	switch val := v.(type) {
	case Tuple:
		if d.Named {
			return nil, &TypeMismatch{Descriptor: d, Detail: v}
		}
		values = []any(val)
	case Record:
		if !d.Named || val.Name != d.Name {
			return nil, &TypeMismatch{Descriptor: d, Detail: v}
		}
		values = val.Fields
	default:
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	if len(values) != len(d.Fields) {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	var out []byte
	for i, field := range d.Fields {
		b, err := Encode(values[i], field)
		if err != nil {
			return nil, &TypeMismatch{Descriptor: d, Detail: err.(*TypeMismatch)}
		}
		out = append(out, b...)
	}
	return out, nil
}

// decodeUnion tries each branch in order against the original input and
// returns the first success verbatim. On total failure it reports the
// highest-priority branch error, wrapped once with the union descriptor.
func decodeUnion(d Union, in []byte) (any, []byte, error) {
	errs := make([]*TypeMismatch, 0, len(d.Branches))
	for _, branch := range d.Branches {
		v, rest, err := Decode(in, branch)
		if err == nil {
			return v, rest, nil
		}
		errs = append(errs, err.(*TypeMismatch))
	}
	return nil, nil, &TypeMismatch{Descriptor: d, Detail: SelectBranchError(errs)}
}

// encodeUnion tries each branch in order and returns the first success.
// On total failure it reports the highest-priority branch error, wrapped
// once with the union descriptor.
func encodeUnion(d Union, v any) ([]byte, error) {
	errs := make([]*TypeMismatch, 0, len(d.Branches))
	for _, branch := range d.Branches {
		b, err := Encode(v, branch)
		if err == nil {
			return b, nil
		}
		errs = append(errs, err.(*TypeMismatch))
	}
	return nil, &TypeMismatch{Descriptor: d, Detail: SelectBranchError(errs)}
}
