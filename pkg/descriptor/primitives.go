package descriptor

import "bytes"

// decodeConstant implements Constant decode: the input must begin with
// exactly d.Literal. A same-length mismatch reports the actual prefix as
// detail; a too-short input reports the whole input. Priority gives both
// cases the same constant-leaf weight, so the distinction exists purely
// for diagnostic fidelity, not for ranking.
func decodeConstant(d Constant, in []byte) (any, []byte, error) {
	n := len(d.Literal)
	if len(in) >= n && bytes.Equal(in[:n], d.Literal) {
		return append([]byte(nil), d.Literal...), in[n:], nil
	}
	if len(in) >= n {
		return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in[:n]...)}
	}
	return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
}

func encodeConstant(d Constant, v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok || !bytes.Equal(b, d.Literal) {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	return append([]byte(nil), d.Literal...), nil
}

// decodeInteger reads d.Size big-endian octets. No range check is applied
// on decode; the field width alone bounds the result to [0, 256^Size-1].
func decodeInteger(d Integer, in []byte) (any, []byte, error) {
	if len(in) < d.Size {
		return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
	}
	var v uint64
	for i := 0; i < d.Size; i++ {
		v = v<<8 | uint64(in[i])
	}
	return v, in[d.Size:], nil
}

func encodeInteger(d Integer, v any) ([]byte, error) {
	n, ok := toUint64(v)
	if !ok || n < d.Min || n > d.Max {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	out := make([]byte, d.Size)
	for i := d.Size - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	return out, nil
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

// decodeCString implements CString decode for both fixed and variable
// mode, per the two accepting shapes described for fixed fields and the
// NUL-scan rule for variable fields. Format filtering is applied after a
// successful raw decode.
func decodeCString(d CString, in []byte) (any, []byte, error) {
	var value []byte
	var rest []byte
	if d.Fixed {
		if len(in) < 1 {
			return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
		}
		if in[0] == 0 {
			value = append([]byte(nil), in[0])
			rest = in[1:]
		} else {
			if len(in) < d.Size {
				return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
			}
			body := in[:d.Size]
			if bytes.IndexByte(body[:d.Size-1], 0) != -1 || body[d.Size-1] != 0 {
				return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), body...)}
			}
			value = append([]byte(nil), body...)
			rest = in[d.Size:]
		}
	} else {
		limit := d.Size
		if limit > len(in) {
			limit = len(in)
		}
		idx := bytes.IndexByte(in[:limit], 0)
		if idx == -1 {
			return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in[:limit]...)}
		}
		value = append([]byte(nil), in[:idx+1]...)
		rest = in[idx+1:]
	}
	if err := checkFormat(d, d.Format, value[:len(value)-1]); err != nil {
		return nil, nil, err
	}
	return value, rest, nil
}

func encodeCString(d CString, v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	if d.Fixed {
		if !(len(b) == 1 && b[0] == 0) && !(len(b) == d.Size && b[d.Size-1] == 0) {
			return nil, &TypeMismatch{Descriptor: d, Detail: v}
		}
	} else {
		if len(b) < 1 || len(b) > d.Size || b[len(b)-1] != 0 {
			return nil, &TypeMismatch{Descriptor: d, Detail: v}
		}
	}
	if err := checkFormat(d, d.Format, b[:len(b)-1]); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// decodeOctetString implements OctetString decode. Variable mode is only
// meaningful inside an already-bounded TLV slice: it is permissive by
// design, consuming whatever is available up to Size.
func decodeOctetString(d OctetString, in []byte) (any, []byte, error) {
	var value []byte
	var rest []byte
	if d.Fixed {
		if d.Size == 0 {
			value = []byte{}
			rest = in
		} else {
			if len(in) < d.Size {
				return nil, nil, &TypeMismatch{Descriptor: d, Detail: append([]byte(nil), in...)}
			}
			value = append([]byte(nil), in[:d.Size]...)
			rest = in[d.Size:]
		}
	} else {
		n := d.Size
		if n > len(in) {
			n = len(in)
		}
		value = append([]byte(nil), in[:n]...)
		rest = in[n:]
	}
	if err := checkFormat(d, d.Format, value); err != nil {
		return nil, nil, err
	}
	return value, rest, nil
}

func encodeOctetString(d OctetString, v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	if d.Fixed {
		if len(b) != 0 && len(b) != d.Size {
			return nil, &TypeMismatch{Descriptor: d, Detail: v}
		}
	} else if len(b) > d.Size {
		return nil, &TypeMismatch{Descriptor: d, Detail: v}
	}
	if err := checkFormat(d, d.Format, b); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// checkFormat verifies every byte of body against the descriptor's
// lexical Format constraint. desc is the owning descriptor, reported on
// mismatch so the caller sees which field rejected the value.
func checkFormat(desc Descriptor, format Format, body []byte) error {
	switch format {
	case FormatHex:
		for _, c := range body {
			if !isHexDigit(c) {
				return &TypeMismatch{Descriptor: desc, Detail: append([]byte(nil), body...)}
			}
		}
	case FormatDec:
		for _, c := range body {
			if !isDecDigit(c) {
				return &TypeMismatch{Descriptor: desc, Detail: append([]byte(nil), body...)}
			}
		}
	}
	return nil
}

// isHexDigit is the strict ASCII hex-digit predicate: '0'-'9', 'A'-'F',
// 'a'-'f' only. A lenient variant seen elsewhere also accepts '/' (0x2F,
// immediately below '0' at 0x30); this implementation deliberately does
// not, per primitives_test.go's regression case.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

// isDecDigit is the strict ASCII decimal-digit predicate.
func isDecDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
