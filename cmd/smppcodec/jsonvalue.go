package main

import (
	"encoding/hex"
	"fmt"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// toJSON converts a value produced by descriptor.Decode into a tree of
// plain map[string]any/[]any/string/uint64 values that encoding/json can
// render directly: []byte becomes a hex string, descriptor.Tuple becomes
// a JSON array, descriptor.Record becomes a JSON object tagged with its
// name.
func toJSON(v any) any {
	switch val := v.(type) {
	case []byte:
		return hex.EncodeToString(val)
	case uint64:
		return val
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSON(e)
		}
		return out
	case descriptor.Tuple:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSON(e)
		}
		return out
	case descriptor.Record:
		fields := make([]any, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = toJSON(f)
		}
		return map[string]any{"name": val.Name, "fields": fields}
	default:
		return val
	}
}

// fromJSON converts a decoded JSON value back into the representation
// descriptor.Encode expects for d: a hex string becomes []byte for
// CString/OctetString, a JSON number becomes uint64 for Integer, a JSON
// array becomes []any for List or descriptor.Tuple for an unnamed
// Composite, and a JSON object with "fields" becomes a descriptor.Record
// for a named Composite. Union values are tried against each branch in
// turn since the JSON alone does not name which branch it targets.
func fromJSON(d descriptor.Descriptor, v any) (any, error) {
	switch desc := d.(type) {
	case descriptor.Constant:
		return desc.Literal, nil

	case descriptor.Integer:
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected a number for integer field, got %T", v)
		}
		return uint64(n), nil

	case descriptor.CString, descriptor.OctetString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a hex string for string field, got %T", v)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode hex string: %w", err)
		}
		return b, nil

	case descriptor.List:
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected an array for list field, got %T", v)
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			converted, err := fromJSON(desc.Inner, e)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = converted
		}
		return out, nil

	case descriptor.Composite:
		arr, ok := v.([]any)
		if !ok {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected an array or object for composite field, got %T", v)
			}
			fieldsRaw, ok := obj["fields"].([]any)
			if !ok {
				return nil, fmt.Errorf("composite object missing \"fields\" array")
			}
			arr = fieldsRaw
		}
		if len(arr) != len(desc.Fields) {
			return nil, fmt.Errorf("composite expects %d fields, got %d", len(desc.Fields), len(arr))
		}
		values := make([]any, len(arr))
		for i, e := range arr {
			converted, err := fromJSON(desc.Fields[i], e)
			if err != nil {
				return nil, fmt.Errorf("composite field %d: %w", i, err)
			}
			values[i] = converted
		}
		if desc.Named {
			return descriptor.Record{Name: desc.Name, Fields: values}, nil
		}
		return descriptor.Tuple(values), nil

	case descriptor.Union:
		var lastErr error
		for _, branch := range desc.Branches {
			converted, err := fromJSON(branch, v)
			if err == nil {
				return converted, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("no union branch accepted the given value: %w", lastErr)

	default:
		return nil, fmt.Errorf("unsupported descriptor kind %T", d)
	}
}
