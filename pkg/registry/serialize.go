package registry

import (
	"encoding/json"
	"fmt"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// wireDescriptor is the JSON-serializable shape every descriptor variant
// maps to and from. Only the fields relevant to a given Kind are set.
type wireDescriptor struct {
	Kind     string            `json:"kind"`
	Literal  []byte            `json:"literal,omitempty"`
	Size     int               `json:"size,omitempty"`
	Min      uint64            `json:"min,omitempty"`
	Max      uint64            `json:"max,omitempty"`
	Fixed    bool              `json:"fixed,omitempty"`
	Format   descriptor.Format `json:"format,omitempty"`
	Inner    *wireDescriptor   `json:"inner,omitempty"`
	Named    bool              `json:"named,omitempty"`
	Name     string            `json:"name,omitempty"`
	Fields   []wireDescriptor  `json:"fields,omitempty"`
	Branches []wireDescriptor  `json:"branches,omitempty"`
}

func toWire(d descriptor.Descriptor) (wireDescriptor, error) {
	switch desc := d.(type) {
	case descriptor.Constant:
		return wireDescriptor{Kind: "constant", Literal: desc.Literal}, nil
	case descriptor.Integer:
		return wireDescriptor{Kind: "integer", Size: desc.Size, Min: desc.Min, Max: desc.Max}, nil
	case descriptor.CString:
		return wireDescriptor{Kind: "cstring", Fixed: desc.Fixed, Size: desc.Size, Format: desc.Format}, nil
	case descriptor.OctetString:
		return wireDescriptor{Kind: "octetstring", Fixed: desc.Fixed, Size: desc.Size, Format: desc.Format}, nil
	case descriptor.List:
		inner, err := toWire(desc.Inner)
		if err != nil {
			return wireDescriptor{}, err
		}
		return wireDescriptor{Kind: "list", Size: desc.Size, Inner: &inner}, nil
	case descriptor.Composite:
		fields := make([]wireDescriptor, len(desc.Fields))
		for i, f := range desc.Fields {
			wf, err := toWire(f)
			if err != nil {
				return wireDescriptor{}, err
			}
			fields[i] = wf
		}
		return wireDescriptor{Kind: "composite", Named: desc.Named, Name: desc.Name, Fields: fields}, nil
	case descriptor.Union:
		branches := make([]wireDescriptor, len(desc.Branches))
		for i, b := range desc.Branches {
			wb, err := toWire(b)
			if err != nil {
				return wireDescriptor{}, err
			}
			branches[i] = wb
		}
		return wireDescriptor{Kind: "union", Branches: branches}, nil
	default:
		return wireDescriptor{}, fmt.Errorf("registry: unknown descriptor kind %T", d)
	}
}

func fromWire(w wireDescriptor) (descriptor.Descriptor, error) {
	switch w.Kind {
	case "constant":
		return descriptor.NewConstant(w.Literal), nil
	case "integer":
		return descriptor.NewInteger(w.Size, w.Min, w.Max), nil
	case "cstring":
		return descriptor.NewCString(w.Fixed, w.Size, w.Format), nil
	case "octetstring":
		return descriptor.NewOctetString(w.Fixed, w.Size, w.Format), nil
	case "list":
		if w.Inner == nil {
			return nil, fmt.Errorf("registry: list descriptor missing inner")
		}
		inner, err := fromWire(*w.Inner)
		if err != nil {
			return nil, err
		}
		return descriptor.NewList(inner, w.Size), nil
	case "composite":
		fields := make([]descriptor.Descriptor, len(w.Fields))
		for i, wf := range w.Fields {
			f, err := fromWire(wf)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		if w.Named {
			return descriptor.NewNamedComposite(w.Name, fields...), nil
		}
		return descriptor.NewComposite(fields...), nil
	case "union":
		branches := make([]descriptor.Descriptor, len(w.Branches))
		for i, wb := range w.Branches {
			b, err := fromWire(wb)
			if err != nil {
				return nil, err
			}
			branches[i] = b
		}
		return descriptor.NewUnion(branches...), nil
	default:
		return nil, fmt.Errorf("registry: unknown descriptor kind %q", w.Kind)
	}
}

func marshalDescriptor(d descriptor.Descriptor) ([]byte, error) {
	w, err := toWire(d)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

func unmarshalDescriptor(data []byte) (descriptor.Descriptor, error) {
	var w wireDescriptor
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}
