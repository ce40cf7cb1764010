package main

import (
	"testing"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

func TestToJSONConvertsBytesToHex(t *testing.T) {
	got := toJSON([]byte{0xDE, 0xAD})
	if got != "dead" {
		t.Fatalf("got %v, want dead", got)
	}
}

func TestToJSONConvertsRecord(t *testing.T) {
	rec := descriptor.Record{Name: "enquire_link", Fields: []any{uint64(16), []byte{0x01}}}
	got, ok := toJSON(rec).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", toJSON(rec))
	}
	if got["name"] != "enquire_link" {
		t.Fatalf("name = %v", got["name"])
	}
	fields, ok := got["fields"].([]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("fields = %v", got["fields"])
	}
}

func TestFromJSONIntegerRequiresNumber(t *testing.T) {
	d := descriptor.NewInteger(1, 0, 255)
	if _, err := fromJSON(d, "not a number"); err == nil {
		t.Fatal("expected error for non-numeric integer value")
	}
	v, err := fromJSON(d, float64(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(uint64) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestFromJSONCStringDecodesHex(t *testing.T) {
	d := descriptor.NewCString(false, 8, descriptor.FormatFree)
	v, err := fromJSON(d, "68656c6c6f00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := v.([]byte)
	if !ok || string(b) != "hello\x00" {
		t.Fatalf("got %v", v)
	}
}

func TestFromJSONNamedCompositeFromObject(t *testing.T) {
	d := descriptor.NewNamedComposite("pair",
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, 255),
	)
	raw := map[string]any{"fields": []any{float64(1), float64(2)}}
	v, err := fromJSON(d, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := v.(descriptor.Record)
	if !ok {
		t.Fatalf("expected Record, got %T", v)
	}
	if rec.Name != "pair" || len(rec.Fields) != 2 {
		t.Fatalf("got %+v", rec)
	}
}

func TestFromJSONRoundTripsThroughToJSON(t *testing.T) {
	d := descriptor.NewList(descriptor.NewInteger(1, 0, 255), 3)
	jsonValue := []any{float64(1), float64(2), float64(3)}
	v, err := fromJSON(d, jsonValue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back := toJSON(v)
	arr, ok := back.([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("got %v", back)
	}
}
