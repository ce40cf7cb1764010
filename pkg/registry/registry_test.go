package registry

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	d := descriptor.NewInteger(4, 0, 255)

	if err := s.Put(ctx, "seq", d); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "seq")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.(descriptor.Integer).Size != 4 {
		t.Fatalf("got %+v", got)
	}

	names, err := s.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "seq" {
		t.Fatalf("list = %v, err = %v", names, err)
	}

	if err := s.Delete(ctx, "seq"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "seq"); err == nil {
		t.Fatal("expected not-found after delete")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "descriptors")

	d := descriptor.NewNamedComposite("enquire_link",
		descriptor.NewInteger(4, 0, 1<<32-1),
		descriptor.NewConstant([]byte{0x00, 0x00, 0x00, 0x15}),
	)

	s1, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := s1.Put(ctx, "enquire_link", d); err != nil {
		t.Fatalf("put: %v", err)
	}

	s2, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	got, err := s2.Get(ctx, "enquire_link")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	comp := got.(descriptor.Composite)
	if !comp.Named || comp.Name != "enquire_link" || len(comp.Fields) != 2 {
		t.Fatalf("got %+v", comp)
	}
	constField := comp.Fields[1].(descriptor.Constant)
	if !bytes.Equal(constField.Literal, []byte{0x00, 0x00, 0x00, 0x15}) {
		t.Fatalf("constant field = % x", constField.Literal)
	}
}

func TestFileStoreDeleteRemovesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := s.Put(ctx, "x", descriptor.NewInteger(1, 0, 255)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	s2, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if names, _ := s2.List(ctx); len(names) != 0 {
		t.Fatalf("expected empty store after delete, got %v", names)
	}
}
