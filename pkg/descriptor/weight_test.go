package descriptor

import "testing"

func TestComplexityOfPrimitiveIsOne(t *testing.T) {
	if c := Complexity(NewInteger(1, 0, 255)); c != 1 {
		t.Fatalf("got %d, want 1", c)
	}
	if c := Complexity(NewCString(false, 8, FormatFree)); c != 1 {
		t.Fatalf("got %d, want 1", c)
	}
}

func TestComplexityOfListAddsInner(t *testing.T) {
	d := NewList(NewInteger(1, 0, 255), 10)
	if c := Complexity(d); c != 2 {
		t.Fatalf("got %d, want 2", c)
	}
}

func TestComplexityOfCompositeSumsFields(t *testing.T) {
	d := NewNamedComposite("pdu",
		NewInteger(4, 0, 1<<32-1),
		NewInteger(4, 0, 1<<32-1),
		NewList(NewInteger(1, 0, 255), 5),
	)
	// 1 (composite) + 1 + 1 + 2 (list) = 5
	if c := Complexity(d); c != 5 {
		t.Fatalf("got %d, want 5", c)
	}
}

func TestComplexityOfUnionTakesWorstBranch(t *testing.T) {
	d := NewUnion(
		NewInteger(1, 0, 255),
		NewNamedComposite("pair", NewInteger(1, 0, 255), NewInteger(1, 0, 255)),
	)
	// 1 (union) + max(1, 3) = 4
	if c := Complexity(d); c != 4 {
		t.Fatalf("got %d, want 4", c)
	}
}
