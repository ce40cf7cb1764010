package descriptor

import "testing"

func TestPriorityIntegerLeaf(t *testing.T) {
	leaf := &TypeMismatch{Descriptor: NewInteger(1, 0, 255), Detail: []byte{0x01}}
	wrapped := &TypeMismatch{Descriptor: NewComposite(), Detail: leaf}
	if got := Priority(wrapped); got != 7 {
		t.Fatalf("priority = %d, want 7", got)
	}
}

func TestPriorityConstantLeaf(t *testing.T) {
	leaf := &TypeMismatch{Descriptor: NewConstant([]byte{0x02}), Detail: []byte{0x01}}
	wrapped := &TypeMismatch{Descriptor: NewComposite(), Detail: leaf}
	if got := Priority(wrapped); got != 6 {
		t.Fatalf("priority = %d, want 6", got)
	}
}

func TestPriorityShallowerRanksLower(t *testing.T) {
	shallow := &TypeMismatch{Descriptor: NewInteger(1, 0, 255), Detail: []byte{0x01}}
	deep := &TypeMismatch{Descriptor: NewComposite(), Detail: &TypeMismatch{
		Descriptor: NewComposite(), Detail: &TypeMismatch{Descriptor: NewInteger(1, 0, 255), Detail: []byte{0x01}},
	}}
	if Priority(deep) <= Priority(shallow) {
		t.Fatalf("deep priority %d should exceed shallow priority %d", Priority(deep), Priority(shallow))
	}
}

func TestSelectBranchErrorTiesKeepEarlier(t *testing.T) {
	a := &TypeMismatch{Descriptor: NewConstant([]byte{0x01}), Detail: []byte{0x01}}
	b := &TypeMismatch{Descriptor: NewConstant([]byte{0x02}), Detail: []byte{0x01}}
	got := SelectBranchError([]*TypeMismatch{a, b})
	if got != a {
		t.Fatal("expected tie to retain the earlier branch error")
	}
}

func TestSelectBranchErrorPicksHigherPriority(t *testing.T) {
	low := &TypeMismatch{Descriptor: NewConstant([]byte{0x02}), Detail: []byte{0x01}}
	high := &TypeMismatch{Descriptor: NewComposite(), Detail: &TypeMismatch{
		Descriptor: NewInteger(1, 0, 255), Detail: []byte{0x01},
	}}
	got := SelectBranchError([]*TypeMismatch{low, high})
	if got != high {
		t.Fatal("expected the deeper, higher-priority error to be selected")
	}
}

func TestFlattenPathRootToLeaf(t *testing.T) {
	leaf := &TypeMismatch{Descriptor: NewInteger(1, 0, 255), Detail: []byte{0x01}}
	root := &TypeMismatch{Descriptor: NewComposite(), Detail: leaf}
	path := Flatten(root)
	if len(path) != 2 {
		t.Fatalf("path length = %d, want 2", len(path))
	}
	if _, ok := path[0].(Composite); !ok {
		t.Fatalf("path[0] = %T, want Composite", path[0])
	}
	if _, ok := path[1].(Integer); !ok {
		t.Fatalf("path[1] = %T, want Integer", path[1])
	}
}
