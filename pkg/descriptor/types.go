// Package descriptor implements the recursive, descriptor-driven codec at
// the core of the SMPP base syntax: a small family of type descriptors
// (Constant, Integer, CString, OctetString, List, Composite, Union) that
// drive both Decode and Encode against a byte cursor.
//
// The package is pure: Decode, Encode and Fit allocate and compute, but
// never perform I/O, never log, and never read the clock. Descriptors are
// plain immutable values built once and shared by reference across calls.
package descriptor

// Descriptor is the sum type at the root of the codec. Every concrete type
// in this package implements it; dispatch in engine.go is an exhaustive
// type switch over these seven variants.
type Descriptor interface {
	descriptor()
}

// Format constrains the lexical content of a CString or OctetString beyond
// its length. FormatFree imposes no constraint.
type Format int

const (
	FormatFree Format = iota
	FormatHex
	FormatDec
)

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "hex"
	case FormatDec:
		return "dec"
	default:
		return "free"
	}
}

// Constant is a fixed literal octet sequence that must appear verbatim on
// the wire; it is typically used to anchor command-ID or tag framing that
// disambiguates a Union branch.
type Constant struct {
	Literal []byte
}

func (Constant) descriptor() {}

// NewConstant builds a Constant descriptor from the given literal bytes.
func NewConstant(literal []byte) Constant {
	lit := make([]byte, len(literal))
	copy(lit, literal)
	return Constant{Literal: lit}
}

// Integer is a big-endian unsigned integer of Size octets. Min/Max bound
// the accepted value at encode time; decode is bounded only by the width.
type Integer struct {
	Size     int
	Min, Max uint64
}

func (Integer) descriptor() {}

// NewInteger builds an Integer descriptor. size is in octets (1..8).
func NewInteger(size int, min, max uint64) Integer {
	return Integer{Size: size, Min: min, Max: max}
}

// CString is a NUL-terminated byte string. In Fixed mode the field
// occupies exactly 1 octet (lone NUL) or exactly Size octets with the NUL
// at position Size-1. In variable mode it is the shortest prefix ending in
// NUL, up to and including offset Size-1.
type CString struct {
	Fixed  bool
	Size   int
	Format Format
}

func (CString) descriptor() {}

// NewCString builds a CString descriptor.
func NewCString(fixed bool, size int, format Format) CString {
	return CString{Fixed: fixed, Size: size, Format: format}
}

// OctetString is a raw byte string with no terminator. In Fixed mode it is
// exactly 0 or exactly Size octets; in variable mode (TLV-only) it
// consumes min(Size, remaining) octets.
type OctetString struct {
	Fixed  bool
	Size   int
	Format Format
}

func (OctetString) descriptor() {}

// NewOctetString builds an OctetString descriptor.
func NewOctetString(fixed bool, size int, format Format) OctetString {
	return OctetString{Fixed: fixed, Size: size, Format: format}
}

// List is a length-prefixed homogeneous sequence of Inner elements. Size
// is the maximum element count; the wire length-prefix width is
// LengthPrefixWidth(Size) octets.
type List struct {
	Inner Descriptor
	Size  int
}

func (List) descriptor() {}

// NewList builds a List descriptor.
func NewList(inner Descriptor, size int) List {
	return List{Inner: inner, Size: size}
}

// LengthPrefixWidth returns the octet width of a List's count prefix for a
// declared maximum element count.
func LengthPrefixWidth(maxCount int) int {
	return maxCount/256 + 1
}

// Composite is a heterogeneous, ordered concatenation of Fields. When
// Named is false the decoded value is an anonymous Tuple; when true it is
// a Record tagged with Name (the tag is dropped again on encode).
type Composite struct {
	Named  bool
	Name   string
	Fields []Descriptor
}

func (Composite) descriptor() {}

// NewComposite builds an anonymous composite descriptor.
func NewComposite(fields ...Descriptor) Composite {
	return Composite{Fields: fields}
}

// NewNamedComposite builds a tagged composite descriptor.
func NewNamedComposite(name string, fields ...Descriptor) Composite {
	return Composite{Named: true, Name: name, Fields: fields}
}

// Union is a non-empty ordered sequence of candidate descriptors. Decode
// tries each branch in order against the original input; the first
// success wins.
type Union struct {
	Branches []Descriptor
}

func (Union) descriptor() {}

// NewUnion builds a union descriptor. Panics if branches is empty, since a
// union must have at least one candidate by construction.
func NewUnion(branches ...Descriptor) Union {
	if len(branches) == 0 {
		panic("descriptor: union must have at least one branch")
	}
	return Union{Branches: branches}
}

// Tuple is the decoded/encoded value of an anonymous Composite.
type Tuple []any

// Record is the decoded/encoded value of a named Composite.
type Record struct {
	Name   string
	Fields []any
}
