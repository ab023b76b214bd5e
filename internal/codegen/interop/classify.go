// Package interop classifies managed types and models their native (C++)
// counterparts, including the ABI-safe interop shape used in function
// pointer signatures and the conversions to and from it on both sides.
package interop

import (
	"sync"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// Kind is the native representation chosen for a managed type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindBlittableStruct
	KindNonBlittableStructWrapper
	KindClassWrapper
	KindEnum
	KindDelegate
	KindGenericParameter
)

var kindNames = map[Kind]string{
	KindPrimitive:                 "Primitive",
	KindBlittableStruct:           "BlittableStruct",
	KindNonBlittableStructWrapper: "NonBlittableStructWrapper",
	KindClassWrapper:              "ClassWrapper",
	KindEnum:                      "Enum",
	KindDelegate:                  "Delegate",
	KindGenericParameter:          "GenericParameter",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// MarshalText lets a Kind appear by name in scan output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsWrapper reports whether values of this kind cross the boundary as an
// object handle.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindNonBlittableStructWrapper, KindClassWrapper, KindDelegate:
		return true
	}
	return false
}

// Classifier maps managed types to kinds. Results are memoized, and a
// Classifier is safe for concurrent use.
type Classifier struct {
	nonBlittable map[string]bool

	mu   sync.Mutex
	memo map[string]Kind
}

// NewClassifier returns a classifier that forces the named types (full
// managed names) to classify as non-blittable.
func NewClassifier(nonBlittable []string) *Classifier {
	c := &Classifier{nonBlittable: map[string]bool{}, memo: map[string]Kind{}}
	for _, n := range nonBlittable {
		if n != "" {
			c.nonBlittable[n] = true
		}
	}
	return c
}

// Classify returns exactly one kind for t.
func (c *Classifier) Classify(t *symbols.Type) Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classify(t, map[string]bool{})
}

func (c *Classifier) classify(t *symbols.Type, visiting map[string]bool) Kind {
	key := t.Key()
	if k, ok := c.memo[key]; ok {
		return k
	}
	k := c.compute(t, visiting)
	c.memo[key] = k
	return k
}

func (c *Classifier) compute(t *symbols.Type, visiting map[string]bool) Kind {
	switch {
	case t.Shape == symbols.ShapeTypeParameter:
		return KindGenericParameter
	case t.Special.IsPrimitive():
		return KindPrimitive
	case t.Shape == symbols.ShapeEnum || t.DerivesFrom(symbols.SpecialEnum):
		return KindEnum
	case t.Shape == symbols.ShapeDelegate:
		return KindDelegate
	case t.IsReferenceType():
		return KindClassWrapper
	}

	if c.nonBlittable[t.FullName()] {
		return KindNonBlittableStructWrapper
	}
	// A struct that contains itself is rejected by the host compiler; treat
	// the cycle as non-blittable rather than recursing forever.
	key := t.Key()
	if visiting[key] {
		return KindNonBlittableStructWrapper
	}
	visiting[key] = true
	defer delete(visiting, key)

	for _, f := range t.Fields {
		if f.IsStatic {
			continue
		}
		if f.Type == nil || !c.fieldIsBlittable(f.Type, visiting) {
			return KindNonBlittableStructWrapper
		}
	}
	return KindBlittableStruct
}

func (c *Classifier) fieldIsBlittable(t *symbols.Type, visiting map[string]bool) bool {
	switch c.classify(t, visiting) {
	case KindPrimitive:
		return t.Special != symbols.SpecialBoolean && t.Special != symbols.SpecialChar && t.Special != symbols.SpecialVoid
	case KindEnum, KindBlittableStruct:
		return true
	}
	return false
}
