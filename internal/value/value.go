// Package value defines the tagged-union runtime value described in
// spec.md section 3 and section 6, plus the fixed pipe-transform
// registry that operates on it.
//
// The teacher's Value (value.go) wraps a reflect.Value and dispatches
// on its Kind() at every call site; spec.md's value universe is closed
// and small (string/int/uint/float/array/tuple/object/optional), so
// this is reimplemented as a genuine closed tagged union instead, in
// the spirit of CWBudde-go-dws's object package. The dispatch-by-name
// registry (registry/Apply in transform.go) is grounded on the teacher's
// filters.go/filters_builtin.go FilterFunction map.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which field of a Value is meaningful.
type Kind int

const (
	String Kind = iota
	Int
	Uint
	Float
	Array
	Tuple
	Object
	Optional
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Object:
		return "object"
	case Optional:
		return "optional"
	default:
		return "unknown"
	}
}

// Value is a closed tagged union over every shape spec.md's runtime
// values can take. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind

	str   string
	i     int64
	u     uint64
	f     float64
	items []Value          // Array, Tuple
	attrs map[string]Value  // Object
	some  *Value            // Optional: nil means None
}

func NewString(s string) Value { return Value{Kind: String, str: s} }
func NewInt(i int64) Value     { return Value{Kind: Int, i: i} }
func NewUint(u uint64) Value   { return Value{Kind: Uint, u: u} }
func NewFloat(f float64) Value { return Value{Kind: Float, f: f} }

func NewArray(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: Array, items: cp}
}

func NewTuple(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: Tuple, items: cp}
}

func NewObject(attrs map[string]Value) Value {
	cp := make(map[string]Value, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return Value{Kind: Object, attrs: cp}
}

func Some(v Value) Value {
	cp := v
	return Value{Kind: Optional, some: &cp}
}

func None() Value {
	return Value{Kind: Optional, some: nil}
}

func (v Value) IsNone() bool {
	return v.Kind == Optional && v.some == nil
}

// Unwrap returns the wrapped value of Some(v), or ok=false for None.
// Panics if v is not Optional: callers are expected to check Kind, or
// go through the unwrap transform for a user-facing error instead.
func (v Value) Unwrap() (Value, bool) {
	if v.Kind != Optional {
		panic("value: Unwrap called on a non-Optional value")
	}
	if v.some == nil {
		return Value{}, false
	}
	return *v.some, true
}

// isScalar reports whether v is one of the four scalar kinds concat
// and similar transforms accept a bare rendered form for.
func (v Value) isScalar() bool {
	switch v.Kind {
	case String, Int, Uint, Float:
		return true
	default:
		return false
	}
}

func (v Value) StringValue() string    { return v.str }
func (v Value) IntValue() int64        { return v.i }
func (v Value) UintValue() uint64      { return v.u }
func (v Value) FloatValue() float64    { return v.f }
func (v Value) Items() []Value         { return v.items }
func (v Value) Attrs() map[string]Value { return v.attrs }

// Len returns the element/rune/key count for the container kinds, and
// the rune count for String. It is the same count the len transform
// reports, kept separate so the runtime can use it without going
// through the transform registry (e.g. for range-like iteration).
func (v Value) Len() (int, error) {
	switch v.Kind {
	case String:
		return len([]rune(v.str)), nil
	case Array, Tuple:
		return len(v.items), nil
	case Object:
		return len(v.attrs), nil
	default:
		return 0, fmt.Errorf("len has no meaning for a %s value", v.Kind)
	}
}

// Equal reports structural equality. Values of different Kind are never equal, including Int vs Uint vs
// Float: spec.md keeps the three numeric kinds distinct rather than
// coercing between them for comparison.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case String:
		return a.str == b.str
	case Int:
		return a.i == b.i
	case Uint:
		return a.u == b.u
	case Float:
		return a.f == b.f
	case Array, Tuple:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.attrs) != len(b.attrs) {
			return false
		}
		for k, av := range a.attrs {
			bv, ok := b.attrs[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case Optional:
		if a.IsNone() || b.IsNone() {
			return a.IsNone() && b.IsNone()
		}
		av, _ := a.Unwrap()
		bv, _ := b.Unwrap()
		return Equal(av, bv)
	default:
		return false
	}
}

// Display renders v the way write! emits it to the output buffer: a
// top-level string is emitted raw (write! is how templates produce
// literal text, so it would be surprising to see it quoted), while
// every other kind goes through the quoted/recursive debug form so
// that, for example, an array of strings prints with its elements
// unambiguously delimited.
func (v Value) Display() string {
	if v.Kind == String {
		return v.str
	}
	return v.debug()
}

// debug renders v with numeric kinds raw, strings quoted, and
// Array/Tuple/Object/Optional recursing into debug form for their
// elements. This is also how an Optional's wrapped value is shown,
// per spec.md's worked examples: Optional(Some v) displays v with
// numbers raw and strings quoted, recursing for compound values.
func (v Value) debug() string {
	switch v.Kind {
	case String:
		return strconv.Quote(v.str)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Uint:
		return strconv.FormatUint(v.u, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Array:
		return "[" + joinDebug(v.items) + "]"
	case Tuple:
		return "(" + joinDebug(v.items) + ")"
	case Object:
		keys := make([]string, 0, len(v.attrs))
		for k := range v.attrs {
			keys = append(keys, k)
		}
		sortStrings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strconv.Quote(k)+": "+v.attrs[k].debug())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Optional:
		if v.IsNone() {
			return "None"
		}
		inner, _ := v.Unwrap()
		return "Some(" + inner.debug() + ")"
	default:
		return "?"
	}
}

func joinDebug(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.debug()
	}
	return strings.Join(parts, ", ")
}

// sortStrings is a tiny insertion sort: Object keys are rendered in a
// deterministic order for reproducible output without pulling in
// sort for a handful of keys at a time.
func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
