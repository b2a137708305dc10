package value

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Func is one pipe-transform implementation: given the value flowing
// through the pipe and its parenthesized arguments (already evaluated
// by the runtime), it produces the transformed value or an error.
type Func func(input Value, args []Value) (Value, error)

// registry is the fixed transform set: every name a template can call
// after a '|' is listed here, grounded in shape (name -> dispatch
// function over a closed Kind) on the teacher's builtinFilters map in
// filters.go/filters_builtin.go.
var registry = map[string]Func{
	"chars":     charsFn,
	"enumerate": enumerateFn,
	"get":       getFn,
	"take":      takeFn,
	"concat":    concatFn,
	"lowercase": lowercaseFn,
	"uppercase": uppercaseFn,
	"string":    stringFn,
	"int":       intFn,
	"uint":      uintFn,
	"float":     floatFn,
	"array":     arrayFn,
	"tuple":     tupleFn,
	"object":    objectFn,
	"len":       lenFn,
	"unwrap":    unwrapFn,
	"map":       reservedFn("map"),
	"filter":    reservedFn("filter"),
	"reduce":    reservedFn("reduce"),
}

// Exists reports whether label names a registered transform.
func Exists(label string) bool {
	_, ok := registry[label]
	return ok
}

// Apply looks up label in the registry and calls it with input and
// args. An unknown label is a runtime error, not a panic: transform
// names are not validated until they are actually invoked.
func Apply(label string, input Value, args []Value) (Value, error) {
	fn, ok := registry[label]
	if !ok {
		return Value{}, fmt.Errorf("transform %q does not exist", label)
	}
	return fn(input, args)
}

func wantArgs(label string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", label, n, len(args))
	}
	return nil
}

func charsFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("chars", args, 0); err != nil {
		return Value{}, err
	}
	if input.Kind != String {
		return Value{}, fmt.Errorf("chars expects a string, got %s", input.Kind)
	}
	runes := []rune(input.str)
	out := make([]Value, len(runes))
	for i, r := range runes {
		out[i] = NewString(string(r))
	}
	return NewArray(out), nil
}

func enumerateFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("enumerate", args, 0); err != nil {
		return Value{}, err
	}
	if input.Kind != Array && input.Kind != Tuple {
		return Value{}, fmt.Errorf("enumerate expects an array or tuple, got %s", input.Kind)
	}
	items := input.Items()
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = NewTuple([]Value{NewUint(uint64(i)), item})
	}
	return NewArray(out), nil
}

func asIndex(v Value) (int, error) {
	switch v.Kind {
	case Int:
		return int(v.i), nil
	case Uint:
		return int(v.u), nil
	default:
		return 0, fmt.Errorf("expected an integer index, got %s", v.Kind)
	}
}

func getFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("get", args, 1); err != nil {
		return Value{}, err
	}
	key := args[0]

	switch input.Kind {
	case Array, Tuple:
		idx, err := asIndex(key)
		if err != nil {
			return Value{}, err
		}
		items := input.Items()
		if idx < 0 || idx >= len(items) {
			return None(), nil
		}
		return Some(items[idx]), nil

	case Object:
		if key.Kind != String {
			return Value{}, fmt.Errorf("object keys are strings, got %s", key.Kind)
		}
		v, ok := input.Attrs()[key.StringValue()]
		if !ok {
			return None(), nil
		}
		return Some(v), nil

	default:
		return Value{}, fmt.Errorf("get expects an array, tuple or object, got %s", input.Kind)
	}
}

// takeFn returns the first n elements of input. n == length is
// allowed (the whole value, unchanged in length); n > length is an
// error rather than a silent truncation.
func takeFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("take", args, 1); err != nil {
		return Value{}, err
	}
	n, err := asIndex(args[0])
	if err != nil {
		return Value{}, err
	}
	if n < 0 {
		return Value{}, fmt.Errorf("take expects a non-negative count, got %d", n)
	}

	switch input.Kind {
	case String:
		runes := []rune(input.str)
		if n > len(runes) {
			return Value{}, fmt.Errorf("take(%d) exceeds string length %d", n, len(runes))
		}
		return NewString(string(runes[:n])), nil
	case Array:
		items := input.Items()
		if n > len(items) {
			return Value{}, fmt.Errorf("take(%d) exceeds array length %d", n, len(items))
		}
		return NewArray(items[:n]), nil
	case Tuple:
		items := input.Items()
		if n > len(items) {
			return Value{}, fmt.Errorf("take(%d) exceeds tuple length %d", n, len(items))
		}
		return NewTuple(items[:n]), nil
	default:
		return Value{}, fmt.Errorf("take expects a string, array or tuple, got %s", input.Kind)
	}
}

// concatFn has two arities. With zero arguments it joins an Array of
// scalars into their rendered concatenation. With one argument it
// appends that argument's rendered form, which must itself be a
// scalar, onto a String input.
func concatFn(input Value, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return concatArray(input)
	case 1:
		return concatScalar(input, args[0])
	default:
		return Value{}, fmt.Errorf("concat expects 0 or 1 argument(s), got %d", len(args))
	}
}

func concatArray(input Value) (Value, error) {
	if input.Kind != Array {
		return Value{}, fmt.Errorf("concat expects an array, got %s", input.Kind)
	}
	var out strings.Builder
	for _, item := range input.items {
		if !item.isScalar() {
			return Value{}, fmt.Errorf("concat found a non-scalar element of kind %s", item.Kind)
		}
		out.WriteString(item.Display())
	}
	return NewString(out.String()), nil
}

func concatScalar(input Value, scalar Value) (Value, error) {
	if input.Kind != String {
		return Value{}, fmt.Errorf("concat expects a string input, got %s", input.Kind)
	}
	if !scalar.isScalar() {
		return Value{}, fmt.Errorf("concat expects a scalar argument, got %s", scalar.Kind)
	}
	return NewString(input.str + scalar.Display()), nil
}

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

func lowercaseFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("lowercase", args, 0); err != nil {
		return Value{}, err
	}
	if input.Kind != String {
		return Value{}, fmt.Errorf("lowercase expects a string, got %s", input.Kind)
	}
	return NewString(lowerCaser.String(input.str)), nil
}

func uppercaseFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("uppercase", args, 0); err != nil {
		return Value{}, err
	}
	if input.Kind != String {
		return Value{}, fmt.Errorf("uppercase expects a string, got %s", input.Kind)
	}
	return NewString(upperCaser.String(input.str)), nil
}

func stringFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("string", args, 0); err != nil {
		return Value{}, err
	}
	switch input.Kind {
	case String:
		return input, nil
	case Int:
		return NewString(strconv.FormatInt(input.i, 10)), nil
	case Uint:
		return NewString(strconv.FormatUint(input.u, 10)), nil
	case Float:
		return NewString(strconv.FormatFloat(input.f, 'g', -1, 64)), nil
	default:
		return Value{}, fmt.Errorf("cannot convert a %s to string", input.Kind)
	}
}

func intFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("int", args, 0); err != nil {
		return Value{}, err
	}
	switch input.Kind {
	case Int:
		return input, nil
	case Uint:
		return NewInt(int64(input.u)), nil
	case Float:
		return NewInt(int64(input.f)), nil
	case String:
		n, err := strconv.ParseInt(input.str, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot convert %q to int: %w", input.str, err)
		}
		return NewInt(n), nil
	default:
		return Value{}, fmt.Errorf("cannot convert a %s to int", input.Kind)
	}
}

func uintFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("uint", args, 0); err != nil {
		return Value{}, err
	}
	switch input.Kind {
	case Uint:
		return input, nil
	case Int:
		if input.i < 0 {
			return Value{}, fmt.Errorf("cannot convert negative int %d to uint", input.i)
		}
		return NewUint(uint64(input.i)), nil
	case Float:
		if input.f < 0 {
			return Value{}, fmt.Errorf("cannot convert negative float %v to uint", input.f)
		}
		return NewUint(uint64(input.f)), nil
	case String:
		n, err := strconv.ParseUint(input.str, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot convert %q to uint: %w", input.str, err)
		}
		return NewUint(n), nil
	default:
		return Value{}, fmt.Errorf("cannot convert a %s to uint", input.Kind)
	}
}

func floatFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("float", args, 0); err != nil {
		return Value{}, err
	}
	switch input.Kind {
	case Float:
		return input, nil
	case Int:
		return NewFloat(float64(input.i)), nil
	case Uint:
		return NewFloat(float64(input.u)), nil
	case String:
		f, err := strconv.ParseFloat(input.str, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot convert %q to float: %w", input.str, err)
		}
		return NewFloat(f), nil
	default:
		return Value{}, fmt.Errorf("cannot convert a %s to float", input.Kind)
	}
}

// arrayFn builds an Array from its arguments when any are given,
// otherwise wraps input as a single-element Array.
func arrayFn(input Value, args []Value) (Value, error) {
	if len(args) > 0 {
		return NewArray(args), nil
	}
	return NewArray([]Value{input}), nil
}

// tupleFn mirrors arrayFn but produces a Tuple.
func tupleFn(input Value, args []Value) (Value, error) {
	if len(args) > 0 {
		return NewTuple(args), nil
	}
	return NewTuple([]Value{input}), nil
}

// objectFn builds an Object from alternating key/value arguments; keys
// must be strings. input is unused: object is always called with its
// full member list as arguments.
func objectFn(_ Value, args []Value) (Value, error) {
	if len(args)%2 != 0 {
		return Value{}, fmt.Errorf("object expects an even number of key/value arguments, got %d", len(args))
	}
	attrs := make(map[string]Value, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key := args[i]
		if key.Kind != String {
			return Value{}, fmt.Errorf("object keys must be strings, got %s", key.Kind)
		}
		attrs[key.StringValue()] = args[i+1]
	}
	return NewObject(attrs), nil
}

func lenFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("len", args, 0); err != nil {
		return Value{}, err
	}
	n, err := input.Len()
	if err != nil {
		return Value{}, err
	}
	return NewUint(uint64(n)), nil
}

func unwrapFn(input Value, args []Value) (Value, error) {
	if err := wantArgs("unwrap", args, 0); err != nil {
		return Value{}, err
	}
	if input.Kind != Optional {
		return Value{}, fmt.Errorf("unwrap expects an optional, got %s", input.Kind)
	}
	v, ok := input.Unwrap()
	if !ok {
		return Value{}, fmt.Errorf("unwrap called on None")
	}
	return v, nil
}

// reservedFn names a transform spec.md reserves for a future pipeline
// stage (map/filter/reduce require passing a callable, which this
// language does not yet have a syntax for); calling one is a runtime
// error rather than an unknown-transform error, so the distinction is
// visible to a template author.
func reservedFn(label string) Func {
	return func(_ Value, _ []Value) (Value, error) {
		return Value{}, fmt.Errorf("transform %q is reserved for future use", label)
	}
}
