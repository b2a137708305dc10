package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsOnString(t *testing.T) {
	v, err := Apply("chars", NewString("ab"), nil)
	require.NoError(t, err)
	require.Equal(t, Array, v.Kind)
	assert.Equal(t, []Value{NewString("a"), NewString("b")}, v.Items())
}

func TestCharsRejectsNonString(t *testing.T) {
	_, err := Apply("chars", NewInt(1), nil)
	assert.Error(t, err)
}

// chars followed by concat should reconstruct the original string:
// joining the rune array back together with the 0-arg form is the
// identity, exercised through the exact pipe a template would use
// ("..." | chars | concat).
func TestCharsThenConcatIsIdentity(t *testing.T) {
	original := "hello"
	v, err := Apply("chars", NewString(original), nil)
	require.NoError(t, err)

	joined, err := Apply("concat", v, nil)
	require.NoError(t, err)
	assert.Equal(t, original, joined.StringValue())
}

func TestConcatZeroArgRejectsNonScalarElement(t *testing.T) {
	arr := NewArray([]Value{NewString("a"), NewArray([]Value{NewInt(1)})})
	_, err := Apply("concat", arr, nil)
	assert.Error(t, err)
}

func TestConcatOneArgAppendsRenderedScalar(t *testing.T) {
	v, err := Apply("concat", NewString("count: "), []Value{NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, "count: 3", v.StringValue())

	v, err = Apply("concat", NewString("pi="), []Value{NewFloat(3.5)})
	require.NoError(t, err)
	assert.Equal(t, "pi=3.5", v.StringValue())
}

func TestConcatOneArgRejectsNonStringInput(t *testing.T) {
	_, err := Apply("concat", NewInt(1), []Value{NewInt(2)})
	assert.Error(t, err)
}

func TestConcatOneArgRejectsNonScalarArgument(t *testing.T) {
	_, err := Apply("concat", NewString("a"), []Value{NewArray([]Value{NewInt(1)})})
	assert.Error(t, err)
}

func TestConcatWrongArityIsError(t *testing.T) {
	_, err := Apply("concat", NewString("a"), []Value{NewInt(1), NewInt(2)})
	assert.Error(t, err)
}

func TestArrayThenTupleThenArrayIsIdentity(t *testing.T) {
	items := []Value{NewInt(1), NewInt(2), NewInt(3)}
	arr := NewArray(items)

	tup, err := Apply("tuple", Value{}, items)
	require.NoError(t, err)
	require.Equal(t, Tuple, tup.Kind)

	back, err := Apply("array", Value{}, tup.Items())
	require.NoError(t, err)
	assert.True(t, Equal(arr, back))
}

func TestEnumeratePreservesOrderAndLength(t *testing.T) {
	arr := NewArray([]Value{NewString("x"), NewString("y"), NewString("z")})
	v, err := Apply("enumerate", arr, nil)
	require.NoError(t, err)

	items := v.Items()
	require.Len(t, items, 3)
	for i, pair := range items {
		require.Equal(t, Tuple, pair.Kind)
		idx, val := pair.Items()[0], pair.Items()[1]
		assert.Equal(t, uint64(i), idx.UintValue())
		assert.True(t, Equal(val, arr.Items()[i]))
	}
}

func TestGetOnArrayInBoundsAndOutOfBounds(t *testing.T) {
	arr := NewArray([]Value{NewString("a"), NewString("b")})

	v, err := Apply("get", arr, []Value{NewInt(1)})
	require.NoError(t, err)
	inner, ok := v.Unwrap()
	require.True(t, ok)
	assert.Equal(t, "b", inner.StringValue())

	v, err = Apply("get", arr, []Value{NewInt(5)})
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

func TestGetOnObject(t *testing.T) {
	obj := NewObject(map[string]Value{"name": NewString("Ada")})

	v, err := Apply("get", obj, []Value{NewString("name")})
	require.NoError(t, err)
	inner, ok := v.Unwrap()
	require.True(t, ok)
	assert.Equal(t, "Ada", inner.StringValue())

	v, err = Apply("get", obj, []Value{NewString("missing")})
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

// get followed by unwrap on a present element is an identity over the
// element itself.
func TestGetThenUnwrapIsIdentity(t *testing.T) {
	arr := NewArray([]Value{NewInt(7)})
	got, err := Apply("get", arr, []Value{NewInt(0)})
	require.NoError(t, err)
	unwrapped, err := Apply("unwrap", got, nil)
	require.NoError(t, err)
	assert.True(t, Equal(unwrapped, NewInt(7)))
}

func TestTakeExactLengthIsPermitted(t *testing.T) {
	arr := NewArray([]Value{NewInt(1), NewInt(2)})
	v, err := Apply("take", arr, []Value{NewInt(2)})
	require.NoError(t, err)
	assert.True(t, Equal(v, arr))
}

func TestTakeBeyondLengthIsError(t *testing.T) {
	arr := NewArray([]Value{NewInt(1), NewInt(2)})
	_, err := Apply("take", arr, []Value{NewInt(3)})
	assert.Error(t, err)
}

func TestLowercaseUppercaseUnicode(t *testing.T) {
	v, err := Apply("lowercase", NewString("STRASSE"), nil)
	require.NoError(t, err)
	assert.Equal(t, "strasse", v.StringValue())

	v, err = Apply("uppercase", NewString("café"), nil)
	require.NoError(t, err)
	assert.Equal(t, "CAFÉ", v.StringValue())
}

func TestNumericConversions(t *testing.T) {
	v, err := Apply("int", NewString("42"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.IntValue())

	v, err = Apply("uint", NewInt(9), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v.UintValue())

	v, err = Apply("float", NewInt(3), nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.FloatValue())

	v, err = Apply("string", NewFloat(1.5), nil)
	require.NoError(t, err)
	assert.Equal(t, "1.5", v.StringValue())
}

func TestUintRejectsNegativeInt(t *testing.T) {
	_, err := Apply("uint", NewInt(-1), nil)
	assert.Error(t, err)
}

func TestObjectConstructionRequiresStringKeys(t *testing.T) {
	v, err := Apply("object", Value{}, []Value{NewString("a"), NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Attrs()["a"].IntValue())

	_, err = Apply("object", Value{}, []Value{NewInt(1), NewInt(1)})
	assert.Error(t, err)

	_, err = Apply("object", Value{}, []Value{NewString("a")})
	assert.Error(t, err)
}

func TestLenTransform(t *testing.T) {
	v, err := Apply("len", NewArray([]Value{NewInt(1), NewInt(2)}), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.UintValue())
}

func TestUnwrapOnNoneIsError(t *testing.T) {
	_, err := Apply("unwrap", None(), nil)
	assert.Error(t, err)
}

func TestReservedTransformsAreErrors(t *testing.T) {
	for _, name := range []string{"map", "filter", "reduce"} {
		_, err := Apply(name, NewInt(1), nil)
		assert.Error(t, err)
	}
}

func TestUnknownTransformIsError(t *testing.T) {
	_, err := Apply("does-not-exist", NewInt(1), nil)
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	assert.True(t, Exists("chars"))
	assert.False(t, Exists("does-not-exist"))
}
