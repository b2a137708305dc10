package stencil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEndToEnd(t *testing.T) {
	src := `Hello, {{ write! name | unwrap }}! You have {{ write! items | unwrap | len }} item(s): ` +
		`{{ render! item : items }}{{ write! item }} {{!}}`
	out, err := Render(src, Context{
		"name":  NewString("Ada"),
		"items": NewArray([]Value{NewString("a"), NewString("b")}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada! You have 2 item(s): a b ", out)
}

func TestFromStringReusedAcrossContexts(t *testing.T) {
	tmpl, err := FromString("{{ write! n | unwrap }}")
	require.NoError(t, err)

	out, err := tmpl.Execute(Context{"n": NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	out, err = tmpl.Execute(Context{"n": NewInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestGlobalReferenceIsOptional(t *testing.T) {
	out, err := Render("{{ write! n }}", Context{"n": NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "Some(1)", out)
}

// Number literals lex as unsigned only: "Number is 1337" is a literal
// expression, not a reference, so no global context is involved.
func TestNumberLiteralIsUnsigned(t *testing.T) {
	out, err := Render(`Number is {{ write! 1337 }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Number is 1337", out)
}

// The value for x is Some(144): a bare reference resolved only via the
// global context renders through the Optional lens.
func TestGlobalNumberRendersAsSomeValue(t *testing.T) {
	out, err := Render(`The value for x is {{ write! x }}`, Context{"x": NewUint(144)})
	require.NoError(t, err)
	assert.Equal(t, "The value for x is Some(144)", out)
}

func TestOptionalGetUnwrapRoundTrip(t *testing.T) {
	src := `{{ let! found = xs | unwrap | get(0) }}{{ write! found | unwrap }}`
	out, err := Render(src, Context{"xs": NewArray([]Value{NewString("first")})})
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestOptionalNoneDisplaysAsNone(t *testing.T) {
	src := `{{ let! found = xs | unwrap | get(5) }}{{ write! found }}`
	out, err := Render(src, Context{"xs": NewArray([]Value{NewString("only")})})
	require.NoError(t, err)
	assert.Equal(t, "None", out)
}

func TestSyntaxErrorSurfacesFromFromString(t *testing.T) {
	_, err := FromString("{{ write! }}")
	require.Error(t, err)
}

func TestUnclosedRenderSurfacesFromFromString(t *testing.T) {
	_, err := FromString("{{ render! x : xs }}body")
	require.Error(t, err)
}
