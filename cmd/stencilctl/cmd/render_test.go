package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFormatFromExtension(t *testing.T) {
	renderFormat = ""
	assert.Equal(t, "yaml", resolveFormat("ctx.yaml"))
	assert.Equal(t, "yaml", resolveFormat("ctx.YML"))
	assert.Equal(t, "json", resolveFormat("ctx.json"))
	assert.Equal(t, "json", resolveFormat("ctx"))
}

func TestResolveFormatFlagOverridesExtension(t *testing.T) {
	renderFormat = "json"
	defer func() { renderFormat = "" }()
	assert.Equal(t, "json", resolveFormat("ctx.yaml"))
}

func TestDecodeContextJSON(t *testing.T) {
	bindings, err := decodeContext([]byte(`{"name": "Ada"}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "Ada", bindings["name"].StringValue())
}

func TestDecodeContextUnsupportedFormat(t *testing.T) {
	_, err := decodeContext(nil, "xml")
	require.Error(t, err)
}

func TestApplySetOverridesField(t *testing.T) {
	patched, err := applySet([]byte(`{"name": "Ada"}`), "name=Grace")
	require.NoError(t, err)
	bindings, err := decodeContext(patched, "json")
	require.NoError(t, err)
	assert.Equal(t, "Grace", bindings["name"].StringValue())
}

func TestApplySetAddsNestedField(t *testing.T) {
	patched, err := applySet([]byte(`{}`), "user.name=Ada")
	require.NoError(t, err)
	bindings, err := decodeContext(patched, "json")
	require.NoError(t, err)
	assert.Equal(t, "Ada", bindings["user"].Attrs()["name"].StringValue())
}

func TestApplySetMalformedIsError(t *testing.T) {
	_, err := applySet([]byte(`{}`), "noequalssign")
	require.Error(t, err)
}
