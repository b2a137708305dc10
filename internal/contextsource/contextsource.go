// Package contextsource translates external data formats into the
// runtime's Value universe, so a caller can feed a template JSON, YAML
// or a MongoDB-style document without hand-building a Context.
//
// This has no equivalent in the teacher, whose Context is already a
// bare map[string]interface{} handed to templates verbatim; it is
// grounded on pgavlin-yomlette's format-conversion shape (read one
// format, walk it into a different value model) and exercises the
// pack's gopkg.in/yaml.v2, gopkg.in/mgo.v2/bson and tidwall/gjson+sjson
// dependencies, none of which the teacher itself imports.
package contextsource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/mgo.v2/bson"
	"gopkg.in/yaml.v2"

	"github.com/stencil-lang/stencil/internal/value"
)

// FromJSON decodes a JSON object into a top-level binding set.
func FromJSON(data []byte) (map[string]value.Value, error) {
	var decoded map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("contextsource: decoding JSON: %w", err)
	}
	return convertObject(decoded)
}

// FromYAML decodes a YAML mapping into a top-level binding set.
func FromYAML(data []byte) (map[string]value.Value, error) {
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("contextsource: decoding YAML: %w", err)
	}
	return convertObject(decoded)
}

// FromBSON decodes a BSON document into a top-level binding set, for
// data sourced from a MongoDB-shaped store.
func FromBSON(data []byte) (map[string]value.Value, error) {
	var decoded bson.M
	if err := bson.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("contextsource: decoding BSON: %w", err)
	}
	return convertObject(decoded)
}

// ExtractJSONField pulls a single field out of raw JSON by gjson path
// without decoding the whole document, for callers that only need one
// value out of a larger payload.
func ExtractJSONField(data []byte, path string) (value.Value, bool) {
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return value.Value{}, false
	}
	return convertAny(result.Value()), true
}

// PatchJSONField sets path to raw within a JSON document, returning the
// patched document. Used to apply a small override on top of a larger
// stored payload before it is decoded with FromJSON.
func PatchJSONField(data []byte, path string, raw any) ([]byte, error) {
	out, err := sjson.SetBytes(data, path, raw)
	if err != nil {
		return nil, fmt.Errorf("contextsource: patching field %q: %w", path, err)
	}
	return out, nil
}

func convertObject(m map[string]any) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = convertAny(v)
	}
	return out, nil
}

// convertAny maps a generic JSON/YAML/BSON-decoded value onto the
// closed Value universe. The universe has no boolean kind, so JSON
// true/false becomes Uint(1)/Uint(0); a missing/null field becomes
// None so templates can still get/unwrap it uniformly. A JSON number
// becomes Int when it is an integer and Float otherwise. Strings, ints,
// float64s, arrays and string-keyed maps convert to their natural Value
// kind; any other decoded type becomes a String of its %v form.
func convertAny(x any) value.Value {
	switch v := x.(type) {
	case nil:
		return value.None()
	case bool:
		if v {
			return value.NewUint(1)
		}
		return value.NewUint(0)
	case string:
		return value.NewString(v)
	case int:
		return value.NewInt(int64(v))
	case int64:
		return value.NewInt(v)
	case float64:
		return value.NewFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return value.NewInt(n)
		}
		f, _ := v.Float64()
		return value.NewFloat(f)
	case []any:
		items := make([]value.Value, len(v))
		for i, item := range v {
			items[i] = convertAny(item)
		}
		return value.NewArray(items)
	case map[string]any:
		attrs := make(map[string]value.Value, len(v))
		for k, item := range v {
			attrs[k] = convertAny(item)
		}
		return value.NewObject(attrs)
	case bson.M:
		attrs := make(map[string]value.Value, len(v))
		for k, item := range v {
			attrs[k] = convertAny(item)
		}
		return value.NewObject(attrs)
	default:
		return value.NewString(fmt.Sprintf("%v", v))
	}
}
