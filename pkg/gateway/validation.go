package gateway

import (
	"encoding/json"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/wilhg/dahua-mcp/pkg/errmodel"
)

// ValidateArgs checks tool arguments against the tool's JSON schema (bytes).
// An empty schema accepts anything. Failures come back as validation errors
// so the caller sees a failed tool result, not a protocol error.
func ValidateArgs(schema []byte, args map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	sch, err := compile(schema)
	if err != nil {
		return errmodel.New(errmodel.KindInternal, "bad_schema", err.Error(), nil)
	}
	// Round-trip through JSON so the instance is in generic form.
	b, err := json.Marshal(args)
	if err != nil {
		return errmodel.Validation("encode", err.Error(), nil)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errmodel.Validation("decode", err.Error(), nil)
	}
	if v == nil {
		v = map[string]any{}
	}
	if err := sch.Validate(v); err != nil {
		return errmodel.Validation("args", err.Error(), nil)
	}
	return nil
}

// CompileSchema compiles the schema bytes and reports only schema errors.
// Used at startup so a malformed descriptor fails fast.
func CompileSchema(schema []byte) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := compile(schema)
	return err
}

func compile(schema []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, err
	}
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("mem://schema.json")
}
