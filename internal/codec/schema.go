package codec

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Validator checks decoded payloads against a JSON Schema inferred from a Go type.
type Validator struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// NewValidator infers a schema for T.
//
// Fields tagged omitempty (the optional fields of a message) are not
// required; every other exported field is.
func NewValidator[T any]() (*Validator, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	return &Validator{schema: schema, resolved: resolved}, nil
}

// Schema returns the inferred schema.
func (v *Validator) Schema() *jsonschema.Schema {
	return v.schema
}

// Validate decodes body generically with c and validates the result.
func (v *Validator) Validate(c Codec, body []byte) error {
	var instance any
	if err := c.Unmarshal(body, &instance); err != nil {
		return fmt.Errorf("decode for validation: %w", err)
	}

	if err := v.resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	return nil
}
