package scheme

import (
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const shapeSchemaURL = "https://flowlayout.dev/schemas/process.json"

// shapeSchemaJSON describes the parts of a process document the layout
// engine reads. Everything else is left open.
const shapeSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowlayout.dev/schemas/process.json",
  "type": "object",
  "required": ["scheme"],
  "properties": {
    "scheme": {
      "type": "object",
      "required": ["nodes"],
      "properties": {
        "nodes": {
          "type": "array",
          "items": { "$ref": "#/$defs/node" }
        }
      }
    }
  },
  "$defs": {
    "id": {
      "anyOf": [
        { "type": "string", "minLength": 1 },
        { "type": "number" }
      ]
    },
    "node": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "condition": {
          "type": "object",
          "properties": {
            "logics": {
              "type": "array",
              "items": { "type": "object" }
            }
          }
        }
      }
    }
  }
}`

var shapeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(shapeSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal process schema: %w", err)
	}
	if err := c.AddResource(shapeSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add process schema resource: %w", err)
	}
	return c.Compile(shapeSchemaURL)
})

// validateShape checks a decoded JSON value against the process shape.
func validateShape(v any) error {
	sch, err := shapeSchema()
	if err != nil {
		return fmt.Errorf("compile process schema: %w", err)
	}
	return sch.Validate(v)
}
