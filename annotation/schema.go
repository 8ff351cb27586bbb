package annotation

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the metrics file.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Document{})
}
