package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled schemas by Schema.Name.
var compiledSchemas sync.Map

// checkStructured verifies a schema response: it must not be truncated,
// must be JSON and must satisfy the schema. Text responses pass through.
func checkStructured(provider string, req Request, text, stopReason string) error {
	if req.Schema == nil {
		return nil
	}
	if stopReason == "max_tokens" {
		return &ProviderError{
			Provider: provider,
			Kind:     KindTruncated,
			Detail:   "response truncated at max tokens",
			Content:  text,
		}
	}
	return validateJSON(provider, req.Schema, text)
}

func validateJSON(provider string, schema *Schema, text string) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return invalidResponse(provider, text, fmt.Errorf("invalid JSON: %w", err))
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return invalidResponse(provider, text, fmt.Errorf("compile schema %q: %w", schema.Name, err))
	}

	if err := compiled.Validate(doc); err != nil {
		return invalidResponse(provider, text, fmt.Errorf("schema validation: %w", err))
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so Go ints in the definition become the
	// json.Number values the compiler expects.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
