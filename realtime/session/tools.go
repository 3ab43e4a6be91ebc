package session

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Tool declares a function the model may call during the session.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// FunctionTool builds a function tool whose parameter schema is reflected
// from parameters, a struct (or pointer to one) whose json tags name the
// arguments.
func FunctionTool(name, description string, parameters any) (Tool, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var schema *jsonschema.Schema
	if reflect.TypeOf(parameters).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(parameters).Elem())
	} else {
		schema = reflector.Reflect(parameters)
	}

	raw, err := schema.MarshalJSON()
	if err != nil {
		return Tool{}, fmt.Errorf("failed to marshal parameter schema: %w", err)
	}
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return Tool{}, fmt.Errorf("failed to decode parameter schema: %w", err)
	}
	// The reflector emits draft metadata the API has no use for.
	delete(params, "$schema")

	return Tool{
		Type:        "function",
		Name:        name,
		Description: description,
		Parameters:  params,
	}, nil
}
