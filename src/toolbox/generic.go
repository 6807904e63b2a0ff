package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Handler is a type-safe tool implementation. Input schemas are reflected
// from TInput struct tags; outputs are serialized to JSON for the model.
type Handler[TInput, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

type genericTool[TInput, TOutput any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	handler     Handler[TInput, TOutput]
}

// NewTool builds a Tool from a typed handler, generating the parameter schema
// from the input struct.
func NewTool[TInput, TOutput any](name, description string, handler Handler[TInput, TOutput]) (Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("tool %s: handler cannot be empty", name)
	}

	var input TInput
	if reflect.TypeOf(input) != nil && reflect.TypeOf(input).Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool %s: input type must be a struct", name)
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("tool %s: reflecting input schema: %w", name, err)
	}

	return &genericTool[TInput, TOutput]{
		name:        name,
		description: description,
		schema:      &schema,
		handler:     handler,
	}, nil
}

// MustNewTool is NewTool for static registration paths where a schema error
// is a programming mistake.
func MustNewTool[TInput, TOutput any](name, description string, handler Handler[TInput, TOutput]) Tool {
	tool, err := NewTool(name, description, handler)
	if err != nil {
		panic(err)
	}
	return tool
}

func (t *genericTool[TInput, TOutput]) Name() string                   { return t.name }
func (t *genericTool[TInput, TOutput]) Description() string            { return t.description }
func (t *genericTool[TInput, TOutput]) Parameters() *jsonschema.Schema { return t.schema }

func (t *genericTool[TInput, TOutput]) Execute(ctx context.Context, input []byte) (string, error) {
	var typed TInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &typed); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	output, err := t.handler(ctx, typed)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("serializing result: %w", err)
	}
	return string(payload), nil
}
