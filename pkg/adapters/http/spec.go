package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
})

// GetSpec returns the parsed OpenAPI document served at /openapi.yaml.
func GetSpec() (*openapi3.T, error) {
	return loadSpec()
}

// RawSpec returns the OpenAPI document as YAML.
func RawSpec() []byte {
	return rawSpec
}

// validateBody checks a JSON-decoded body against a component schema and
// returns one message per violation.
func validateBody(component string, body any) []string {
	doc, err := GetSpec()
	if err != nil {
		return []string{err.Error()}
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref.Value == nil {
		return []string{fmt.Sprintf("unknown schema %q", component)}
	}
	err = ref.Value.VisitJSON(body, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if !errors.As(err, &multi) {
		return []string{describe(err)}
	}
	details := make([]string, 0, len(multi))
	for _, e := range multi {
		details = append(details, describe(e))
	}
	return details
}

func describe(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if path := schemaErr.JSONPointer(); len(path) > 0 {
			return strings.Join(path, ".") + ": " + schemaErr.Reason
		}
		return schemaErr.Reason
	}
	return err.Error()
}
