// Package api holds the HTTP contract of the hand-off service: the OpenAPI 3
// document, the request and response bodies, and the routing of operations to
// a ServerInterface implementation.
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var specJSON []byte

// SpecJSON returns the raw OpenAPI document.
func SpecJSON() []byte {
	return specJSON
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specJSON)
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating openapi document: %w", err)
	}
	return doc, nil
}
