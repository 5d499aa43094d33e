/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package schema checks decoded JSON bodies against the response contracts of
// the classifieds service.  Contracts live in an embedded OpenAPI document so
// they can be read, linted and diffed like any other API description.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Name identifies a response contract.
type Name string

const (
	PostAck       Name = "PostAck"
	AdRecord      Name = "AdRecord"
	AdList        Name = "AdList"
	StatsRecord   Name = "StatsRecord"
	ErrorEnvelope Name = "ErrorEnvelope"
	NotFound      Name = "NotFound"
)

//go:embed openapi.yaml
var document []byte

// Violation is a single way in which a value breaks a contract.
type Violation struct {
	// Path is a JSON pointer to the offending value, "/" being the root.
	Path string
	// Message describes the problem.
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Validator checks a decoded JSON value, as produced by encoding/json into an
// any, against a named contract.  An empty result means the value conforms.
type Validator interface {
	Validate(value any, name Name) []Violation
}

// OpenAPIValidator validates against the component schemas of an OpenAPI
// document.
type OpenAPIValidator struct {
	schemas openapi3.Schemas
}

// Ensure the interface is implemented.
var _ Validator = &OpenAPIValidator{}

// Load parses and validates the embedded service description.
func Load(ctx context.Context) (*OpenAPIValidator, error) {
	return LoadFromData(ctx, document)
}

// LoadFromData parses and validates an arbitrary service description.
func LoadFromData(ctx context.Context, data []byte) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating openapi document: %w", err)
	}

	validator := &OpenAPIValidator{
		schemas: doc.Components.Schemas,
	}

	return validator, nil
}

// Validate collects every violation rather than stopping at the first one.
// The result is sorted by path so that repeated runs report identically.
func (v *OpenAPIValidator) Validate(value any, name Name) []Violation {
	ref, ok := v.schemas[string(name)]
	if !ok || ref.Value == nil {
		return []Violation{
			{
				Path:    "/",
				Message: fmt.Sprintf("unknown schema %q", name),
			},
		}
	}

	err := ref.Value.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	violations := flatten(err, nil)

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Path != violations[j].Path {
			return violations[i].Path < violations[j].Path
		}

		return violations[i].Message < violations[j].Message
	})

	return violations
}

// flatten turns kin-openapi's error tree into a flat list.  Type switches are
// used rather than errors.As as MultiError matches As on any of its members.
func flatten(err error, out []Violation) []Violation {
	//nolint:errorlint
	switch t := err.(type) {
	case openapi3.MultiError:
		for _, e := range t {
			out = flatten(e, out)
		}

		return out
	case *openapi3.SchemaError:
		message := t.Reason
		if message == "" {
			message = t.Error()
		}

		return append(out, Violation{
			Path:    "/" + strings.Join(t.JSONPointer(), "/"),
			Message: message,
		})
	}

	return append(out, Violation{
		Path:    "/",
		Message: err.Error(),
	})
}

// Join renders violations as a single human readable string.
func Join(violations []Violation) string {
	parts := make([]string, len(violations))

	for i := range violations {
		parts[i] = violations[i].String()
	}

	return strings.Join(parts, "; ")
}
