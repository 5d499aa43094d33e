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

package adapi

import (
	"fmt"

	"github.com/oapi-codegen/runtime"
)

// NullParam is what an absent path identifier renders as.
const NullParam = "null"

// Endpoints contains all API endpoint patterns.
// Identifiers are deliberately untyped so callers can probe the service
// with malformed values.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// pathParam renders a single path segment the way a generated client would.
func pathParam(name string, value any) (string, error) {
	if value == nil {
		return NullParam, nil
	}

	s, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrParameter, name, err)
	}

	return s, nil
}

func (e *Endpoints) CreateItem() string {
	return "/api/1/item"
}

func (e *Endpoints) GetItem(id any) (string, error) {
	p, err := pathParam("id", id)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/api/1/item/%s", p), nil
}

func (e *Endpoints) ListSellerItems(sellerID any) (string, error) {
	p, err := pathParam("sellerID", sellerID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/api/1/%s/item", p), nil
}

func (e *Endpoints) GetStatistic(id any) (string, error) {
	p, err := pathParam("id", id)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/api/1/statistic/%s", p), nil
}
