/*
Copyright 2024-2025 the Unikorn Authors.
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

package conformance

import (
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/google/uuid"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/schema"

	"k8s.io/utils/ptr"
)

const (
	// MinSellerID and MaxSellerID bound the seller identifiers the service
	// accepts for new ads.
	MinSellerID = 111111
	MaxSellerID = 999999
)

// Operation is one of the service's endpoints.
type Operation string

const (
	OperationCreateItem      Operation = "create-item"
	OperationGetItem         Operation = "get-item"
	OperationListSellerItems Operation = "list-seller-items"
	OperationGetStatistic    Operation = "get-statistic"

	// OperationRoundTrip creates an ad then finds it in the seller's listing.
	OperationRoundTrip Operation = "round-trip"
)

// Operations lists every operation in a stable order.
func Operations() []Operation {
	return []Operation{
		OperationCreateItem,
		OperationGetItem,
		OperationListSellerItems,
		OperationGetStatistic,
	}
}

// Expectation is what a case expects of the response.
type Expectation int

const (
	// ExpectAccepted requires 200 and an acknowledgement.
	ExpectAccepted Expectation = iota
	// ExpectRejected requires 400 and an error envelope.
	ExpectRejected
	// ExpectFoundOrMissing requires either 200 and the case's schema, or
	// 404 and a not found body.
	ExpectFoundOrMissing
	// ExpectListing requires 200 and a list of ads.
	ExpectListing
)

func (e Expectation) String() string {
	switch e {
	case ExpectAccepted:
		return "accepted"
	case ExpectRejected:
		return "rejected"
	case ExpectFoundOrMissing:
		return "found-or-missing"
	case ExpectListing:
		return "listing"
	}

	return fmt.Sprintf("expectation(%d)", int(e))
}

// Case is a single request and the outcome expected of it.
type Case struct {
	// Name describes the input.
	Name string
	// Operation is the endpoint to call.
	Operation Operation
	// Payload is the body of a create request.
	Payload any
	// ID is the path identifier of a read.  It is untyped so malformed
	// identifiers can be sent, nil is sent as "null".
	ID any
	// Expect is the expected outcome.
	Expect Expectation
	// Schema is the contract a 200 response must satisfy.
	Schema schema.Name
}

func (c Case) String() string {
	return string(c.Operation) + "/" + c.Name
}

// Request resolves the case into an HTTP method, path and body.
func (c Case) Request(endpoints *adapi.Endpoints) (string, string, any, error) {
	switch c.Operation {
	case OperationCreateItem:
		return http.MethodPost, endpoints.CreateItem(), c.Payload, nil
	case OperationGetItem:
		path, err := endpoints.GetItem(c.ID)
		return http.MethodGet, path, nil, err
	case OperationListSellerItems:
		path, err := endpoints.ListSellerItems(c.ID)
		return http.MethodGet, path, nil, err
	case OperationGetStatistic:
		path, err := endpoints.GetStatistic(c.ID)
		return http.MethodGet, path, nil, err
	}

	return "", "", nil, fmt.Errorf("%w: %q", ErrUnknownOperation, c.Operation)
}

// AdPayloadBuilder builds create ad payloads for testing.  Payloads are untyped
// so fields can be given the wrong JSON type or removed entirely.
type AdPayloadBuilder struct {
	payload map[string]any
}

// NewAdPayload creates a new builder populated with a valid ad.
func NewAdPayload() *AdPayloadBuilder {
	return &AdPayloadBuilder{
		payload: map[string]any{
			"sellerID": 123433,
			"name":     "Another Ad",
			"price":    50,
			"statistics": map[string]any{
				"contacts":  5,
				"likes":     50,
				"viewCount": 100,
			},
		},
	}
}

// WithSellerID sets the seller identifier.
func (b *AdPayloadBuilder) WithSellerID(sellerID any) *AdPayloadBuilder {
	b.payload["sellerID"] = sellerID
	return b
}

// WithName sets the ad name.
func (b *AdPayloadBuilder) WithName(name any) *AdPayloadBuilder {
	b.payload["name"] = name
	return b
}

// WithPrice sets the ad price.
func (b *AdPayloadBuilder) WithPrice(price any) *AdPayloadBuilder {
	b.payload["price"] = price
	return b
}

// WithStatistic sets a single statistics counter.
func (b *AdPayloadBuilder) WithStatistic(key string, value any) *AdPayloadBuilder {
	statistics := b.payload["statistics"].(map[string]any) //nolint:forcetypeassert // safe: we control payload structure
	statistics[key] = value

	return b
}

// Without removes a top level field.
func (b *AdPayloadBuilder) Without(key string) *AdPayloadBuilder {
	delete(b.payload, key)
	return b
}

// Build returns the completed payload.
func (b *AdPayloadBuilder) Build() map[string]any {
	return b.payload
}

// UniqueAdPayload returns a valid ad that can be recognised again when listing
// the seller's ads.
func UniqueAdPayload() adapi.AdCreateRequest {
	//nolint:gosec // identifiers, not secrets
	return adapi.AdCreateRequest{
		SellerID: MinSellerID + rand.IntN(MaxSellerID-MinSellerID+1),
		Name:     "conformance-" + uuid.NewString(),
		Price:    1 + rand.IntN(100000),
		Statistics: ptr.To(adapi.Statistics{
			Contacts:  rand.IntN(10),
			Likes:     rand.IntN(100),
			ViewCount: rand.IntN(1000),
		}),
	}
}

func validAd(sellerID int, name string) adapi.AdCreateRequest {
	return adapi.AdCreateRequest{
		SellerID: sellerID,
		Name:     name,
		Price:    50,
		Statistics: ptr.To(adapi.Statistics{
			Contacts:  5,
			Likes:     50,
			ViewCount: 100,
		}),
	}
}

// CreateItemCases covers valid ads and every way a field can be mistyped.
func CreateItemCases() []Case {
	accepted := func(name string, payload any) Case {
		return Case{Name: name, Operation: OperationCreateItem, Payload: payload, Expect: ExpectAccepted, Schema: schema.PostAck}
	}

	rejected := func(name string, payload any) Case {
		return Case{Name: name, Operation: OperationCreateItem, Payload: payload, Expect: ExpectRejected}
	}

	return []Case{
		accepted("valid ad", validAd(123433, "Another Ad")),
		accepted("valid ad with symbols in name", validAd(123650, "Aboba@134")),
		rejected("seller id as string", NewAdPayload().WithSellerID("123433").Build()),
		rejected("name as integer", NewAdPayload().WithSellerID(123678).WithName(123).Build()),
		rejected("price as string", NewAdPayload().WithSellerID(123345).WithPrice("50").Build()),
		rejected("contacts as string", NewAdPayload().WithSellerID(123098).WithStatistic("contacts", "5").Build()),
		rejected("likes as string", NewAdPayload().WithSellerID(123890).WithStatistic("likes", "50").Build()),
		rejected("view count as string", NewAdPayload().WithSellerID(123000).WithStatistic("viewCount", "100").Build()),
		rejected("empty payload", map[string]any{}),
	}
}

// namedID is a malformed identifier and a description of it.
type namedID struct {
	name string
	id   any
}

// readCases builds the cases shared by all read endpoints.
func readCases(operation Operation, success Expectation, successSchema schema.Name, valid []any, invalid []namedID) []Case {
	cases := make([]Case, 0, len(valid)+len(invalid))

	for _, id := range valid {
		cases = append(cases, Case{
			Name:      fmt.Sprintf("id %v", id),
			Operation: operation,
			ID:        id,
			Expect:    success,
			Schema:    successSchema,
		})
	}

	for _, in := range invalid {
		cases = append(cases, Case{
			Name:      in.name,
			Operation: operation,
			ID:        in.id,
			Expect:    ExpectRejected,
		})
	}

	return cases
}

// GetItemCases covers lookups of ads by identifier.
func GetItemCases() []Case {
	invalid := []namedID{
		{name: "null id", id: nil},
		{name: "non-numeric id", id: "abc"},
	}

	return readCases(OperationGetItem, ExpectFoundOrMissing, schema.AdRecord, []any{123456, 457685}, invalid)
}

// ListSellerItemsCases covers listing of a seller's ads.
func ListSellerItemsCases() []Case {
	invalid := []namedID{
		{name: "null seller id", id: nil},
		{name: "non-numeric seller id", id: "abc"},
		{name: "overflowing seller id", id: int64(1111111111111111111)},
	}

	return readCases(OperationListSellerItems, ExpectListing, schema.AdList, []any{265738, 438285}, invalid)
}

// GetStatisticCases covers lookups of ad statistics.
func GetStatisticCases() []Case {
	invalid := []namedID{
		{name: "null id", id: nil},
		{name: "non-numeric id", id: "abc"},
	}

	return readCases(OperationGetStatistic, ExpectFoundOrMissing, schema.StatsRecord, []any{123456, 234567}, invalid)
}

// CasesFor returns the cases of a single operation.
func CasesFor(operation Operation) []Case {
	switch operation {
	case OperationCreateItem:
		return CreateItemCases()
	case OperationGetItem:
		return GetItemCases()
	case OperationListSellerItems:
		return ListSellerItemsCases()
	case OperationGetStatistic:
		return GetStatisticCases()
	}

	return nil
}

// AllCases returns every case in a stable order.
func AllCases() []Case {
	var cases []Case

	for _, operation := range Operations() {
		cases = append(cases, CasesFor(operation)...)
	}

	return cases
}
