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

package conformance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/schema"
)

var (
	// ErrUnexpectedStatus is raised when the status code is not one the case allows.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrSchemaViolation is raised when a body does not match its contract.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMalformedBody is raised when a body is not JSON at all.
	ErrMalformedBody = errors.New("malformed body")

	// ErrNotPersisted is raised when a created ad cannot be found again.
	ErrNotPersisted = errors.New("ad not persisted")

	// ErrUnknownOperation is raised for a case with no matching endpoint.
	ErrUnknownOperation = errors.New("unknown operation")
)

// FailureKind classifies a failed case.
type FailureKind string

const (
	KindTransport        FailureKind = "transport"
	KindUnexpectedStatus FailureKind = "unexpected-status"
	KindSchemaViolation  FailureKind = "schema-violation"
	KindMalformedBody    FailureKind = "malformed-body"
	KindNotPersisted     FailureKind = "not-persisted"
	KindInvalidCase      FailureKind = "invalid-case"
)

// Failure describes why a case failed.  It unwraps to one of the package's
// sentinel errors, or to the transport error for transport failures.
type Failure struct {
	// Kind classifies the failure.
	Kind FailureKind
	// Status is the received status code, zero for transport failures.
	Status int
	// Expected are the status codes the case allows.
	Expected []int
	// Schema is the contract that was violated.
	Schema schema.Name
	// Violations are the individual contract breaches.
	Violations []schema.Violation
	// Err is the underlying error, if any.
	Err error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindUnexpectedStatus:
		return fmt.Sprintf("unexpected status code: expected %s, got %d", joinStatuses(f.Expected), f.Status)
	case KindSchemaViolation:
		return fmt.Sprintf("status %d body does not match %s: %s", f.Status, f.Schema, schema.Join(f.Violations))
	case KindMalformedBody:
		return fmt.Sprintf("status %d body is not valid JSON: %v", f.Status, f.Err)
	case KindNotPersisted, KindTransport:
		return f.Err.Error()
	case KindInvalidCase:
		return fmt.Sprintf("invalid case: %v", f.Err)
	}

	return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	switch f.Kind {
	case KindUnexpectedStatus:
		return ErrUnexpectedStatus
	case KindSchemaViolation:
		return ErrSchemaViolation
	case KindMalformedBody:
		return ErrMalformedBody
	case KindNotPersisted:
		return ErrNotPersisted
	}

	return f.Err
}

func joinStatuses(statuses []int) string {
	parts := make([]string, len(statuses))

	for i, status := range statuses {
		parts[i] = strconv.Itoa(status)
	}

	return strings.Join(parts, "/")
}

// expected returns the status codes an expectation allows.
func expected(expect Expectation) []int {
	switch expect {
	case ExpectAccepted, ExpectListing:
		return []int{http.StatusOK}
	case ExpectRejected:
		return []int{http.StatusBadRequest}
	case ExpectFoundOrMissing:
		return []int{http.StatusOK, http.StatusNotFound}
	}

	return nil
}

// contract selects the schema a response must satisfy, false when the status
// code is not allowed at all.
func contract(expect Expectation, successSchema schema.Name, status int) (schema.Name, bool) {
	switch {
	case expect == ExpectAccepted && status == http.StatusOK:
		return schema.PostAck, true
	case expect == ExpectListing && status == http.StatusOK:
		return schema.AdList, true
	case expect == ExpectRejected && status == http.StatusBadRequest:
		return schema.ErrorEnvelope, true
	case expect == ExpectFoundOrMissing && status == http.StatusOK:
		return successSchema, true
	case expect == ExpectFoundOrMissing && status == http.StatusNotFound:
		return schema.NotFound, true
	}

	return "", false
}

// Assert checks a response against an expectation.  successSchema is only
// consulted for ExpectFoundOrMissing, the other expectations imply their
// contract.  A non-nil error is always a *Failure.
func Assert(resp *adapi.Response, expect Expectation, successSchema schema.Name, validator schema.Validator) error {
	if failure := assert(resp, expect, successSchema, validator); failure != nil {
		return failure
	}

	return nil
}

func assert(resp *adapi.Response, expect Expectation, successSchema schema.Name, validator schema.Validator) *Failure {
	name, ok := contract(expect, successSchema, resp.StatusCode)
	if !ok {
		return &Failure{
			Kind:     KindUnexpectedStatus,
			Status:   resp.StatusCode,
			Expected: expected(expect),
		}
	}

	var body any

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return &Failure{
			Kind:   KindMalformedBody,
			Status: resp.StatusCode,
			Schema: name,
			Err:    err,
		}
	}

	if violations := validator.Validate(body, name); len(violations) > 0 {
		return &Failure{
			Kind:       KindSchemaViolation,
			Status:     resp.StatusCode,
			Schema:     name,
			Violations: violations,
		}
	}

	return nil
}
