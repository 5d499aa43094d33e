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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/schema"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Result is the outcome of a single case.
type Result struct {
	// Case is what was checked.
	Case Case
	// Status is the last status code received, zero if none was.
	Status int
	// TraceID correlates the last request with service side logs.
	TraceID string
	// Duration is the total time spent waiting on the service.
	Duration time.Duration
	// Failure is nil when the case passed.
	Failure *Failure
}

// Passed tells whether the case met its expectation.
func (r *Result) Passed() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}

	return r.Failure
}

// Checker runs cases against a service, one at a time.
type Checker struct {
	invoker   Invoker
	validator schema.Validator
	endpoints *adapi.Endpoints
	metrics   *Metrics
}

// NewChecker returns a new checker.  metrics may be nil.
func NewChecker(invoker Invoker, validator schema.Validator, metrics *Metrics) *Checker {
	return &Checker{
		invoker:   invoker,
		validator: validator,
		endpoints: adapi.NewEndpoints(),
		metrics:   metrics,
	}
}

// execute sends a case's request and asserts on the response, which is
// returned so callers can inspect a conforming body further.
func (c *Checker) execute(ctx context.Context, tc Case, result *Result) *adapi.Response {
	method, path, body, err := tc.Request(c.endpoints)
	if err != nil {
		result.Failure = &Failure{
			Kind: KindInvalidCase,
			Err:  err,
		}

		return nil
	}

	resp, err := c.invoker.Send(ctx, method, path, body)
	if err != nil {
		result.Failure = &Failure{
			Kind: KindTransport,
			Err:  err,
		}

		return nil
	}

	result.Status = resp.StatusCode
	result.TraceID = resp.TraceID
	result.Duration += resp.Duration
	result.Failure = assert(resp, tc.Expect, tc.Schema, c.validator)

	return resp
}

// finish logs and records a result.
func (c *Checker) finish(ctx context.Context, result *Result) *Result {
	log := log.FromContext(ctx)

	if result.Failure != nil {
		log.Error(result.Failure, "case failed", "case", result.Case.String(), "kind", result.Failure.Kind, "status", result.Status, "traceID", result.TraceID)
	} else {
		log.V(1).Info("case passed", "case", result.Case.String(), "status", result.Status, "duration", result.Duration)
	}

	c.metrics.observe(result)

	return result
}

// Check runs a single case.
func (c *Checker) Check(ctx context.Context, tc Case) *Result {
	result := &Result{
		Case: tc,
	}

	c.execute(ctx, tc, result)

	return c.finish(ctx, result)
}

// CheckRoundTrip creates an ad and expects to find it when listing the
// seller's ads.  Names should be unique, see UniqueAdPayload.
func (c *Checker) CheckRoundTrip(ctx context.Context, payload adapi.AdCreateRequest) *Result {
	result := &Result{
		Case: Case{
			Name:      fmt.Sprintf("seller %d ad %q", payload.SellerID, payload.Name),
			Operation: OperationRoundTrip,
			Payload:   payload,
			Expect:    ExpectAccepted,
		},
	}

	create := Case{
		Name:      "create",
		Operation: OperationCreateItem,
		Payload:   payload,
		Expect:    ExpectAccepted,
		Schema:    schema.PostAck,
	}

	c.execute(ctx, create, result)

	if result.Failure != nil {
		return c.finish(ctx, result)
	}

	list := Case{
		Name:      "list",
		Operation: OperationListSellerItems,
		ID:        payload.SellerID,
		Expect:    ExpectListing,
		Schema:    schema.AdList,
	}

	resp := c.execute(ctx, list, result)
	if result.Failure != nil {
		return c.finish(ctx, result)
	}

	var ads []adapi.AdRecord

	if err := json.Unmarshal(resp.Body, &ads); err != nil {
		result.Failure = &Failure{
			Kind:   KindMalformedBody,
			Status: resp.StatusCode,
			Schema: schema.AdList,
			Err:    err,
		}

		return c.finish(ctx, result)
	}

	for i := range ads {
		ad := &ads[i]

		if ad.SellerID == payload.SellerID && ad.Name == payload.Name && ad.Price == payload.Price {
			return c.finish(ctx, result)
		}
	}

	result.Failure = &Failure{
		Kind:   KindNotPersisted,
		Status: resp.StatusCode,
		Err:    fmt.Errorf("%w: no ad named %q in %d ads listed for seller %d", ErrNotPersisted, payload.Name, len(ads), payload.SellerID),
	}

	return c.finish(ctx, result)
}

// Report summarises a run.
type Report struct {
	// Results are in the order the cases ran.
	Results []*Result
	// Aborted is set when the run was cancelled before all cases ran.
	Aborted bool
}

// Add appends a result.
func (r *Report) Add(result *Result) {
	r.Results = append(r.Results, result)
}

// Failed returns the results of failed cases.
func (r *Report) Failed() []*Result {
	var failed []*Result

	for _, result := range r.Results {
		if !result.Passed() {
			failed = append(failed, result)
		}
	}

	return failed
}

// OK tells whether every scheduled case ran and passed.
func (r *Report) OK() bool {
	return !r.Aborted && len(r.Failed()) == 0
}

// Write prints one line per case followed by a summary.
func (r *Report) Write(w io.Writer) error {
	for _, result := range r.Results {
		var err error

		if result.Passed() {
			_, err = fmt.Fprintf(w, "PASS %s status=%d duration=%s\n", result.Case, result.Status, result.Duration)
		} else {
			_, err = fmt.Fprintf(w, "FAIL %s: %v (trace ID: %s)\n", result.Case, result.Failure, result.TraceID)
		}

		if err != nil {
			return err
		}
	}

	failed := len(r.Failed())

	if _, err := fmt.Fprintf(w, "%d passed, %d failed\n", len(r.Results)-failed, failed); err != nil {
		return err
	}

	if r.Aborted {
		if _, err := fmt.Fprintln(w, "run aborted before all cases completed"); err != nil {
			return err
		}
	}

	return nil
}

// Run checks cases in order.  Once the context is cancelled no further cases
// are started.
func (c *Checker) Run(ctx context.Context, cases []Case) *Report {
	report := &Report{}

	for _, tc := range cases {
		if ctx.Err() != nil {
			report.Aborted = true
			break
		}

		report.Add(c.Check(ctx, tc))
	}

	return report
}
