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

package conformance_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/conformance"
	"github.com/nscaledev/ad-conformance/pkg/conformance/mock"
	"github.com/nscaledev/ad-conformance/pkg/schema"
)

func getItemCase() conformance.Case {
	return conformance.Case{
		Name:      "id 123456",
		Operation: conformance.OperationGetItem,
		ID:        123456,
		Expect:    conformance.ExpectFoundOrMissing,
		Schema:    schema.AdRecord,
	}
}

// TestCheckPass tests a conforming response and its metrics.
func TestCheckPass(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	invoker := mock.NewMockInvoker(ctrl)

	resp := response(http.StatusNotFound, `{"error":"not found"}`)
	resp.Duration = 20 * time.Millisecond

	invoker.EXPECT().Send(gomock.Any(), http.MethodGet, "/api/1/item/123456", nil).Return(resp, nil)

	registry := prometheus.NewRegistry()
	metrics := conformance.NewMetrics(registry)

	checker := conformance.NewChecker(invoker, mustValidator(t), metrics)

	result := checker.Check(t.Context(), getItemCase())
	require.True(t, result.Passed())
	require.NoError(t, result.Err())
	require.Equal(t, http.StatusNotFound, result.Status)
	require.Equal(t, resp.TraceID, result.TraceID)
	require.Equal(t, resp.Duration, result.Duration)

	require.InDelta(t, 1.0, testutil.ToFloat64(metrics.Cases.WithLabelValues("get-item", "pass")), 0)
	require.Equal(t, 1, testutil.CollectAndCount(metrics.RequestDuration))
}

// TestCheckTransportFailure tests transport errors are classified and keep
// their cause.
func TestCheckTransportFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	invoker := mock.NewMockInvoker(ctrl)

	cause := fmt.Errorf("%w: connection refused", adapi.ErrTransport)

	invoker.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, cause)

	registry := prometheus.NewRegistry()
	metrics := conformance.NewMetrics(registry)

	checker := conformance.NewChecker(invoker, mustValidator(t), metrics)

	result := checker.Check(t.Context(), getItemCase())
	require.False(t, result.Passed())
	require.Equal(t, conformance.KindTransport, result.Failure.Kind)
	require.ErrorIs(t, result.Err(), adapi.ErrTransport)
	require.Zero(t, result.Status)

	require.InDelta(t, 1.0, testutil.ToFloat64(metrics.Cases.WithLabelValues("get-item", "transport")), 0)
}

// TestCheckInvalidCase tests cases that cannot be turned into a request never
// reach the service.
func TestCheckInvalidCase(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	invoker := mock.NewMockInvoker(ctrl)

	checker := conformance.NewChecker(invoker, mustValidator(t), nil)

	result := checker.Check(t.Context(), conformance.Case{Name: "bogus", Operation: "delete-item"})
	require.Equal(t, conformance.KindInvalidCase, result.Failure.Kind)
	require.ErrorIs(t, result.Err(), conformance.ErrUnknownOperation)
}

// TestCheckRoundTrip tests a created ad must be found in the seller's listing.
func TestCheckRoundTrip(t *testing.T) {
	t.Parallel()

	payload := conformance.UniqueAdPayload()
	listPath := fmt.Sprintf("/api/1/%d/item", payload.SellerID)

	listed := fmt.Sprintf(`[{"id":"1","sellerId":%d,"name":%q,"price":%d,"statistics":{"contacts":0,"likes":0,"viewCount":0},"createdAt":"now"}]`, payload.SellerID, payload.Name, payload.Price)

	tests := []struct {
		name    string
		listing string
		kind    conformance.FailureKind
	}{
		{"persisted", listed, ""},
		{"not persisted", `[]`, conformance.KindNotPersisted},
		{"listing breaks contract", `[{"id":1}]`, conformance.KindSchemaViolation},
	}

	for _, test := range tests {
		ctrl := gomock.NewController(t)
		invoker := mock.NewMockInvoker(ctrl)

		gomock.InOrder(
			invoker.EXPECT().Send(gomock.Any(), http.MethodPost, "/api/1/item", payload).Return(response(http.StatusOK, `{"status":"Saved ad - 1"}`), nil),
			invoker.EXPECT().Send(gomock.Any(), http.MethodGet, listPath, nil).Return(response(http.StatusOK, test.listing), nil),
		)

		checker := conformance.NewChecker(invoker, mustValidator(t), nil)

		result := checker.CheckRoundTrip(t.Context(), payload)
		require.Equal(t, conformance.OperationRoundTrip, result.Case.Operation, test.name)

		if test.kind == "" {
			require.True(t, result.Passed(), test.name)
			continue
		}

		require.Equal(t, test.kind, result.Failure.Kind, test.name)
	}
}

// TestCheckRoundTripCreateRejected tests the listing is skipped when the ad
// could not be created.
func TestCheckRoundTripCreateRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	invoker := mock.NewMockInvoker(ctrl)

	invoker.EXPECT().Send(gomock.Any(), http.MethodPost, "/api/1/item", gomock.Any()).Return(response(http.StatusBadRequest, envelope), nil)

	checker := conformance.NewChecker(invoker, mustValidator(t), nil)

	result := checker.CheckRoundTrip(t.Context(), conformance.UniqueAdPayload())
	require.ErrorIs(t, result.Err(), conformance.ErrUnexpectedStatus)
	require.Equal(t, http.StatusBadRequest, result.Status)
}

// TestRunAborts tests no further cases start once the context is cancelled.
func TestRunAborts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ctrl := gomock.NewController(t)
	invoker := mock.NewMockInvoker(ctrl)

	invoker.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string, string, any) (*adapi.Response, error) {
		cancel()

		return response(http.StatusNotFound, `{"error":"not found"}`), nil
	}).Times(1)

	checker := conformance.NewChecker(invoker, mustValidator(t), nil)

	report := checker.Run(ctx, conformance.GetItemCases())
	require.Len(t, report.Results, 1)
	require.True(t, report.Aborted)
	require.False(t, report.OK())
	require.Empty(t, report.Failed())
}

// TestReportWrite tests the human readable report.
func TestReportWrite(t *testing.T) {
	t.Parallel()

	report := &conformance.Report{}

	report.Add(&conformance.Result{
		Case:     getItemCase(),
		Status:   http.StatusOK,
		Duration: time.Second,
	})

	report.Add(&conformance.Result{
		Case:    getItemCase(),
		Status:  http.StatusInternalServerError,
		TraceID: "abc",
		Failure: &conformance.Failure{
			Kind:     conformance.KindUnexpectedStatus,
			Status:   http.StatusInternalServerError,
			Expected: []int{http.StatusOK, http.StatusNotFound},
		},
	})

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf))
	require.Equal(t, `PASS get-item/id 123456 status=200 duration=1s
FAIL get-item/id 123456: unexpected status code: expected 200/404, got 500 (trace ID: abc)
1 passed, 1 failed
`, buf.String())
	require.False(t, report.OK())
	require.Len(t, report.Failed(), 1)
}
