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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/conformance"
	"github.com/nscaledev/ad-conformance/pkg/stub"
)

func newStubChecker(t *testing.T) (*stub.Server, *conformance.Checker) {
	t.Helper()

	server := stub.New()

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	client := adapi.NewClient(&adapi.Options{
		BaseURL: ts.URL,
	})
	t.Cleanup(client.Close)

	return server, conformance.NewChecker(client, mustValidator(t), nil)
}

// TestAllCasesAgainstConformingService tests every case passes against a
// service that behaves as documented.
func TestAllCasesAgainstConformingService(t *testing.T) {
	t.Parallel()

	server, checker := newStubChecker(t)

	server.Seed(adapi.AdRecord{
		ID:        "457685",
		SellerID:  265738,
		Name:      "Seeded",
		Price:     10,
		CreatedAt: "2026-01-01 00:00:00 +0000 +0000",
	})

	report := checker.Run(t.Context(), conformance.AllCases())

	for _, result := range report.Failed() {
		t.Errorf("%s: %v", result.Case, result.Failure)
	}

	require.True(t, report.OK())
	require.Len(t, report.Results, len(conformance.AllCases()))

	result := checker.CheckRoundTrip(t.Context(), conformance.UniqueAdPayload())
	require.NoError(t, result.Err())
}

// TestCasesAgainstMisbehavingService tests failures are attributed to the
// misbehaving endpoint only.
func TestCasesAgainstMisbehavingService(t *testing.T) {
	t.Parallel()

	server, checker := newStubChecker(t)

	server.Override("/api/1/statistic/123456", stub.Override{Status: http.StatusInternalServerError, Body: `{"message":"boom"}`})
	server.Override("/api/1/item/457685", stub.Override{Status: http.StatusOK, Body: `{"id":"457685"}`})
	server.Override("/api/1/abc/item", stub.Override{Status: http.StatusOK, Body: `not json`})

	report := checker.Run(t.Context(), conformance.AllCases())
	require.False(t, report.OK())

	failed := map[string]conformance.FailureKind{}

	for _, result := range report.Failed() {
		failed[result.Case.String()] = result.Failure.Kind
	}

	require.Equal(t, map[string]conformance.FailureKind{
		"get-statistic/id 123456":                 conformance.KindUnexpectedStatus,
		"get-item/id 457685":                      conformance.KindSchemaViolation,
		"list-seller-items/non-numeric seller id": conformance.KindUnexpectedStatus,
	}, failed)
}

// TestCasesTransportFailure tests an unreachable service fails every case as
// a transport failure.
func TestCasesTransportFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	client := adapi.NewClient(&adapi.Options{
		BaseURL: ts.URL,
	})
	t.Cleanup(client.Close)

	checker := conformance.NewChecker(client, mustValidator(t), nil)

	report := checker.Run(t.Context(), conformance.GetStatisticCases())
	require.Len(t, report.Failed(), len(conformance.GetStatisticCases()))

	for _, result := range report.Results {
		require.ErrorIs(t, result.Err(), adapi.ErrTransport)
	}
}

// TestOptionsCases tests operation selection.
func TestOptionsCases(t *testing.T) {
	t.Parallel()

	options := &conformance.Options{
		Operations: []string{"get-statistic", "create-item"},
	}

	cases, err := options.Cases()
	require.NoError(t, err)
	require.Len(t, cases, len(conformance.CreateItemCases())+len(conformance.GetStatisticCases()))
	require.Equal(t, conformance.OperationCreateItem, cases[0].Operation)
	require.Equal(t, conformance.OperationGetStatistic, cases[len(cases)-1].Operation)

	options.Operations = []string{"get-item", "delete-item", "patch-item"}

	_, err = options.Cases()
	require.ErrorIs(t, err, conformance.ErrUnknownOperation)
	require.ErrorContains(t, err, "delete-item, patch-item")
}
