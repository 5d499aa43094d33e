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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/conformance"
	"github.com/nscaledev/ad-conformance/pkg/stub"
)

// NewClientWithCleanup creates a client for the configured service and
// closes it when the running test finishes.  With USE_STUB set the service
// is an in-process emulator torn down in the same way.
func NewClientWithCleanup(config *TestConfig) *adapi.Client {
	options := config.ClientOptions()

	if config.UseStub {
		server := httptest.NewServer(stub.New(stub.WithLogger(GinkgoLogr)).Handler())
		DeferCleanup(server.Close)

		options.BaseURL = server.URL
	}

	client := adapi.NewClient(options)
	DeferCleanup(client.Close)

	return client
}

// Entries turns conformance cases into table entries named after the case.
func Entries(cases []conformance.Case) []TableEntry {
	entries := make([]TableEntry, len(cases))

	for i, c := range cases {
		entries[i] = Entry(c.Name, c)
	}

	return entries
}

// ExpectPassed fails the running test with the case's failure, including
// the trace ID needed to find the request in service logs.
func ExpectPassed(result *conformance.Result) {
	GinkgoHelper()

	if result.TraceID != "" {
		GinkgoWriter.Printf("%s: status %d, trace ID %s\n", result.Case, result.Status, result.TraceID)
	}

	Expect(result.Err()).NotTo(HaveOccurred(), "case %s", result.Case)
}
