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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/ad-conformance/pkg/conformance"
	"github.com/nscaledev/ad-conformance/test/api"
)

var _ = Describe("Ad Creation", func() {
	Context("When creating an ad", func() {
		DescribeTable("the service should honour its contract",
			func(c conformance.Case) {
				api.ExpectPassed(checker.Check(ctx, c))
			},
			api.Entries(conformance.CreateItemCases()),
		)

		Describe("Given a unique valid ad", func() {
			It("should list the ad for its seller", func() {
				payload := conformance.UniqueAdPayload()

				result := checker.CheckRoundTrip(ctx, payload)
				api.ExpectPassed(result)
				Expect(result.Case.Operation).To(Equal(conformance.OperationRoundTrip))
			})
		})
	})
})
