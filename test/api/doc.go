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

// Package api provides integration test utilities for the classifieds API.
//
// # Running
//
// The suites under suites/ run every conformance case as a Ginkgo table entry
// against API_BASE_URL, which defaults to the public QA deployment.  Settings
// are read from the environment and, when present, a .env file:
//
//   - API_BASE_URL: service under test
//   - REQUEST_TIMEOUT: per request timeout, e.g. 10s
//   - SKIP_INTEGRATION: skip all suites
//   - USE_STUB: run against an in-process emulator instead of API_BASE_URL
//   - LOG_REQUESTS, LOG_RESPONSES: log traffic via GinkgoLogr
//
// # Shared Cases
//
// Cases are defined once in pkg/conformance and shared with the command line
// checker, so a failure here reproduces with the binary and vice versa.
package api
