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

package constants

import (
	"os"
	"path"
	"time"
)

var (
	// Application is the application name.
	//nolint:gochecknoglobals
	Application = path.Base(os.Args[0])

	// Version is the application version set via the Makefile.
	//nolint:gochecknoglobals
	Version string

	// Revision is the git revision set via the Makefile.
	//nolint:gochecknoglobals
	Revision string
)

const (
	// DefaultBaseURL is the classifieds service the checks run against
	// unless told otherwise.
	DefaultBaseURL = "https://qa-internship.avito.com"

	// DefaultRequestTimeout bounds a single request, including reading the body.
	DefaultRequestTimeout = 30 * time.Second

	// TraceState is attached to every request so service side logs can
	// distinguish conformance traffic.
	TraceState = "test-automation=ad-conformance"
)
