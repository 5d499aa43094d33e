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
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spjmurray/go-util/pkg/set"
)

// Options select what a run checks.
type Options struct {
	// Operations limits the run to the named operations.
	Operations []string

	// RoundTrip additionally creates an ad and looks it up again.
	RoundTrip bool

	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// text format.
	MetricsFile string
}

func operationNames() []string {
	all := make([]string, 0, len(Operations()))

	for _, operation := range Operations() {
		all = append(all, string(operation))
	}

	return all
}

func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringSliceVar(&o.Operations, "operations", operationNames(), "Operations to check")
	f.BoolVar(&o.RoundTrip, "round-trip", false, "Create an ad and check it can be listed again")
	f.StringVar(&o.MetricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
}

// Cases returns the selected cases in the canonical operation order.
func (o *Options) Cases() ([]Case, error) {
	unknown := set.New[string](o.Operations...).Difference(set.New[string](operationNames()...))

	var names []string

	for name := range unknown.All() {
		names = append(names, name)
	}

	if len(names) > 0 {
		slices.Sort(names)

		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, strings.Join(names, ", "))
	}

	var cases []Case

	for _, operation := range Operations() {
		if slices.Contains(o.Operations, string(operation)) {
			cases = append(cases, CasesFor(operation)...)
		}
	}

	return cases, nil
}
