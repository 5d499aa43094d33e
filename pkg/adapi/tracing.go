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

package adapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/nscaledev/ad-conformance/pkg/constants"
)

const tracerName = "github.com/nscaledev/ad-conformance/pkg/adapi"

// newTracer returns a tracer that always yields valid span contexts.  The
// global no-op provider would produce empty trace IDs, so fall back to an
// SDK provider with no exporter attached.
func newTracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		provider = sdktrace.NewTracerProvider()
	}

	return provider.Tracer(tracerName)
}

// NewTracerProvider creates a provider for request spans.  When endpoint is
// set, e.g. http://localhost:4318, spans are exported over OTLP/HTTP so a
// failing case can be found in the same trace backend as the service.
// The caller must shut the provider down to flush pending spans.
func NewTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", constants.Application),
		attribute.String("service.version", constants.Version),
	)

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, fmt.Errorf("creating otlp exporter: %w", err)
		}

		options = append(options, sdktrace.WithBatcher(exporter))
	}

	return sdktrace.NewTracerProvider(options...), nil
}
