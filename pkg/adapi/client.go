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

package adapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nscaledev/ad-conformance/pkg/constants"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

var (
	// ErrTransport is returned when no response could be obtained at all,
	// e.g. connection refused, timeout or a truncated body.
	ErrTransport = errors.New("transport failure")

	// ErrParameter is returned when a path parameter cannot be rendered.
	ErrParameter = errors.New("invalid path parameter")
)

// Options control how the client talks to the service.
type Options struct {
	// BaseURL is the service under test.
	BaseURL string

	// RequestTimeout bounds a single request.
	RequestTimeout time.Duration

	// LogRequests logs a status line for every request.
	LogRequests bool

	// LogResponses logs every response body.
	LogResponses bool

	// TracerProvider is used to create a span per request, the span
	// context is propagated as a W3C traceparent header.  When nil
	// a private SDK provider is created.
	TracerProvider trace.TracerProvider
}

func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.BaseURL, "base-url", constants.DefaultBaseURL, "Base URL of the classifieds service under test")
	f.DurationVar(&o.RequestTimeout, "request-timeout", constants.DefaultRequestTimeout, "Timeout for a single request")
	f.BoolVar(&o.LogRequests, "log-requests", false, "Log a status line for every request")
	f.BoolVar(&o.LogResponses, "log-responses", false, "Log every response body")
}

// Response is a fully read HTTP response.
type Response struct {
	// StatusCode is the HTTP status.
	StatusCode int
	// Body is the raw response body.
	Body []byte
	// TraceID correlates the request with service side logs.
	TraceID string
	// Duration is the round trip time including reading the body.
	Duration time.Duration
}

// Client is a session bound to a single base URL.  It owns its transport
// so that Close releases every connection it opened.
type Client struct {
	baseURL    string
	client     *http.Client
	transport  *http.Transport
	options    Options
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewClient returns a new client with its own connection pool.
func NewClient(options *Options) *Client {
	timeout := options.RequestTimeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	//nolint:forcetypeassert // the default transport is always an *http.Transport
	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport:  transport,
		options:    *options,
		tracer:     newTracer(options.TracerProvider),
		propagator: propagation.TraceContext{},
	}
}

// BaseURL returns the service the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases all idle connections held by the client.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// Send issues a single request and reads the whole response.  A non-nil body
// is encoded as JSON.  Any status code is a valid response, interpreting it
// is the caller's concern.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Response, error) {
	log := log.FromContext(ctx)

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	traceID := span.SpanContext().TraceID().String()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("Tracestate", constants.TraceState)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		log.Error(err, "http request failed", "method", method, "path", path, "duration", duration, "traceID", traceID)

		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		log.Error(err, "reading response body", "method", method, "path", path, "status", resp.StatusCode, "duration", duration, "traceID", traceID)

		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}

	if c.options.LogRequests {
		log.Info("request complete", "method", method, "path", path, "status", resp.StatusCode, "duration", duration, "traceID", traceID)
	}

	if c.options.LogResponses && len(respBody) > 0 {
		log.Info("response body", "method", method, "path", path, "body", string(respBody))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		TraceID:    traceID,
		Duration:   duration,
	}

	return result, nil
}
