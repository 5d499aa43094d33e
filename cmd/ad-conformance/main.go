/*
Copyright 2025 the Unikorn Authors.
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

package main

import (
	"context"
	goflag "flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/nscaledev/ad-conformance/pkg/adapi"
	"github.com/nscaledev/ad-conformance/pkg/conformance"
	"github.com/nscaledev/ad-conformance/pkg/constants"
	"github.com/nscaledev/ad-conformance/pkg/schema"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

func run(ctx context.Context, clientOptions *adapi.Options, options *conformance.Options, otlpEndpoint string) (bool, error) {
	cases, err := options.Cases()
	if err != nil {
		return false, err
	}

	tracerProvider, err := adapi.NewTracerProvider(ctx, otlpEndpoint)
	if err != nil {
		return false, err
	}

	defer func() {
		// The signal context may already be done, flush regardless.
		if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.FromContext(ctx).Error(err, "failed to flush traces")
		}
	}()

	clientOptions.TracerProvider = tracerProvider

	validator, err := schema.Load(ctx)
	if err != nil {
		return false, err
	}

	client := adapi.NewClient(clientOptions)
	defer client.Close()

	registry := prometheus.NewRegistry()

	checker := conformance.NewChecker(client, validator, conformance.NewMetrics(registry))

	report := checker.Run(ctx, cases)

	if options.RoundTrip && !report.Aborted {
		report.Add(checker.CheckRoundTrip(ctx, conformance.UniqueAdPayload()))
	}

	if err := report.Write(os.Stdout); err != nil {
		return false, err
	}

	if options.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(options.MetricsFile, registry); err != nil {
			return false, fmt.Errorf("writing metrics: %w", err)
		}
	}

	return report.OK(), nil
}

func main() {
	var clientOptions adapi.Options

	var options conformance.Options

	var otlpEndpoint string

	zapOptions := zap.Options{}
	zapOptions.BindFlags(goflag.CommandLine)

	clientOptions.AddFlags(pflag.CommandLine)
	options.AddFlags(pflag.CommandLine)
	pflag.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint to export request spans to, e.g. http://localhost:4318")
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	pflag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&zapOptions)))

	logger := log.Log.WithName("init")
	logger.Info("conformance run starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision, "baseURL", clientOptions.BaseURL)

	ctx := log.IntoContext(cr.SetupSignalHandler(), log.Log)

	ok, err := run(ctx, &clientOptions, &options, otlpEndpoint)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if !ok {
		os.Exit(1)
	}
}
