// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/AleutianAI/smart/cmd/smart/internal/bench"

// NewFileTracerProvider exports every span synchronously as JSON to w. The
// caller shuts the provider down after the run.
func NewFileTracerProvider(w io.Writer, version string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", "smart"),
		attribute.String("service.version", version),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func (d *Driver) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return otel.Tracer(tracerName)
}

func (d *Driver) startCellSpan(ctx context.Context, algo string, m int) (context.Context, trace.Span) {
	return d.tracer().Start(ctx, "bench.cell",
		trace.WithAttributes(
			attribute.String("smart.run_id", d.RunID),
			attribute.String("smart.algorithm", algo),
			attribute.Int("smart.pattern_length", m),
		))
}

func endCellSpan(span trace.Span, r Result) {
	span.SetAttributes(
		attribute.String("smart.status", r.Status.String()),
		attribute.Int("smart.trials", r.Trials),
	)
	if r.Status == StatusOK {
		span.SetAttributes(
			attribute.Float64("smart.mean_search_ms", r.MeanSearchMs),
			attribute.Float64("smart.std_search_ms", r.StdSearchMs),
			attribute.Float64("smart.mean_preprocess_ms", r.MeanPreprocessMs),
		)
	}
	span.End()
}
