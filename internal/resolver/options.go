package resolver

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"symres/internal/env"
)

const tracerName = "symres/internal/resolver"

// DefaultSearchTimeout bounds a single workspace search.
const DefaultSearchTimeout = 5 * time.Second

type Option func(*Resolver)

func WithDiagnostics(d env.Diagnostics) Option {
	return func(r *Resolver) {
		if d != nil {
			r.diag = d
		}
	}
}

// WithSearchTimeout bounds each workspace search. Zero disables the bound;
// the caller's context still applies.
func WithSearchTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.searchTimeout = d }
}

func WithTracer(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLocators replaces the default nested-then-search chain.
func WithLocators(build func(r *Resolver) []TypeLocator) Option {
	return func(r *Resolver) { r.buildLocators = build }
}
