package resolver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"symres/internal/env"
	"symres/internal/names"
)

// searchLocator finds top-level types through the workspace search. Only a
// candidate whose canonical name round-trips to the requested one is
// accepted, since distinct types can share a source name.
type searchLocator struct {
	r *Resolver
}

func (l *searchLocator) Name() string { return "search" }

func (l *searchLocator) Accepts(name names.TypeName) bool {
	return name.IsDeclared() && !name.IsNested() && !name.IsArray()
}

func (l *searchLocator) Locate(ctx context.Context, name names.TypeName) (env.Type, error) {
	pattern := name.SourceName()
	ctx, span := l.r.tracer.Start(ctx, "resolver.search",
		trace.WithAttributes(attribute.String("symres.pattern", pattern)))
	defer span.End()

	if l.r.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.r.searchTimeout)
		defer cancel()
	}

	l.r.searches.Add(1)
	candidates, err := l.r.env.SearchTypes(ctx, pattern)
	if err == nil {
		// A search that ignores its context may still report late.
		err = ctx.Err()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("search %q: %w", pattern, err)
	}
	span.SetAttributes(attribute.Int("symres.candidates", len(candidates)))

	for _, c := range candidates {
		if c == nil {
			continue
		}
		if tn, ok := l.r.tr.TypeNameOf(c); ok && tn == name {
			return c, nil
		}
	}
	return nil, errNotFound
}
