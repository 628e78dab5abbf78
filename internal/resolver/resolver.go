// Package resolver translates between canonical type and method names and
// live symbol handles. A Resolver owns a bidirectional cache of resolved
// pairs and remembers failed lookups for the rest of the session.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"symres/internal/cache"
	"symres/internal/env"
	"symres/internal/names"
	"symres/internal/translate"
)

var errStructureUnknown = errors.New("declaring type structure unknown")

// Resolver is safe for concurrent use. No operation panics or returns an
// error to the caller; failures surface as absent results and diagnostics.
type Resolver struct {
	env           env.Environment
	tr            *translate.Translator
	diag          env.Diagnostics
	tracer        trace.Tracer
	searchTimeout time.Duration
	buildLocators func(r *Resolver) []TypeLocator
	chain         *LocatorChain

	cache         *cache.BiMap[names.Name, env.Element]
	failedTypes   *cache.Set[names.TypeName]
	failedMethods *cache.Set[names.MethodName]

	hits         atomic.Int64
	misses       atomic.Int64
	negativeHits atomic.Int64
	evictions    atomic.Int64
	searches     atomic.Int64
}

func New(environment env.Environment, opts ...Option) *Resolver {
	r := &Resolver{
		env:           environment,
		diag:          env.DiscardDiagnostics{},
		tracer:        otel.GetTracerProvider().Tracer(tracerName),
		searchTimeout: DefaultSearchTimeout,
		cache:         cache.NewBiMap[names.Name, env.Element](),
		failedTypes:   cache.NewSet[names.TypeName](),
		failedMethods: cache.NewSet[names.MethodName](),
	}
	r.buildLocators = func(r *Resolver) []TypeLocator {
		return []TypeLocator{&nestedLocator{r: r}, &searchLocator{r: r}}
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tr = translate.New(r.diag)
	r.chain = NewLocatorChain(r.buildLocators(r)...)
	return r
}

// Stats is a point-in-time snapshot of the resolver counters.
type Stats struct {
	CacheHits     int64
	CacheMisses   int64
	NegativeHits  int64
	Evictions     int64
	Searches      int64
	CacheSize     int
	FailedTypes   int
	FailedMethods int
	Stages        []StageResult
}

func (r *Resolver) Stats() Stats {
	return Stats{
		CacheHits:     r.hits.Load(),
		CacheMisses:   r.misses.Load(),
		NegativeHits:  r.negativeHits.Load(),
		Evictions:     r.evictions.Load(),
		Searches:      r.searches.Load(),
		CacheSize:     r.cache.Len(),
		FailedTypes:   r.failedTypes.Len(),
		FailedMethods: r.failedMethods.Len(),
		Stages:        r.chain.Stages(),
	}
}

// ToCanonicalType translates a type binding. A nil binding is absent.
func (r *Resolver) ToCanonicalType(b env.TypeBinding) (name names.TypeName, ok bool) {
	defer func() {
		if r.recovered("ToCanonicalType", recover()) {
			name, ok = names.TypeName{}, false
		}
	}()
	return r.tr.TypeName(b)
}

// ToCanonicalMethod translates a method binding. A nil binding is absent.
func (r *Resolver) ToCanonicalMethod(b env.MethodBinding) (name names.MethodName, ok bool) {
	defer func() {
		if r.recovered("ToCanonicalMethod", recover()) {
			name, ok = names.MethodName{}, false
		}
	}()
	return r.tr.MethodName(b)
}

// TypeNameOf returns the canonical name of a live type handle and caches
// the pair.
func (r *Resolver) TypeNameOf(h env.Type) (name names.TypeName, ok bool) {
	defer func() {
		if r.recovered("TypeNameOf", recover()) {
			name, ok = names.TypeName{}, false
		}
	}()
	if h == nil {
		return names.TypeName{}, false
	}
	if k, found := r.cache.Inverse(h); found {
		if tn, isType := k.(names.TypeName); isType {
			r.hits.Add(1)
			return tn, true
		}
	}
	name, ok = r.tr.TypeNameOf(h)
	if ok {
		r.register(name, h)
	}
	return name, ok
}

// MethodNameOf returns the canonical name of a live method handle and
// caches the pair.
func (r *Resolver) MethodNameOf(m env.Method) (name names.MethodName, ok bool) {
	defer func() {
		if r.recovered("MethodNameOf", recover()) {
			name, ok = names.MethodName{}, false
		}
	}()
	if m == nil {
		return names.MethodName{}, false
	}
	if k, found := r.cache.Inverse(m); found {
		if mn, isMethod := k.(names.MethodName); isMethod {
			r.hits.Add(1)
			return mn, true
		}
	}
	name, ok = r.tr.MethodNameOf(m)
	if ok {
		r.register(name, m)
	}
	return name, ok
}

// Register stores a pair the caller obtained on its own. Speculative
// handles and mismatched kinds are ignored. A registered name no longer
// counts as failed.
func (r *Resolver) Register(name names.Name, el env.Element) (stored bool) {
	defer func() {
		if r.recovered("Register", recover()) {
			stored = false
		}
	}()
	switch n := name.(type) {
	case names.TypeName:
		if _, isType := el.(env.Type); !isType || n.IsZero() {
			r.diag.Report(env.SeverityWarning, fmt.Sprintf("refusing to register %T for type %s", el, n), nil)
			return false
		}
	case names.MethodName:
		if _, isMethod := el.(env.Method); !isMethod || n.IsZero() {
			r.diag.Report(env.SeverityWarning, fmt.Sprintf("refusing to register %T for method %s", el, n), nil)
			return false
		}
	default:
		return false
	}
	if !r.register(name, el) {
		return false
	}
	switch n := name.(type) {
	case names.TypeName:
		r.failedTypes.Remove(n)
	case names.MethodName:
		r.failedMethods.Remove(n)
	}
	return true
}

func (r *Resolver) register(name names.Name, el env.Element) bool {
	if el == nil || el.Speculative() {
		return false
	}
	if evicted := r.cache.ForcePut(name, el); evicted > 0 {
		r.evictions.Add(int64(evicted))
	}
	return true
}

// ResolveType returns the live handle of a canonical type name. Array and
// primitive names have no handle.
func (r *Resolver) ResolveType(ctx context.Context, name names.TypeName) (t env.Type, ok bool) {
	ctx, span := r.tracer.Start(ctx, "resolver.ResolveType",
		trace.WithAttributes(attribute.String("symres.name", name.Identifier())))
	defer span.End()
	defer func() {
		if r.recovered("ResolveType "+name.Identifier(), recover()) {
			span.SetStatus(codes.Error, "internal error")
			t, ok = nil, false
		}
	}()

	if name.IsZero() {
		return nil, false
	}
	if name.IsArray() || name.IsPrimitive() {
		r.diag.Report(env.SeverityInfo, "no live handle for array or primitive type "+name.Identifier(), nil)
		return nil, false
	}

	t, err := r.lookupType(ctx, name, true)
	if err != nil {
		r.fail(span, "resolve type "+name.Identifier(), err)
		return nil, false
	}
	return t, true
}

// ResolveMethod returns the live handle of a canonical method name,
// searching the declaring type and then its supertypes.
func (r *Resolver) ResolveMethod(ctx context.Context, name names.MethodName) (m env.Method, ok bool) {
	ctx, span := r.tracer.Start(ctx, "resolver.ResolveMethod",
		trace.WithAttributes(attribute.String("symres.name", name.Identifier())))
	defer span.End()
	defer func() {
		if r.recovered("ResolveMethod "+name.Identifier(), recover()) {
			span.SetStatus(codes.Error, "internal error")
			m, ok = nil, false
		}
	}()

	if name.IsZero() {
		return nil, false
	}
	m, err := r.lookupMethod(ctx, name, true)
	if err != nil {
		r.fail(span, "resolve method "+name.Identifier(), err)
		return nil, false
	}
	return m, true
}

// fail records err on the span. Ordinary misses stay quiet; everything else
// reaches the diagnostics sink.
func (r *Resolver) fail(span trace.Span, op string, err error) {
	switch {
	case errors.Is(err, errNotFound):
		span.SetAttributes(attribute.Bool("symres.miss", true))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		span.SetStatus(codes.Error, err.Error())
		r.diag.Report(env.SeverityInfo, op+" cancelled", err)
	case errors.Is(err, errStructureUnknown):
		r.diag.Report(env.SeverityInfo, op, err)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.diag.Report(env.SeverityError, op, err)
	}
}

func (r *Resolver) lookupType(ctx context.Context, name names.TypeName, retry bool) (env.Type, error) {
	if r.failedTypes.Contains(name) {
		r.negativeHits.Add(1)
		return nil, errNotFound
	}
	if el, found := r.cache.Get(name); found {
		if t, isType := el.(env.Type); isType && t.Exists() {
			r.hits.Add(1)
			return t, nil
		}
		r.cache.Remove(name)
		r.evictions.Add(1)
		r.diag.Report(env.SeverityInfo, "evicted stale handle for "+name.Identifier(), nil)
		if !retry {
			return nil, errNotFound
		}
		return r.lookupType(ctx, name, false)
	}
	r.misses.Add(1)

	if name.IsArray() || name.IsPrimitive() {
		return nil, errNotFound
	}
	t, err := r.chain.Run(ctx, name)
	switch {
	case err == nil:
		r.register(name, t)
		return t, nil
	case errors.Is(err, errNotFound):
		r.failedTypes.Add(name)
	}
	return nil, err
}

func (r *Resolver) lookupMethod(ctx context.Context, name names.MethodName, retry bool) (env.Method, error) {
	if r.failedMethods.Contains(name) {
		r.negativeHits.Add(1)
		return nil, errNotFound
	}
	if el, found := r.cache.Get(name); found {
		if m, isMethod := el.(env.Method); isMethod && m.Exists() {
			r.hits.Add(1)
			return m, nil
		}
		r.cache.Remove(name)
		r.evictions.Add(1)
		r.diag.Report(env.SeverityInfo, "evicted stale handle for "+name.Identifier(), nil)
		if !retry {
			return nil, errNotFound
		}
		return r.lookupMethod(ctx, name, false)
	}
	r.misses.Add(1)

	m, err := r.findMethod(ctx, name)
	switch {
	case err == nil:
		r.register(name, m)
		return m, nil
	case errors.Is(err, errNotFound):
		r.failedMethods.Add(name)
	}
	return nil, err
}

// recovered converts a panic into a diagnostic. It reports whether one
// happened.
func (r *Resolver) recovered(op string, v any) bool {
	if v == nil {
		return false
	}
	err, isErr := v.(error)
	if !isErr {
		err = fmt.Errorf("%v", v)
	}
	r.diag.Report(env.SeverityError, op+": internal error", err)
	return true
}
