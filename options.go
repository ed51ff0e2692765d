package islet

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pthm/islet/lib/seal"
)

// Option configures a Renderer at construction. Nil arguments leave the
// default in place.
type Option func(*Renderer)

// WithLogger injects the renderer's logger. The default is zap.NewNop(),
// so an unconfigured renderer stays silent.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithBackend injects the rendering backend. The default is the
// hydration-capable backend; pass NewStaticBackend for render-only output.
func WithBackend(b Backend) Option {
	return func(r *Renderer) {
		if b != nil {
			r.backend = b
		}
	}
}

// WithRegistry shares a pre-populated registry instead of the renderer's
// own empty one.
func WithRegistry(reg *Registry) Option {
	return func(r *Renderer) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithLoader enables lazy loading of unregistered component types.
func WithLoader(l Loader) Option {
	return func(r *Renderer) {
		r.loader = l
	}
}

// WithSealer enables sealed props. Mount points carrying a sealed token on
// a renderer without a sealer fail per-element.
func WithSealer(s *seal.Sealer) Option {
	return func(r *Renderer) {
		r.sealer = s
	}
}

// WithMetrics injects prometheus instrumentation built by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracerProvider injects the tracer used for render-pass spans. The
// default is a no-op tracer.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Renderer) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}
