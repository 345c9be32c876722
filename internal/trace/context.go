package trace

import "context"

type (
	tracerKey struct{}
	statusKey struct{}
)

// FromContext returns the Tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// StatusFromContext returns the Status attached to ctx or nil. A nil
// *Status accepts every call.
func StatusFromContext(ctx context.Context) *Status {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(statusKey{}).(*Status)
	return s
}

// WithStatus attaches a Status so compilers started under ctx report
// into it.
func WithStatus(ctx context.Context, s *Status) context.Context {
	return context.WithValue(ctx, statusKey{}, s)
}
