package mocks

import (
	"context"
	"sync"

	"hotel/infras/otel"
)

// NewOtel returns an Otel whose scopes discard everything.
func NewOtel() otel.Otel {
	return &Recorder{discard: true}
}

// NewRecorder returns an Otel that keeps every scope it opens for assertions.
func NewRecorder() *Recorder {
	return &Recorder{}
}

type Recorder struct {
	mu      sync.Mutex
	discard bool
	scopes  []*Scope
}

func (r *Recorder) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	scope := &Scope{Tracer: scopeName, Name: spanName, Attributes: map[string]any{}}

	if !r.discard {
		r.mu.Lock()
		r.scopes = append(r.scopes, scope)
		r.mu.Unlock()
	}

	return ctx, scope
}

// Find returns the first recorded scope with the given span name.
func (r *Recorder) Find(spanName string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, scope := range r.scopes {
		if scope.Name == spanName {
			return scope
		}
	}

	return nil
}
