package embedding

import (
	"context"
	"sync"
)

// OpenFunc loads an encoder for a model name. Loading is expensive, so the
// registry calls it at most once per name within a run.
type OpenFunc func(ctx context.Context, model string) (Encoder, error)

// Registry memoizes loaded encoders by model name. It is process-scoped
// state with an explicit lifecycle: populated on first use, never evicted
// within a run, and injected into whoever needs an encoder so tests can
// substitute a stub.
type Registry struct {
	open OpenFunc

	mu       sync.Mutex
	encoders map[string]Encoder
}

func NewRegistry(open OpenFunc) *Registry {
	return &Registry{
		open:     open,
		encoders: make(map[string]Encoder),
	}
}

// Get returns the encoder for the model, loading it on first use. Load
// failures are not memoized, so a transient failure can be retried.
func (r *Registry) Get(ctx context.Context, model string) (Encoder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enc, ok := r.encoders[model]; ok {
		return enc, nil
	}

	enc, err := r.open(ctx, model)
	if err != nil {
		return nil, err
	}

	r.encoders[model] = enc
	return enc, nil
}
