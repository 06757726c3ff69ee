package provider

import "context"

// Record is a raw job posting exactly as a provider returned it, keyed by
// the provider's native field names. Normalization into the canonical
// entity happens once, at the ingestion boundary.
type Record map[string]any

// Provider is a single job source. Implementations own their retry and
// backoff policy; a failed fetch surfaces as an error the collector logs
// and skips, never as an aborted run.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query, location string, pages int) ([]Record, error)
}
