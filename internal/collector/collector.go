// Package collector gathers raw postings from every configured provider.
package collector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/provider"
)

// Collector runs the providers sequentially and concatenates their
// records. One broken provider never sinks the whole collection run.
type Collector struct {
	providers []provider.Provider
	logger    *zap.Logger
}

func New(logger *zap.Logger, providers ...provider.Provider) *Collector {
	return &Collector{providers: providers, logger: logger}
}

// Collect fetches from each provider in registration order and stamps
// every record with the provider name. A provider failure is logged and
// skipped; the call errors only when every provider failed.
func (c *Collector) Collect(ctx context.Context, query, location string, pages int) ([]provider.Record, error) {
	if len(c.providers) == 0 {
		return nil, errors.New("no providers configured")
	}

	var records []provider.Record
	var failed int
	for _, p := range c.providers {
		recs, err := p.Fetch(ctx, query, location, pages)
		if err != nil {
			failed++
			c.logger.Warn("provider failed, skipping",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}

		c.logger.Info("collected postings",
			zap.String("provider", p.Name()),
			zap.Int("count", len(recs)),
		)

		for _, rec := range recs {
			if _, ok := rec["source"]; !ok {
				rec["source"] = p.Name()
			}
			records = append(records, rec)
		}
	}

	if failed == len(c.providers) {
		return nil, errors.New("all providers failed")
	}

	return records, nil
}
