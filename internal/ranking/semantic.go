package ranking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/embedding"
	"github.com/lmoreira/jobmatch/internal/embedding/vectorcache"
	"github.com/lmoreira/jobmatch/internal/job"
)

// Semantic scores jobs against a profile with embedding cosine
// similarity. Vectors come from the injected encoder registry, with the
// on-disk cache consulted first; only misses are sent to the backend, in
// one batch.
type Semantic struct {
	registry *embedding.Registry
	cache    *vectorcache.Cache
	logger   *zap.Logger
}

func NewSemantic(registry *embedding.Registry, cache *vectorcache.Cache, logger *zap.Logger) *Semantic {
	return &Semantic{registry: registry, cache: cache, logger: logger}
}

// Rank returns the top-k (job, score) pairs by embedding similarity.
// Blank inputs yield an empty result and no error. A backend that cannot
// be loaded surfaces as an error wrapping embedding.ErrModelUnavailable —
// this layer never swallows it.
func (s *Semantic) Rank(ctx context.Context, profileText string, jobs []*job.Job, k int, model string) ([]Pair, error) {
	if len(jobs) == 0 || strings.TrimSpace(profileText) == "" {
		return nil, nil
	}

	enc, err := s.registry.Get(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("loading embedding model %q: %w", model, err)
	}

	docs := buildDocs(profileText, jobs)
	vectors, err := s.embedDocs(ctx, enc, model, docs)
	if err != nil {
		return nil, err
	}

	profile := normalized(vectors[0])
	pairs := make([]Pair, 0, len(jobs))
	for i, j := range jobs {
		pairs = append(pairs, Pair{Job: j, Score: dot(profile, normalized(vectors[i+1]))})
	}

	sortPairs(pairs)
	return truncate(pairs, k), nil
}

// embedDocs fills one vector per document, reusing cached vectors whose
// dimensionality still matches the encoder and batch-encoding the rest.
// Cache persistence is best-effort: a failed save is logged, never fatal.
func (s *Semantic) embedDocs(ctx context.Context, enc embedding.Encoder, model string, docs []string) ([][]float32, error) {
	vectors := make([][]float32, len(docs))
	missing := make([]int, 0, len(docs))
	dims := enc.Dimensions()

	for i, doc := range docs {
		if s.cache != nil {
			if vec, ok := s.cache.Load(model, doc); ok && (dims <= 0 || len(vec) == dims) {
				vectors[i] = vec
				continue
			}
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	batch := make([]string, len(missing))
	for i, idx := range missing {
		batch[i] = docs[idx]
	}

	encoded, err := enc.Encode(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("encoding %d documents: %w", len(batch), err)
	}
	if len(encoded) != len(missing) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d documents", len(encoded), len(missing))
	}

	for i, idx := range missing {
		vectors[idx] = encoded[i]
		if s.cache == nil {
			continue
		}
		if err := s.cache.Save(model, docs[idx], encoded[i]); err != nil && s.logger != nil {
			s.logger.Warn("persisting embedding to cache failed",
				zap.String("model", model),
				zap.Error(err),
			)
		}
	}

	return vectors, nil
}

// normalized returns the vector scaled to unit length, as float64 for the
// dot product.
func normalized(vec []float32) []float64 {
	out := make([]float64, len(vec))
	var sum float64
	for i, v := range vec {
		out[i] = float64(v)
		sum += out[i] * out[i]
	}
	if sum == 0 {
		return out
	}
	length := math.Sqrt(sum)
	for i := range out {
		out[i] /= length
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
