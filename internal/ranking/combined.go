package ranking

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/job"
)

// Weights for the auto strategy. When no semantic scores could be
// obtained the lexical weight collapses to 1.0.
const (
	weightSemantic = 0.6
	weightLexical  = 0.4
)

// Combined blends lexical and semantic scores into one ranking. A failing
// semantic backend degrades the blend to lexical-only instead of failing
// the run.
type Combined struct {
	lexical  *Lexical
	semantic *Semantic
	logger   *zap.Logger
}

func NewCombined(lexical *Lexical, semantic *Semantic, logger *zap.Logger) *Combined {
	return &Combined{lexical: lexical, semantic: semantic, logger: logger}
}

// Rank scores the full job list with both strategies, joins the two score
// maps by job identity and returns the top-k blended pairs. Two distinct
// postings may share a title, so the join is keyed by the job pointer,
// never by title or id equality.
func (c *Combined) Rank(ctx context.Context, profileText string, jobs []*job.Job, k int, model string) []Pair {
	if len(jobs) == 0 || strings.TrimSpace(profileText) == "" {
		return nil
	}

	lexScores := make(map[*job.Job]float64, len(jobs))
	for _, p := range c.lexical.Rank(profileText, jobs, len(jobs)) {
		lexScores[p.Job] = p.Score
	}

	semScores := make(map[*job.Job]float64, len(jobs))
	if c.semantic != nil {
		semPairs, err := c.semantic.Rank(ctx, profileText, jobs, len(jobs), model)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("semantic ranking failed; using lexical scores only",
					zap.String("model", model),
					zap.Error(err),
				)
			}
		} else {
			for _, p := range semPairs {
				semScores[p.Job] = p.Score
			}
		}
	}

	wSem, wLex := weightSemantic, weightLexical
	if len(semScores) == 0 {
		wSem, wLex = 0.0, 1.0
	}

	pairs := make([]Pair, 0, len(jobs))
	for _, j := range jobs {
		pairs = append(pairs, Pair{
			Job:   j,
			Score: wSem*semScores[j] + wLex*lexScores[j],
		})
	}

	sortPairs(pairs)
	return truncate(pairs, k)
}
