package ranking

import (
	"sort"
	"strings"

	"github.com/lmoreira/jobmatch/internal/job"
)

// Pair couples a job with its relevance score for one ranking strategy.
type Pair struct {
	Job   *job.Job
	Score float64
}

// buildDocs assembles the ranking corpus: the profile text is always
// document zero, followed by one consolidated text per job.
func buildDocs(profileText string, jobs []*job.Job) []string {
	docs := make([]string, 0, len(jobs)+1)
	docs = append(docs, strings.TrimSpace(profileText))
	for _, j := range jobs {
		docs = append(docs, j.MatchText())
	}
	return docs
}

// sortPairs orders pairs by descending score with a deterministic
// tie-break: case-folded title, then case-folded company, then id. The
// ordering is total, so equal-score outputs never swap between runs.
func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, k int) bool {
		a, b := pairs[i], pairs[k]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		at, bt := strings.ToLower(a.Job.Title), strings.ToLower(b.Job.Title)
		if at != bt {
			return at < bt
		}
		ac, bc := strings.ToLower(a.Job.Company), strings.ToLower(b.Job.Company)
		if ac != bc {
			return ac < bc
		}
		return a.Job.ID < b.Job.ID
	})
}

// Sort orders pairs in place using the standard ranking order. Callers
// that adjust scores after ranking use it to restore the ordering.
func Sort(pairs []Pair) {
	sortPairs(pairs)
}

func truncate(pairs []Pair, k int) []Pair {
	if k < 0 {
		k = 0
	}
	if k > len(pairs) {
		k = len(pairs)
	}
	return pairs[:k]
}
