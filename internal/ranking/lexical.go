package ranking

import (
	"strings"

	"github.com/lmoreira/jobmatch/internal/job"
)

const (
	defaultMaxFeatures = 8000
	defaultNgramMin    = 1
	defaultNgramMax    = 2
)

// LexicalOptions tune the TF-IDF vector space. Zero values fall back to
// the defaults the pipeline was calibrated with.
type LexicalOptions struct {
	MaxFeatures int
	NgramMin    int
	NgramMax    int
}

// Lexical scores jobs against a profile with TF-IDF cosine similarity.
type Lexical struct {
	opts LexicalOptions
}

func NewLexical(opts *LexicalOptions) *Lexical {
	l := &Lexical{opts: LexicalOptions{
		MaxFeatures: defaultMaxFeatures,
		NgramMin:    defaultNgramMin,
		NgramMax:    defaultNgramMax,
	}}

	if opts != nil {
		if opts.MaxFeatures > 0 {
			l.opts.MaxFeatures = opts.MaxFeatures
		}
		if opts.NgramMin > 0 {
			l.opts.NgramMin = opts.NgramMin
		}
		if opts.NgramMax > 0 {
			l.opts.NgramMax = opts.NgramMax
		}
	}

	return l
}

// Rank returns the top-k (job, score) pairs by cosine similarity between
// the profile vector and each job vector. An empty job list, blank profile
// text or an empty vocabulary yields an empty result, not an error.
func (l *Lexical) Rank(profileText string, jobs []*job.Job, k int) []Pair {
	if len(jobs) == 0 || strings.TrimSpace(profileText) == "" {
		return nil
	}

	docs := buildDocs(profileText, jobs)
	matrix := tfidfMatrix(docs, l.opts.NgramMin, l.opts.NgramMax, l.opts.MaxFeatures)
	if matrix == nil || len(matrix) < 2 {
		return nil
	}

	profile := matrix[0]
	pairs := make([]Pair, 0, len(jobs))
	for i, j := range jobs {
		pairs = append(pairs, Pair{Job: j, Score: dotSparse(profile, matrix[i+1])})
	}

	sortPairs(pairs)
	return truncate(pairs, k)
}
