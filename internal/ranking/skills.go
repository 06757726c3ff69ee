package ranking

import (
	"regexp"
	"strings"

	"github.com/lmoreira/jobmatch/internal/job"
)

// defaultMaxHitsPerSkill caps how often one skill can score so repetitive
// descriptions do not inflate the count.
const defaultMaxHitsPerSkill = 5

var alphanumericSkill = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SkillsOptions tune the skill-hit ranker.
type SkillsOptions struct {
	MaxHitsPerSkill int
}

// Skills scores jobs by counting occurrences of the candidate's skills in
// the consolidated job text. Plain alphanumeric skills match on word
// boundaries; skills with symbols ("c++", ".net", "c#") fall back to a
// substring match.
type Skills struct {
	patterns []*regexp.Regexp
	maxHits  int
}

func NewSkills(skills []string, opts *SkillsOptions) *Skills {
	maxHits := defaultMaxHitsPerSkill
	if opts != nil && opts.MaxHitsPerSkill > 0 {
		maxHits = opts.MaxHitsPerSkill
	}

	return &Skills{
		patterns: compileSkillPatterns(skills),
		maxHits:  maxHits,
	}
}

func compileSkillPatterns(skills []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(skills))
	for _, raw := range skills {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if alphanumericSkill.MatchString(s) {
			patterns = append(patterns, regexp.MustCompile(`\b`+s+`\b`))
			continue
		}
		patterns = append(patterns, regexp.MustCompile(regexp.QuoteMeta(s)))
	}
	return patterns
}

// Rank returns the top-k (job, score) pairs by capped skill-hit count.
// An empty job list or an empty skill set yields an empty result.
func (s *Skills) Rank(jobs []*job.Job, k int) []Pair {
	if len(jobs) == 0 || len(s.patterns) == 0 {
		return nil
	}

	pairs := make([]Pair, 0, len(jobs))
	for _, j := range jobs {
		pairs = append(pairs, Pair{Job: j, Score: float64(s.score(j))})
	}

	sortPairs(pairs)
	return truncate(pairs, k)
}

func (s *Skills) score(j *job.Job) int {
	text := strings.ToLower(j.MatchText())

	total := 0
	for _, pat := range s.patterns {
		hits := len(pat.FindAllStringIndex(text, -1))
		if hits > s.maxHits {
			hits = s.maxHits
		}
		total += hits
	}
	return total
}
