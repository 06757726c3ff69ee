package ranking

import "strings"

// Default preference adjustments, matching the values the pipeline was
// tuned with.
const (
	DefaultBoostMatch = 0.05
	DefaultPenaltyBan = 0.10
)

// remoteIndicators are matched as substrings of the case-folded location.
var remoteIndicators = []string{"remoto", "remote", "home office"}

// Preferences describe post-ranking score nudges driven by the job
// location.
type Preferences struct {
	Prefer      []string
	Ban         []string
	BoostRemote float64
	BoostMatch  float64
	PenaltyBan  float64
}

// DefaultPreferences returns a Preferences with the standard match boost
// and ban penalty and no remote boost.
func DefaultPreferences() Preferences {
	return Preferences{
		BoostMatch: DefaultBoostMatch,
		PenaltyBan: DefaultPenaltyBan,
	}
}

// ApplyPreferences nudges each score by the location-based adjustments.
// The adjustments are cumulative and independent: a remote job in a
// preferred location that also matches a ban term receives all three.
// Scores are not clamped — they may leave [0, 1] — and the returned slice
// keeps the input order; the caller re-sorts.
func ApplyPreferences(pairs []Pair, prefs Preferences) []Pair {
	prefer := foldTerms(prefs.Prefer)
	ban := foldTerms(prefs.Ban)

	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		score := p.Score
		loc := strings.ToLower(p.Job.Location)
		if loc != "" {
			if prefs.BoostRemote != 0 && containsAny(loc, remoteIndicators) {
				score += prefs.BoostRemote
			}
			if len(prefer) > 0 && containsAny(loc, prefer) {
				score += prefs.BoostMatch
			}
			if len(ban) > 0 && containsAny(loc, ban) {
				score -= prefs.PenaltyBan
			}
		}
		out[i] = Pair{Job: p.Job, Score: score}
	}

	return out
}

func foldTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
