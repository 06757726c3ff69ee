package job

import (
	"errors"
	"strings"
	"time"
)

// Job is a single posting normalized from a provider payload. Optional
// fields use their zero value when the provider did not supply them. The
// description never contains markup: HTML is stripped at construction and
// the raw form is not retained.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Location    string    `json:"location,omitempty"`
	Seniority   Seniority `json:"seniority,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	SalaryMin   float64   `json:"salary_min,omitempty"`
	SalaryMax   float64   `json:"salary_max,omitempty"`
}

// Profile is the candidate resume reduced to plain text plus optional
// structured fields. It is built once per invocation and read-only input
// to ranking.
type Profile struct {
	Summary         string
	Skills          []string
	Name            string
	Location        string
	TargetSeniority Seniority
}

var ErrMissingTitle = errors.New("job title is required")

// Validate reports whether the job satisfies the entity invariants.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// MatchText returns the consolidated comparison text used by every ranking
// strategy: title, company, description, space-joined tags and location,
// newline-joined with empty parts skipped.
func (j *Job) MatchText() string {
	parts := []string{
		j.Title,
		j.Company,
		j.Description,
		strings.Join(j.Tags, " "),
		j.Location,
	}

	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, "\n")
}

// NewProfile builds a profile from extracted resume text. Skills get the
// same normalization as job tags.
func NewProfile(summary string, skills []string) (*Profile, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, errors.New("profile summary is required")
	}

	return &Profile{
		Summary: summary,
		Skills:  NormalizeTags(skills),
	}, nil
}
