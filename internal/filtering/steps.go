package filtering

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/job"
)

// remoteMarkers are matched as substrings of the case-folded location.
var remoteMarkers = []string{"remoto", "remote", "home office"}

type remoteOnlyFilter struct {
	toggle
	enabled bool
}

// NewRemoteOnly creates a filter that keeps only jobs whose location reads
// as remote.
func NewRemoteOnly() Filter {
	return &remoteOnlyFilter{}
}

func (f *remoteOnlyFilter) Name() string { return "remote_only" }

func (f *remoteOnlyFilter) Validate(cfg *Config) error {
	f.enabled = cfg != nil && cfg.RemoteOnly
	return nil
}

func (f *remoteOnlyFilter) Apply(_ context.Context, deps Deps, jobs []*job.Job) ([]*job.Job, Step, error) {
	initial := len(jobs)
	if !f.enabled {
		return jobs, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*job.Job, 0, initial)
	for _, j := range jobs {
		if isRemote(j.Location) {
			kept = append(kept, j)
		}
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Info("excluding non-remote jobs",
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *remoteOnlyFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"remote_only": strconv.FormatBool(f.enabled)},
	}
}

func isRemote(location string) bool {
	location = strings.ToLower(location)
	for _, marker := range remoteMarkers {
		if strings.Contains(location, marker) {
			return true
		}
	}
	return false
}

type maxAgeFilter struct {
	toggle
	maxAge time.Duration
	now    func() time.Time
}

// NewMaxAge creates a filter that removes jobs published before the
// configured age window. Jobs without a publication timestamp are kept.
func NewMaxAge() Filter {
	return &maxAgeFilter{now: time.Now}
}

func (f *maxAgeFilter) Name() string { return "max_age" }

func (f *maxAgeFilter) Validate(cfg *Config) error {
	f.maxAge = 0
	if cfg != nil && cfg.MaxAgeDays > 0 {
		f.maxAge = time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	}
	return nil
}

func (f *maxAgeFilter) Apply(_ context.Context, deps Deps, jobs []*job.Job) ([]*job.Job, Step, error) {
	initial := len(jobs)
	if f.maxAge <= 0 {
		return jobs, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	cutoff := f.now().Add(-f.maxAge)
	kept := make([]*job.Job, 0, initial)
	for _, j := range jobs {
		if j.PublishedAt.IsZero() || !j.PublishedAt.Before(cutoff) {
			kept = append(kept, j)
		}
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Info("excluding stale jobs",
			zap.Time("cutoff", cutoff),
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *maxAgeFilter) Status() Status {
	details := map[string]string{}
	if f.maxAge > 0 {
		details["max_age_days"] = strconv.Itoa(int(f.maxAge / (24 * time.Hour)))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeSourceFilter struct {
	toggle
	sources []string
}

// NewExcludeSource creates a filter that removes jobs from the sources
// listed in the config.
func NewExcludeSource() Filter {
	return &excludeSourceFilter{}
}

func (f *excludeSourceFilter) Name() string { return "exclude_source" }

func (f *excludeSourceFilter) Validate(cfg *Config) error {
	f.sources = nil
	if cfg == nil {
		return nil
	}
	for _, s := range cfg.ExcludeSources {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			f.sources = append(f.sources, s)
		}
	}
	return nil
}

func (f *excludeSourceFilter) Apply(_ context.Context, deps Deps, jobs []*job.Job) ([]*job.Job, Step, error) {
	initial := len(jobs)
	if len(f.sources) == 0 {
		return jobs, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*job.Job, 0, initial)
	for _, j := range jobs {
		if !f.excluded(j.Source) {
			kept = append(kept, j)
		}
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Info("excluding jobs by source",
			zap.Strings("excluded_sources", f.sources),
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *excludeSourceFilter) excluded(source string) bool {
	source = strings.ToLower(source)
	for _, s := range f.sources {
		if source == s {
			return true
		}
	}
	return false
}

func (f *excludeSourceFilter) Status() Status {
	details := map[string]string{}
	if len(f.sources) > 0 {
		details["sources"] = strings.Join(f.sources, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// DefaultSteps returns the standard filtering pipeline in its execution
// order.
func DefaultSteps() []Filter {
	return []Filter{
		NewExcludeSource(),
		NewMaxAge(),
		NewRemoteOnly(),
	}
}
