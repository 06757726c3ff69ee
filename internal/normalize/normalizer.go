package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/job"
	"github.com/lmoreira/jobmatch/internal/provider"
)

// sourceUnknown is assigned when a record carries no provider identifier.
const sourceUnknown = "unknown"

// Normalizer maps heterogeneous provider records into canonical jobs.
// Field aliases are resolved here, once, with a pick-first policy; nothing
// downstream ever re-derives provider field names.
type Normalizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts raw records into canonical jobs, preserving input
// order. Records that fail entity construction are dropped with a warning;
// a bad record never aborts the batch. Duplicate postings from different
// providers are retained distinctly.
func (n *Normalizer) Normalize(records []provider.Record) []*job.Job {
	jobs := make([]*job.Job, 0, len(records))

	for _, rec := range records {
		j, err := n.normalizeOne(rec)
		if err != nil {
			if n.logger != nil {
				n.logger.Warn("dropping record that failed normalization",
					zap.String("id", job.CoerceID(rec["id"])),
					zap.String("source", stringValue(rec["source"])),
					zap.Error(err),
				)
			}
			continue
		}
		jobs = append(jobs, j)
	}

	return jobs
}

func (n *Normalizer) normalizeOne(rec provider.Record) (*job.Job, error) {
	source := firstString(rec, "source")
	if source == "" {
		source = sourceUnknown
	}

	published, err := job.ParseTime(firstValue(rec, "publicado_em", "created", "created_at", "posted_at", "updated_at"))
	if err != nil {
		return nil, fmt.Errorf("published timestamp: %w", err)
	}

	j := &job.Job{
		ID:          job.CoerceID(firstValue(rec, "id", "internal_job_id", "job_id", "adref")),
		Title:       firstString(rec, "titulo", "title", "job_title"),
		Company:     normalizeName(firstValue(rec, "empresa", "company", "company_name")),
		Description: job.StripHTML(firstString(rec, "descricao", "description", "description_html", "content")),
		URL:         firstString(rec, "url", "redirect_url", "absolute_url", "job_url"),
		Location:    normalizeName(firstValue(rec, "local", "location", "display_location")),
		Seniority:   job.ParseSeniority(firstString(rec, "senioridade", "seniority", "level")),
		Tags:        job.NormalizeTags(stringSlice(firstValue(rec, "tags", "skills", "keywords"))),
		Source:      source,
		PublishedAt: published,
		SalaryMin:   floatValue(firstValue(rec, "salario_min", "salary_min", "salary_minimum")),
		SalaryMax:   floatValue(firstValue(rec, "salario_max", "salary_max", "salary_maximum")),
	}

	// Board-style providers report the company implicitly via the source.
	if j.Company == "" {
		j.Company = source
	}

	if err := j.Validate(); err != nil {
		return nil, err
	}

	return j, nil
}

// firstValue returns the first non-nil, non-empty candidate among the
// aliases. Partial values from different aliases are never merged.
func firstValue(rec provider.Record, keys ...string) any {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		if slice, isSlice := v.([]any); isSlice && len(slice) == 0 {
			continue
		}
		return v
	}
	return nil
}

func firstString(rec provider.Record, keys ...string) string {
	return stringValue(firstValue(rec, keys...))
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// normalizeName accepts the two shapes providers use for named entities
// such as companies and locations: a plain string or a nested map with a
// name/display_name entry.
func normalizeName(v any) string {
	switch loc := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(loc)
	case map[string]any:
		if name := stringValue(loc["name"]); name != "" {
			return name
		}
		return stringValue(loc["display_name"])
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func stringSlice(v any) []string {
	switch items := v.(type) {
	case nil:
		return nil
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	default:
		return nil
	}
}

func floatValue(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case int:
		return float64(f)
	case int64:
		return float64(f)
	default:
		return 0
	}
}
