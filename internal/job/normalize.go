package job

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blockMarkers = "br, p, div, li, tr, ul, ol, table, h1, h2, h3, h4, h5, h6"
)

// NormalizeTags lower-cases and trims every tag, drops blanks and removes
// duplicates while preserving the relative order of first occurrences.
func NormalizeTags(tags []string) []string {
	norm := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, raw := range tags {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		norm = append(norm, s)
	}

	return norm
}

// StripHTML converts an HTML description to plain text so markup does not
// pollute the ranking corpus. Block-level elements become line breaks. When
// the input does not look like HTML it is returned unchanged; when parsing
// fails a regex fallback removes the tags.
func StripHTML(s string) string {
	if s == "" || !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return squeezeLines(tagPattern.ReplaceAllString(s, " "))
	}

	doc.Find(blockMarkers).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	return squeezeLines(doc.Text())
}

// squeezeLines trims every line and drops the empty ones, matching the
// shape of a stripped HTML document.
func squeezeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// epochMillisCutoff disambiguates epoch seconds from epoch milliseconds by
// magnitude: anything above it is treated as milliseconds.
const epochMillisCutoff = 1e12

// ParseTime normalizes provider timestamps to UTC. It accepts time.Time
// values, epoch seconds, epoch milliseconds and ISO-8601 strings.
func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case int:
		return epochToTime(float64(t)), nil
	case int64:
		return epochToTime(float64(t)), nil
	case float64:
		return epochToTime(t), nil
	case string:
		return parseTimeString(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func epochToTime(v float64) time.Time {
	if v > epochMillisCutoff {
		v /= 1000.0
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// CoerceID renders any scalar identifier as a string. Providers send ids as
// strings, integers or floats; nil becomes the empty string, never an
// absent value.
func CoerceID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
