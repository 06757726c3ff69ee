package job

import "strings"

// Seniority is the canonical seniority band. The empty string means the
// provider did not report one, which is distinct from SeniorityOther.
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
	SeniorityOther  Seniority = "other"
)

// seniorityAliases maps free-text provider values, Portuguese and English,
// to canonical bands.
var seniorityAliases = map[string]Seniority{
	"jr":         SeniorityJunior,
	"jr.":        SeniorityJunior,
	"junior":     SeniorityJunior,
	"júnior":     SeniorityJunior,
	"estagiario": SeniorityJunior,
	"estagiário": SeniorityJunior,
	"estagio":    SeniorityJunior,
	"estágio":    SeniorityJunior,
	"intern":     SeniorityJunior,

	"pleno":       SeniorityMid,
	"mid":         SeniorityMid,
	"middle":      SeniorityMid,
	"semi senior": SeniorityMid,

	"sr":     SenioritySenior,
	"sr.":    SenioritySenior,
	"senior": SenioritySenior,
	"sênior": SenioritySenior,
	"lead":   SenioritySenior,
	"staff":  SenioritySenior,
}

// ParseSeniority maps a free-text value to a canonical band. Empty input
// stays empty; unrecognized non-empty input maps to SeniorityOther.
func ParseSeniority(s string) Seniority {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if level, ok := seniorityAliases[s]; ok {
		return level
	}
	return SeniorityOther
}
