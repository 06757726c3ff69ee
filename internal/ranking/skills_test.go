package ranking

import (
	"strings"
	"testing"

	"github.com/lmoreira/jobmatch/internal/job"
)

func TestSkillsRankEmptyInputs(t *testing.T) {
	jobs := []*job.Job{{Title: "Backend Engineer"}}

	if got := NewSkills(nil, nil).Rank(jobs, 5); len(got) != 0 {
		t.Fatalf("expected empty result for no skills, got %d pairs", len(got))
	}
	if got := NewSkills([]string{" ", ""}, nil).Rank(jobs, 5); len(got) != 0 {
		t.Fatalf("expected empty result for blank skills, got %d pairs", len(got))
	}
	if got := NewSkills([]string{"python"}, nil).Rank(nil, 5); len(got) != 0 {
		t.Fatalf("expected empty result for empty job list, got %d pairs", len(got))
	}
}

func TestSkillsRankCountsWordBoundaryHits(t *testing.T) {
	jobA := &job.Job{
		ID:          "a",
		Title:       "Python Backend Developer",
		Description: "Python services with SQL and more Python.",
	}
	jobB := &job.Job{
		ID:          "b",
		Title:       "MySQL DBA",
		Description: "mysql tuning",
	}

	s := NewSkills([]string{"python", "sql"}, nil)
	got := s.Rank([]*job.Job{jobB, jobA}, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(got))
	}

	// jobA: "python" three times + "sql" once. jobB never matches: "sql"
	// inside "mysql" is not a whole word.
	if got[0].Job != jobA || got[0].Score != 4 {
		t.Fatalf("expected jobA first with score 4, got %q with %v", got[0].Job.Title, got[0].Score)
	}
	if got[1].Score != 0 {
		t.Fatalf("expected no hits inside larger words, got %v", got[1].Score)
	}
}

func TestSkillsRankSymbolicSkillsMatchAsSubstrings(t *testing.T) {
	jobA := &job.Job{ID: "a", Title: "C++ Engineer", Description: "modern c++ on linux"}
	jobB := &job.Job{ID: "b", Title: "Java Engineer"}

	s := NewSkills([]string{"c++"}, nil)
	got := s.Rank([]*job.Job{jobB, jobA}, 2)
	if got[0].Job != jobA || got[0].Score != 2 {
		t.Fatalf("expected the c++ job first with score 2, got %q with %v", got[0].Job.Title, got[0].Score)
	}
}

func TestSkillsRankCapsHitsPerSkill(t *testing.T) {
	j := &job.Job{
		ID:          "a",
		Title:       "Python Developer",
		Description: strings.Repeat("python ", 20),
	}

	got := NewSkills([]string{"python"}, nil).Rank([]*job.Job{j}, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(got))
	}
	if got[0].Score != defaultMaxHitsPerSkill {
		t.Fatalf("expected the per-skill cap %d, got %v", defaultMaxHitsPerSkill, got[0].Score)
	}

	capped := NewSkills([]string{"python"}, &SkillsOptions{MaxHitsPerSkill: 2})
	if got := capped.Rank([]*job.Job{j}, 1); got[0].Score != 2 {
		t.Fatalf("expected the configured cap 2, got %v", got[0].Score)
	}
}

func TestSkillsRankTieBreakAndTruncation(t *testing.T) {
	jobs := []*job.Job{
		{ID: "2", Title: "Zookeeper"},
		{ID: "1", Title: "Accountant"},
		{ID: "3", Title: "Python Developer"},
	}

	got := NewSkills([]string{"python"}, nil).Rank(jobs, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(got))
	}
	if got[0].Job.Title != "Python Developer" {
		t.Fatalf("expected the matching job first, got %q", got[0].Job.Title)
	}
	// Zero-score ties fall back to the case-folded title.
	if got[1].Job.Title != "Accountant" {
		t.Fatalf("expected the tie to break on title, got %q", got[1].Job.Title)
	}
}
