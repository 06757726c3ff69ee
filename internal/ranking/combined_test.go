package ranking

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/embedding"
	"github.com/lmoreira/jobmatch/internal/job"
)

func failingRegistry() *embedding.Registry {
	return embedding.NewRegistry(func(ctx context.Context, model string) (embedding.Encoder, error) {
		return nil, errors.New("backend down")
	})
}

func TestCombinedRankDegradesToLexical(t *testing.T) {
	lexical := NewLexical(nil)
	semantic := NewSemantic(failingRegistry(), nil, zap.NewNop())
	combined := NewCombined(lexical, semantic, zap.NewNop())

	jobs := []*job.Job{
		{ID: "1", Title: "Python Developer", Tags: []string{"python", "sql"}},
		{ID: "2", Title: "Go Developer", Tags: []string{"go"}},
		{ID: "3", Title: "Data Engineer", Tags: []string{"sql", "python"}},
	}
	profile := "python and sql developer"

	want := lexical.Rank(profile, jobs, len(jobs))
	got := combined.Rank(context.Background(), profile, jobs, len(jobs), "stub")

	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Job != want[i].Job {
			t.Fatalf("pair %d: expected %q, got %q", i, want[i].Job.Title, got[i].Job.Title)
		}
		if math.Abs(got[i].Score-want[i].Score) > 1e-12 {
			t.Fatalf("pair %d: expected lexical score %v, got %v", i, want[i].Score, got[i].Score)
		}
	}
}

func TestCombinedRankBlendsScores(t *testing.T) {
	jobA := &job.Job{ID: "a", Title: "Backend Developer", Tags: []string{"python"}}
	jobB := &job.Job{ID: "b", Title: "Frontend Developer", Tags: []string{"react"}}
	jobs := []*job.Job{jobA, jobB}
	profile := "python backend"

	enc := &stubEncoder{
		dims: 2,
		vectors: map[string][]float32{
			"python backend": {1, 0},
			jobA.MatchText(): {1, 0},
			jobB.MatchText(): {0, 1},
		},
	}

	lexical := NewLexical(nil)
	semantic := NewSemantic(stubRegistry(enc), nil, zap.NewNop())
	combined := NewCombined(lexical, semantic, zap.NewNop())

	lexScores := make(map[*job.Job]float64)
	for _, p := range lexical.Rank(profile, jobs, len(jobs)) {
		lexScores[p.Job] = p.Score
	}
	semPairs, err := semantic.Rank(context.Background(), profile, jobs, len(jobs), "stub")
	if err != nil {
		t.Fatalf("semantic Rank: %v", err)
	}
	semScores := make(map[*job.Job]float64)
	for _, p := range semPairs {
		semScores[p.Job] = p.Score
	}

	got := combined.Rank(context.Background(), profile, jobs, len(jobs), "stub")
	if len(got) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(got))
	}
	for _, p := range got {
		want := 0.6*semScores[p.Job] + 0.4*lexScores[p.Job]
		if math.Abs(p.Score-want) > 1e-12 {
			t.Fatalf("job %q: expected blended score %v, got %v", p.Job.Title, want, p.Score)
		}
	}
	if got[0].Job != jobA {
		t.Fatalf("expected the python backend job first, got %q", got[0].Job.Title)
	}
}

func TestCombinedRankJoinsByIdentity(t *testing.T) {
	// Two distinct postings sharing title, company and id must keep their
	// own scores.
	jobA := &job.Job{ID: "dup", Title: "Developer", Company: "Acme", Tags: []string{"python", "sql", "docker"}}
	jobB := &job.Job{ID: "dup", Title: "Developer", Company: "Acme", Tags: []string{"cobol"}}
	jobs := []*job.Job{jobA, jobB}

	lexical := NewLexical(nil)
	combined := NewCombined(lexical, NewSemantic(failingRegistry(), nil, zap.NewNop()), zap.NewNop())

	got := combined.Rank(context.Background(), "python sql docker developer", jobs, 2, "stub")
	if len(got) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(got))
	}
	if got[0].Job != jobA {
		t.Fatal("expected the matching posting first")
	}
	if got[0].Score <= got[1].Score {
		t.Fatalf("expected distinct scores for distinct postings, got %v and %v", got[0].Score, got[1].Score)
	}
}

func TestCombinedRankTruncates(t *testing.T) {
	lexical := NewLexical(nil)
	combined := NewCombined(lexical, nil, zap.NewNop())

	jobs := []*job.Job{
		{ID: "1", Title: "Python Developer", Tags: []string{"python"}},
		{ID: "2", Title: "Go Developer", Tags: []string{"go"}},
		{ID: "3", Title: "Data Engineer", Tags: []string{"sql"}},
	}

	if got := combined.Rank(context.Background(), "python developer", jobs, 1, ""); len(got) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(got))
	}
	if got := combined.Rank(context.Background(), "python developer", jobs, 10, ""); len(got) != 3 {
		t.Fatalf("expected min(k, N) = 3 pairs, got %d", len(got))
	}
}
