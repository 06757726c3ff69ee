package ranking

import (
	"math"
	"testing"

	"github.com/lmoreira/jobmatch/internal/job"
)

func TestApplyPreferencesCumulative(t *testing.T) {
	pairs := []Pair{
		{Job: &job.Job{ID: "1", Location: "Remoto - São Paulo"}, Score: 0.5},
	}
	prefs := Preferences{
		Prefer:      []string{"são paulo"},
		Ban:         []string{"paulo"},
		BoostRemote: 0.1,
		BoostMatch:  0.05,
		PenaltyBan:  0.10,
	}

	got := ApplyPreferences(pairs, prefs)
	// remote +0.1, prefer +0.05, ban -0.10 — all three apply.
	if want := 0.55; math.Abs(got[0].Score-want) > 1e-12 {
		t.Fatalf("expected cumulative score %v, got %v", want, got[0].Score)
	}
}

func TestApplyPreferencesCaseFolding(t *testing.T) {
	pairs := []Pair{
		{Job: &job.Job{ID: "1", Location: "REMOTE (Home Office)"}, Score: 0.2},
	}
	got := ApplyPreferences(pairs, Preferences{BoostRemote: 0.1})
	if want := 0.3; math.Abs(got[0].Score-want) > 1e-12 {
		t.Fatalf("expected remote boost, got %v", got[0].Score)
	}
}

func TestApplyPreferencesNoClamping(t *testing.T) {
	pairs := []Pair{
		{Job: &job.Job{ID: "1", Location: "Curitiba"}, Score: 0.05},
		{Job: &job.Job{ID: "2", Location: "Remoto"}, Score: 0.98},
	}
	prefs := Preferences{
		Ban:         []string{"curitiba"},
		BoostRemote: 0.1,
		PenaltyBan:  0.10,
	}

	got := ApplyPreferences(pairs, prefs)
	if got[0].Score >= 0 {
		t.Fatalf("expected the banned score to go negative, got %v", got[0].Score)
	}
	if got[1].Score <= 1 {
		t.Fatalf("expected the boosted score to exceed 1, got %v", got[1].Score)
	}
}

func TestApplyPreferencesEmptyLocation(t *testing.T) {
	pairs := []Pair{
		{Job: &job.Job{ID: "1"}, Score: 0.4},
	}
	prefs := Preferences{
		Prefer:      []string{""},
		BoostRemote: 0.1,
		BoostMatch:  0.05,
	}

	got := ApplyPreferences(pairs, prefs)
	if got[0].Score != 0.4 {
		t.Fatalf("expected an untouched score for an empty location, got %v", got[0].Score)
	}
}

func TestApplyPreferencesKeepsOrder(t *testing.T) {
	a := &job.Job{ID: "1", Location: "Remoto"}
	b := &job.Job{ID: "2", Location: "São Paulo"}
	got := ApplyPreferences([]Pair{{Job: a, Score: 0.1}, {Job: b, Score: 0.9}}, Preferences{BoostRemote: 0.5})
	if got[0].Job != a || got[1].Job != b {
		t.Fatal("expected the input order to be preserved")
	}
}
