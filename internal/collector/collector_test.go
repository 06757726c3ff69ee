package collector

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/provider"
)

type fakeProvider struct {
	name    string
	records []provider.Record
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(context.Context, string, string, int) ([]provider.Record, error) {
	return f.records, f.err
}

func TestCollectStampsSourceAndKeepsOrder(t *testing.T) {
	c := New(zap.NewNop(),
		&fakeProvider{name: "adzuna", records: []provider.Record{{"id": "1"}}},
		&fakeProvider{name: "greenhouse", records: []provider.Record{{"id": "2", "source": "custom"}}},
	)

	got, err := c.Collect(context.Background(), "python", "", 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["source"] != "adzuna" {
		t.Fatalf("expected the provider name stamped, got %v", got[0]["source"])
	}
	// An explicit source is never overwritten.
	if got[1]["source"] != "custom" {
		t.Fatalf("expected the record source kept, got %v", got[1]["source"])
	}
}

func TestCollectSkipsFailingProvider(t *testing.T) {
	c := New(zap.NewNop(),
		&fakeProvider{name: "broken", err: errors.New("boom")},
		&fakeProvider{name: "adzuna", records: []provider.Record{{"id": "1"}}},
	)

	got, err := c.Collect(context.Background(), "python", "", 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the healthy provider's records, got %d", len(got))
	}
}

func TestCollectAllProvidersFailed(t *testing.T) {
	c := New(zap.NewNop(),
		&fakeProvider{name: "a", err: errors.New("boom")},
		&fakeProvider{name: "b", err: errors.New("boom")},
	)

	if _, err := c.Collect(context.Background(), "python", "", 1); err == nil {
		t.Fatal("expected an error when every provider fails")
	}
}

func TestCollectNoProviders(t *testing.T) {
	if _, err := New(zap.NewNop()).Collect(context.Background(), "", "", 1); err == nil {
		t.Fatal("expected an error with no providers configured")
	}
}
