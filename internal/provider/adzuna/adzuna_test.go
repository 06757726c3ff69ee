package adzuna

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func testClient(serverURL string) *Client {
	c := New(zap.NewNop(), "id", "key", "br")
	c.APIURL = serverURL
	return c
}

func TestFetchPagesUntilEmpty(t *testing.T) {
	var pagesServed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed.Add(1)

		if got := r.URL.Query().Get("app_id"); got != "id" {
			t.Errorf("expected app_id to be sent, got %q", got)
		}
		if got := r.URL.Query().Get("what"); got != "python backend" {
			t.Errorf("expected simplified query, got %q", got)
		}

		resp := map[string]any{"results": []map[string]any{}}
		if pagesServed.Load() == 1 {
			resp["results"] = []map[string]any{
				{"id": 101, "title": "Python Dev"},
				{"id": 102, "title": "Backend Dev"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.Fetch(context.Background(), `python AND "backend"`, "", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// Page two came back empty, so pages three to five were never asked for.
	if pagesServed.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", pagesServed.Load())
	}
}

func TestFetchRetriesOnThrottle(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"id": 1, "title": "Dev"}},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.Fetch(context.Background(), "python", "", 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if requests.Load() != 2 {
		t.Fatalf("expected a retry after 429, got %d requests", requests.Load())
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.Fetch(context.Background(), "python", "", 1); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if requests.Load() != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, requests.Load())
	}
}

func TestFetchRequiresCredentials(t *testing.T) {
	c := New(zap.NewNop(), "", "", "br")
	if _, err := c.Fetch(context.Background(), "python", "", 1); err == nil {
		t.Fatal("expected an error without credentials")
	}
}

func TestSimplifyQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`python AND (django OR flask)`, "python django flask"},
		{`"engenheiro de dados" E sql OU spark`, "engenheiro de dados sql spark"},
		{"plain terms", "plain terms"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := SimplifyQuery(tc.in); got != tc.want {
			t.Fatalf("SimplifyQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
