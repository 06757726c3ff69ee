// Package greenhouse fetches job postings from Greenhouse job boards.
package greenhouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/provider"
	"github.com/lmoreira/jobmatch/internal/utils"
)

const (
	apiURL    = "https://boards-api.greenhouse.io/v1/boards"
	userAgent = "lmoreira/jobmatch (job search cli)"

	throttleBackoff = time.Second
)

type Client struct {
	boards []string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client for the given boards. Each board may be a plain
// slug ("acme") or a full board URL; URLs are reduced to their slug.
func New(logger *zap.Logger, boards []string) *Client {
	slugs := make([]string, 0, len(boards))
	for _, b := range boards {
		if slug := boardSlug(b); slug != "" {
			slugs = append(slugs, slug)
		}
	}

	return &Client{
		boards: slugs,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
	}
}

func (c *Client) Name() string { return "greenhouse" }

// Fetch collects every posting from every configured board. The board API
// has no search, so query, location and pages are ignored; filtering
// happens downstream. A failing board is logged and skipped, and the call
// only errors when no board could be fetched at all.
func (c *Client) Fetch(ctx context.Context, _, _ string, _ int) ([]provider.Record, error) {
	if len(c.boards) == 0 {
		return nil, errors.New("no greenhouse boards configured")
	}

	var records []provider.Record
	var failed int
	for _, board := range c.boards {
		jobs, err := c.boardJobs(ctx, board)
		if err != nil {
			failed++
			c.logger.Warn("skipping greenhouse board",
				zap.String("board", board),
				zap.Error(err),
			)
			continue
		}

		c.logger.Debug("got greenhouse board",
			zap.String("board", board),
			zap.Int("jobs", len(jobs)),
		)

		for _, rec := range jobs {
			if _, ok := rec["company"]; !ok {
				rec["company"] = board
			}
			records = append(records, rec)
		}
	}

	if failed == len(c.boards) {
		return nil, errors.New("all greenhouse boards failed")
	}

	return records, nil
}

type boardResponse struct {
	Jobs []provider.Record `json:"jobs"`
}

func (c *Client) boardJobs(ctx context.Context, board string) ([]provider.Record, error) {
	endpoint := fmt.Sprintf("%s/%s/jobs", c.APIURL, url.PathEscape(board))
	q := url.Values{}
	// content=true inlines the full posting HTML.
	q.Set("content", "true")

	throttled := false
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.UserAgent)
		req.URL.RawQuery = q.Encode()

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests && !throttled {
			resp.Body.Close()
			throttled = true
			if err := utils.WaitFor(ctx, throttleBackoff); err != nil {
				return nil, err
			}
			continue
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("bad status: %s", resp.Status)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var parsed boardResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, err
		}

		return parsed.Jobs, nil
	}
}

// boardSlug extracts the board token from a slug or a board URL such as
// https://boards.greenhouse.io/acme or the boards-api jobs endpoint.
func boardSlug(board string) string {
	board = strings.TrimSpace(board)
	if board == "" {
		return ""
	}
	if !strings.Contains(board, "/") {
		return board
	}

	u, err := url.Parse(board)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "boards" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 0 && parts[len(parts)-1] == "jobs" && len(parts) > 1 {
		return parts[len(parts)-2]
	}
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}
