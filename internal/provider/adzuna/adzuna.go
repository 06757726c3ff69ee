// Package adzuna fetches job postings from the Adzuna search API.
package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lmoreira/jobmatch/internal/provider"
	"github.com/lmoreira/jobmatch/internal/utils"
)

const (
	apiURL         = "https://api.adzuna.com/v1/api/jobs"
	userAgent      = "lmoreira/jobmatch (job search cli)"
	defaultCountry = "br"
	// Hard API limit for results_per_page.
	maxPerPage = 50

	maxAttempts  = 3
	retryBackoff = time.Second
)

type Client struct {
	appID  string
	appKey string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Country    string
	PerPage    int
}

func New(logger *zap.Logger, appID, appKey, country string) *Client {
	if country = strings.TrimSpace(country); country == "" {
		country = defaultCountry
	}

	return &Client{
		appID:  appID,
		appKey: appKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		Country:   country,
		PerPage:   maxPerPage,
	}
}

func (c *Client) Name() string { return "adzuna" }

// Fetch pages through the search results until the requested page count is
// reached or the API returns an empty page.
func (c *Client) Fetch(ctx context.Context, query, location string, pages int) ([]provider.Record, error) {
	if c.appID == "" || c.appKey == "" {
		return nil, errors.New("adzuna credentials are not set")
	}
	if pages < 1 {
		pages = 1
	}

	var records []provider.Record
	for page := 1; page <= pages; page++ {
		resp, err := c.search(ctx, query, location, page)
		if err != nil {
			return nil, fmt.Errorf("adzuna page %d: %w", page, err)
		}

		c.logger.Debug("got adzuna page",
			zap.Int("page", page),
			zap.Int("results", len(resp.Results)),
		)

		if len(resp.Results) == 0 {
			break
		}
		records = append(records, resp.Results...)
	}

	return records, nil
}

type searchResponse struct {
	Results []provider.Record `json:"results"`
	Count   int               `json:"count"`
}

func (c *Client) search(ctx context.Context, query, location string, page int) (*searchResponse, error) {
	perPage := c.PerPage
	if perPage < 1 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("results_per_page", strconv.Itoa(perPage))
	q.Set("content-type", "application/json")
	if what := SimplifyQuery(query); what != "" {
		q.Set("what", what)
	}
	if location = strings.TrimSpace(location); location != "" {
		q.Set("where", location)
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", c.APIURL, c.Country, page)

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint, q, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// getJSON performs a GET with retry on throttling and server errors.
func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.UserAgent)
		req.URL.RawQuery = q.Encode()

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}

		if retryable(resp.StatusCode) && attempt < maxAttempts {
			resp.Body.Close()
			c.logger.Warn("adzuna request throttled, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			if err := utils.WaitFor(ctx, retryBackoff*time.Duration(attempt)); err != nil {
				return err
			}
			continue
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("bad status: %s", resp.Status)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		return json.Unmarshal(data, target)
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// SimplifyQuery strips the boolean syntax the search box does not
// understand: quotes, parentheses and AND/OR connectives in English and
// Portuguese. Plain terms pass through untouched.
func SimplifyQuery(query string) string {
	query = strings.NewReplacer(`"`, " ", "'", " ", "(", " ", ")", " ", "&", " ", "|", " ").Replace(query)

	var terms []string
	for _, term := range strings.Fields(query) {
		switch strings.ToUpper(term) {
		case "AND", "OR", "NOT", "E", "OU":
			continue
		}
		terms = append(terms, term)
	}

	return strings.Join(terms, " ")
}
