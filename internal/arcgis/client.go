// Package arcgis fetches Dublin City Council planning applications from the
// public Irish Planning Applications feature service. The service is run by
// the Department of Housing and needs no authentication.
package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultBaseURL is the query endpoint of the feature service layer.
	DefaultBaseURL = "https://services.arcgis.com/NzlPQPKn5QF9v2US/arcgis/rest/services/IrishPlanningApplications/FeatureServer/0/query"

	// PlanningAuthority restricts every query to Dublin City Council rows.
	PlanningAuthority = "Dublin City Council"

	// DefaultPageSize matches the service's usual per-request cap.
	DefaultPageSize = 2000

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// apiError is the error envelope ArcGIS returns inside a 200 response.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type queryResponse struct {
	Count    *int `json:"count"`
	Features []struct {
		Attributes map[string]any `json:"attributes"`
	} `json:"features"`
	Error *apiError `json:"error"`
}

// FetchResult reports what a full fetch run produced.
type FetchResult struct {
	Total        int
	Fetched      int
	SkippedPages int
	Duration     time.Duration
}

// Client pages through the feature service. Raw attribute maps come back
// untyped; normalization happens downstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	logger     *slog.Logger
}

// NewClient creates a feature service client. A pageSize of 0 selects the
// default.
func NewClient(baseURL string, pageSize int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Count returns the total number of Dublin City Council records.
func (c *Client) Count(ctx context.Context) (int, error) {
	params := url.Values{
		"where":           {authorityClause()},
		"returnCountOnly": {"true"},
		"f":               {"json"},
	}

	resp, err := c.query(ctx, params)
	if err != nil {
		return 0, err
	}
	if resp.Count == nil {
		return 0, fmt.Errorf("count query returned no count field")
	}
	return *resp.Count, nil
}

// FetchPage returns one page of raw attribute maps starting at offset.
// Pages are ordered by OBJECTID so a paged walk sees every row exactly once.
func (c *Client) FetchPage(ctx context.Context, offset int) ([]map[string]any, error) {
	params := url.Values{
		"where":             {authorityClause()},
		"outFields":         {"*"},
		"resultOffset":      {strconv.Itoa(offset)},
		"resultRecordCount": {strconv.Itoa(c.pageSize)},
		"orderByFields":     {"OBJECTID ASC"},
		"f":                 {"json"},
	}

	resp, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(resp.Features))
	for _, feature := range resp.Features {
		records = append(records, feature.Attributes)
	}
	return records, nil
}

// FetchAll pages through every record. Each page is retried with
// exponential backoff; a page that keeps failing is logged and skipped so
// one bad offset cannot sink a multi-hour fetch.
func (c *Client) FetchAll(ctx context.Context) ([]map[string]any, *FetchResult, error) {
	start := time.Now()

	total, err := c.Count(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("count records: %w", err)
	}
	if total == 0 {
		return nil, nil, fmt.Errorf("no records found for %q, the service may be unavailable", PlanningAuthority)
	}
	c.logger.Info("Starting fetch", "authority", PlanningAuthority, "total", total)

	result := &FetchResult{Total: total}
	records := make([]map[string]any, 0, total)

	for offset := 0; offset < total; offset += c.pageSize {
		page, err := c.fetchPageWithRetry(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			c.logger.Warn("Page failed, skipping", "offset", offset, "error", err)
			result.SkippedPages++
			continue
		}

		records = append(records, page...)
		c.logger.Info("Fetched page",
			"offset", offset,
			"records", len(records),
			"progress", fmt.Sprintf("%.1f%%", float64(len(records))/float64(total)*100),
		)
	}

	result.Fetched = len(records)
	result.Duration = time.Since(start)
	return records, result, nil
}

// errEmptyPage marks a 200 response with no features at an offset the count
// says should have rows. The service produces these transiently under load.
var errEmptyPage = errors.New("page returned no features")

func (c *Client) fetchPageWithRetry(ctx context.Context, offset int) ([]map[string]any, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)

	var page []map[string]any
	err := backoff.Retry(func() error {
		var err error
		page, err = c.FetchPage(ctx, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return errEmptyPage
		}
		return nil
	}, policy)
	return page, err
}

func (c *Client) query(ctx context.Context, params url.Values) (*queryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query feature service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feature service returned %d: %s", resp.StatusCode, body)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("feature service error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	return &parsed, nil
}

func authorityClause() string {
	return fmt.Sprintf("PlanningAuthority='%s'", PlanningAuthority)
}
