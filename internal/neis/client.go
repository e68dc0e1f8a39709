package neis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"school-meal/internal/config"
)

// Client is an interface for the NEIS meal information API.
type Client interface {
	FetchMealInfo(ctx context.Context, date string) ([]MealRecord, error)
}

// neisClient is the concrete implementation of the NEIS API client.
type neisClient struct {
	httpClient *http.Client
	baseURL    string
	officeCode string
	schoolCode string
}

// NewClient creates a new NEIS API client. The HTTP client has no timeout;
// a request only ends early when its context is cancelled.
func NewClient(cfg *config.Config) Client {
	return &neisClient{
		httpClient: &http.Client{},
		baseURL:    cfg.NEISBaseURL,
		officeCode: cfg.OfficeCode,
		schoolCode: cfg.SchoolCode,
	}
}

// FormatQueryDate turns "YYYY-MM-DD" into the "YYYYMMDD" form the API expects.
func FormatQueryDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// BuildURL returns the request URL for the given date.
func (c *neisClient) BuildURL(date string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("Type", "json")
	q.Set("ATPT_OFCDC_SC_CODE", c.officeCode)
	q.Set("SD_SCHUL_CODE", c.schoolCode)
	q.Set("MLSV_YMD", FormatQueryDate(date))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchMealInfo fetches the meal rows for a date. A nil slice with a nil
// error means the API reported no meal information for that day.
func (c *neisClient) FetchMealInfo(ctx context.Context, date string) ([]MealRecord, error) {
	reqURL, err := c.BuildURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	parsed, err := DecodeResponse(body)
	if err != nil {
		return nil, err
	}
	return parsed.records(), nil
}
