// Package datagov queries the data.gov.in open data API for MGNREGA
// district-level progress records.
package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nishajha1234/mgnrega-backend/models"
)

const (
	defaultBaseURL = "https://api.data.gov.in"

	// Resource identifier for the district-wise MGNREGA at-a-glance dataset.
	resourceID = "ee03643a-ee4c-48c2-ac30-9f2ff26ab722"

	requestTimeout = 20 * time.Second
)

var (
	// ErrRemoteUnavailable covers transport failures, timeouts and
	// non-success HTTP statuses from the upstream API.
	ErrRemoteUnavailable = errors.New("upstream data source unavailable")

	// ErrNoData means the upstream answered successfully but matched zero
	// records for the given filters.
	ErrNoData = errors.New("no records found")
)

// Filters narrow a resource query server-side. Empty fields are omitted.
type Filters struct {
	StateName    string
	DistrictCode string
	FinYear      string
}

// Client issues read-only queries against one data.gov.in resource.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client for the MGNREGA resource. baseURL may be empty
// to use the production endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type resourceResponse struct {
	Records []models.Payload `json:"records"`
}

// Fetch requests up to limit records matching the filters. It returns
// ErrNoData on an empty (but successful) result and ErrRemoteUnavailable on
// any transport or status failure. Retries are the caller's concern.
func (c *Client) Fetch(ctx context.Context, filters Filters, limit int) ([]models.Payload, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	if filters.StateName != "" {
		q.Set("filters[state_name]", filters.StateName)
	}
	if filters.DistrictCode != "" {
		q.Set("filters[district_code]", filters.DistrictCode)
	}
	if filters.FinYear != "" {
		q.Set("filters[fin_year]", filters.FinYear)
	}
	endpoint := c.baseURL + "/resource/" + resourceID + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var body resourceResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemoteUnavailable, err)
	}
	if len(body.Records) == 0 {
		return nil, ErrNoData
	}
	return body.Records, nil
}
