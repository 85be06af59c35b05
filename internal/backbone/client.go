// Package backbone is the HTTP client for the upstream booking API. It knows
// the API's join/search query conventions and nothing about reconciliation.
package backbone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coursedesk/coursedesk/internal/catalog"
)

const (
	// DefaultListLimit matches the page size the upstream UI requests.
	DefaultListLimit = 100
	// DefaultBookingLimit is the page size for a product's booking pool.
	DefaultBookingLimit = 60
	// CourseBookingLimit is used when fetching one course's bookings; course
	// pools are larger than the parent view shows.
	CourseBookingLimit = 300
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backbone: %s returned status %d", e.URL, e.Status)
}

// Client talks to the backbone API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListParams control product listing pagination.
type ListParams struct {
	Limit int
	Page  int
}

// BookingParams control booking queries. CourseID narrows the pool to one
// course when non-zero.
type BookingParams struct {
	Limit    int
	Page     int
	CourseID int64
}

// Page is the upstream collection envelope.
type Page[T any] struct {
	Data      []T `json:"data"`
	Count     int `json:"count"`
	Total     int `json:"total"`
	Page      int `json:"page"`
	PageCount int `json:"pageCount"`
}

// Products fetches the active product listing with its display joins.
func (c *Client) Products(ctx context.Context, params ListParams) (Page[catalog.Product], error) {
	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	search, err := json.Marshal(map[string]any{
		"isActive":             1,
		"tags.activeState":     true,
		"allowAsLinkedProduct": true,
	})
	if err != nil {
		return Page[catalog.Product]{}, fmt.Errorf("backbone: encode search filter: %w", err)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("page", strconv.Itoa(params.Page))
	q["join"] = []string{"tags", "documents", "translations", "location"}
	q.Set("s", string(search))

	var page Page[catalog.Product]
	if err := c.get(ctx, "/products", q, &page); err != nil {
		return Page[catalog.Product]{}, err
	}
	return page, nil
}

// Product fetches one product including its course set.
func (c *Client) Product(ctx context.Context, id int64) (catalog.Product, error) {
	q := url.Values{}
	q["join"] = []string{"tags", "location", "documents", "translations", "linkedSubscriptions", "courses"}

	var product catalog.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10), q, &product); err != nil {
		return catalog.Product{}, err
	}
	return product, nil
}

// Bookings fetches the booking pool linked to a product.
func (c *Client) Bookings(ctx context.Context, productID int64, params BookingParams) (Page[catalog.Booking], error) {
	if params.Limit <= 0 {
		params.Limit = DefaultBookingLimit
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	filter := map[string]any{
		"linkedProductId": map[string]any{"$in": []int64{productID}},
	}
	if params.CourseID != 0 {
		filter["courseId"] = params.CourseID
	}
	search, err := json.Marshal(filter)
	if err != nil {
		return Page[catalog.Booking]{}, fmt.Errorf("backbone: encode search filter: %w", err)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("s", string(search))

	var page Page[catalog.Booking]
	if err := c.get(ctx, "/bookings", q, &page); err != nil {
		return Page[catalog.Booking]{}, err
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("backbone: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backbone: %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return &StatusError{Status: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backbone: decode %s: %w", path, err)
	}
	return nil
}
