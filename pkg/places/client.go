// Package places provides a client for the Google Places Web Service: text
// search for candidate entities and a details fetch for a single entity.
package places

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client is the places-directory collaborator consumed by the resolver.
type Client interface {
	// TextSearch returns up to maxResults candidate places for a free-text
	// query. A query the API answers with zero results is ([], nil).
	TextSearch(ctx context.Context, query string, radiusMeters int) ([]Place, error)

	// Details fetches richer fields for one place.
	Details(ctx context.Context, placeID string) (*Details, error)
}

// Place is one candidate entity from a text search.
type Place struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Latitude         *float64
	Longitude        *float64
	Types            []string
	Rating           float64
	UserRatingsTotal int
	PhotoReferences  []string
}

// Details holds the richer fields available only from the details endpoint.
type Details struct {
	Website           string
	Phone             string
	OpeningPeriods    []OpeningPeriod
	PriceLevel        int
	PermanentlyClosed bool
	UTCOffsetMinutes  int
	PhotoReferences   []string
}

// OpeningPeriod is one weekly open/close span.
type OpeningPeriod struct {
	OpenDay   int
	OpenTime  string
	CloseDay  int
	CloseTime string
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit sets the requests-per-second limit applied to every API
// call. This is the inter-call pacing for the whole resolution pipeline.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxResults caps how many candidates a text search returns.
func WithMaxResults(n int) Option {
	return func(c *client) {
		c.maxResults = n
	}
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxResults int
}

// NewClient creates a places Client with the given options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		maxResults: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
