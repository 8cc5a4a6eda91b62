package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/placelist-cli/internal/resilience"
)

// textSearchResponse is the JSON response from the Text Search endpoint.
type textSearchResponse struct {
	Results []searchResult `json:"results"`
	Status  string         `json:"status"`
}

type searchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Photos           []photo  `json:"photos"`
}

type geometry struct {
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
}

func (c *client) TextSearch(ctx context.Context, query string, radiusMeters int) ([]Place, error) {
	params := url.Values{
		"query": {query},
		"key":   {c.apiKey},
	}
	if radiusMeters > 0 {
		params.Set("radius", strconv.Itoa(radiusMeters))
	}

	body, err := c.get(ctx, "/textsearch/json", params)
	if err != nil {
		return nil, err
	}

	var resp textSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "places: parse text search response")
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "OVER_QUERY_LIMIT":
		return nil, &resilience.StatusError{Service: "places", Status: http.StatusTooManyRequests}
	default:
		return nil, eris.Errorf("places: text search status %s", resp.Status)
	}

	results := resp.Results
	if c.maxResults > 0 && len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	out := make([]Place, 0, len(results))
	for _, r := range results {
		p := Place{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			FormattedAddress: r.FormattedAddress,
			Types:            r.Types,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
		}
		if loc := r.Geometry.Location; loc != nil {
			lat, lng := loc.Lat, loc.Lng
			p.Latitude = &lat
			p.Longitude = &lng
		}
		for _, ph := range r.Photos {
			if ph.PhotoReference != "" {
				p.PhotoReferences = append(p.PhotoReferences, ph.PhotoReference)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// get performs a rate-limited GET and returns the response body. Non-200
// statuses become StatusError so the retry policy can classify them.
func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrap(&resilience.StatusError{Service: "places", Status: resp.StatusCode}, "places: request")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}
	return body, nil
}
