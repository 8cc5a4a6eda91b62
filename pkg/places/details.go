package places

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"
)

const detailsFields = "website,formatted_phone_number,opening_hours,price_level,business_status,utc_offset,photo"

// detailsResponse is the JSON response from the Place Details endpoint.
type detailsResponse struct {
	Result detailsResult `json:"result"`
	Status string        `json:"status"`
}

type detailsResult struct {
	Website        string `json:"website"`
	FormattedPhone string `json:"formatted_phone_number"`
	OpeningHours   *struct {
		Periods []struct {
			Open *struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"open"`
			Close *struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"close"`
		} `json:"periods"`
	} `json:"opening_hours"`
	PriceLevel     int     `json:"price_level"`
	BusinessStatus string  `json:"business_status"`
	UTCOffset      int     `json:"utc_offset"`
	Photos         []photo `json:"photos"`
}

func (c *client) Details(ctx context.Context, placeID string) (*Details, error) {
	if placeID == "" {
		return nil, eris.New("places: place id is required")
	}

	params := url.Values{
		"place_id": {placeID},
		"fields":   {detailsFields},
		"key":      {c.apiKey},
	}

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return nil, err
	}

	var resp detailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "places: parse details response")
	}
	if resp.Status != "OK" {
		return nil, eris.Errorf("places: details status %s", resp.Status)
	}

	r := resp.Result
	d := &Details{
		Website:           r.Website,
		Phone:             r.FormattedPhone,
		PriceLevel:        r.PriceLevel,
		PermanentlyClosed: r.BusinessStatus == "CLOSED_PERMANENTLY",
		UTCOffsetMinutes:  r.UTCOffset,
	}
	if r.OpeningHours != nil {
		for _, p := range r.OpeningHours.Periods {
			if p.Open == nil {
				continue
			}
			period := OpeningPeriod{OpenDay: p.Open.Day, OpenTime: p.Open.Time}
			if p.Close != nil {
				period.CloseDay = p.Close.Day
				period.CloseTime = p.Close.Time
			}
			d.OpeningPeriods = append(d.OpeningPeriods, period)
		}
	}
	for _, ph := range r.Photos {
		if ph.PhotoReference != "" {
			d.PhotoReferences = append(d.PhotoReferences, ph.PhotoReference)
		}
	}
	return d, nil
}
