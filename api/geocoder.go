package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// defaultGeocoderURL is the public Nominatim endpoint.
const defaultGeocoderURL = "https://nominatim.openstreetmap.org"

// SearchLocations looks up ranked location candidates for a free-text
// query. Search degrades to "no matches" rather than interrupting the
// flow: transport failures, non-2xx responses, and non-array bodies
// all yield an empty result set and a nil error.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]LocationCandidate, error) {
	base := c.geocoderURL
	if base == "" {
		base = defaultGeocoderURL
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "5")
	if c.countryCode != "" {
		params.Set("countrycodes", c.countryCode)
	}
	params.Set("accept-language", "en")

	resp, err := c.do(ctx, c.lookup, http.MethodGet,
		strings.TrimSuffix(base, "/")+"/search?"+params.Encode(),
		nil, "", false, "geocoder_search")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug("Geocoder lookup failed", "query", query, "error", err)
		return nil, nil
	}

	var candidates []LocationCandidate
	if err := json.Unmarshal(resp.Body, &candidates); err != nil {
		c.logger.Debug("Geocoder returned non-array body", "query", query, "error", err)
		return nil, nil
	}
	return candidates, nil
}
