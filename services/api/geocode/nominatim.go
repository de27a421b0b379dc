package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Nominatim resolves free-text addresses through a Nominatim-compatible search endpoint.
type Nominatim struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// NewNominatim builds a geocoder for endpoint (e.g. https://nominatim.openstreetmap.org/search).
func NewNominatim(client *http.Client, endpoint, userAgent string) *Nominatim {
	if client == nil {
		client = http.DefaultClient
	}
	return &Nominatim{client: client, endpoint: endpoint, userAgent: userAgent}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the best match for query. ok is false when the
// service knows no such place.
func (n *Nominatim) Geocode(ctx context.Context, query string) (lat, lon float64, ok bool, err error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, err
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("request geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, false, fmt.Errorf("decode payload: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, false, nil
	}

	lat, err = strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse lat: %w", err)
	}
	lon, err = strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse lon: %w", err)
	}
	return lat, lon, true, nil
}
