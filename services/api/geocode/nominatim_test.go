package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Via Roma 1, Torino", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "tree_locator", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"45.0677","lon":"7.6824","display_name":"Via Roma"}]`))
	}))
	defer srv.Close()

	g := NewNominatim(srv.Client(), srv.URL, "tree_locator")
	lat, lon, ok, err := g.Geocode(context.Background(), "Via Roma 1, Torino")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 45.0677, lat, 1e-9)
	assert.InDelta(t, 7.6824, lon, 1e-9)
}

func TestGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, _, ok, err := NewNominatim(srv.Client(), srv.URL, "").Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, _, err := NewNominatim(srv.Client(), srv.URL, "").Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
