package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/02loveslollipop/arbor-inventory/services/api/config"
	"github.com/02loveslollipop/arbor-inventory/services/api/db"
)

type fakeGeocoder struct {
	lat, lon float64
	ok       bool
	err      error
	queries  []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, q string) (float64, float64, bool, error) {
	g.queries = append(g.queries, q)
	return g.lat, g.lon, g.ok, g.err
}

type testAPI struct {
	t      *testing.T
	server *Server
	token  string
}

func newTestAPI(t *testing.T, requireAuth bool, opts ...Option) *testAPI {
	t.Helper()
	cfg := config.Config{Port: 0, RequireAuth: requireAuth}
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	return &testAPI{t: t, server: New(cfg, db.NewMemory(), zaptest.NewLogger(t), opts...)}
}

func (a *testAPI) do(method, path string, body any) (int, map[string]any, []byte) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.server.Engine().ServeHTTP(rec, req)

	raw := rec.Body.Bytes()
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return rec.Code, obj, raw
}

func (a *testAPI) login(username string) {
	a.t.Helper()
	code, _, _ := a.do(http.MethodPost, "/register", map[string]string{"username": username, "password": "pw"})
	require.Equal(a.t, http.StatusCreated, code)
	code, body, _ := a.do(http.MethodPost, "/login", map[string]string{"username": username, "password": "pw"})
	require.Equal(a.t, http.StatusOK, code)
	a.token = body["token"].(string)
}

func (a *testAPI) addTree(fields map[string]any) int64 {
	a.t.Helper()
	code, body, raw := a.do(http.MethodPost, "/add_tree", fields)
	require.Equal(a.t, http.StatusCreated, code, string(raw))
	return int64(body["id"].(float64))
}

func (a *testAPI) listTrees(path string) []db.Tree {
	a.t.Helper()
	code, _, raw := a.do(http.MethodGet, path, nil)
	require.Equal(a.t, http.StatusOK, code)
	var trees []db.Tree
	require.NoError(a.t, json.Unmarshal(raw, &trees))
	return trees
}

func baseTree(customID, city, address string) map[string]any {
	return map[string]any{
		"custom_id": customID,
		"city":      city,
		"address":   address,
		"species":   "Platanus",
		"condition": "good",
		"latitude":  45.07,
		"longitude": 7.69,
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, false)
	code, body, _ := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestMutationsRequireToken(t *testing.T) {
	api := newTestAPI(t, true)

	code, body, _ := api.do(http.MethodPost, "/add_tree", baseTree("T1", "Torino", "Via Roma"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization required", body["message"])

	api.token = "not-a-real-token"
	code, _, _ = api.do(http.MethodDelete, "/tree/1", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	api.token = ""
	api.login("alice")
	api.addTree(baseTree("T1", "Torino", "Via Roma"))
}

func TestTreeLifecycle(t *testing.T) {
	api := newTestAPI(t, true)
	api.login("alice")

	fields := baseTree("T-100", "Torino", "Via Roma 12")
	fields["next_check"] = "2026-05-01"
	fields["trunk_diameter_cm"] = 42.5
	fields["height"] = "M"
	id := api.addTree(fields)

	code, _, raw := api.do(http.MethodGet, "/tree/custom/T-100", nil)
	require.Equal(t, http.StatusOK, code)
	var byCustom db.Tree
	require.NoError(t, json.Unmarshal(raw, &byCustom))

	code, _, raw = api.do(http.MethodGet, "/tree/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, code)
	var byID db.Tree
	require.NoError(t, json.Unmarshal(raw, &byID))

	assert.Equal(t, byCustom, byID)
	assert.Equal(t, id, byID.ID)
	require.NotNil(t, byID.NextCheck)
	assert.Equal(t, "2026-05-01", *byID.NextCheck)
	require.NotNil(t, byID.TrunkDiameterCM)
	assert.Equal(t, 42.5, *byID.TrunkDiameterCM)
	assert.Nil(t, byID.CrownDiameterM)

	code, body, _ := api.do(http.MethodPatch, "/tree/"+itoa(id), map[string]any{
		"id":        999,
		"condition": "poor",
		"comments":  "needs pruning",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tree "+itoa(id)+" updated successfully!", body["message"])

	code, _, raw = api.do(http.MethodGet, "/tree/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, code)
	var updated db.Tree
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "poor", updated.Condition)
	assert.Equal(t, "needs pruning", updated.Comments)
	assert.Equal(t, "Platanus", updated.Species)

	code, body, _ = api.do(http.MethodDelete, "/tree/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tree "+itoa(id)+" deleted successfully!", body["message"])

	code, body, _ = api.do(http.MethodGet, "/tree/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Tree not found", body["message"])

	code, _, _ = api.do(http.MethodDelete, "/tree/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAddTreeValidation(t *testing.T) {
	api := newTestAPI(t, false)

	code, body, _ := api.do(http.MethodPost, "/add_tree", map[string]any{"city": "Torino", "species": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: custom_id, species, condition", body["message"])

	bad := baseTree("T1", "Torino", "Via Roma")
	bad["next_check"] = "01/05/2026"
	code, body, _ = api.do(http.MethodPost, "/add_tree", bad)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, invalidNextCheckMsg, body["message"])

	api.addTree(baseTree("T1", "Torino", "Via Roma"))
	code, _, _ = api.do(http.MethodPost, "/add_tree", baseTree("T1", "Milano", "Corso Como"))
	assert.Equal(t, http.StatusConflict, code)
}

func TestPatchRejectsClearingRequiredField(t *testing.T) {
	api := newTestAPI(t, false)
	id := api.addTree(baseTree("T1", "Torino", "Via Roma"))

	code, body, _ := api.do(http.MethodPatch, "/tree/"+itoa(id), map[string]any{"species": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: species", body["message"])

	code, _, _ = api.do(http.MethodPatch, "/tree/"+itoa(id), map[string]any{"latitude": "north"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = api.do(http.MethodPatch, "/tree/abc", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = api.do(http.MethodPatch, "/tree/77", map[string]any{"species": "Quercus"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListFiltersAndReferenceData(t *testing.T) {
	api := newTestAPI(t, false)
	api.addTree(baseTree("T1", "Torino", "Via Roma 1"))
	api.addTree(baseTree("T2", "Torino", "Corso Francia 3"))
	api.addTree(baseTree("T3", "Milano", "Via Roma 9"))
	api.addTree(baseTree("T4", "torino", "via roma 20"))

	trees := api.listTrees("/trees?city=Torino&address=Via%20Roma")
	require.Len(t, trees, 2)
	for _, tr := range trees {
		assert.Equal(t, "torino", lower(tr.City))
		assert.Contains(t, lower(tr.Address), "via roma")
	}

	assert.Len(t, api.listTrees("/trees?city="), 4)
	assert.Len(t, api.listTrees("/trees?address=roma"), 3)
	assert.Empty(t, api.listTrees("/trees?city=Napoli"))

	code, _, raw := api.do(http.MethodGet, "/cities", nil)
	require.Equal(t, http.StatusOK, code)
	var cities []string
	require.NoError(t, json.Unmarshal(raw, &cities))
	assert.Equal(t, []string{"Milano", "Torino", "torino"}, cities)

	code, _, raw = api.do(http.MethodGet, "/streets/Torino", nil)
	require.Equal(t, http.StatusOK, code)
	var streets []string
	require.NoError(t, json.Unmarshal(raw, &streets))
	assert.Equal(t, []string{"Corso Francia 3", "Via Roma 1", "via roma 20"}, streets)
}

func TestEmptyListIsArray(t *testing.T) {
	api := newTestAPI(t, false)
	code, _, raw := api.do(http.MethodGet, "/trees", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSlashInPathSegments(t *testing.T) {
	api := newTestAPI(t, false)
	id := api.addTree(baseTree("TO/001", "A/B", "Via Roma 1"))

	code, body, _ := api.do(http.MethodGet, "/tree/custom/TO%2F001", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "TO/001", body["custom_id"])
	assert.EqualValues(t, id, body["id"])

	code, _, raw := api.do(http.MethodGet, "/streets/A%2FB", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["Via Roma 1"]`, string(raw))
}

func TestUnknownRouteAnswersJSON(t *testing.T) {
	api := newTestAPI(t, false)
	code, body, _ := api.do(http.MethodGet, "/nowhere/at/all", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not found", body["message"])
}

func TestGeocodingFillsMissingCoordinates(t *testing.T) {
	geo := &fakeGeocoder{lat: 45.1, lon: 7.7, ok: true}
	api := newTestAPI(t, false, WithGeocoder(geo))

	fields := baseTree("T1", "Torino", "Via Roma 1")
	delete(fields, "latitude")
	delete(fields, "longitude")
	id := api.addTree(fields)

	require.Equal(t, []string{"Via Roma 1, Torino"}, geo.queries)
	trees := api.listTrees("/trees")
	require.Len(t, trees, 1)
	assert.Equal(t, id, trees[0].ID)
	require.NotNil(t, trees[0].Latitude)
	assert.Equal(t, 45.1, *trees[0].Latitude)

	// trees that already carry coordinates are not geocoded
	api.addTree(baseTree("T2", "Torino", "Via Po"))
	assert.Len(t, geo.queries, 1)
}

func TestGeocodingFailureKeepsTreeWithoutPosition(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("upstream down")}
	api := newTestAPI(t, false, WithGeocoder(geo))

	fields := baseTree("T1", "Torino", "Via Roma 1")
	delete(fields, "latitude")
	api.addTree(fields)

	trees := api.listTrees("/trees")
	require.Len(t, trees, 1)
	assert.Nil(t, trees[0].Latitude)
}

func TestAccounts(t *testing.T) {
	api := newTestAPI(t, true)

	code, body, _ := api.do(http.MethodPost, "/register", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username and password are required", body["message"])

	code, _, _ = api.do(http.MethodPost, "/register", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusCreated, code)
	code, _, _ = api.do(http.MethodPost, "/register", map[string]string{"username": "bob", "password": "pw"})
	assert.Equal(t, http.StatusConflict, code)

	code, body, _ = api.do(http.MethodPost, "/login", map[string]string{"username": "bob", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", body["message"])

	code, body, _ = api.do(http.MethodPost, "/login", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	api.token = body["token"].(string)
	api.addTree(baseTree("T1", "Torino", "Via Roma"))

	code, _, _ = api.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, code)
	code, _, _ = api.do(http.MethodPost, "/add_tree", baseTree("T2", "Torino", "Via Po"))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, false)
	api.do(http.MethodGet, "/cities", nil)

	code, _, raw := api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(raw), `arbor_http_requests_total{method="GET",route="/cities",status="200"} 1`)
}
