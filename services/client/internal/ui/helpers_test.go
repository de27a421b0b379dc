package ui

import (
	"net/http"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/02loveslollipop/arbor-inventory/services/api/db"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/gateway"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/session"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/testutil"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/treeapi"
)

// countingTransport counts the requests that actually leave the client.
type countingTransport struct {
	next http.RoundTripper
	n    atomic.Int64
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.n.Add(1)
	return c.next.RoundTrip(req)
}

type fixture struct {
	app      *App
	backend  *testutil.Backend
	notices  *Recorder
	tokens   *session.TokenStore
	requests *countingTransport
	confirm  bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t, true)
	tokens, err := session.Load("")
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	f := &fixture{
		backend:  backend,
		notices:  &Recorder{},
		tokens:   tokens,
		requests: &countingTransport{next: backend.Server.Client().Transport},
		confirm:  true,
	}
	logger := zaptest.NewLogger(t)
	gw := gateway.New(backend.URL, &http.Client{Transport: f.requests}, tokens, logger)
	api := treeapi.New(gw)
	f.app = NewApp(api, tokens, f.notices, ConfirmFunc(func(string) bool { return f.confirm }), logger)
	return f
}

// login gives the fixture a valid token without going through the app.
func (f *fixture) login(t *testing.T) {
	t.Helper()
	if err := f.tokens.Set(f.backend.Token(t, "ranger", "s3cret")); err != nil {
		t.Fatalf("set token: %v", err)
	}
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

var seedTrees = []db.Tree{
	{CustomID: "TO-001", City: "Torino", Address: "Via Roma 12", Species: "Platanus", Condition: "Good",
		Latitude: fptr(45.0677), Longitude: fptr(7.6824), NextCheck: sptr("2025-04-01")},
	{CustomID: "TO-002", City: "Torino", Address: "Corso Francia 3", Species: "Tilia", Condition: "Fair"},
	{CustomID: "MI-001", City: "Milano", Address: "Via Roma 1", Species: "Quercus", Condition: "Poor",
		Latitude: fptr(45.4642), Longitude: fptr(9.19)},
}
