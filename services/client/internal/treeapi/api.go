// Package treeapi exposes the tree inventory REST surface as typed calls.
package treeapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/gateway"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
)

// API issues one backend call per method. Tree mutations are auth-designated.
type API struct {
	gw *gateway.Client
}

// New wraps a gateway client.
func New(gw *gateway.Client) *API {
	return &API{gw: gw}
}

// Cities returns the city names in server order.
func (a *API) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	err := a.get(ctx, "/cities", &cities)
	return cities, err
}

// Streets returns the street names recorded for city.
func (a *API) Streets(ctx context.Context, city string) ([]string, error) {
	var streets []string
	err := a.get(ctx, "/streets/"+url.PathEscape(city), &streets)
	return streets, err
}

// TreesPath builds the filtered list query: city is always sent, address only when set.
func TreesPath(f models.Filter) string {
	path := "/trees?city=" + url.QueryEscape(f.City)
	if f.Address != "" {
		path += "&address=" + url.QueryEscape(f.Address)
	}
	return path
}

// Trees returns the trees matching f.
func (a *API) Trees(ctx context.Context, f models.Filter) ([]models.Tree, error) {
	var trees []models.Tree
	err := a.get(ctx, TreesPath(f), &trees)
	return trees, err
}

// Tree fetches one record by server id.
func (a *API) Tree(ctx context.Context, id int64) (models.Tree, error) {
	var tree models.Tree
	err := a.get(ctx, "/tree/"+strconv.FormatInt(id, 10), &tree)
	return tree, err
}

// TreeByCustomID fetches one record by its custom identifier.
func (a *API) TreeByCustomID(ctx context.Context, customID string) (models.Tree, error) {
	var tree models.Tree
	err := a.get(ctx, "/tree/custom/"+url.PathEscape(customID), &tree)
	return tree, err
}

// CreateTree posts a new record; the id field is never sent.
func (a *API) CreateTree(ctx context.Context, t models.Tree) (models.CreateResponse, error) {
	t.ID = 0
	var out models.CreateResponse
	err := a.send(ctx, http.MethodPost, "/add_tree", t, true, &out)
	return out, err
}

// UpdateTree patches record id with every field of t. The id itself is not sent.
func (a *API) UpdateTree(ctx context.Context, id int64, t models.Tree) (string, error) {
	t.ID = 0
	var out models.MessageResponse
	err := a.send(ctx, http.MethodPatch, "/tree/"+strconv.FormatInt(id, 10), t, true, &out)
	return out.Message, err
}

// DeleteTree removes record id. The Response is returned even for error statuses so
// callers can show the backend's message.
func (a *API) DeleteTree(ctx context.Context, id int64) (gateway.Response, error) {
	return a.gw.Request(ctx, http.MethodDelete, "/tree/"+strconv.FormatInt(id, 10), nil, true)
}

// Login exchanges credentials for a bearer token.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	var out models.LoginResponse
	err := a.send(ctx, http.MethodPost, "/login", models.Credentials{Username: username, Password: password}, false, &out)
	return out.Token, err
}

// Register creates an account and returns the backend's status message.
func (a *API) Register(ctx context.Context, username, password string) (string, error) {
	var out models.MessageResponse
	err := a.send(ctx, http.MethodPost, "/register", models.Credentials{Username: username, Password: password}, false, &out)
	return out.Message, err
}

// Logout asks the backend to revoke the held token.
func (a *API) Logout(ctx context.Context) error {
	resp, err := a.gw.Request(ctx, http.MethodPost, "/logout", nil, true)
	if err != nil {
		return err
	}
	return resp.Err()
}

func (a *API) get(ctx context.Context, path string, out any) error {
	return a.send(ctx, http.MethodGet, path, nil, false, out)
}

func (a *API) send(ctx context.Context, method, path string, body any, auth bool, out any) error {
	resp, err := a.gw.Request(ctx, method, path, body, auth)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.Decode(out)
}
