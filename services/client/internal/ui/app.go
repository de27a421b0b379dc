package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
)

var errMissingToken = errors.New("login response carried no token")

// Backend is every backend call the client makes.
type Backend interface {
	ReferenceSource
	FormBackend
	ListBackend
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

// Session holds the bearer token across runs.
type Session interface {
	Token() string
	LoggedIn() bool
	Set(token string) error
	Clear() error
}

// Intent names a user action.
type Intent string

const (
	IntentActivate   Intent = "activate"
	IntentSelectCity Intent = "select-city"
	IntentFilter     Intent = "filter"
	IntentRefresh    Intent = "refresh"
	IntentSetFields  Intent = "set-fields"
	IntentSubmit     Intent = "submit"
	IntentReset      Intent = "reset"
	IntentEdit       Intent = "edit"
	IntentView       Intent = "view"
	IntentDelete     Intent = "delete"
	IntentLookup     Intent = "lookup"
	IntentShowMap    Intent = "show-map"
	IntentLogin      Intent = "login"
	IntentRegister   Intent = "register"
	IntentLogout     Intent = "logout"
)

// Command is one dispatched user action. Only the members the intent needs are read.
type Command struct {
	Intent   Intent
	ID       int64
	Value    string
	Filter   models.Filter
	Fields   map[string]string
	Username string
	Password string
}

// Handler runs one intent.
type Handler func(ctx context.Context, cmd Command) error

// App is the client session: shared filter, token, form, list and map. Every user
// action goes through Dispatch.
type App struct {
	api      Backend
	session  Session
	notifier Notifier
	logger   *zap.Logger

	filter models.Filter
	detail *models.Tree

	Refs *ReferenceLoader
	Form *FormController
	List *ListView
	Map  *MapView

	handlers map[Intent]Handler
}

// NewApp wires the views around api. confirmer answers the delete prompt.
func NewApp(api Backend, session Session, notifier Notifier, confirmer Confirmer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
	refresh := func(ctx context.Context) { _ = a.RefreshViews(ctx) }
	a.Refs = NewReferenceLoader(api, notifier)
	a.Form = NewFormController(api, notifier, refresh)
	a.List = NewListView(api, notifier, confirmer, refresh)
	a.Map = NewMapView(api, notifier, logger.Named("map"))

	a.handlers = map[Intent]Handler{
		IntentActivate:   a.activate,
		IntentSelectCity: a.selectCity,
		IntentFilter:     a.applyFilter,
		IntentRefresh:    func(ctx context.Context, _ Command) error { return a.RefreshViews(ctx) },
		IntentSetFields:  func(_ context.Context, cmd Command) error { return a.apply(cmd.Fields) },
		IntentSubmit:     a.submit,
		IntentReset:      func(context.Context, Command) error { a.Form.Reset(); return nil },
		IntentEdit:       func(ctx context.Context, cmd Command) error { return a.Form.Edit(ctx, cmd.ID) },
		IntentView:       a.view,
		IntentDelete:     a.delete,
		IntentLookup:     func(ctx context.Context, cmd Command) error { _, err := a.List.Lookup(ctx, cmd.Value); return err },
		IntentShowMap:    func(ctx context.Context, _ Command) error { return a.Map.Activate(ctx, a.filter) },
		IntentLogin:      a.login,
		IntentRegister:   a.register,
		IntentLogout:     a.logout,
	}
	return a
}

// Dispatch runs the handler registered for cmd.Intent.
func (a *App) Dispatch(ctx context.Context, cmd Command) error {
	h, ok := a.handlers[cmd.Intent]
	if !ok {
		return fmt.Errorf("unknown intent %q", cmd.Intent)
	}
	a.logger.Debug("dispatch", zap.String("intent", string(cmd.Intent)), zap.Int64("id", cmd.ID))
	return h(ctx, cmd)
}

// Filter returns the filter shared by the list and the map.
func (a *App) Filter() models.Filter { return a.filter }

// LoggedIn reports whether a bearer token is held.
func (a *App) LoggedIn() bool { return a.session.LoggedIn() }

// Detail returns the record loaded by the last view intent, for read-only display.
func (a *App) Detail() (models.Tree, bool) {
	if a.detail == nil {
		return models.Tree{}, false
	}
	return *a.detail, true
}

// RefreshViews re-runs the shared filter against the list and, once created, the map.
func (a *App) RefreshViews(ctx context.Context) error {
	return errors.Join(a.List.Refresh(ctx, a.filter), a.Map.Refresh(ctx, a.filter))
}

func (a *App) activate(ctx context.Context, _ Command) error {
	if err := a.Refs.Activate(ctx); err != nil {
		return err
	}
	return a.RefreshViews(ctx)
}

func (a *App) selectCity(ctx context.Context, cmd Command) error {
	a.filter.City = strings.TrimSpace(cmd.Value)
	if err := a.Refs.SelectCity(ctx, a.filter.City); err != nil {
		return err
	}
	return a.RefreshViews(ctx)
}

func (a *App) applyFilter(ctx context.Context, cmd Command) error {
	a.filter = models.Filter{
		City:    strings.TrimSpace(cmd.Filter.City),
		Address: strings.TrimSpace(cmd.Filter.Address),
	}
	a.Refs.Cities.Select(a.filter.City)
	return a.RefreshViews(ctx)
}

func (a *App) submit(ctx context.Context, cmd Command) error {
	if len(cmd.Fields) > 0 {
		if err := a.apply(cmd.Fields); err != nil {
			return err
		}
	}
	_, err := a.Form.Submit(ctx)
	return err
}

func (a *App) apply(fields map[string]string) error {
	if err := a.Form.Apply(EditRequest{Fields: fields}); err != nil {
		notifyError(a.notifier, err)
		return err
	}
	return nil
}

func (a *App) view(ctx context.Context, cmd Command) error {
	tree, err := a.List.Detail(ctx, cmd.ID)
	if err != nil {
		return err
	}
	a.detail = &tree
	return nil
}

func (a *App) delete(ctx context.Context, cmd Command) error {
	_, err := a.List.Delete(ctx, cmd.ID)
	return err
}

func (a *App) login(ctx context.Context, cmd Command) error {
	token, err := a.api.Login(ctx, cmd.Username, cmd.Password)
	if err == nil && token == "" {
		err = errMissingToken
	}
	if err != nil {
		notifyError(a.notifier, err)
		return err
	}
	if err := a.session.Set(token); err != nil {
		notifyError(a.notifier, err)
		return err
	}
	notifyInfo(a.notifier, "Login successful")
	return nil
}

func (a *App) register(ctx context.Context, cmd Command) error {
	msg, err := a.api.Register(ctx, cmd.Username, cmd.Password)
	if err != nil {
		notifyError(a.notifier, err)
		return err
	}
	notifyInfo(a.notifier, msg)
	return nil
}

// logout drops the local token even when the backend cannot be told.
func (a *App) logout(ctx context.Context, _ Command) error {
	if a.session.LoggedIn() {
		if err := a.api.Logout(ctx); err != nil {
			a.logger.Warn("token revoke failed", zap.Error(err))
		}
	}
	if err := a.session.Clear(); err != nil {
		notifyError(a.notifier, err)
		return err
	}
	notifyInfo(a.notifier, "Logged out")
	return nil
}
