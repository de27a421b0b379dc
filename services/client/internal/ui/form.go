package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/utils"
)

// Mode is the state of the tree form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "EDIT"
	}
	return "CREATE"
}

// FormBackend is the backend subset the form submits through.
type FormBackend interface {
	Tree(ctx context.Context, id int64) (models.Tree, error)
	CreateTree(ctx context.Context, t models.Tree) (models.CreateResponse, error)
	UpdateTree(ctx context.Context, id int64, t models.Tree) (string, error)
}

// EditRequest carries a batch of form inputs keyed by field name.
type EditRequest struct {
	Fields map[string]string
}

// UnknownFieldError rejects an EditRequest naming inputs the form does not have.
type UnknownFieldError struct {
	Names []string
}

func (e *UnknownFieldError) Error() string {
	return "unknown field(s): " + strings.Join(e.Names, ", ")
}

// FormController drives the add/edit form. It is in ModeEdit exactly when a target id
// is loaded.
type FormController struct {
	api      FormBackend
	notifier Notifier
	onSaved  func(ctx context.Context)

	fields map[string]string
	target int64
	edit   bool
}

// NewFormController builds a controller in ModeCreate. onSaved runs after every
// successful submission and may be nil.
func NewFormController(api FormBackend, notifier Notifier, onSaved func(ctx context.Context)) *FormController {
	return &FormController{
		api:      api,
		notifier: notifier,
		onSaved:  onSaved,
		fields:   emptyFields(),
	}
}

func emptyFields() map[string]string {
	out := make(map[string]string, len(models.FieldNames))
	for _, name := range models.FieldNames {
		out[name] = ""
	}
	return out
}

// Mode returns the current form mode.
func (f *FormController) Mode() Mode {
	if f.edit {
		return ModeEdit
	}
	return ModeCreate
}

// Target returns the id being edited; ok is false in ModeCreate.
func (f *FormController) Target() (id int64, ok bool) {
	return f.target, f.edit
}

// Value returns one input.
func (f *FormController) Value(name string) string {
	return f.fields[name]
}

// Fields returns a copy of every input.
func (f *FormController) Fields() map[string]string {
	out := make(map[string]string, len(f.fields))
	for k, v := range f.fields {
		out[k] = v
	}
	return out
}

// Apply writes the inputs of req. Nothing is written when any name is unknown.
func (f *FormController) Apply(req EditRequest) error {
	var unknown []string
	for name := range req.Fields {
		if !models.IsField(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownFieldError{Names: unknown}
	}
	for name, v := range req.Fields {
		f.fields[name] = v
	}
	return nil
}

// Edit loads record id into the form and switches to ModeEdit. On failure the form is
// left as it was.
func (f *FormController) Edit(ctx context.Context, id int64) error {
	tree, err := f.api.Tree(ctx, id)
	if err != nil {
		notifyError(f.notifier, err)
		return err
	}
	f.fields = utils.TreeToFields(tree)
	f.target = id
	f.edit = true
	return nil
}

// Reset clears every input and returns to ModeCreate.
func (f *FormController) Reset() {
	f.fields = emptyFields()
	f.target = 0
	f.edit = false
}

// Submit validates the inputs, then creates or updates the record depending on the
// mode. It returns the backend's status message.
func (f *FormController) Submit(ctx context.Context) (string, error) {
	if missing := utils.MissingRequired(f.fields); len(missing) > 0 {
		err := &ValidationError{Fields: missing}
		notifyError(f.notifier, err)
		return "", err
	}

	tree := utils.FieldsToTree(f.fields)
	var (
		msg string
		err error
	)
	if f.edit {
		msg, err = f.api.UpdateTree(ctx, f.target, tree)
	} else {
		var resp models.CreateResponse
		resp, err = f.api.CreateTree(ctx, tree)
		msg = resp.Message
	}
	if err != nil {
		notifyError(f.notifier, err)
		return "", fmt.Errorf("submit %s: %w", strings.ToLower(f.Mode().String()), err)
	}

	notifyInfo(f.notifier, msg)
	f.Reset()
	if f.onSaved != nil {
		f.onSaved(ctx)
	}
	return msg, nil
}
