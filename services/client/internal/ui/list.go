package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/gateway"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
)

const (
	deletePrompt    = "Are you sure you want to delete this tree?"
	lookupEmptyText = "Please enter a Custom ID"
	lookupMissText  = "Tree not found!"
)

// ErrEmptyCustomID is returned by Lookup when no identifier was entered.
var ErrEmptyCustomID = errors.New("empty custom id")

// ListBackend is the backend subset used by the list view.
type ListBackend interface {
	Trees(ctx context.Context, f models.Filter) ([]models.Tree, error)
	Tree(ctx context.Context, id int64) (models.Tree, error)
	TreeByCustomID(ctx context.Context, customID string) (models.Tree, error)
	DeleteTree(ctx context.Context, id int64) (gateway.Response, error)
}

// ListView holds the rows of the last successful refresh.
type ListView struct {
	api       ListBackend
	notifier  Notifier
	confirmer Confirmer
	onDeleted func(ctx context.Context)

	rows []models.Tree
}

// NewListView builds an empty list. onDeleted runs after every delete that reached
// the backend and may be nil.
func NewListView(api ListBackend, notifier Notifier, confirmer Confirmer, onDeleted func(ctx context.Context)) *ListView {
	return &ListView{api: api, notifier: notifier, confirmer: confirmer, onDeleted: onDeleted}
}

// Rows returns the rendered records.
func (l *ListView) Rows() []models.Tree {
	return append([]models.Tree(nil), l.rows...)
}

// Refresh replaces every row with the trees matching f. On error the previous rows
// stay.
func (l *ListView) Refresh(ctx context.Context, f models.Filter) error {
	trees, err := l.api.Trees(ctx, f)
	if err != nil {
		notifyError(l.notifier, err)
		return err
	}
	if trees == nil {
		trees = []models.Tree{}
	}
	l.rows = trees
	return nil
}

// Delete asks for confirmation and removes record id. deleted reports whether a
// request was sent. Any backend answer, success or not, triggers onDeleted; a
// request that never completed does not.
func (l *ListView) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	if l.confirmer != nil && !l.confirmer.Confirm(deletePrompt) {
		return false, nil
	}
	resp, err := l.api.DeleteTree(ctx, id)
	if err != nil {
		notifyError(l.notifier, err)
		return false, err
	}

	if rerr := resp.Err(); rerr != nil {
		notifyError(l.notifier, rerr)
		err = rerr
	} else {
		notifyInfo(l.notifier, resp.Message())
	}
	if l.onDeleted != nil {
		l.onDeleted(ctx)
	}
	return true, err
}

// Detail fetches record id for the read-only view.
func (l *ListView) Detail(ctx context.Context, id int64) (models.Tree, error) {
	tree, err := l.api.Tree(ctx, id)
	if err != nil {
		notifyError(l.notifier, err)
		return models.Tree{}, err
	}
	return tree, nil
}

// Lookup finds a record by custom id and notifies a short summary of it. Any failure
// reads as "not found".
func (l *ListView) Lookup(ctx context.Context, customID string) (models.Tree, error) {
	customID = strings.TrimSpace(customID)
	if customID == "" {
		l.notifier.Notify(Notice{Level: LevelWarning, Text: lookupEmptyText})
		return models.Tree{}, ErrEmptyCustomID
	}
	tree, err := l.api.TreeByCustomID(ctx, customID)
	if err != nil {
		l.notifier.Notify(Notice{Level: LevelWarning, Text: lookupMissText})
		return models.Tree{}, err
	}
	notifyInfo(l.notifier, LookupSummary(tree))
	return tree, nil
}

// LookupSummary is the subset of fields shown after a custom id lookup.
func LookupSummary(t models.Tree) string {
	return fmt.Sprintf("Tree Found:\nSpecies: %s\nCondition: %s\nComments: %s", t.Species, t.Condition, t.Comments)
}
