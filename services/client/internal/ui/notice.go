// Package ui holds the view state of the tree inventory client: reference-data
// selections, the add/edit form, the filtered list and the map, plus the dispatch
// table that routes user intents to them. Nothing here touches a terminal; output
// goes through Notifier and the render helpers.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/gateway"
)

// Level grades a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one user-visible alert.
type Notice struct {
	Level Level
	Text  string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Recorder keeps every notice; used by tests and for batch output.
type Recorder struct {
	Notices []Notice
}

func (r *Recorder) Notify(n Notice) { r.Notices = append(r.Notices, n) }

// Last returns the most recent notice, zero value when none.
func (r *Recorder) Last() Notice {
	if len(r.Notices) == 0 {
		return Notice{}
	}
	return r.Notices[len(r.Notices)-1]
}

// Texts returns the notice texts in order.
func (r *Recorder) Texts() []string {
	out := make([]string, 0, len(r.Notices))
	for _, n := range r.Notices {
		out = append(out, n.Text)
	}
	return out
}

// WriterNotifier prints notices to w, prefixing warnings and errors.
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Notify(n Notice) {
	switch n.Level {
	case LevelInfo:
		fmt.Fprintln(w.W, n.Text)
	default:
		fmt.Fprintf(w.W, "%s: %s\n", n.Level, n.Text)
	}
}

// ValidationError lists the mandatory form fields left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Please fill in the required fields: " + strings.Join(e.Fields, ", ")
}

const networkFallback = "Could not reach the server. Please try again."

// Describe turns any client error into the text shown to the user.
func Describe(err error) string {
	var (
		ve *ValidationError
		nf *gateway.NotFoundError
		se *gateway.ServerError
		ne *gateway.NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, gateway.ErrAuthRequired):
		return "Please log in first."
	case errors.As(err, &nf):
		if nf.Message != "" {
			return nf.Message
		}
		return "Not found"
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &ne):
		return networkFallback
	default:
		return err.Error()
	}
}

func notifyError(n Notifier, err error) {
	n.Notify(Notice{Level: LevelError, Text: Describe(err)})
}

func notifyInfo(n Notifier, text string) {
	n.Notify(Notice{Level: LevelInfo, Text: text})
}
