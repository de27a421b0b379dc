package ui

import (
	"context"
)

// StreetPlaceholder heads the street list after each reload.
const StreetPlaceholder = "-- Choose a street --"

// ReferenceSource is the backend subset needed for city and street lists.
type ReferenceSource interface {
	Cities(ctx context.Context) ([]string, error)
	Streets(ctx context.Context, city string) ([]string, error)
}

// ReferenceLoader fills the city and street selections. It never caches.
type ReferenceLoader struct {
	src      ReferenceSource
	notifier Notifier

	Cities  Selection
	Streets Selection
}

// NewReferenceLoader builds a loader.
func NewReferenceLoader(src ReferenceSource, notifier Notifier) *ReferenceLoader {
	return &ReferenceLoader{src: src, notifier: notifier}
}

// Activate fetches the cities and rebuilds the city options, one per entry. The
// previous choice is kept.
func (l *ReferenceLoader) Activate(ctx context.Context) error {
	cities, err := l.src.Cities(ctx)
	if err != nil {
		notifyError(l.notifier, err)
		return err
	}
	selected := l.Cities.Selected()
	l.Cities.Clear()
	for _, c := range cities {
		l.Cities.Append(c)
	}
	l.Cities.Select(selected)
	return nil
}

// SelectCity records the choice and reloads the street list for it. An empty city
// only clears the selection.
func (l *ReferenceLoader) SelectCity(ctx context.Context, city string) error {
	l.Cities.Select(city)
	if city == "" {
		return nil
	}
	streets, err := l.src.Streets(ctx, city)
	if err != nil {
		notifyError(l.notifier, err)
		return err
	}
	l.Streets.Replace(StreetPlaceholder, streets)
	return nil
}
