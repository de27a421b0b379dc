package ui

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/utils"
)

const (
	DefaultLatitude  = 45.07
	DefaultLongitude = 7.69
	DefaultZoom      = 13
	FocusZoom        = 15

	noResultsText = "No trees found for the selected filters."
)

// LatLng is a map coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Marker is one plotted tree.
type Marker struct {
	TreeID   int64
	CustomID string
	Position LatLng
	Popup    string
}

// Viewport is what the map is showing.
type Viewport struct {
	Center LatLng
	Zoom   int
}

// TreeSource lists trees for a filter.
type TreeSource interface {
	Trees(ctx context.Context, f models.Filter) ([]models.Tree, error)
}

// MapView is a headless map: a viewport plus a marker set rebuilt on every refresh.
// The viewport exists only after the first Activate.
type MapView struct {
	api      TreeSource
	notifier Notifier
	logger   *zap.Logger

	view    *Viewport
	markers []Marker
}

// NewMapView builds a map that has not been created yet.
func NewMapView(api TreeSource, notifier Notifier, logger *zap.Logger) *MapView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapView{api: api, notifier: notifier, logger: logger}
}

// Created reports whether the map has been activated at least once.
func (m *MapView) Created() bool { return m.view != nil }

// Viewport returns the current view, zero value before creation.
func (m *MapView) Viewport() Viewport {
	if m.view == nil {
		return Viewport{}
	}
	return *m.view
}

// Markers returns the markers placed by the last refresh.
func (m *MapView) Markers() []Marker {
	return append([]Marker(nil), m.markers...)
}

// Activate creates the map at the default centre if needed, then refreshes it.
func (m *MapView) Activate(ctx context.Context, f models.Filter) error {
	if m.view == nil {
		m.view = &Viewport{Center: LatLng{Lat: DefaultLatitude, Lng: DefaultLongitude}, Zoom: DefaultZoom}
	}
	return m.Refresh(ctx, f)
}

// Refresh replots the trees matching f. It does nothing until the map is created.
func (m *MapView) Refresh(ctx context.Context, f models.Filter) error {
	if m.view == nil {
		return nil
	}
	trees, err := m.api.Trees(ctx, f)
	if err != nil {
		notifyError(m.notifier, err)
		return err
	}

	m.markers = m.markers[:0]
	if len(trees) == 0 {
		notifyInfo(m.notifier, noResultsText)
		return nil
	}

	for _, t := range trees {
		if !t.HasPosition() {
			m.logger.Debug("skipping tree without coordinates", zap.String("custom_id", t.CustomID))
			continue
		}
		m.markers = append(m.markers, Marker{
			TreeID:   t.ID,
			CustomID: t.CustomID,
			Position: LatLng{Lat: *t.Latitude, Lng: *t.Longitude},
			Popup:    MarkerPopup(t),
		})
	}
	if len(m.markers) > 0 {
		m.view.Center = m.markers[0].Position
		m.view.Zoom = FocusZoom
	}
	return nil
}

// MarkerPopup is the annotation shown on a marker.
func MarkerPopup(t models.Tree) string {
	var b strings.Builder
	b.WriteString(t.Species)
	fmt.Fprintf(&b, "\nCondition: %s", t.Condition)
	if t.Address != "" {
		fmt.Fprintf(&b, "\nAddress: %s", t.Address)
	}
	if next := utils.StringPtrValue(t.NextCheck); next != "" {
		fmt.Fprintf(&b, "\nNext check: %s", next)
	}
	return b.String()
}
