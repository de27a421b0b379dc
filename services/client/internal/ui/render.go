package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/utils"
)

// Styles groups the lipgloss styles used for terminal output.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Label  lipgloss.Style
	Muted  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns the client's palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2e7d32")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Bold(true).
			Width(20),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")),
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")),
	}
}

// ListColumns are the headers of the tree table.
var ListColumns = []string{"ID", "Custom ID", "Species", "Condition", "Address", "City"}

// ListRow is the table row for one tree.
func ListRow(t models.Tree) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.CustomID,
		t.Species,
		t.Condition,
		t.Address,
		t.City,
	}
}

// RenderList draws the tree table.
func RenderList(s Styles, trees []models.Tree) string {
	if len(trees) == 0 {
		return s.Muted.Render("No trees.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers(ListColumns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})
	for _, tree := range trees {
		t.Row(ListRow(tree)...)
	}
	return t.String()
}

var fieldLabels = map[string]string{
	models.FieldCustomID:        "Custom ID",
	models.FieldCity:            "City",
	models.FieldAddress:         "Address",
	models.FieldLatitude:        "Latitude",
	models.FieldLongitude:       "Longitude",
	models.FieldSpecies:         "Species",
	models.FieldCondition:       "Condition",
	models.FieldComments:        "Comments",
	models.FieldActions:         "Actions",
	models.FieldHeight:          "Height",
	models.FieldTrunkDiameterCM: "Trunk diameter (cm)",
	models.FieldCrownDiameterM:  "Crown diameter (m)",
	models.FieldAge:             "Age",
	models.FieldLocation:        "Location",
	models.FieldCPC:             "CPC",
	models.FieldNextCheck:       "Next check",
}

// FieldLabel is the human label of a form field.
func FieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

// RenderDetail is the styled read-only view of one tree.
func RenderDetail(s Styles, t models.Tree) string {
	fields := utils.TreeToFields(t)
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Tree %d", t.ID)))
	b.WriteString("\n")
	for _, name := range models.FieldNames {
		v := fields[name]
		if v == "" {
			v = s.Muted.Render("-")
		}
		b.WriteString(s.Label.Render(FieldLabel(name)) + v + "\n")
	}
	return b.String()
}

// RenderForm shows the form mode and its current inputs.
func RenderForm(s Styles, f *FormController) string {
	var b strings.Builder
	title := "New tree"
	if id, ok := f.Target(); ok {
		title = fmt.Sprintf("Editing tree %d", id)
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")
	for _, name := range models.FieldNames {
		b.WriteString(s.Label.Render(name) + f.Value(name) + "\n")
	}
	return b.String()
}

// RenderMap prints the viewport and one line per marker.
func RenderMap(s Styles, m *MapView) string {
	if !m.Created() {
		return s.Muted.Render("Map not shown.")
	}
	v := m.Viewport()
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Map @ %.5f, %.5f  zoom %d", v.Center.Lat, v.Center.Lng, v.Zoom)))
	b.WriteString("\n")
	markers := m.Markers()
	if len(markers) == 0 {
		b.WriteString(s.Muted.Render("No markers."))
		b.WriteString("\n")
		return b.String()
	}
	for _, mk := range markers {
		fmt.Fprintf(&b, "[%s] %.6f, %.6f\n", mk.CustomID, mk.Position.Lat, mk.Position.Lng)
		for _, line := range strings.Split(mk.Popup, "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}
