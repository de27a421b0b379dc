package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
)

// ParseOptionalFloat trims and parses a numeric input; empty or non-numeric -> nil.
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ValuePtrString prints an optional float the way the form shows it: "" when absent.
func ValuePtrString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// StringPtrValue dereferences an optional string, "" when absent.
func StringPtrValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// TreeToFields copies every tree attribute into form inputs keyed by field name.
// Absent values become "".
func TreeToFields(t models.Tree) map[string]string {
	return map[string]string{
		models.FieldCustomID:        t.CustomID,
		models.FieldCity:            t.City,
		models.FieldAddress:         t.Address,
		models.FieldLatitude:        ValuePtrString(t.Latitude),
		models.FieldLongitude:       ValuePtrString(t.Longitude),
		models.FieldSpecies:         t.Species,
		models.FieldCondition:       t.Condition,
		models.FieldComments:        t.Comments,
		models.FieldActions:         t.Actions,
		models.FieldHeight:          t.Height,
		models.FieldTrunkDiameterCM: ValuePtrString(t.TrunkDiameterCM),
		models.FieldCrownDiameterM:  ValuePtrString(t.CrownDiameterM),
		models.FieldAge:             t.Age,
		models.FieldLocation:        t.Location,
		models.FieldCPC:             t.CPC,
		models.FieldNextCheck:       StringPtrValue(t.NextCheck),
	}
}

// FieldsToTree serialises form inputs into a tree record: strings are trimmed and
// numerics that do not parse become absent.
func FieldsToTree(fields map[string]string) models.Tree {
	get := func(name string) string { return strings.TrimSpace(fields[name]) }
	return models.Tree{
		CustomID:        get(models.FieldCustomID),
		City:            get(models.FieldCity),
		Address:         get(models.FieldAddress),
		Latitude:        ParseOptionalFloat(fields[models.FieldLatitude]),
		Longitude:       ParseOptionalFloat(fields[models.FieldLongitude]),
		Species:         get(models.FieldSpecies),
		Condition:       get(models.FieldCondition),
		Comments:        get(models.FieldComments),
		Actions:         get(models.FieldActions),
		Height:          get(models.FieldHeight),
		TrunkDiameterCM: ParseOptionalFloat(fields[models.FieldTrunkDiameterCM]),
		CrownDiameterM:  ParseOptionalFloat(fields[models.FieldCrownDiameterM]),
		Age:             get(models.FieldAge),
		Location:        get(models.FieldLocation),
		CPC:             get(models.FieldCPC),
		NextCheck:       OptionalString(fields[models.FieldNextCheck]),
	}
}

// MissingRequired lists the mandatory inputs left empty, in form order.
func MissingRequired(fields map[string]string) []string {
	var missing []string
	for _, name := range models.RequiredFields {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
