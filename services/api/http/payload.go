package http

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/02loveslollipop/arbor-inventory/services/api/db"
)

const nextCheckLayout = "2006-01-02"

// patchFields maps JSON field names to the tree field they overwrite. id is absent on purpose.
var patchFields = map[string]func(t *db.Tree) any{
	"custom_id":         func(t *db.Tree) any { return &t.CustomID },
	"latitude":          func(t *db.Tree) any { return &t.Latitude },
	"longitude":         func(t *db.Tree) any { return &t.Longitude },
	"address":           func(t *db.Tree) any { return &t.Address },
	"city":              func(t *db.Tree) any { return &t.City },
	"species":           func(t *db.Tree) any { return &t.Species },
	"condition":         func(t *db.Tree) any { return &t.Condition },
	"comments":          func(t *db.Tree) any { return &t.Comments },
	"actions":           func(t *db.Tree) any { return &t.Actions },
	"height":            func(t *db.Tree) any { return &t.Height },
	"trunk_diameter_cm": func(t *db.Tree) any { return &t.TrunkDiameterCM },
	"crown_diameter_m":  func(t *db.Tree) any { return &t.CrownDiameterM },
	"age":               func(t *db.Tree) any { return &t.Age },
	"location":          func(t *db.Tree) any { return &t.Location },
	"cpc":               func(t *db.Tree) any { return &t.CPC },
	"next_check":        func(t *db.Tree) any { return &t.NextCheck },
}

// applyPatch overwrites only the fields present in patch. Unknown keys are ignored.
func applyPatch(t *db.Tree, patch map[string]json.RawMessage) error {
	for key, raw := range patch {
		field, ok := patchFields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, field(t)); err != nil {
			return fmt.Errorf("invalid value for %s", key)
		}
	}
	return nil
}

// normalizeTree trims text fields and folds an empty next_check into "absent".
func normalizeTree(t *db.Tree) {
	for _, s := range []*string{
		&t.CustomID, &t.Address, &t.City, &t.Species, &t.Condition, &t.Comments,
		&t.Actions, &t.Height, &t.Age, &t.Location, &t.CPC,
	} {
		*s = strings.TrimSpace(*s)
	}
	if t.NextCheck != nil {
		v := strings.TrimSpace(*t.NextCheck)
		if v == "" {
			t.NextCheck = nil
		} else {
			t.NextCheck = &v
		}
	}
}

func missingRequired(t db.Tree) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"custom_id", t.CustomID},
		{"city", t.City},
		{"species", t.Species},
		{"condition", t.Condition},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func validNextCheck(v *string) bool {
	if v == nil {
		return true
	}
	_, err := time.Parse(nextCheckLayout, *v)
	return err == nil
}

// hasPosition treats zero as unknown, the same way the map view does.
func hasPosition(t db.Tree) bool {
	return t.Latitude != nil && *t.Latitude != 0 && t.Longitude != nil && *t.Longitude != 0
}
