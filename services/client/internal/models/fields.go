package models

// Form field names, in display order. They match the JSON names of Tree.
const (
	FieldCustomID        = "custom_id"
	FieldCity            = "city"
	FieldAddress         = "address"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
	FieldSpecies         = "species"
	FieldCondition       = "condition"
	FieldComments        = "comments"
	FieldActions         = "actions"
	FieldHeight          = "height"
	FieldTrunkDiameterCM = "trunk_diameter_cm"
	FieldCrownDiameterM  = "crown_diameter_m"
	FieldAge             = "age"
	FieldLocation        = "location"
	FieldCPC             = "cpc"
	FieldNextCheck       = "next_check"
)

// FieldNames lists every input of the tree form.
var FieldNames = []string{
	FieldCustomID,
	FieldCity,
	FieldAddress,
	FieldLatitude,
	FieldLongitude,
	FieldSpecies,
	FieldCondition,
	FieldComments,
	FieldActions,
	FieldHeight,
	FieldTrunkDiameterCM,
	FieldCrownDiameterM,
	FieldAge,
	FieldLocation,
	FieldCPC,
	FieldNextCheck,
}

// RequiredFields must be non-empty before a tree is sent to the backend.
var RequiredFields = []string{FieldCustomID, FieldCity, FieldSpecies, FieldCondition}

// IsField reports whether name is a tree form input.
func IsField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}
