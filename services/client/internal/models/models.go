package models

// Tree models one inventory record as exchanged with the backend. Optional numerics
// and next_check are nil when unknown so that "absent" never reads as zero.
type Tree struct {
	ID              int64    `json:"id,omitempty"`
	CustomID        string   `json:"custom_id"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	Species         string   `json:"species"`
	Condition       string   `json:"condition"`
	Comments        string   `json:"comments"`
	Actions         string   `json:"actions"`
	Height          string   `json:"height"`
	TrunkDiameterCM *float64 `json:"trunk_diameter_cm"`
	CrownDiameterM  *float64 `json:"crown_diameter_m"`
	Age             string   `json:"age"`
	Location        string   `json:"location"`
	CPC             string   `json:"cpc"`
	NextCheck       *string  `json:"next_check"`
}

// HasPosition reports whether the tree can be placed on the map. A zero coordinate
// counts as unknown.
func (t Tree) HasPosition() bool {
	return t.Latitude != nil && *t.Latitude != 0 && t.Longitude != nil && *t.Longitude != 0
}

// Filter is the (city, address substring) pair shared by the list and the map.
type Filter struct {
	City    string
	Address string
}

// Credentials is the login/register payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MessageResponse is the conventional status payload of the backend.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the bearer token issued by /login.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// CreateResponse is returned by /add_tree.
type CreateResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
