package model

import "strings"

// Room is a single assignable room. The identifier encodes the building as
// a prefix: "172_102" is room 102 in building 172.
type Room struct {
	BldgRoom string `csv:"bldg_room"`
	Capacity int    `csv:"capacity"`
	Use      string `csv:"use"`
}

// Building is the building-code prefix of the room identifier.
func (r *Room) Building() string {
	if i := strings.Index(r.BldgRoom, "_"); i >= 0 {
		return r.BldgRoom[:i]
	}
	return r.BldgRoom
}

// Building is a campus building, optionally geolocated. Buildings with no
// coordinates on record fall back to the mean pairwise distance in
// reassignment costs.
type Building struct {
	Number    string  `csv:"building_number"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}
