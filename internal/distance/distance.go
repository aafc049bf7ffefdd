// Package distance computes building-to-building travel costs used to price
// reassigning a section away from the room it held before.
package distance

import (
	"math"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// latitude/longitude points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// Params controls how reassignment costs are shaped.
type Params struct {
	// Squared switches the cross-building cost to distance squared.
	Squared bool
	// SameBuildingPenalty prices a move to a different room within the
	// building the section already occupies.
	SameBuildingPenalty float64
}

// DefaultParams matches the standard cost shape: squared meters across
// buildings, a flat 50 within a building.
func DefaultParams() Params {
	return Params{Squared: true, SameBuildingPenalty: 50}
}

// Matrix holds pairwise building costs plus the fallback applied when one
// endpoint has no known location.
type Matrix struct {
	costs    map[[2]string]float64
	fallback float64
	located  map[string]struct{}
}

// BuildingDistances computes the full pairwise cost matrix over the given
// buildings. Buildings without coordinates fall back to the mean over all
// located pairs, self-pairs included.
func BuildingDistances(buildings []*model.Building, p Params) *Matrix {
	m := &Matrix{
		costs:   make(map[[2]string]float64),
		located: make(map[string]struct{}),
	}
	var located []*model.Building
	for _, b := range buildings {
		if b.Latitude != 0 || b.Longitude != 0 {
			located = append(located, b)
			m.located[b.Number] = struct{}{}
		}
	}
	var sum float64
	var n int
	for _, a := range located {
		for _, b := range located {
			d := Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
			if p.Squared {
				d = d * d
			}
			m.costs[[2]string{a.Number, b.Number}] = d
			sum += d
			n++
		}
	}
	if n > 0 {
		m.fallback = sum / float64(n)
	}
	return m
}

// Cost returns the travel cost between two buildings, falling back to the
// mean pairwise cost when either building is unlocated.
func (m *Matrix) Cost(from, to string) float64 {
	if _, ok := m.located[from]; !ok {
		return m.fallback
	}
	if _, ok := m.located[to]; !ok {
		return m.fallback
	}
	return m.costs[[2]string{from, to}]
}

// ReassignmentCosts prices every eligible (section, room) pair against the
// section's prior assignment. A section with no prior room costs nothing to
// place anywhere; keeping the same room costs zero; a different room in the
// same building costs the flat penalty; anything else costs the building
// distance.
func ReassignmentCosts(sections []*model.Section, roomsBySection map[string]map[string]struct{}, m *Matrix, p Params) map[string]map[string]float64 {
	costs := make(map[string]map[string]float64, len(sections))
	for _, s := range sections {
		perRoom := make(map[string]float64, len(roomsBySection[s.ID]))
		for bldgRoom := range roomsBySection[s.ID] {
			perRoom[bldgRoom] = pairCost(s, bldgRoom, m, p)
		}
		costs[s.ID] = perRoom
	}
	return costs
}

func pairCost(s *model.Section, bldgRoom string, m *Matrix, p Params) float64 {
	if s.ExistingBldgRoom == "" {
		return 0
	}
	if bldgRoom == s.ExistingBldgRoom {
		return 0
	}
	from := buildingOf(s.ExistingBldgRoom)
	to := buildingOf(bldgRoom)
	if from == to {
		return p.SameBuildingPenalty
	}
	return m.Cost(from, to)
}

func buildingOf(bldgRoom string) string {
	for i := 0; i < len(bldgRoom); i++ {
		if bldgRoom[i] == '_' {
			return bldgRoom[:i]
		}
	}
	return bldgRoom
}
