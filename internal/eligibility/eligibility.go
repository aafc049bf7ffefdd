// Package eligibility pairs sections with the rooms they may use. Use
// categories establish the base compatibility; delivery-mode outcomes then
// prune pairs that would force remote delivery and mark the subset of pairs
// that honor the section's stated mode preference.
package eligibility

import (
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// PairKey identifies one (section, room) pairing across the derived maps.
type PairKey struct {
	Section string
	Room    string
}

// Sets holds the two directions of the section/room compatibility relation.
// Both maps always carry entries for every section and room, possibly empty.
type Sets struct {
	RoomsBySection map[string]map[string]struct{}
	SectionsByRoom map[string]map[string]struct{}
}

// BuildUseSets computes base eligibility from room-use categories: a room
// with use "class" serves any section whose permitted room uses include
// "class". A room has exactly one use; a section may list several.
func BuildUseSets(sections []*model.Section, rooms []*model.Room) *Sets {
	sets := &Sets{
		RoomsBySection: make(map[string]map[string]struct{}, len(sections)),
		SectionsByRoom: make(map[string]map[string]struct{}, len(rooms)),
	}
	for _, r := range rooms {
		sets.SectionsByRoom[r.BldgRoom] = make(map[string]struct{})
	}
	for _, s := range sections {
		uses := make(map[string]struct{}, len(s.RoomUses))
		for _, u := range s.RoomUses {
			uses[u] = struct{}{}
		}
		compatible := make(map[string]struct{})
		for _, r := range rooms {
			if _, ok := uses[r.Use]; ok {
				compatible[r.BldgRoom] = struct{}{}
				sets.SectionsByRoom[r.BldgRoom][s.ID] = struct{}{}
			}
		}
		sets.RoomsBySection[s.ID] = compatible
	}
	return sets
}

// RemoveRemotePairs deletes every pairing whose resolved delivery mode is
// remote: such a room cannot actually host the section in person. Iteration
// walks a snapshot of each live set so removal never skips elements.
func (sets *Sets) RemoveRemotePairs(modes map[PairKey]model.DeliveryMode) {
	for section, rooms := range sets.RoomsBySection {
		for _, room := range snapshot(rooms) {
			if modes[PairKey{Section: section, Room: room}] == model.Remote {
				delete(rooms, room)
			}
		}
	}
	for room, sections := range sets.SectionsByRoom {
		for _, section := range snapshot(sections) {
			if modes[PairKey{Section: section, Room: room}] == model.Remote {
				delete(sections, section)
			}
		}
	}
}

// PreferredSets narrows eligibility to pairs whose resolved delivery mode
// is one the section actually permits. Values are always subsets of the
// corresponding eligible sets.
func PreferredSets(sets *Sets, permitted map[string]model.ModeSet, modes map[PairKey]model.DeliveryMode) *Sets {
	preferred := &Sets{
		RoomsBySection: make(map[string]map[string]struct{}, len(sets.RoomsBySection)),
		SectionsByRoom: make(map[string]map[string]struct{}, len(sets.SectionsByRoom)),
	}
	for room := range sets.SectionsByRoom {
		preferred.SectionsByRoom[room] = make(map[string]struct{})
	}
	for section, rooms := range sets.RoomsBySection {
		modeSet := permitted[section]
		keep := make(map[string]struct{})
		for room := range rooms {
			if modeSet.Contains(modes[PairKey{Section: section, Room: room}]) {
				keep[room] = struct{}{}
				preferred.SectionsByRoom[room][section] = struct{}{}
			}
		}
		preferred.RoomsBySection[section] = keep
	}
	return preferred
}

func snapshot(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}
