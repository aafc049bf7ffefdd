// Package conflict builds the timeslot clash index: for every simplified
// anchor timeslot (single day + start time) it records which sections meet
// at a pattern overlapping that instant. A room may host at most one
// section from each anchor's clash set.
package conflict

import (
	"sort"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// Index maps simplified anchors to the set of sections whose actual
// timeslot conflicts with them. Sections without a timeslot are excluded
// from every clash set.
type Index struct {
	anchors  []string
	sections map[string][]string
}

// BuildIndex derives the anchor universe from the distinct timeslots in use
// and computes each anchor's clash set. One pass collects sections per
// distinct timeslot; for each anchor the distinct timeslots are scanned
// once with the day/start/end predicate, so the cost is
// O(timeslots x anchors + sections).
func BuildIndex(sections []*model.Section) *Index {
	type slotGroup struct {
		slot     model.Timeslot
		sections []string
	}

	groups := make(map[string]*slotGroup)
	for _, s := range sections {
		if s.Timeslot == nil {
			continue
		}
		key := s.Timeslot.String()
		g, ok := groups[key]
		if !ok {
			g = &slotGroup{slot: *s.Timeslot}
			groups[key] = g
		}
		g.sections = append(g.sections, s.ID)
	}

	anchorSet := make(map[string]model.Anchor)
	for _, g := range groups {
		for _, a := range g.slot.Anchors() {
			anchorSet[a.String()] = a
		}
	}

	idx := &Index{sections: make(map[string][]string, len(anchorSet))}
	for key, anchor := range anchorSet {
		clash := make(map[string]struct{})
		for _, g := range groups {
			if !g.slot.Covers(anchor) {
				continue
			}
			for _, id := range g.sections {
				clash[id] = struct{}{}
			}
		}
		ids := make([]string, 0, len(clash))
		for id := range clash {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		idx.sections[key] = ids
		idx.anchors = append(idx.anchors, key)
	}
	sort.Strings(idx.anchors)
	return idx
}

// Anchors returns all simplified anchor keys ("M_1000") in sorted order.
func (idx *Index) Anchors() []string {
	return idx.anchors
}

// SectionsAt returns the sorted identifiers of sections whose timeslot
// conflicts with the given anchor.
func (idx *Index) SectionsAt(anchor string) []string {
	return idx.sections[anchor]
}
