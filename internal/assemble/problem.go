// Package assemble composes conflict, capacity, eligibility and distance
// results into 0/1 assignment formulations. All planning variants are
// configurations of the one assembler; nothing here talks to a solving
// engine directly.
package assemble

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/capacity"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/conflict"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/distance"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/eligibility"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// Problem bundles the input tables with every derived set the assembler
// needs. Derived sets are cached against a fingerprint of the inputs they
// depend on, so repeated builds over unchanged data reuse them.
type Problem struct {
	Sections  []*model.Section
	Rooms     []*model.Room
	Buildings []*model.Building
	Capacity  capacity.Params
	Distance  distance.Params

	fingerprint uint64
	sectionByID map[string]*model.Section
	roomByID    map[string]*model.Room
	conflicts   *conflict.Index
	eligible    *eligibility.Sets
	preferred   *eligibility.Sets
	outcomes    map[eligibility.PairKey]capacity.Result
	costs       map[string]map[string]float64
}

// NewProblem builds a problem and derives all sets immediately.
func NewProblem(sections []*model.Section, rooms []*model.Room, buildings []*model.Building, cp capacity.Params, dp distance.Params) *Problem {
	p := &Problem{
		Sections:  sections,
		Rooms:     rooms,
		Buildings: buildings,
		Capacity:  cp,
		Distance:  dp,
	}
	p.Derive()
	return p
}

// Fingerprint hashes every input a derived set depends on: capacities,
// enrollments, timeslots, mode preferences, prior assignments, building
// locations and the resolver/cost parameters. Any change invalidates all
// derived values, so the whole tuple participates.
func (p *Problem) Fingerprint() uint64 {
	h := fnv.New64a()
	write := func(parts ...string) {
		for _, s := range parts {
			_, _ = h.Write([]byte(s))
			_, _ = h.Write([]byte{0})
		}
	}
	for _, s := range sortedSections(p.Sections) {
		slot := ""
		if s.Timeslot != nil {
			slot = s.Timeslot.String()
		}
		write(s.ID, fmt.Sprint(s.Enrollment), slot, s.PermittedModes.String(),
			strings.Join(s.RoomUses, ","), s.ExistingBldgRoom)
	}
	for _, r := range sortedRooms(p.Rooms) {
		write(r.BldgRoom, fmt.Sprint(r.Capacity), r.Use)
	}
	for _, b := range p.Buildings {
		write(b.Number, fmt.Sprint(b.Latitude), fmt.Sprint(b.Longitude))
	}
	write(fmt.Sprint(p.Capacity), fmt.Sprint(p.Distance))
	return h.Sum64()
}

// Derive rebuilds the cached sets when the input fingerprint changed since
// the last call. It is cheap to call unconditionally.
func (p *Problem) Derive() {
	fp := p.Fingerprint()
	if fp == p.fingerprint && p.eligible != nil {
		return
	}
	p.fingerprint = fp

	p.sectionByID = make(map[string]*model.Section, len(p.Sections))
	for _, s := range p.Sections {
		p.sectionByID[s.ID] = s
	}
	p.roomByID = make(map[string]*model.Room, len(p.Rooms))
	for _, r := range p.Rooms {
		p.roomByID[r.BldgRoom] = r
	}

	p.conflicts = conflict.BuildIndex(p.Sections)
	p.eligible = eligibility.BuildUseSets(p.Sections, p.Rooms)

	p.outcomes = make(map[eligibility.PairKey]capacity.Result)
	modes := make(map[eligibility.PairKey]model.DeliveryMode)
	for _, s := range p.Sections {
		for room := range p.eligible.RoomsBySection[s.ID] {
			r := p.roomByID[room]
			res := capacity.Resolve(p.Capacity, r.Capacity, s.Enrollment, s.MeetingHours(), s.MeetingDays(), s.PermittedModes)
			key := eligibility.PairKey{Section: s.ID, Room: room}
			p.outcomes[key] = res
			modes[key] = res.Mode
		}
	}
	p.eligible.RemoveRemotePairs(modes)

	permitted := make(map[string]model.ModeSet, len(p.Sections))
	for _, s := range p.Sections {
		permitted[s.ID] = s.PermittedModes
	}
	p.preferred = eligibility.PreferredSets(p.eligible, permitted, modes)

	matrix := distance.BuildingDistances(p.Buildings, p.Distance)
	p.costs = distance.ReassignmentCosts(p.Sections, p.eligible.RoomsBySection, matrix, p.Distance)
}

// Outcome returns the resolved delivery mode and contact hours for a pair.
func (p *Problem) Outcome(section, room string) capacity.Result {
	return p.outcomes[eligibility.PairKey{Section: section, Room: room}]
}

// EligibleRooms returns a section's eligible rooms in sorted order.
func (p *Problem) EligibleRooms(section string) []string {
	return sortedKeys(p.eligible.RoomsBySection[section])
}

// Preferred reports whether a pair satisfies the section's mode preference.
func (p *Problem) Preferred(section, room string) bool {
	_, ok := p.preferred.RoomsBySection[section][room]
	return ok
}

// ReassignmentCost returns the cost of moving a section to a room.
func (p *Problem) ReassignmentCost(section, room string) float64 {
	return p.costs[section][room]
}

// Conflicts exposes the anchor-timeslot conflict index.
func (p *Problem) Conflicts() *conflict.Index {
	return p.conflicts
}

// Section looks a section up by identifier.
func (p *Problem) Section(id string) *model.Section {
	return p.sectionByID[id]
}

// Room looks a room up by identifier.
func (p *Problem) Room(id string) *model.Room {
	return p.roomByID[id]
}

func sortedSections(sections []*model.Section) []*model.Section {
	out := make([]*model.Section, len(sections))
	copy(out, sections)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedRooms(rooms []*model.Room) []*model.Room {
	out := make([]*model.Room, len(rooms))
	copy(out, rooms)
	sort.Slice(out, func(i, j int) bool { return out[i].BldgRoom < out[j].BldgRoom })
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
