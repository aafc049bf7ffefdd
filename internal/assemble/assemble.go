package assemble

import (
	"fmt"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/eligibility"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// Model is one assembled formulation plus the bookkeeping needed to read a
// solution back. Pairs is indexed by VarID.
type Model struct {
	Formulation *solver.Formulation
	Pairs       []eligibility.PairKey
	// Excluded lists sections dropped up front because they had no
	// eligible room under a full-assignment requirement. They are
	// reported, never silently lost.
	Excluded []*errors.InfeasibleEligibilityError

	problem   *Problem
	varByPair map[eligibility.PairKey]solver.VarID
}

// Build assembles the formulation for one planning variant. Variable and
// constraint order is deterministic: sections by identifier, rooms sorted
// within each section.
func Build(p *Problem, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p.Derive()

	m := &Model{
		Formulation: &solver.Formulation{
			Name:      cfg.Name,
			Direction: cfg.Direction,
			Mode:      cfg.Mode,
		},
		problem:   p,
		varByPair: make(map[eligibility.PairKey]solver.VarID),
	}

	included := make(map[string]bool, len(p.Sections))
	for _, s := range sortedSections(p.Sections) {
		rooms := p.EligibleRooms(s.ID)
		if len(rooms) == 0 && cfg.RequireFullAssignment {
			m.Excluded = append(m.Excluded, &errors.InfeasibleEligibilityError{
				Section: s.ID,
				Reason:  "no room passes use and delivery-mode filtering",
			})
			continue
		}
		included[s.ID] = true
		for _, room := range rooms {
			key := eligibility.PairKey{Section: s.ID, Room: room}
			id := m.Formulation.NewVar("x[" + s.ID + "|" + room + "]")
			m.Pairs = append(m.Pairs, key)
			m.varByPair[key] = id
		}
	}

	m.addAssignmentConstraints(cfg, included)
	m.addConflictConstraints(included)

	for _, b := range cfg.Bounds {
		expr := m.boundExpr(b.Kind, included)
		m.Formulation.AddConstraint(solver.Constraint{
			Name:  string(b.Kind),
			Expr:  expr,
			Sense: b.Sense,
			Bound: b.Bound,
		})
	}
	for _, t := range cfg.Objectives {
		m.Formulation.AddObjective(solver.Objective{
			Name:      string(t.Kind),
			Expr:      m.termExpr(t.Kind, included),
			Priority:  t.Priority,
			Weight:    t.Weight,
			Tolerance: t.Tolerance,
		})
	}
	if err := m.Formulation.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// addAssignmentConstraints emits one row per included section: at most one
// room, or exactly one under a full-assignment requirement.
func (m *Model) addAssignmentConstraints(cfg Config, included map[string]bool) {
	sense := solver.LessOrEqual
	if cfg.RequireFullAssignment {
		sense = solver.Equal
	}
	for _, s := range sortedSections(m.problem.Sections) {
		if !included[s.ID] {
			continue
		}
		expr := solver.LinExpr{}
		for _, room := range m.problem.EligibleRooms(s.ID) {
			expr.Add(m.varByPair[eligibility.PairKey{Section: s.ID, Room: room}], 1)
		}
		if len(expr.Terms) == 0 {
			continue
		}
		m.Formulation.AddConstraint(solver.Constraint{
			Name:  "assign[" + s.ID + "]",
			Expr:  expr,
			Sense: sense,
			Bound: 1,
		})
	}
}

// addConflictConstraints emits, for every room and anchor timeslot, an
// at-most-one row over the variables of sections clashing at that anchor.
// Rows with fewer than two variables are vacuous and skipped.
func (m *Model) addConflictConstraints(included map[string]bool) {
	idx := m.problem.Conflicts()
	for _, r := range sortedRooms(m.problem.Rooms) {
		for _, anchor := range idx.Anchors() {
			expr := solver.LinExpr{}
			for _, section := range idx.SectionsAt(anchor) {
				if !included[section] {
					continue
				}
				if id, ok := m.varByPair[eligibility.PairKey{Section: section, Room: r.BldgRoom}]; ok {
					expr.Add(id, 1)
				}
			}
			if len(expr.Terms) < 2 {
				continue
			}
			m.Formulation.AddConstraint(solver.Constraint{
				Name:  "room[" + r.BldgRoom + "]@" + anchor,
				Expr:  expr,
				Sense: solver.LessOrEqual,
				Bound: 1,
			})
		}
	}
}

// termExpr builds the expression for one objective term.
func (m *Model) termExpr(kind TermKind, included map[string]bool) solver.LinExpr {
	switch kind {
	case TermPreference:
		return m.boundExpr(ExprPreferenceCount, included)
	case TermContact:
		return m.boundExpr(ExprContactHours, included)
	case TermDensity:
		expr := solver.LinExpr{}
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			roomCap := m.problem.Room(room).Capacity
			expr.Add(id, float64(s.Enrollment)/float64(roomCap))
		})
		return expr
	case TermStability:
		// Negated reassignment cost so the term rewards stability under
		// maximization.
		expr := solver.LinExpr{}
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			if cost := m.problem.ReassignmentCost(s.ID, room); cost != 0 {
				expr.Add(id, -cost)
			}
		})
		return expr
	}
	panic(fmt.Sprintf("unhandled term kind %q", kind))
}

// boundExpr builds the aggregate expression for one bound kind.
func (m *Model) boundExpr(kind ExprKind, included map[string]bool) solver.LinExpr {
	expr := solver.LinExpr{}
	switch kind {
	case ExprPreferenceCount:
		// Base count over preferred pairs, plus a remote credit: each
		// remote-permitting section scores one when left unassigned, so
		// the credit is 1 minus its assignment indicator sum.
		coefs := make(map[solver.VarID]float64)
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			if m.problem.Preferred(s.ID, room) {
				coefs[id]++
			}
			if s.PermittedModes.Contains(model.Remote) {
				coefs[id]--
			}
		})
		for _, s := range sortedSections(m.problem.Sections) {
			if included[s.ID] && s.PermittedModes.Contains(model.Remote) {
				expr.Offset++
			}
		}
		m.eachPair(included, func(_ *model.Section, _ string, id solver.VarID) {
			if c := coefs[id]; c != 0 {
				expr.Add(id, c)
			}
		})
	case ExprContactHours:
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			out := m.problem.Outcome(s.ID, room)
			if coef := out.ContactHours * float64(s.Enrollment) * s.Priority; coef != 0 {
				expr.Add(id, coef)
			}
		})
	case ExprSameRoomCount:
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			if s.ExistingBldgRoom != "" && room == s.ExistingBldgRoom {
				expr.Add(id, 1)
			}
		})
	case ExprResidentialPreferenceCount:
		// The floor counts only sections whose sole permitted mode is
		// residential; a blank mode column defaults to all modes and
		// must not count.
		m.eachPair(included, func(s *model.Section, room string, id solver.VarID) {
			out := m.problem.Outcome(s.ID, room)
			if out.Mode == model.ResidentialSpread && s.PermittedModes.Only(model.ResidentialSpread) {
				expr.Add(id, 1)
			}
		})
	default:
		panic(fmt.Sprintf("unhandled expression kind %q", kind))
	}
	return expr
}

// eachPair visits every variable in deterministic order.
func (m *Model) eachPair(included map[string]bool, visit func(s *model.Section, room string, id solver.VarID)) {
	for _, s := range sortedSections(m.problem.Sections) {
		if !included[s.ID] {
			continue
		}
		for _, room := range m.problem.EligibleRooms(s.ID) {
			visit(s, room, m.varByPair[eligibility.PairKey{Section: s.ID, Room: room}])
		}
	}
}
