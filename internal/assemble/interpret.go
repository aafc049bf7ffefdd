package assemble

import (
	"fmt"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// Interpret maps a solver result back to one output row per section,
// excluded sections included. Unassigned sections fall back to remote
// delivery with zero contact hours; their preference flag is set only when
// remote is actually among the section's permitted modes.
func (m *Model) Interpret(res *solver.Result) ([]model.Assignment, error) {
	if !res.Status.HasSolution() {
		return nil, fmt.Errorf("no solution to interpret: status %s", res.Status)
	}

	assigned := make(map[string]string, len(m.problem.Sections))
	for id, key := range m.Pairs {
		if res.Values[id] {
			if prev, dup := assigned[key.Section]; dup {
				return nil, fmt.Errorf("section %s assigned to both %s and %s", key.Section, prev, key.Room)
			}
			assigned[key.Section] = key.Room
		}
	}

	rows := make([]model.Assignment, 0, len(m.problem.Sections))
	for _, s := range sortedSections(m.problem.Sections) {
		room, ok := assigned[s.ID]
		if !ok {
			rows = append(rows, model.Assignment{
				Section:             s.ID,
				DeliveryMode:        model.Remote,
				ContactHours:        0,
				PreferenceSatisfied: s.PermittedModes.Contains(model.Remote),
			})
			continue
		}
		out := m.problem.Outcome(s.ID, room)
		rows = append(rows, model.Assignment{
			Section:             s.ID,
			BldgRoom:            room,
			DeliveryMode:        out.Mode,
			ContactHours:        out.ContactHours,
			PreferenceSatisfied: s.PermittedModes.Contains(out.Mode),
		})
	}
	return rows, nil
}
