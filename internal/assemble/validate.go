package assemble

import (
	"fmt"
	"math"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// CheckAssignments re-checks a solved assignment table against the problem
// from scratch. Returns false and a report for invalid tables. The checks
// are independent of the formulation that produced the table, so the same
// function validates re-ingested output.
func CheckAssignments(p *Problem, rows []model.Assignment) (bool, string) {
	p.Derive()
	var report string
	valid := true
	hasRoomClash := false
	hasBadPair := false
	hasHoursDrift := false

	byRoom := make(map[string][]*model.Section)
	for _, row := range rows {
		s := p.Section(row.Section)
		if s == nil {
			valid = false
			report += fmt.Sprintf("- unknown section %s in output\n", row.Section)
			continue
		}
		if row.BldgRoom == "" {
			if row.DeliveryMode != model.Remote || row.ContactHours != 0 {
				valid = false
				hasHoursDrift = true
				report += fmt.Sprintf("- unassigned section %s must be remote with zero hours\n", row.Section)
			}
			continue
		}
		if _, ok := p.eligible.RoomsBySection[s.ID][row.BldgRoom]; !ok {
			valid = false
			hasBadPair = true
			report += fmt.Sprintf("- section %s assigned to ineligible room %s\n", s.ID, row.BldgRoom)
			continue
		}
		out := p.Outcome(s.ID, row.BldgRoom)
		if out.Mode != row.DeliveryMode || math.Abs(out.ContactHours-row.ContactHours) > 1e-9 {
			valid = false
			hasHoursDrift = true
			report += fmt.Sprintf("- section %s in %s: recomputed %s/%.4g, table says %s/%.4g\n",
				s.ID, row.BldgRoom, out.Mode, out.ContactHours, row.DeliveryMode, row.ContactHours)
		}
		byRoom[row.BldgRoom] = append(byRoom[row.BldgRoom], s)
	}

	for room, sections := range byRoom {
		for i, a := range sections {
			for _, b := range sections[i+1:] {
				if a.Timeslot == nil || b.Timeslot == nil {
					continue
				}
				if model.Conflicts(*a.Timeslot, *b.Timeslot) {
					valid = false
					hasRoomClash = true
					report += fmt.Sprintf("- room %s holds overlapping sections %s and %s\n", room, a.ID, b.ID)
				}
			}
		}
	}

	report = checkLine(!hasHoursDrift, "delivery mode round-trip") +
		checkLine(!hasBadPair, "eligibility") +
		checkLine(!hasRoomClash, "room collision") + report
	return valid, report
}

func checkLine(ok bool, name string) string {
	if ok {
		return "[  OK]: " + name + " check.\n"
	}
	return "[FAIL]: " + name + " check.\n"
}
