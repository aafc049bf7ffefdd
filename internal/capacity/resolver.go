// Package capacity derives, for a (section, room) pairing, the delivery
// mode forced by the room's capacity and the weekly in-person contact hours
// that result from it under the cohort-splitting rules.
package capacity

import (
	"math"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// Params are the semester-wide constants of the contact-hours ladder.
type Params struct {
	// MinimumContactDays is the floor on in-person days any section must
	// get across the whole semester before being forced remote.
	MinimumContactDays int
	// WeeksInSemester is the number of full weeks in the semester.
	WeeksInSemester int
	// NoMixing switches to the variant where student cohorts never meet
	// each other across the week. It changes only the contact-hours
	// arithmetic of the hybrid modes, not the mode ladder itself.
	NoMixing bool
}

// Result is the derived outcome for one (section, room) pairing.
type Result struct {
	ContactHours float64
	Mode         model.DeliveryMode
}

// Resolve evaluates the decision ladder for a single pairing. All inputs
// are scalars so the call stays O(1); it runs once per eligible pair and
// dominates formulation cost.
//
// Ladder, first match wins:
//  1. enrollment fits: residential_spread. One meeting day is withheld
//     when the section did not actually ask for residential delivery.
//  2. enrollment fits in k rotating cohorts (k <= meeting days):
//     hybrid_split with contact days shrinking as k grows.
//  3. enrollment fits within the semester-wide day budget: hybrid_touchpoint
//     with average weekly contact days rounded down at semester granularity.
//  4. otherwise remote with zero contact hours.
func Resolve(p Params, roomCap, enrollment int, meetingHours float64, meetingDays int, permitted model.ModeSet) Result {
	if p.NoMixing {
		return resolveNoMixing(p, roomCap, enrollment, meetingHours, meetingDays, permitted)
	}

	d := float64(meetingDays)
	switch {
	case enrollment <= roomCap:
		if permitted.Contains(model.ResidentialSpread) {
			return Result{ContactHours: meetingHours * d, Mode: model.ResidentialSpread}
		}
		return Result{ContactHours: meetingHours * (d - 1), Mode: model.ResidentialSpread}

	case enrollment <= meetingDays*roomCap:
		for k := 2; k <= meetingDays; k++ {
			if enrollment <= k*roomCap {
				contactDays := float64(meetingDays - k + 1)
				return Result{ContactHours: meetingHours * contactDays, Mode: model.HybridSplit}
			}
		}
		// unreachable: k = meetingDays always satisfies the bound
		return Result{Mode: model.Remote}

	case float64(enrollment) <= semesterBudget(p, roomCap, meetingDays):
		return Result{
			ContactHours: meetingHours * touchpointDays(p, roomCap, enrollment, meetingDays),
			Mode:         model.HybridTouchpoint,
		}

	default:
		return Result{Mode: model.Remote}
	}
}

// resolveNoMixing keeps cohorts disjoint for the whole week: no student
// attends a meeting with students from another cohort. The mode ladder is
// unchanged; only the hybrid contact-hours arithmetic differs, with fixed
// per-day rules for 2, 3 and 4 meeting days.
func resolveNoMixing(p Params, roomCap, enrollment int, meetingHours float64, meetingDays int, permitted model.ModeSet) Result {
	var mode model.DeliveryMode
	switch {
	case enrollment <= roomCap:
		mode = model.ResidentialSpread
	case enrollment <= meetingDays*roomCap:
		mode = model.HybridSplit
	case float64(enrollment) <= semesterBudget(p, roomCap, meetingDays):
		mode = model.HybridTouchpoint
	default:
		mode = model.Remote
	}

	var hours float64
	switch {
	case enrollment == 0:
		hours = 0
	case enrollment <= roomCap && permitted.Contains(model.ResidentialSpread):
		hours = meetingHours * float64(meetingDays)
	case (meetingDays == 2 || meetingDays == 3) && enrollment <= meetingDays*roomCap:
		hours = meetingHours
	case meetingDays == 4 && 2*roomCap < enrollment && enrollment <= 4*roomCap:
		hours = meetingHours
	case meetingDays == 4 && enrollment <= 2*roomCap:
		hours = 2 * meetingHours
	case float64(enrollment) <= semesterBudget(p, roomCap, meetingDays):
		hours = meetingHours * touchpointDays(p, roomCap, enrollment, meetingDays)
	default:
		hours = 0
	}

	return Result{ContactHours: hours, Mode: mode}
}

// semesterBudget is the enrollment ceiling above which even one in-person
// day per MinimumContactDays cannot be offered: weeks * days * capacity / m.
func semesterBudget(p Params, roomCap, meetingDays int) float64 {
	return float64(p.WeeksInSemester*meetingDays*roomCap) / float64(p.MinimumContactDays)
}

// touchpointDays is the average contact days per week under touchpoint
// rotation, rounded down at per-semester granularity.
func touchpointDays(p Params, roomCap, enrollment, meetingDays int) float64 {
	semesterDays := math.Floor(float64(p.WeeksInSemester*meetingDays*roomCap) / float64(enrollment))
	return semesterDays / float64(p.WeeksInSemester)
}
