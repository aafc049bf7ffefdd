package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/capacity"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/distance"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

func testSection(t *testing.T, id, slot string, enrollment int, modes model.ModeSet) *model.Section {
	t.Helper()
	s := &model.Section{
		ID:             id,
		Enrollment:     enrollment,
		RoomUses:       []string{"class"},
		PermittedModes: modes,
		Priority:       1,
	}
	if slot != "" {
		ts, err := model.ParseTimeslot(slot)
		require.NoError(t, err)
		s.Timeslot = &ts
	}
	return s
}

func testProblem(t *testing.T) *Problem {
	t.Helper()
	sections := []*model.Section{
		testSection(t, "CS_1301_A_1", "MWF_1000_1115", 30, model.AllModes()),
		testSection(t, "CS_1332_B_1", "MWF_1000_1115", 25, model.AllModes()),
		testSection(t, "MATH_2551_C_1", "T_0900_1015", 90, model.AllModes()),
	}
	rooms := []*model.Room{
		{BldgRoom: "101_0101", Capacity: 40, Use: "class"},
		{BldgRoom: "101_0202", Capacity: 100, Use: "class"},
	}
	return NewProblem(sections, rooms, nil,
		capacity.Params{MinimumContactDays: 1, WeeksInSemester: 15},
		distance.DefaultParams())
}

func TestBuildDensity(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, Density())
	require.NoError(t, err)

	assert.Len(t, m.Formulation.Vars, 6)
	assert.Empty(t, m.Excluded)

	var assignRows, conflictRows int
	for _, c := range m.Formulation.Constraints {
		switch {
		case c.Sense == solver.Equal && c.Bound == 1:
			assignRows++
		case c.Sense == solver.LessOrEqual && c.Bound == 1:
			conflictRows++
		}
	}
	assert.Equal(t, 3, assignRows)
	// The two MWF sections clash at M/W/F 1000 anchors, in each of the two
	// rooms. Vacuous single-variable rows are skipped.
	assert.Equal(t, 6, conflictRows)

	require.Len(t, m.Formulation.Objectives, 1)
	obj := m.Formulation.Objectives[0]
	assert.Equal(t, "density", obj.Name)
	assert.Len(t, obj.Expr.Terms, 6)
	assert.Equal(t, solver.Minimize, m.Formulation.Direction)
}

func TestBuildExcludesInfeasibleSections(t *testing.T) {
	p := testProblem(t)
	p.Sections = append(p.Sections, testSection(t, "MUSI_3100_D_1", "M_0900_1015", 10, model.AllModes()))
	p.Sections[3].RoomUses = []string{"studio"}

	m, err := Build(p, Density())
	require.NoError(t, err)
	require.Len(t, m.Excluded, 1)
	assert.Equal(t, "MUSI_3100_D_1", m.Excluded[0].Section)
	assert.Len(t, m.Formulation.Vars, 6)

	// Without the full-assignment requirement the section simply carries
	// no variables and no exclusion is reported.
	m, err = Build(p, Contact())
	require.NoError(t, err)
	assert.Empty(t, m.Excluded)
}

func TestBuildContactCoefficients(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, Contact())
	require.NoError(t, err)

	require.Len(t, m.Formulation.Objectives, 1)
	obj := m.Formulation.Objectives[0]
	coefs := make(map[string]float64)
	for _, term := range obj.Expr.Terms {
		coefs[m.Formulation.Vars[term.Var].Name] = term.Coef
	}
	// 30 students, 1.25h per meeting, 3 days, fits in both rooms.
	assert.InDelta(t, 30*1.25*3, coefs["x[CS_1301_A_1|101_0101]"], 1e-9)
	// 90 students in a 40-seat single-day room resolve to touchpoint:
	// floor(15*1*40/90)/15 days = 6/15, hours = 1.25 * 0.4.
	assert.InDelta(t, 90*1.25*0.4, coefs["x[MATH_2551_C_1|101_0101]"], 1e-9)
	// 90 in the 100-seat room is residential.
	assert.InDelta(t, 90*1.25*1, coefs["x[MATH_2551_C_1|101_0202]"], 1e-9)
}

func TestPreferenceRemoteCredit(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, PreferenceContact(0.05))
	require.NoError(t, err)

	require.Len(t, m.Formulation.Objectives, 2)
	pref := m.Formulation.Objectives[0]
	require.Equal(t, "preference", pref.Name)
	// Every section permits remote, so each contributes one credit.
	assert.InDelta(t, 3, pref.Expr.Offset, 1e-9)
	// Preferred pairs gain +1 which the remote credit's -1 cancels, so no
	// terms survive for all-modes sections.
	assert.Empty(t, pref.Expr.Terms)

	// Ordering: preference stage runs before contact.
	ordered := m.Formulation.OrderedObjectives()
	assert.Equal(t, "preference", ordered[0].Name)
	assert.Equal(t, "contact", ordered[1].Name)
	assert.InDelta(t, 0.05, ordered[0].Tolerance, 1e-9)
}

func TestPreferenceWithoutRemote(t *testing.T) {
	p := testProblem(t)
	p.Sections[0].PermittedModes = model.ModeSet{model.ResidentialSpread: {}}

	m, err := Build(p, PreferenceContact(0))
	require.NoError(t, err)
	pref := m.Formulation.Objectives[0]
	assert.InDelta(t, 2, pref.Expr.Offset, 1e-9)

	coefs := make(map[string]float64)
	for _, term := range pref.Expr.Terms {
		coefs[m.Formulation.Vars[term.Var].Name] = term.Coef
	}
	// Residential-only section: preferred pairs keep their full +1.
	assert.InDelta(t, 1, coefs["x[CS_1301_A_1|101_0101]"], 1e-9)
	assert.InDelta(t, 1, coefs["x[CS_1301_A_1|101_0202]"], 1e-9)
}

func TestResidentialFloorCountsExclusiveSectionsOnly(t *testing.T) {
	p := testProblem(t)
	p.Sections[0].PermittedModes = model.ModeSet{model.ResidentialSpread: {}}
	p.Sections[1].PermittedModes = model.ModeSet{model.ResidentialSpread: {}, model.Remote: {}}

	m, err := Build(p, ResidentialEnforced(1))
	require.NoError(t, err)

	var floor *solver.Constraint
	for i := range m.Formulation.Constraints {
		if m.Formulation.Constraints[i].Name == string(ExprResidentialPreferenceCount) {
			floor = &m.Formulation.Constraints[i]
		}
	}
	require.NotNil(t, floor)
	assert.Equal(t, solver.GreaterOrEqual, floor.Sense)

	// Both rooms seat CS_1301_A_1 residentially, so its two pairs carry the
	// only terms. CS_1332_B_1 also fits residentially but permits remote as
	// well, so it never counts toward the floor, and neither do the
	// all-modes sections.
	require.Len(t, floor.Expr.Terms, 2)
	for _, term := range floor.Expr.Terms {
		assert.Equal(t, "CS_1301_A_1", m.Pairs[term.Var].Section)
		assert.InDelta(t, 1, term.Coef, 1e-9)
	}
}

func TestNondominatedBounds(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, Nondominated(1, 0.01, 0.5, 2, 100, 0))
	require.NoError(t, err)

	assert.Equal(t, solver.WeightedSum, m.Formulation.Mode)
	var boundNames []string
	for _, c := range m.Formulation.Constraints {
		if c.Sense == solver.GreaterOrEqual {
			boundNames = append(boundNames, c.Name)
		}
	}
	assert.ElementsMatch(t, []string{"preference_count", "contact_hours", "same_room_count"}, boundNames)
}

func TestStabilityTermUsesNegatedCosts(t *testing.T) {
	p := testProblem(t)
	p.Sections[0].ExistingBldgRoom = "101_0101"
	p.Buildings = []*model.Building{{Number: "101", Latitude: 33.7756, Longitude: -84.3963}}

	m, err := Build(p, StabilityPreferenceContact(0.05, 0.05))
	require.NoError(t, err)

	var stability *solver.Objective
	for i := range m.Formulation.Objectives {
		if m.Formulation.Objectives[i].Name == "stability" {
			stability = &m.Formulation.Objectives[i]
		}
	}
	require.NotNil(t, stability)
	coefs := make(map[string]float64)
	for _, term := range stability.Expr.Terms {
		coefs[m.Formulation.Vars[term.Var].Name] = term.Coef
	}
	// Staying put costs nothing, moving within the building costs the flat
	// penalty, negated into a reward structure.
	assert.NotContains(t, coefs, "x[CS_1301_A_1|101_0101]")
	assert.InDelta(t, -50, coefs["x[CS_1301_A_1|101_0202]"], 1e-9)
}

func TestConfigValidate(t *testing.T) {
	bad := Config{
		Name:       "bad",
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermContact, Priority: 1, Weight: 2}},
	}
	_, ok := errors.AsConfiguration(bad.Validate())
	assert.True(t, ok)

	bad = Config{
		Name:       "bad_kind",
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermKind("crowding"), Priority: 1}},
	}
	_, ok = errors.AsConfiguration(bad.Validate())
	assert.True(t, ok)

	bad = Config{
		Name:       "bad_bound",
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermContact, Priority: 1}},
		Bounds:     []BoundSpec{{Kind: ExprKind("happiness"), Sense: solver.GreaterOrEqual, Bound: 1}},
	}
	_, ok = errors.AsConfiguration(bad.Validate())
	assert.True(t, ok)

	for _, cfg := range []Config{
		Density(), Contact(), PreferenceContact(0.05), ResidentialEnforced(10),
		StabilityPreferenceContact(0.05, 0.1), StabilityEnforced(5, 10),
		Nondominated(1, 0.01, 0.5, 0, 0, 0),
	} {
		assert.NoError(t, cfg.Validate(), cfg.Name)
	}
}

func TestInterpret(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, Contact())
	require.NoError(t, err)

	values := make([]bool, len(m.Formulation.Vars))
	pick := func(section, room string) {
		for id, key := range m.Pairs {
			if key.Section == section && key.Room == room {
				values[id] = true
				return
			}
		}
		t.Fatalf("no variable for (%s, %s)", section, room)
	}
	pick("CS_1301_A_1", "101_0101")
	pick("MATH_2551_C_1", "101_0202")

	rows, err := m.Interpret(&solver.Result{Status: solver.StatusOptimal, Values: values})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := make(map[string]model.Assignment)
	for _, r := range rows {
		byID[r.Section] = r
	}
	assert.Equal(t, "101_0101", byID["CS_1301_A_1"].BldgRoom)
	assert.Equal(t, model.ResidentialSpread, byID["CS_1301_A_1"].DeliveryMode)
	assert.InDelta(t, 3.75, byID["CS_1301_A_1"].ContactHours, 1e-9)
	assert.True(t, byID["CS_1301_A_1"].PreferenceSatisfied)

	// Unassigned section falls back to remote.
	unassigned := byID["CS_1332_B_1"]
	assert.Empty(t, unassigned.BldgRoom)
	assert.Equal(t, model.Remote, unassigned.DeliveryMode)
	assert.Zero(t, unassigned.ContactHours)
	assert.True(t, unassigned.PreferenceSatisfied)
}

func TestInterpretRejectsNoSolution(t *testing.T) {
	p := testProblem(t)
	m, err := Build(p, Contact())
	require.NoError(t, err)
	_, err = m.Interpret(&solver.Result{Status: solver.StatusInfeasible})
	assert.Error(t, err)
}

func TestCheckAssignments(t *testing.T) {
	p := testProblem(t)
	rows := []model.Assignment{
		{Section: "CS_1301_A_1", BldgRoom: "101_0101", DeliveryMode: model.ResidentialSpread, ContactHours: 3.75},
		{Section: "CS_1332_B_1", BldgRoom: "101_0202", DeliveryMode: model.ResidentialSpread, ContactHours: 3.75},
		{Section: "MATH_2551_C_1", DeliveryMode: model.Remote},
	}
	valid, report := CheckAssignments(p, rows)
	assert.True(t, valid, report)

	// Same room, overlapping timeslots.
	rows[1].BldgRoom = "101_0101"
	valid, report = CheckAssignments(p, rows)
	assert.False(t, valid)
	assert.Contains(t, report, "[FAIL]: room collision check.")

	// Stale contact hours are caught by the recompute round-trip.
	rows[1].BldgRoom = "101_0202"
	rows[0].ContactHours = 2.5
	valid, report = CheckAssignments(p, rows)
	assert.False(t, valid)
	assert.Contains(t, report, "[FAIL]: delivery mode round-trip check.")
}

func TestProblemFingerprintInvalidation(t *testing.T) {
	p := testProblem(t)
	before := p.Fingerprint()

	p.Derive()
	assert.Equal(t, before, p.Fingerprint())

	p.Sections[0].Enrollment = 500
	after := p.Fingerprint()
	assert.NotEqual(t, before, after)

	p.Derive()
	out := p.Outcome("CS_1301_A_1", "101_0202")
	assert.Equal(t, model.HybridTouchpoint, out.Mode)
}
