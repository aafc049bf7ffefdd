package assemble

import (
	"fmt"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
)

// TermKind names an objective term the assembler knows how to build.
type TermKind string

const (
	// TermPreference counts satisfied delivery-mode preferences, with a
	// credit for unassigned sections that permit remote delivery.
	TermPreference TermKind = "preference"
	// TermContact totals weekly in-person contact hours scaled by
	// enrollment and section priority.
	TermContact TermKind = "contact"
	// TermStability rewards keeping sections near their prior rooms by
	// negating the reassignment cost.
	TermStability TermKind = "stability"
	// TermDensity totals enrollment-to-capacity load, minimized to spread
	// students across rooms.
	TermDensity TermKind = "density"
)

// ExprKind names an aggregate expression usable in bound constraints.
type ExprKind string

const (
	ExprPreferenceCount            ExprKind = "preference_count"
	ExprContactHours               ExprKind = "contact_hours"
	ExprSameRoomCount              ExprKind = "same_room_count"
	ExprResidentialPreferenceCount ExprKind = "residential_preference_count"
)

// TermSpec is one objective term. Under lexicographic mode, Priority orders
// terms (higher solved first) and Tolerance is the relative degradation
// accepted before the next level; under weighted-sum mode only Weight is
// set.
type TermSpec struct {
	Kind      TermKind
	Priority  int
	Weight    float64
	Tolerance float64
}

// BoundSpec is one optional bound constraint on an aggregate expression.
type BoundSpec struct {
	Kind  ExprKind
	Sense solver.Sense
	Bound float64
}

// Config declares one planning variant: which constraints are included,
// which objective terms are registered, and in what priority or weight
// regime. Every variant of the model family is a value of this type.
type Config struct {
	Name                  string
	RequireFullAssignment bool
	Direction             solver.Direction
	Mode                  solver.Mode
	Objectives            []TermSpec
	Bounds                []BoundSpec
}

// Validate rejects configurations that mix lexicographic and weighted-sum
// semantics or reference unknown term kinds, before any model is built.
func (c *Config) Validate() error {
	if len(c.Objectives) == 0 {
		return &errors.ConfigurationError{Detail: fmt.Sprintf("variant %q has no objective terms", c.Name)}
	}
	for _, t := range c.Objectives {
		switch t.Kind {
		case TermPreference, TermContact, TermStability, TermDensity:
		default:
			return &errors.ConfigurationError{Detail: fmt.Sprintf("unknown objective term kind %q", t.Kind)}
		}
		switch c.Mode {
		case solver.Lexicographic:
			if t.Weight != 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"term %q carries weight %v in lexicographic variant %q", t.Kind, t.Weight, c.Name)}
			}
		case solver.WeightedSum:
			if t.Priority != 0 || t.Tolerance != 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"term %q carries priority or tolerance in weighted-sum variant %q", t.Kind, c.Name)}
			}
			if t.Weight <= 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"term %q needs a positive weight in weighted-sum variant %q", t.Kind, c.Name)}
			}
		}
	}
	for _, b := range c.Bounds {
		switch b.Kind {
		case ExprPreferenceCount, ExprContactHours, ExprSameRoomCount, ExprResidentialPreferenceCount:
		default:
			return &errors.ConfigurationError{Detail: fmt.Sprintf("bound references unknown expression kind %q", b.Kind)}
		}
	}
	return nil
}

// Density is the crowding-minimization variant: every section must be
// placed, and total enrollment-to-capacity load is minimized.
func Density() Config {
	return Config{
		Name:                  "density",
		RequireFullAssignment: true,
		Direction:             solver.Minimize,
		Mode:                  solver.Lexicographic,
		Objectives:            []TermSpec{{Kind: TermDensity, Priority: 1}},
	}
}

// Contact maximizes weekly in-person contact hours. Sections may stay
// unassigned and fall back to remote delivery.
func Contact() Config {
	return Config{
		Name:       "contact",
		Direction:  solver.Maximize,
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermContact, Priority: 1}},
	}
}

// PreferenceContact maximizes preference satisfaction first, then contact
// hours within prefTol relative degradation of the preference optimum.
func PreferenceContact(prefTol float64) Config {
	return Config{
		Name:      "preference_contact",
		Direction: solver.Maximize,
		Mode:      solver.Lexicographic,
		Objectives: []TermSpec{
			{Kind: TermPreference, Priority: 2, Tolerance: prefTol},
			{Kind: TermContact, Priority: 1},
		},
	}
}

// ResidentialEnforced maximizes preference satisfaction subject to a floor
// on how many residential-only sections achieve residential delivery.
func ResidentialEnforced(bound float64) Config {
	return Config{
		Name:       "residential_enforced",
		Direction:  solver.Maximize,
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermPreference, Priority: 1}},
		Bounds: []BoundSpec{
			{Kind: ExprResidentialPreferenceCount, Sense: solver.GreaterOrEqual, Bound: bound},
		},
	}
}

// StabilityPreferenceContact layers plan stability under preference and
// contact: preference first, contact second, reassignment cost last.
func StabilityPreferenceContact(prefTol, contactTol float64) Config {
	return Config{
		Name:      "stability_preference_contact",
		Direction: solver.Maximize,
		Mode:      solver.Lexicographic,
		Objectives: []TermSpec{
			{Kind: TermPreference, Priority: 3, Tolerance: prefTol},
			{Kind: TermContact, Priority: 2, Tolerance: contactTol},
			{Kind: TermStability, Priority: 1},
		},
	}
}

// StabilityEnforced minimizes disruption alone, with floors on preference
// satisfaction and residential-preference counts.
func StabilityEnforced(resBound, prefBound float64) Config {
	return Config{
		Name:       "stability_enforced",
		Direction:  solver.Maximize,
		Mode:       solver.Lexicographic,
		Objectives: []TermSpec{{Kind: TermStability, Priority: 1}},
		Bounds: []BoundSpec{
			{Kind: ExprResidentialPreferenceCount, Sense: solver.GreaterOrEqual, Bound: resBound},
			{Kind: ExprPreferenceCount, Sense: solver.GreaterOrEqual, Bound: prefBound},
		},
	}
}

// Nondominated scalarizes preference, contact and stability into one
// weighted objective with lower bounds pinning each concern. Sweeping the
// weights and bounds traces the nondominated frontier.
func Nondominated(wPref, wContact, wStability float64, prefMin, contactMin, sameRoomMin float64) Config {
	return Config{
		Name:      "nondominated",
		Direction: solver.Maximize,
		Mode:      solver.WeightedSum,
		Objectives: []TermSpec{
			{Kind: TermPreference, Weight: wPref},
			{Kind: TermContact, Weight: wContact},
			{Kind: TermStability, Weight: wStability},
		},
		Bounds: []BoundSpec{
			{Kind: ExprPreferenceCount, Sense: solver.GreaterOrEqual, Bound: prefMin},
			{Kind: ExprContactHours, Sense: solver.GreaterOrEqual, Bound: contactMin},
			{Kind: ExprSameRoomCount, Sense: solver.GreaterOrEqual, Bound: sameRoomMin},
		},
	}
}
