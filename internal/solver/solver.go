// Package solver defines an engine-neutral representation of 0/1 linear
// optimization problems. Assemblers build a Formulation; an Engine turns it
// into variable values and a termination status.
package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
)

// VarID indexes a binary decision variable within a Formulation.
type VarID int

// Var is one 0/1 decision variable. Name is for diagnostics only.
type Var struct {
	ID   VarID
	Name string
}

// Term is a coefficient applied to one variable.
type Term struct {
	Var  VarID
	Coef float64
}

// LinExpr is a linear combination of variables plus a constant offset.
type LinExpr struct {
	Terms  []Term
	Offset float64
}

// Add appends a term and returns the expression for chaining.
func (e *LinExpr) Add(v VarID, coef float64) *LinExpr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

// Sense is a constraint comparison direction.
type Sense int

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "=="
	}
	return fmt.Sprintf("sense(%d)", int(s))
}

// Constraint bounds a linear expression. Name is for diagnostics only.
type Constraint struct {
	Name  string
	Expr  LinExpr
	Sense Sense
	Bound float64
}

// Direction says whether objectives are maximized or minimized.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

// Mode selects how multiple objectives combine.
type Mode int

const (
	// Lexicographic optimizes objectives one priority level at a time,
	// locking each level's achieved value (within its tolerance) before
	// moving to the next.
	Lexicographic Mode = iota
	// WeightedSum collapses every objective into a single weighted
	// expression solved once.
	WeightedSum
)

// Objective is one goal expression. Under Lexicographic, Priority orders
// stages (higher number first) and Tolerance is the relative slack allowed
// when the level's value is locked; Weight must be zero. Under WeightedSum,
// Weight scales the expression and Priority and Tolerance must be zero.
type Objective struct {
	Name      string
	Expr      LinExpr
	Priority  int
	Weight    float64
	Tolerance float64
}

// Formulation is one complete problem ready for an engine.
type Formulation struct {
	Name        string
	Vars        []Var
	Constraints []Constraint
	Objectives  []Objective
	Direction   Direction
	Mode        Mode
}

// NewVar registers a fresh binary variable and returns its ID.
func (f *Formulation) NewVar(name string) VarID {
	id := VarID(len(f.Vars))
	f.Vars = append(f.Vars, Var{ID: id, Name: name})
	return id
}

// AddConstraint appends a constraint.
func (f *Formulation) AddConstraint(c Constraint) {
	f.Constraints = append(f.Constraints, c)
}

// AddObjective appends an objective.
func (f *Formulation) AddObjective(o Objective) {
	f.Objectives = append(f.Objectives, o)
}

// Validate rejects formulations that mix the two multi-objective styles or
// reference variables that do not exist. Runs before any engine does.
func (f *Formulation) Validate() error {
	if len(f.Objectives) == 0 {
		return &errors.ConfigurationError{Detail: "formulation has no objective"}
	}
	for _, o := range f.Objectives {
		switch f.Mode {
		case Lexicographic:
			if o.Weight != 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"objective %q carries weight %v in a lexicographic formulation", o.Name, o.Weight)}
			}
			if o.Tolerance < 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"objective %q has negative tolerance %v", o.Name, o.Tolerance)}
			}
		case WeightedSum:
			if o.Priority != 0 || o.Tolerance != 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"objective %q carries priority or tolerance in a weighted-sum formulation", o.Name)}
			}
			if o.Weight == 0 {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"objective %q has zero weight in a weighted-sum formulation", o.Name)}
			}
		}
	}
	if f.Mode == Lexicographic {
		seen := make(map[int]string, len(f.Objectives))
		for _, o := range f.Objectives {
			if prev, dup := seen[o.Priority]; dup {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"objectives %q and %q share priority %d", prev, o.Name, o.Priority)}
			}
			seen[o.Priority] = o.Name
		}
	}
	n := VarID(len(f.Vars))
	check := func(where string, e LinExpr) error {
		for _, t := range e.Terms {
			if t.Var < 0 || t.Var >= n {
				return &errors.ConfigurationError{Detail: fmt.Sprintf(
					"%s references unknown variable %d", where, t.Var)}
			}
		}
		return nil
	}
	for _, c := range f.Constraints {
		if err := check("constraint "+c.Name, c.Expr); err != nil {
			return err
		}
	}
	for _, o := range f.Objectives {
		if err := check("objective "+o.Name, o.Expr); err != nil {
			return err
		}
	}
	return nil
}

// OrderedObjectives returns the objectives sorted for lexicographic
// evaluation, highest priority number first.
func (f *Formulation) OrderedObjectives() []Objective {
	ordered := make([]Objective, len(f.Objectives))
	copy(ordered, f.Objectives)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return ordered
}

// TerminationStatus classifies how an engine finished.
type TerminationStatus int

const (
	StatusOptimal TerminationStatus = iota
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
	StatusUnknown
)

func (s TerminationStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusModelInvalid:
		return "model_invalid"
	case StatusUnknown:
		return "unknown"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// HasSolution reports whether variable values are meaningful.
func (s TerminationStatus) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options tunes an engine run.
type Options struct {
	// TimeLimit caps each underlying solve. Zero means no limit beyond
	// what the context imposes.
	TimeLimit time.Duration
	// ObjectiveScale multiplies float coefficients before integer
	// rounding in engines that need integral objectives. Zero selects the
	// engine default.
	ObjectiveScale int64
}

// Result is one engine outcome. Values is indexed by VarID and only valid
// when Status.HasSolution(); ObjectiveValues records the achieved value of
// each objective in formulation order.
type Result struct {
	Status          TerminationStatus
	Values          []bool
	ObjectiveValues []float64
	WallTime        time.Duration
}

// Engine solves formulations.
type Engine interface {
	Solve(ctx context.Context, f *Formulation, opts Options) (*Result, error)
}

// EvalExpr computes an expression's value under an assignment.
func EvalExpr(e LinExpr, values []bool) float64 {
	total := e.Offset
	for _, t := range e.Terms {
		if t.Var >= 0 && int(t.Var) < len(values) && values[t.Var] {
			total += t.Coef
		}
	}
	return total
}
