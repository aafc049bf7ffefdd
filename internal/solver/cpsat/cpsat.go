// Package cpsat solves formulations with the CP-SAT engine from OR-Tools.
// CP-SAT works on integers, so float coefficients are scaled and rounded
// before the model is built. Lexicographic formulations run as a chain of
// solves, each locking the previous level's value within its tolerance.
package cpsat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
)

// DefaultObjectiveScale keeps three decimal digits of every float
// coefficient when rounding to integers.
const DefaultObjectiveScale = 1000

// Engine runs formulations through CP-SAT.
type Engine struct {
	log *zap.Logger
}

// New returns a CP-SAT engine. A nil logger disables logging.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Solve implements solver.Engine.
func (e *Engine) Solve(ctx context.Context, f *solver.Formulation, opts solver.Options) (*solver.Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	scale := opts.ObjectiveScale
	if scale == 0 {
		scale = DefaultObjectiveScale
	}

	start := time.Now()
	var res *solver.Result
	var err error
	switch f.Mode {
	case solver.WeightedSum:
		res, err = e.solveWeighted(ctx, f, opts, scale)
	default:
		res, err = e.solveLexicographic(ctx, f, opts, scale)
	}
	if err != nil {
		return nil, err
	}
	res.WallTime = time.Since(start)
	if res.Status.HasSolution() {
		res.ObjectiveValues = make([]float64, len(f.Objectives))
		for i, o := range f.Objectives {
			res.ObjectiveValues[i] = solver.EvalExpr(o.Expr, res.Values)
		}
	}
	e.log.Info("solve finished",
		zap.String("formulation", f.Name),
		zap.String("status", res.Status.String()),
		zap.Duration("wall_time", res.WallTime))
	return res, nil
}

// stageBound is a lock carried forward from an earlier lexicographic level:
// the scaled expression must stay within tolerance of the value it achieved.
type stageBound struct {
	obj      solver.Objective
	achieved int64
}

func (e *Engine) solveLexicographic(ctx context.Context, f *solver.Formulation, opts solver.Options, scale int64) (*solver.Result, error) {
	ordered := f.OrderedObjectives()
	var locks []stageBound
	var last *solver.Result
	for _, obj := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := e.solveStage(f, obj, locks, opts, scale)
		if err != nil {
			return nil, err
		}
		if !res.Status.HasSolution() {
			return res, nil
		}
		achieved := evalScaled(obj.Expr, res.Values, scale)
		e.log.Debug("lexicographic stage done",
			zap.String("objective", obj.Name),
			zap.Int("priority", obj.Priority),
			zap.Int64("scaled_value", achieved))
		locks = append(locks, stageBound{obj: obj, achieved: achieved})
		last = res
	}
	return last, nil
}

// solveStage optimizes one objective subject to the formulation's
// constraints plus the locks of every earlier stage.
func (e *Engine) solveStage(f *solver.Formulation, obj solver.Objective, locks []stageBound, opts solver.Options, scale int64) (*solver.Result, error) {
	model := cpmodel.NewCpModelBuilder()
	vars := buildVars(model, f)
	addConstraints(model, f, vars, scale)

	for _, lock := range locks {
		expr := scaledExpr(lock.obj.Expr, vars, scale)
		bound := toleranceBound(lock.achieved, lock.obj.Tolerance, f.Direction)
		if f.Direction == solver.Maximize {
			model.AddGreaterOrEqual(expr, cpmodel.NewConstant(bound))
		} else {
			model.AddLessOrEqual(expr, cpmodel.NewConstant(bound))
		}
	}

	goal := scaledExpr(obj.Expr, vars, scale)
	if f.Direction == solver.Maximize {
		model.Maximize(goal)
	} else {
		model.Minimize(goal)
	}
	return e.run(model, f, vars, opts)
}

func (e *Engine) solveWeighted(ctx context.Context, f *solver.Formulation, opts solver.Options, scale int64) (*solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := cpmodel.NewCpModelBuilder()
	vars := buildVars(model, f)
	addConstraints(model, f, vars, scale)

	goal := cpmodel.NewLinearExpr()
	for _, obj := range f.Objectives {
		for _, t := range obj.Expr.Terms {
			goal.AddTerm(vars[t.Var], scaleCoef(obj.Weight*t.Coef, scale))
		}
		goal.AddConstant(scaleCoef(obj.Weight*obj.Expr.Offset, scale))
	}
	if f.Direction == solver.Maximize {
		model.Maximize(goal)
	} else {
		model.Minimize(goal)
	}
	return e.run(model, f, vars, opts)
}

func (e *Engine) run(model *cpmodel.Builder, f *solver.Formulation, vars []cpmodel.BoolVar, opts solver.Options) (*solver.Result, error) {
	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("instantiate cp model: %w", err)
	}
	params := &sppb.SatParameters{}
	if opts.TimeLimit > 0 {
		params.MaxTimeInSeconds = proto.Float64(opts.TimeLimit.Seconds())
	}
	response, err := cpmodel.SolveCpModelWithParameters(m, params)
	if err != nil {
		return nil, fmt.Errorf("solve cp model: %w", err)
	}

	res := &solver.Result{Status: mapStatus(response.GetStatus())}
	if res.Status.HasSolution() {
		res.Values = make([]bool, len(f.Vars))
		for i, v := range vars {
			res.Values[i] = cpmodel.SolutionBooleanValue(response, v)
		}
	}
	return res, nil
}

func buildVars(model *cpmodel.Builder, f *solver.Formulation) []cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, len(f.Vars))
	for i, v := range f.Vars {
		vars[i] = model.NewBoolVar().WithName(v.Name)
	}
	return vars
}

// addConstraints emits every constraint row. Rows whose coefficients are
// all integral stay at scale 1; rows with fractional coefficients (contact
// hour bounds) are scaled like objectives so no precision is lost to
// rounding individual coefficients.
func addConstraints(model *cpmodel.Builder, f *solver.Formulation, vars []cpmodel.BoolVar, scale int64) {
	for _, c := range f.Constraints {
		rowScale := int64(1)
		if !integralCoefs(c.Expr) {
			rowScale = scale
		}
		expr := cpmodel.NewLinearExpr()
		for _, t := range c.Expr.Terms {
			expr.AddTerm(vars[t.Var], scaleCoef(t.Coef, rowScale))
		}
		bound := cpmodel.NewConstant(scaleCoef(c.Bound-c.Expr.Offset, rowScale))
		switch c.Sense {
		case solver.LessOrEqual:
			model.AddLessOrEqual(expr, bound)
		case solver.GreaterOrEqual:
			model.AddGreaterOrEqual(expr, bound)
		case solver.Equal:
			model.AddEquality(expr, bound)
		}
	}
}

func integralCoefs(e solver.LinExpr) bool {
	for _, t := range e.Terms {
		if t.Coef != math.Trunc(t.Coef) {
			return false
		}
	}
	return true
}

// scaledExpr converts an objective expression to a CP-SAT linear expression
// with integer coefficients, offset included.
func scaledExpr(e solver.LinExpr, vars []cpmodel.BoolVar, scale int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, t := range e.Terms {
		expr.AddTerm(vars[t.Var], scaleCoef(t.Coef, scale))
	}
	if e.Offset != 0 {
		expr.AddConstant(scaleCoef(e.Offset, scale))
	}
	return expr
}

func scaleCoef(c float64, scale int64) int64 {
	return int64(math.Round(c * float64(scale)))
}

func evalScaled(e solver.LinExpr, values []bool, scale int64) int64 {
	total := scaleCoef(e.Offset, scale)
	for _, t := range e.Terms {
		if values[t.Var] {
			total += scaleCoef(t.Coef, scale)
		}
	}
	return total
}

// toleranceBound turns an achieved value into the bound later stages must
// respect. Tolerance is relative, so the slack grows with the magnitude of
// the achieved value and the rounding always favors feasibility.
func toleranceBound(achieved int64, tolerance float64, dir solver.Direction) int64 {
	slack := math.Abs(float64(achieved)) * tolerance
	if dir == solver.Maximize {
		return int64(math.Floor(float64(achieved) - slack))
	}
	return int64(math.Ceil(float64(achieved) + slack))
}

func mapStatus(s cmpb.CpSolverStatus) solver.TerminationStatus {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return solver.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return solver.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return solver.StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return solver.StatusModelInvalid
	default:
		return solver.StatusUnknown
	}
}
