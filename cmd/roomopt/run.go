package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/assemble"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/capacity"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/csvio"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/distance"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/solver/cpsat"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/config"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/logger"
)

// Exit codes: 1 setup or data failure, 2 infeasible model, 3 solver gave no
// usable answer within its limits.
const (
	exitFailure    = 1
	exitInfeasible = 2
	exitNoSolution = 3
)

func runVariant(variant assemble.Config) {
	cfg, log := mustSetup()
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID), zap.String("variant", variant.Name))

	problem := mustLoadProblem(cfg, log)
	m, err := assemble.Build(problem, variant)
	if err != nil {
		log.Error("model build failed", zap.Error(err))
		os.Exit(exitFailure)
	}
	log.Info("model assembled",
		zap.Int("variables", len(m.Formulation.Vars)),
		zap.Int("constraints", len(m.Formulation.Constraints)),
		zap.Int("excluded_sections", len(m.Excluded)))
	for _, e := range m.Excluded {
		log.Warn("section excluded", zap.String("section", e.Section), zap.String("reason", e.Reason))
	}

	engine := cpsat.New(log)
	res, err := engine.Solve(context.Background(), m.Formulation, solver.Options{
		TimeLimit:      cfg.Solver.TimeLimit,
		ObjectiveScale: cfg.Solver.ObjectiveScale,
	})
	if err != nil {
		log.Error("solve failed", zap.Error(err))
		os.Exit(exitFailure)
	}
	switch res.Status {
	case solver.StatusInfeasible:
		log.Error("model is infeasible; relax bounds or input data")
		os.Exit(exitInfeasible)
	case solver.StatusOptimal, solver.StatusFeasible:
	default:
		log.Error("no solution within solver limits", zap.String("status", res.Status.String()))
		os.Exit(exitNoSolution)
	}
	if res.Status == solver.StatusFeasible {
		log.Warn("solution is feasible but not proven optimal")
	}
	for i, obj := range m.Formulation.Objectives {
		log.Info("objective value",
			zap.String("objective", obj.Name),
			zap.Float64("value", res.ObjectiveValues[i]))
	}

	rows, err := m.Interpret(res)
	if err != nil {
		log.Error("result interpretation failed", zap.Error(err))
		os.Exit(exitFailure)
	}
	if valid, report := assemble.CheckAssignments(problem, rows); !valid {
		log.Error("solved assignment failed validation", zap.String("report", report))
		os.Exit(exitFailure)
	}

	if err := csvio.WriteAssignments(rows, cfg.Files.Output); err != nil {
		log.Error("write output", zap.Error(err))
		os.Exit(exitFailure)
	}
	if len(m.Excluded) > 0 {
		if err := csvio.WriteExclusions(m.Excluded, cfg.Files.Exclusions); err != nil {
			log.Error("write exclusions", zap.Error(err))
			os.Exit(exitFailure)
		}
	}
	log.Info("assignment written",
		zap.String("output", cfg.Files.Output),
		zap.Int("sections", len(rows)),
		zap.Duration("solve_wall_time", res.WallTime))
}

func runValidate() {
	cfg, log := mustSetup()
	defer log.Sync()

	problem := mustLoadProblem(cfg, log)
	rows, err := csvio.LoadAssignments(cfg.Files.Output)
	if err != nil {
		log.Error("load assignments", zap.Error(err))
		os.Exit(exitFailure)
	}

	valid, report := assemble.CheckAssignments(problem, rows)
	fmt.Print(report)
	if !valid {
		os.Exit(exitFailure)
	}
}

func mustSetup() (*config.Config, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(exitFailure)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(exitFailure)
	}
	return cfg, log
}

func mustLoadProblem(cfg *config.Config, log *zap.Logger) *assemble.Problem {
	csvio.SetDelimiter(cfg.Files.DelimiterRune())

	sections, err := csvio.LoadSections(cfg.Files.Sections)
	if err != nil {
		log.Error("load sections", zap.Error(err))
		os.Exit(exitFailure)
	}
	rooms, err := csvio.LoadRooms(cfg.Files.Rooms)
	if err != nil {
		log.Error("load rooms", zap.Error(err))
		os.Exit(exitFailure)
	}
	buildings, err := csvio.LoadBuildings(cfg.Files.Buildings)
	if err != nil {
		log.Error("load buildings", zap.Error(err))
		os.Exit(exitFailure)
	}
	log.Info("input loaded",
		zap.Int("sections", len(sections)),
		zap.Int("rooms", len(rooms)),
		zap.Int("buildings", len(buildings)))

	return assemble.NewProblem(sections, rooms, buildings,
		capacity.Params{
			MinimumContactDays: cfg.Capacity.MinimumContactDays,
			WeeksInSemester:    cfg.Capacity.WeeksInSemester,
			NoMixing:           cfg.Capacity.NoMixing,
		},
		distance.Params{
			Squared:             cfg.Distance.Squared,
			SameBuildingPenalty: cfg.Distance.SameBuildingPenalty,
		})
}
