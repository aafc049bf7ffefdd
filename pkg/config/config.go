// Package config loads runtime settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Files    FilesConfig
	Capacity CapacityConfig
	Distance DistanceConfig
	Solver   SolverConfig
	Log      LogConfig
}

// FilesConfig points at the input and output tables.
type FilesConfig struct {
	Sections   string
	Rooms      string
	Buildings  string
	Output     string
	Exclusions string
	Delimiter  string
}

// CapacityConfig feeds the delivery-mode resolver.
type CapacityConfig struct {
	MinimumContactDays int
	WeeksInSemester    int
	NoMixing           bool
}

// DistanceConfig shapes reassignment costs.
type DistanceConfig struct {
	Squared             bool
	SameBuildingPenalty float64
}

// SolverConfig tunes the solving engine.
type SolverConfig struct {
	TimeLimit      time.Duration
	ObjectiveScale int64
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// A missing .env is fine; the environment and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.Files = FilesConfig{
		Sections:   v.GetString("SECTIONS_FILE"),
		Rooms:      v.GetString("ROOMS_FILE"),
		Buildings:  v.GetString("BUILDINGS_FILE"),
		Output:     v.GetString("OUTPUT_FILE"),
		Exclusions: v.GetString("EXCLUSIONS_FILE"),
		Delimiter:  v.GetString("CSV_DELIMITER"),
	}

	cfg.Capacity = CapacityConfig{
		MinimumContactDays: v.GetInt("MINIMUM_CONTACT_DAYS"),
		WeeksInSemester:    v.GetInt("WEEKS_IN_SEMESTER"),
		NoMixing:           v.GetBool("NO_MIXING"),
	}

	cfg.Distance = DistanceConfig{
		Squared:             v.GetBool("DISTANCE_SQUARED"),
		SameBuildingPenalty: v.GetFloat64("SAME_BUILDING_PENALTY"),
	}

	cfg.Solver = SolverConfig{
		TimeLimit:      parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 0),
		ObjectiveScale: v.GetInt64("OBJECTIVE_SCALE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("SECTIONS_FILE", "data/sections.csv")
	v.SetDefault("ROOMS_FILE", "data/rooms.csv")
	v.SetDefault("BUILDINGS_FILE", "data/buildings.csv")
	v.SetDefault("OUTPUT_FILE", "output/assignments.csv")
	v.SetDefault("EXCLUSIONS_FILE", "output/excluded_sections.csv")
	v.SetDefault("CSV_DELIMITER", ",")

	v.SetDefault("MINIMUM_CONTACT_DAYS", 1)
	v.SetDefault("WEEKS_IN_SEMESTER", 15)
	v.SetDefault("NO_MIXING", false)

	v.SetDefault("DISTANCE_SQUARED", true)
	v.SetDefault("SAME_BUILDING_PENALTY", 50)

	v.SetDefault("SOLVER_TIME_LIMIT", "")
	v.SetDefault("OBJECTIVE_SCALE", 1000)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// DelimiterRune returns the configured csv delimiter as a rune, defaulting
// to comma for empty or multi-character values.
func (f FilesConfig) DelimiterRune() rune {
	r := []rune(f.Delimiter)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}
