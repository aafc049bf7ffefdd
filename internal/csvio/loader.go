// Package csvio reads the section, room and building tables and writes the
// solved assignment table. Headers are the canonical lowercase column names;
// the delimiter is configurable because source systems disagree on it.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// SetDelimiter installs the field delimiter for all subsequent reads.
func SetDelimiter(delim rune) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})
}

// LoadSections reads the section table, derives per-section properties and
// validates shape: identifiers must be unique and enrollments non-negative.
func LoadSections(path string) ([]*model.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sections file: %w", err)
	}
	defer f.Close()

	var sections []*model.Section
	if err := gocsv.UnmarshalFile(f, &sections); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if err := s.DeriveProperties(); err != nil {
			return nil, &errors.DataShapeError{Table: "sections", ID: s.ID, Detail: err.Error()}
		}
		if _, dup := seen[s.ID]; dup {
			return nil, &errors.DataShapeError{Table: "sections", Field: "subject_course_section_occurrence", ID: s.ID, Detail: "duplicate section identifier"}
		}
		seen[s.ID] = struct{}{}
		if s.Enrollment < 0 {
			return nil, &errors.DataShapeError{Table: "sections", Field: "enrollment", ID: s.ID, Detail: fmt.Sprintf("negative enrollment %d", s.Enrollment)}
		}
	}
	return sections, nil
}

// LoadRooms reads the room table. Rooms must have unique identifiers and
// strictly positive capacity; malformed rows are rejected, never clamped.
func LoadRooms(path string) ([]*model.Room, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rooms file: %w", err)
	}
	defer f.Close()

	var rooms []*model.Room
	if err := gocsv.UnmarshalFile(f, &rooms); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		if r.BldgRoom == "" {
			return nil, &errors.DataShapeError{Table: "rooms", Field: "bldg_room", Detail: "empty room identifier"}
		}
		if _, dup := seen[r.BldgRoom]; dup {
			return nil, &errors.DataShapeError{Table: "rooms", Field: "bldg_room", ID: r.BldgRoom, Detail: "duplicate room identifier"}
		}
		seen[r.BldgRoom] = struct{}{}
		if r.Capacity <= 0 {
			return nil, &errors.DataShapeError{Table: "rooms", Field: "capacity", ID: r.BldgRoom, Detail: fmt.Sprintf("capacity %d must be positive", r.Capacity)}
		}
	}
	return rooms, nil
}

// LoadBuildings reads the optional building location table. Only stability
// variants need it; a missing path yields an empty slice rather than an
// error so other variants run without the file.
func LoadBuildings(path string) ([]*model.Building, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open buildings file: %w", err)
	}
	defer f.Close()

	var buildings []*model.Building
	if err := gocsv.UnmarshalFile(f, &buildings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(buildings))
	for _, b := range buildings {
		if b.Number == "" {
			return nil, &errors.DataShapeError{Table: "buildings", Field: "building_number", Detail: "empty building identifier"}
		}
		if _, dup := seen[b.Number]; dup {
			return nil, &errors.DataShapeError{Table: "buildings", Field: "building_number", ID: b.Number, Detail: "duplicate building identifier"}
		}
		seen[b.Number] = struct{}{}
	}
	return buildings, nil
}

// LoadAssignments re-ingests a previously written assignment table, used by
// the validate command and round-trip tests.
func LoadAssignments(path string) ([]model.Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open assignments file: %w", err)
	}
	defer f.Close()

	var rows []model.Assignment
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
