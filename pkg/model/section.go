package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Section is one scheduled occurrence of a course. The csv-tagged fields
// mirror the section table produced by the ingestion side; the remaining
// fields are derived once at load time and never mutated afterwards.
type Section struct {
	SubjectCode      string `csv:"subject_code"`
	CourseNumber     string `csv:"course_number"`
	CourseSection    string `csv:"course_section"`
	Occurrence       string `csv:"occurrence"`
	Enrollment       int    `csv:"enrollment"`
	Days             string `csv:"days"`
	BeginTime        string `csv:"begin_time"`
	EndTime          string `csv:"end_time"`
	RoomUseRaw       string `csv:"room_use"`
	ModeRaw          string `csv:"mode"`
	PriorityRaw      string `csv:"priority"`
	ExistingBuilding string `csv:"building_number"`
	ExistingRoom     string `csv:"room"`

	ID               string    `csv:"-"`
	Timeslot         *Timeslot `csv:"-"` // nil when the section has no time assignment
	RoomUses         []string  `csv:"-"`
	PermittedModes   ModeSet   `csv:"-"`
	Priority         float64   `csv:"-"`
	ExistingBldgRoom string    `csv:"-"` // "" when no prior assignment exists
}

// DeriveProperties computes the identifier and parsed fields from the raw
// table columns. Must be called once after loading, before the section is
// handed to any set builder.
func (s *Section) DeriveProperties() error {
	s.ID = s.SubjectCode + "_" + s.CourseNumber + "_" + s.CourseSection + "_" + s.Occurrence

	// A blank meeting pattern means the section is unscheduled in time,
	// e.g. fully online. It still participates in room-only constraints.
	if strings.TrimSpace(s.Days) != "" && strings.TrimSpace(s.BeginTime) != "" {
		ts, err := ParseTimeslot(s.Days + "_" + s.BeginTime + "_" + s.EndTime)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.ID, err)
		}
		s.Timeslot = &ts
	}

	s.RoomUses = nil
	for _, use := range strings.Split(s.RoomUseRaw, ",") {
		if use = strings.TrimSpace(use); use != "" {
			s.RoomUses = append(s.RoomUses, use)
		}
	}

	modes, err := ParseModeSet(s.ModeRaw)
	if err != nil {
		return fmt.Errorf("section %s: %w", s.ID, err)
	}
	s.PermittedModes = modes

	s.Priority = 1
	if raw := strings.TrimSpace(s.PriorityRaw); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("section %s: malformed priority %q", s.ID, raw)
		}
		s.Priority = p
	}

	if strings.TrimSpace(s.ExistingBuilding) != "" && strings.TrimSpace(s.ExistingRoom) != "" {
		s.ExistingBldgRoom = strings.TrimSpace(s.ExistingBuilding) + "_" + strings.TrimSpace(s.ExistingRoom)
	}
	return nil
}

// MeetingHours is the duration of one meeting in hours, 0 when the section
// has no timeslot.
func (s *Section) MeetingHours() float64 {
	if s.Timeslot == nil {
		return 0
	}
	hours, err := s.Timeslot.Duration()
	if err != nil {
		return 0
	}
	return hours
}

// MeetingDays is the number of weekly meeting days, 0 when unscheduled.
func (s *Section) MeetingDays() int {
	if s.Timeslot == nil {
		return 0
	}
	return s.Timeslot.MeetingDays()
}
