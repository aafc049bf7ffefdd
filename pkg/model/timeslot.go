package model

import (
	"fmt"
	"strconv"
	"strings"
)

// AllDays lists the weekday codes in calendar order.
const AllDays = "MTWRF"

// Timeslot is a weekly meeting pattern: a set of days plus a start and end
// time. Days is a subset of "MTWRF" ("MWF" means the slot meets on all
// three days). Times are zero-padded 4-digit strings ("0900", "1315") so
// that lexicographic and numeric order coincide.
type Timeslot struct {
	Days  string
	Start string
	End   string
}

// Anchor is a simplified single-day timeslot keyed only by day and start
// time. Every multi-day timeslot expands into one anchor per day; the end
// time is discarded.
type Anchor struct {
	Day   byte
	Start string
}

func (a Anchor) String() string {
	return string(a.Day) + "_" + a.Start
}

// PadTime normalizes a 3 or 4 digit clock string to 4 digits ("900" ->
// "0900"). Any other length is malformed input.
func PadTime(raw string) (string, error) {
	switch len(raw) {
	case 3:
		return "0" + raw, nil
	case 4:
		return raw, nil
	default:
		return "", fmt.Errorf("time %q must have 3 or 4 digits (e.g. 900, 1300)", raw)
	}
}

// ParseTimeslot parses "MWF_1000_1115" style strings. Day codes outside
// MTWRF and malformed times are rejected.
func ParseTimeslot(raw string) (Timeslot, error) {
	parts := strings.Split(raw, "_")
	if len(parts) != 3 {
		return Timeslot{}, fmt.Errorf("timeslot %q must be formatted as days_start_end", raw)
	}
	days := parts[0]
	if days == "" {
		return Timeslot{}, fmt.Errorf("timeslot %q has no meeting days", raw)
	}
	for i := 0; i < len(days); i++ {
		if !strings.ContainsRune(AllDays, rune(days[i])) {
			return Timeslot{}, fmt.Errorf("timeslot %q has unknown day code %q", raw, string(days[i]))
		}
	}
	start, err := PadTime(parts[1])
	if err != nil {
		return Timeslot{}, fmt.Errorf("timeslot %q: %w", raw, err)
	}
	end, err := PadTime(parts[2])
	if err != nil {
		return Timeslot{}, fmt.Errorf("timeslot %q: %w", raw, err)
	}
	t := Timeslot{Days: days, Start: start, End: end}
	if _, err := t.Duration(); err != nil {
		return Timeslot{}, err
	}
	return t, nil
}

func (t Timeslot) String() string {
	return t.Days + "_" + t.Start + "_" + t.End
}

// MeetingDays is the number of days per week the slot meets.
func (t Timeslot) MeetingDays() int {
	return len(t.Days)
}

// Duration is the length of a single meeting in hours.
func (t Timeslot) Duration() (float64, error) {
	startHH, _ := strconv.Atoi(t.Start[:2])
	startMM, _ := strconv.Atoi(t.Start[2:])
	endHH, _ := strconv.Atoi(t.End[:2])
	endMM, _ := strconv.Atoi(t.End[2:])
	hours := float64(endHH-startHH) + float64(endMM-startMM)/60
	if hours < 0 {
		return 0, fmt.Errorf("timeslot %s ends before it starts", t)
	}
	if hours > 8 {
		return 0, fmt.Errorf("timeslot %s is implausibly long (%.2f hours)", t, hours)
	}
	return hours, nil
}

// SharesDay reports whether the two slots meet on at least one common day.
func (t Timeslot) SharesDay(other Timeslot) bool {
	for i := 0; i < len(t.Days); i++ {
		if strings.IndexByte(other.Days, t.Days[i]) >= 0 {
			return true
		}
	}
	return false
}

// Anchors expands the slot into one single-day anchor per meeting day.
func (t Timeslot) Anchors() []Anchor {
	anchors := make([]Anchor, 0, len(t.Days))
	for i := 0; i < len(t.Days); i++ {
		anchors = append(anchors, Anchor{Day: t.Days[i], Start: t.Start})
	}
	return anchors
}

// Covers reports whether the anchor's start instant falls inside this slot
// on the anchor's day. The interval is half-open: a slot covers its own
// start but not its end.
func (t Timeslot) Covers(a Anchor) bool {
	if strings.IndexByte(t.Days, a.Day) < 0 {
		return false
	}
	return t.Start <= a.Start && a.Start < t.End
}

// Conflicts reports whether two timeslots overlap in time on a shared day.
// A slot always conflicts with itself.
func Conflicts(a, b Timeslot) bool {
	if !a.SharesDay(b) {
		return false
	}
	return (b.Start <= a.Start && a.Start < b.End) ||
		(a.Start <= b.Start && b.Start < a.End)
}
