package model

// Assignment is one row of the solved output table. BldgRoom is empty for
// sections that ended up without a room (they are reported, never dropped).
type Assignment struct {
	Section             string       `csv:"subject_course_section_occurrence"`
	BldgRoom            string       `csv:"bldg_room"`
	DeliveryMode        DeliveryMode `csv:"delivery_mode"`
	ContactHours        float64      `csv:"in_person_hours"`
	PreferenceSatisfied bool         `csv:"preference"`
}
