package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

func section(t *testing.T, id, days, begin, end string) *model.Section {
	t.Helper()
	s := &model.Section{
		SubjectCode:   id,
		CourseNumber:  "1",
		CourseSection: "A",
		Occurrence:    "0",
		Days:          days,
		BeginTime:     begin,
		EndTime:       end,
	}
	require.NoError(t, s.DeriveProperties())
	s.ID = id
	return s
}

func TestBuildIndexAnchors(t *testing.T) {
	idx := BuildIndex([]*model.Section{
		section(t, "a", "MWF", "1000", "1100"),
		section(t, "b", "M", "1030", "1130"),
	})

	// MWF_1000_1100 -> M/W/F_1000, M_1030_1130 -> M_1030.
	assert.Equal(t, []string{"F_1000", "M_1000", "M_1030", "W_1000"}, idx.Anchors())
}

func TestBuildIndexClashSets(t *testing.T) {
	a := section(t, "a", "MWF", "1000", "1100")
	b := section(t, "b", "M", "1030", "1130")
	c := section(t, "c", "T", "1030", "1130")
	idx := BuildIndex([]*model.Section{a, b, c})

	// At M_1030 both a and b are in session; c meets on Tuesday only.
	assert.Equal(t, []string{"a", "b"}, idx.SectionsAt("M_1030"))
	// At M_1000 only a is in session (b starts later).
	assert.Equal(t, []string{"a"}, idx.SectionsAt("M_1000"))
	// On W and F nothing overlaps a.
	assert.Equal(t, []string{"a"}, idx.SectionsAt("W_1000"))
	assert.Equal(t, []string{"c"}, idx.SectionsAt("T_1030"))
}

func TestBuildIndexSharedTimeslot(t *testing.T) {
	a := section(t, "a", "TR", "0930", "1045")
	b := section(t, "b", "TR", "0930", "1045")
	idx := BuildIndex([]*model.Section{a, b})

	assert.Equal(t, []string{"a", "b"}, idx.SectionsAt("T_0930"))
	assert.Equal(t, []string{"a", "b"}, idx.SectionsAt("R_0930"))
}

func TestBuildIndexExcludesUnscheduled(t *testing.T) {
	a := section(t, "a", "MWF", "1000", "1100")
	online := &model.Section{SubjectCode: "online", CourseNumber: "1", CourseSection: "A", Occurrence: "0"}
	require.NoError(t, online.DeriveProperties())
	online.ID = "online"

	idx := BuildIndex([]*model.Section{a, online})
	for _, anchor := range idx.Anchors() {
		assert.NotContains(t, idx.SectionsAt(anchor), "online")
	}
}

func TestBuildIndexEmpty(t *testing.T) {
	idx := BuildIndex(nil)
	assert.Empty(t, idx.Anchors())
}
