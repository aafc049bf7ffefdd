package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

var params = Params{MinimumContactDays: 1, WeeksInSemester: 15}

func TestResolveResidential(t *testing.T) {
	// enrollment=30, capacity=30, duration=1.25h, 3 meeting days.
	got := Resolve(params, 30, 30, 1.25, 3, model.AllModes())
	assert.Equal(t, model.ResidentialSpread, got.Mode)
	assert.Equal(t, 3.75, got.ContactHours)
}

func TestResolveResidentialNotDesired(t *testing.T) {
	// Fits residentially but the section never asked for it: one day is
	// withheld.
	permitted, err := model.ParseModeSet("hybrid_split")
	assert.NoError(t, err)
	got := Resolve(params, 30, 30, 1.25, 3, permitted)
	assert.Equal(t, model.ResidentialSpread, got.Mode)
	assert.Equal(t, 2.5, got.ContactHours)
}

func TestResolveHybridSplit(t *testing.T) {
	// enrollment=90, capacity=30, 3 days: smallest k with 90 <= 30k is
	// k=3, so one contact day per week.
	got := Resolve(params, 30, 90, 1.0, 3, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 1.0, got.ContactHours)

	// enrollment=45 needs only two cohorts: two contact days.
	got = Resolve(params, 30, 45, 1.0, 3, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 2.0, got.ContactHours)
}

func TestResolveHybridTouchpoint(t *testing.T) {
	// enrollment=100 > 3*30, but 15*3*30/1 = 1350 >= 100.
	got := Resolve(params, 30, 100, 1.0, 3, model.AllModes())
	assert.Equal(t, model.HybridTouchpoint, got.Mode)
	// floor(15*3*30/100)=13 semester days -> 13/15 days per week.
	assert.InDelta(t, 13.0/15.0, got.ContactHours, 1e-12)
}

func TestResolveRemote(t *testing.T) {
	strict := Params{MinimumContactDays: 3, WeeksInSemester: 15}
	// 15*3*30/3 = 450 < 500.
	got := Resolve(strict, 30, 500, 1.0, 3, model.AllModes())
	assert.Equal(t, model.Remote, got.Mode)
	assert.Equal(t, 0.0, got.ContactHours)
}

func TestResolveFitAlwaysResidential(t *testing.T) {
	// Whenever enrollment <= capacity the mode is residential_spread,
	// regardless of the other parameters.
	for _, days := range []int{1, 2, 3, 4, 5} {
		for _, weeks := range []int{10, 15} {
			p := Params{MinimumContactDays: 2, WeeksInSemester: weeks}
			got := Resolve(p, 40, 40, 1.5, days, model.AllModes())
			assert.Equal(t, model.ResidentialSpread, got.Mode)
		}
	}
}

func TestResolveMonotoneInEnrollment(t *testing.T) {
	order := map[model.DeliveryMode]int{
		model.ResidentialSpread: 0,
		model.HybridSplit:       1,
		model.HybridTouchpoint:  2,
		model.Remote:            3,
	}
	for _, noMixing := range []bool{false, true} {
		p := Params{MinimumContactDays: 2, WeeksInSemester: 15, NoMixing: noMixing}
		prev := -1
		for enrollment := 1; enrollment <= 2000; enrollment++ {
			got := Resolve(p, 25, enrollment, 1.25, 3, model.AllModes())
			rank := order[got.Mode]
			assert.GreaterOrEqual(t, rank, prev,
				"mode moved backward at enrollment=%d (noMixing=%v)", enrollment, noMixing)
			prev = rank
		}
	}
}

func TestResolveNoMixing(t *testing.T) {
	p := Params{MinimumContactDays: 1, WeeksInSemester: 15, NoMixing: true}

	// Residential fit with residential preferred: full week.
	got := Resolve(p, 30, 30, 1.0, 3, model.AllModes())
	assert.Equal(t, model.ResidentialSpread, got.Mode)
	assert.Equal(t, 3.0, got.ContactHours)

	// Hybrid split with 3 meeting days: exactly one contact day no matter
	// the cohort count, since cohorts must never mix.
	got = Resolve(p, 30, 45, 1.0, 3, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 1.0, got.ContactHours)
	got = Resolve(p, 30, 90, 1.0, 3, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 1.0, got.ContactHours)

	// 4 meeting days diverge from the default ladder: two cohorts get two
	// days each, more than two cohorts get one.
	got = Resolve(p, 30, 60, 1.0, 4, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 2.0, got.ContactHours)
	got = Resolve(p, 30, 100, 1.0, 4, model.AllModes())
	assert.Equal(t, model.HybridSplit, got.Mode)
	assert.Equal(t, 1.0, got.ContactHours)

	// Zero enrollment yields zero hours.
	got = Resolve(p, 30, 0, 1.0, 3, model.AllModes())
	assert.Equal(t, 0.0, got.ContactHours)
}

func TestResolveVariantsDivergeAtFourDays(t *testing.T) {
	// Default ladder: 60 students, cap 30, 4 days -> k=2, 3 contact days.
	// No-mixing: same pairing yields 2 contact days. Both are valid
	// institutional policies and must stay behind the flag.
	base := Params{MinimumContactDays: 1, WeeksInSemester: 15}
	noMix := base
	noMix.NoMixing = true

	def := Resolve(base, 30, 60, 1.0, 4, model.AllModes())
	alt := Resolve(noMix, 30, 60, 1.0, 4, model.AllModes())
	assert.Equal(t, model.HybridSplit, def.Mode)
	assert.Equal(t, model.HybridSplit, alt.Mode)
	assert.Equal(t, 3.0, def.ContactHours)
	assert.Equal(t, 2.0, alt.ContactHours)
}
