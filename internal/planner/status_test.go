package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"routine-planner/internal/model"
)

func TestClassifyRules(t *testing.T) {
	start, end := 8*60, 9*60
	cases := []struct {
		name string
		now  int
		done bool
		want model.Status
	}{
		{"done is sticky", 7 * 60, true, model.StatusDone},
		{"early", 7 * 60, false, model.StatusUpcoming},
		{"fifteen minutes before", start - 15, false, model.StatusSoon},
		{"sixteen minutes before", start - 16, false, model.StatusUpcoming},
		{"start boundary", start, false, model.StatusOngoing},
		{"end boundary", end, false, model.StatusOngoing},
		{"after end", end + 1, false, model.StatusDone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.now, start, end, tc.done))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[model.Status]int{
		model.StatusUpcoming: 0,
		model.StatusSoon:     1,
		model.StatusOngoing:  2,
		model.StatusDone:     3,
	}
	w := Window{Start: 600, End: 660}
	prev := -1
	done := false
	for now := 0; now <= LastMinute; now++ {
		st := ClassifyWindow(now, w, done)
		assert.GreaterOrEqual(t, rank[st], prev, "regressed at minute %d", now)
		prev = rank[st]
		if st == model.StatusDone {
			done = true
		}
	}
	assert.True(t, done)
}

func TestClassifyInvertedWindowIsZeroLength(t *testing.T) {
	assert.Equal(t, model.StatusOngoing, Classify(600, 600, 500, false))
	assert.Equal(t, model.StatusDone, Classify(601, 600, 500, false))
}

func TestClassifyScenario(t *testing.T) {
	w, err := ParseWindow("08:00 - 09:00")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusSoon, ClassifyWindow(7*60+50, w, false))
	assert.Equal(t, model.StatusOngoing, ClassifyWindow(8*60+30, w, false))
	assert.Equal(t, model.StatusDone, ClassifyWindow(9*60+15, w, false))
}
