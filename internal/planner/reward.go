package planner

import "routine-planner/internal/model"

const (
	// CompletionReward is granted when a schedule finishes.
	CompletionReward = 20
	// PointsPerLevel is the rollover threshold.
	PointsPerLevel = 100
)

// ApplyReward adds points to a profile. Every full 100 points is exchanged
// for one level, repeatedly if needed. It returns the levels gained.
func ApplyReward(p model.Profile, points int) (model.Profile, int) {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Points < 0 {
		p.Points = 0
	}
	p.Points += points
	gained := 0
	for p.Points >= PointsPerLevel {
		p.Points -= PointsPerLevel
		p.Level++
		gained++
	}
	return p, gained
}

// PointsToNextLevel is how many points a profile still needs to level up.
func PointsToNextLevel(p model.Profile) int {
	return PointsPerLevel - p.Points
}
