package planner

import "routine-planner/internal/model"

// SoonThreshold is how many minutes before the start a schedule counts as soon.
const SoonThreshold = 15

// Classify computes the status of a window at now (minutes since midnight).
// A schedule that is already done stays done; an exact boundary minute is ongoing.
func Classify(now, start, end int, alreadyDone bool) model.Status {
	return ClassifyWithin(now, start, end, alreadyDone, SoonThreshold)
}

// ClassifyWithin is Classify with a custom soon threshold.
func ClassifyWithin(now, start, end int, alreadyDone bool, soon int) model.Status {
	if end < start {
		end = start
	}
	switch {
	case alreadyDone:
		return model.StatusDone
	case now >= start && now <= end:
		return model.StatusOngoing
	case now > end:
		return model.StatusDone
	case start-now > 0 && start-now <= soon:
		return model.StatusSoon
	default:
		return model.StatusUpcoming
	}
}

// ClassifyWindow classifies a parsed window.
func ClassifyWindow(now int, w Window, alreadyDone bool) model.Status {
	return Classify(now, w.Start, w.End, alreadyDone)
}
