package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"routine-planner/internal/events"
	"routine-planner/internal/metrics"
	"routine-planner/internal/model"
	"routine-planner/internal/planner"
)

// ReconcilerOptions tune the reconciliation loop. Zero values take the defaults.
type ReconcilerOptions struct {
	Reward   int
	Soon     int
	Location *time.Location
	Now      func() time.Time
}

// TickResult summarises one reconciliation pass.
type TickResult struct {
	Skipped   bool
	Evaluated int
	Completed int
	Failed    int
}

type tracked struct {
	schedule model.Schedule
	window   planner.Window
	status   model.Status
}

// Reconciler keeps today's schedules of every user in memory and promotes their
// status as the clock moves. A schedule that reaches done is written back and
// rewarded once.
type Reconciler struct {
	store   ScheduleStore
	rewards *RewardService
	bus     *events.Bus
	metrics *metrics.Metrics
	log     zerolog.Logger

	reward int
	soon   int
	loc    *time.Location
	now    func() time.Time

	running atomic.Bool
	stopped atomic.Bool
	dirty   atomic.Bool

	// Touched only from inside a tick.
	loadedDay  string
	inProgress map[string]struct{}

	mu    sync.RWMutex
	items []tracked
	index map[string]int
}

func NewReconciler(store ScheduleStore, rewards *RewardService, bus *events.Bus, m *metrics.Metrics, log zerolog.Logger, opts ReconcilerOptions) *Reconciler {
	if opts.Reward <= 0 {
		opts.Reward = planner.CompletionReward
	}
	if opts.Soon <= 0 {
		opts.Soon = planner.SoonThreshold
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Reconciler{
		store:      store,
		rewards:    rewards,
		bus:        bus,
		metrics:    m,
		log:        log.With().Str("component", "reconciler").Logger(),
		reward:     opts.Reward,
		soon:       opts.Soon,
		loc:        opts.Location,
		now:        opts.Now,
		inProgress: make(map[string]struct{}),
		index:      make(map[string]int),
	}
	r.dirty.Store(true)
	return r
}

// Invalidate asks the next tick to reload the working set from the store.
func (r *Reconciler) Invalidate() {
	r.dirty.Store(true)
}

// Stop ends the loop. A tick already running finishes its writes but does not
// publish its results.
func (r *Reconciler) Stop() {
	r.stopped.Store(true)
}

// StatusOf returns the last status computed for id.
func (r *Reconciler) StatusOf(id string) (model.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return "", false
	}
	return r.items[i].status, true
}

// Snapshot copies the working set of one user, ordered by start time.
func (r *Reconciler) Snapshot(userID uint) []ScheduleView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ScheduleView
	for _, it := range r.items {
		if it.schedule.UserID == userID {
			out = append(out, ScheduleView{Schedule: it.schedule, Window: it.window, Status: it.status})
		}
	}
	return out
}

// Tick runs one pass. It is skipped when the previous pass is still running.
func (r *Reconciler) Tick(ctx context.Context) TickResult {
	if r.stopped.Load() {
		return TickResult{Skipped: true}
	}
	if !r.running.CompareAndSwap(false, true) {
		r.metrics.TickSkipped()
		r.log.Debug().Msg("previous tick still running, skipping")
		return TickResult{Skipped: true}
	}
	defer r.running.Store(false)

	started := time.Now()
	now := r.now().In(r.loc)
	day := now.Format(model.DateLayout)

	if r.dirty.Load() || r.loadedDay != day {
		if err := r.refresh(ctx, now); err != nil {
			r.metrics.Failed("refresh")
			r.log.Error().Err(err).Msg("refresh working set")
			if r.loadedDay != day {
				return TickResult{Failed: 1}
			}
		}
	}

	items := r.copyItems()
	minute := planner.MinutesOf(now)
	var res TickResult
	for i := range items {
		it := &items[i]
		if it.status == model.StatusDone {
			continue
		}
		res.Evaluated++

		if it.schedule.DoneOn(day) {
			it.status = model.StatusDone
			continue
		}
		status := planner.ClassifyWithin(minute, it.window.Start, it.window.End, false, r.soon)
		if status != model.StatusDone {
			it.status = status
			continue
		}

		// Completion runs inline and ticks never overlap, so duplicate grants
		// are prevented by the running flag. The set only marks the id while
		// its write is in flight.
		id := it.schedule.ID
		if _, busy := r.inProgress[id]; busy {
			continue
		}
		r.inProgress[id] = struct{}{}
		err := r.complete(ctx, it.schedule, day)
		delete(r.inProgress, id)
		if err != nil {
			res.Failed++
			continue
		}
		it.status = model.StatusDone
		res.Completed++
	}

	if r.stopped.Load() {
		return res
	}
	r.publish(items)
	if res.Completed > 0 {
		if err := r.refresh(ctx, now); err != nil {
			r.metrics.Failed("refresh")
			r.log.Error().Err(err).Msg("refresh after completion")
		}
	}

	r.metrics.TickRan(time.Since(started))
	if res.Completed > 0 || res.Failed > 0 {
		r.log.Info().Int("evaluated", res.Evaluated).Int("completed", res.Completed).Int("failed", res.Failed).Msg("tick finished")
	}
	return res
}

// complete persists the done flag and grants the reward. A reward failure
// after the write is logged and not retried.
func (r *Reconciler) complete(ctx context.Context, s model.Schedule, day string) error {
	done := model.StatusDone
	if err := r.store.UpdateSchedule(ctx, s.ID, model.SchedulePatch{Status: &done, CompletedOn: &day}); err != nil {
		r.metrics.Failed("mark_done")
		r.log.Error().Err(err).Str("schedule_id", s.ID).Msg("mark schedule done")
		if errors.Is(err, model.ErrNotFound) {
			r.dirty.Store(true)
		}
		return err
	}
	r.metrics.Completed()
	r.bus.Publish(events.Event{Kind: events.KindScheduleDone, UserID: s.UserID, ScheduleID: s.ID, Title: s.Title})

	if r.rewards == nil {
		return nil
	}
	_, levels, err := r.rewards.Grant(ctx, s.UserID, r.reward)
	if err != nil {
		r.metrics.Failed("reward")
		r.log.Error().Err(err).Str("schedule_id", s.ID).Uint("user_id", s.UserID).Msg("reward lost after completion")
		return nil
	}
	r.metrics.Granted(levels)
	return nil
}

// refresh reloads today's schedules for every user. Statuses computed earlier
// survive for ids that are still present.
func (r *Reconciler) refresh(ctx context.Context, now time.Time) error {
	day := planner.TodayOf(now)
	// Cleared before reading so an Invalidate during the queries survives.
	r.dirty.Store(false)
	dated, err := r.store.QuerySchedules(ctx, model.ScheduleFilter{Kind: model.KindDated, Date: day.Date, IncludeUndated: true})
	if err != nil {
		r.dirty.Store(true)
		return fmt.Errorf("load dated schedules: %w", err)
	}
	routines, err := r.store.QuerySchedules(ctx, model.ScheduleFilter{Kind: model.KindRoutine, Day: day.Weekday.String()})
	if err != nil {
		r.dirty.Store(true)
		return fmt.Errorf("load routines: %w", err)
	}

	previous := r.copyItems()
	known := make(map[string]model.Status, len(previous))
	if r.loadedDay == day.Date {
		for _, it := range previous {
			known[it.schedule.ID] = it.status
		}
	}

	candidates := append(append([]model.Schedule{}, dated...), routines...)
	items := make([]tracked, 0, len(candidates))
	for _, s := range candidates {
		if !planner.MatchesDay(s, day) {
			continue
		}
		w, err := planner.ParseWindow(s.Time)
		if err != nil {
			r.metrics.Failed("parse")
			r.log.Warn().Err(err).Str("schedule_id", s.ID).Msg("skipping schedule with malformed time")
			continue
		}
		status, ok := known[s.ID]
		if !ok || s.DoneOn(day.Date) {
			status = storedStatus(s, day.Date)
		}
		items = append(items, tracked{schedule: s, window: w, status: status})
	}
	sortTracked(items)

	r.loadedDay = day.Date
	if r.stopped.Load() {
		return nil
	}
	r.publish(items)
	return nil
}

func (r *Reconciler) copyItems() []tracked {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]tracked(nil), r.items...)
}

func (r *Reconciler) publish(items []tracked) {
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.schedule.ID] = i
	}
	r.mu.Lock()
	r.items = items
	r.index = index
	r.mu.Unlock()
}

func sortTracked(items []tracked) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].window.Start < items[j].window.Start
	})
}
