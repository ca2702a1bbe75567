package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"routine-planner/internal/bot"
	"routine-planner/internal/config"
	"routine-planner/internal/events"
	"routine-planner/internal/llm"
	"routine-planner/internal/logging"
	"routine-planner/internal/metrics"
	"routine-planner/internal/repository"
	"routine-planner/internal/service"
)

const (
	eventBuffer   = 256
	reportTimeout = 30 * time.Second
)

type app struct {
	cfg     config.Config
	log     zerolog.Logger
	loc     *time.Location
	db      *gorm.DB
	store   *repository.Store
	metrics *metrics.Metrics
	bus     *events.Bus

	rewards    *service.RewardService
	reconciler *service.Reconciler
	schedules  *service.ScheduleService
	stats      *service.StatsService
	coach      *service.CoachService
	reminders  *service.ReminderService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logging.New("planner", cfg.LogLevel, cfg.LogFormat)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		loc:     loc,
		db:      db,
		store:   repository.NewStore(db),
		metrics: metrics.New(),
		bus:     events.NewBus(eventBuffer),
	}

	a.rewards = service.NewRewardService(a.store, a.bus, log)
	a.reconciler = service.NewReconciler(a.store, a.rewards, a.bus, a.metrics, log, service.ReconcilerOptions{
		Reward:   cfg.RewardPoints,
		Soon:     cfg.SoonMinutes,
		Location: loc,
	})
	a.schedules = service.NewScheduleService(a.store, a.reconciler, a.reconciler)
	a.stats = service.NewStatsService(a.store.Categories)

	var completer service.Completer
	if cfg.LLMEnabled() {
		completer = llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	}
	a.coach = service.NewCoachService(completer, a.schedules, a.stats, log)
	a.reminders = service.NewReminderService(a.schedules, a.rewards)
	return a, nil
}

func (a *app) Close() {
	a.reconciler.Stop()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Serve runs until SIGINT or SIGTERM.
func (a *app) Serve(parent context.Context) error {
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telegramBot, err := bot.New(a.cfg.TelegramToken, bot.Deps{
		Users:     a.store.Users,
		Schedules: a.schedules,
		Rewards:   a.rewards,
		Stats:     a.stats,
		Coach:     a.coach,
		Reminders: a.reminders,
		Events:    a.bus,
		Location:  a.loc,
		Log:       a.log,
	})
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	scheduler := service.NewSchedulerService(a.loc, a.log)
	if _, err := scheduler.ScheduleInterval(a.cfg.ReconcileInterval, func() {
		a.reconciler.Tick(ctx)
	}); err != nil {
		return fmt.Errorf("schedule reconciler: %w", err)
	}

	sendReports := func() {
		jobCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error().Err(err).Msg("send reports")
		}
	}
	if interval := a.cfg.ReportInterval(); interval > 0 {
		if _, err := scheduler.ScheduleInterval(interval, sendReports); err != nil {
			return fmt.Errorf("schedule reports: %w", err)
		}
	}
	if a.cfg.DailyReportAt != "" {
		if _, err := scheduler.ScheduleDaily(a.cfg.DailyReportAt, sendReports); err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
	}

	if a.cfg.MetricsAddr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, a.cfg.MetricsAddr); err != nil {
				a.log.Error().Err(err).Str("addr", a.cfg.MetricsAddr).Msg("metrics server")
			}
		}()
	}

	// First pass right away so views have statuses before the first interval.
	a.reconciler.Tick(ctx)
	scheduler.Start()
	defer scheduler.Stop()

	a.log.Info().Dur("reconcile_interval", a.cfg.ReconcileInterval).Msg("planner started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	a.reconciler.Stop()
	a.log.Info().Msg("shutdown complete")
	return nil
}
