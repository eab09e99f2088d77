// Package scheduler delivers the daily brief. A minutely cron tick compares
// each known user's configured brief time (in their timezone) against the
// current minute and pushes the brief through the notifier when it matches.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/harunnryd/kaizen/internal/adapter"
	"github.com/harunnryd/kaizen/internal/concurrency"
	"github.com/harunnryd/kaizen/internal/prefs"
	"github.com/harunnryd/kaizen/internal/store"
)

// BriefFunc renders the daily brief for one user.
type BriefFunc func(ctx context.Context, userID string) (string, error)

type Scheduler struct {
	store    *store.Store
	prefs    *prefs.Service
	notifier adapter.Notifier
	brief    BriefFunc
	cron     *cron.Cron

	mu        sync.Mutex
	lastFired map[string]string // userID -> date already briefed
}

func New(st *store.Store, ps *prefs.Service, notifier adapter.Notifier, brief BriefFunc) *Scheduler {
	return &Scheduler{
		store:     st,
		prefs:     ps,
		notifier:  notifier,
		brief:     brief,
		cron:      cron.New(),
		lastFired: make(map[string]string),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() { s.tick(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Scheduler started")
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	users, err := s.store.KnownUsers(ctx)
	if err != nil {
		slog.Error("Scheduler cannot list users", "error", err)
		return
	}

	now := time.Now()
	for _, userID := range users {
		if s.due(ctx, userID, now) {
			uid := userID
			concurrency.SafeGo(func() { s.fire(ctx, uid, now) }, nil)
		}
	}
}

// due reports whether the user's brief time matches the current minute and
// has not fired yet today.
func (s *Scheduler) due(ctx context.Context, userID string, now time.Time) bool {
	briefTime, err := s.prefs.Get(ctx, userID, "brief_time")
	if err != nil {
		slog.Warn("Cannot read brief time", "user_id", userID, "error", err)
		return false
	}
	tz, err := s.prefs.Get(ctx, userID, "timezone")
	if err != nil {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	local := now.In(loc)
	if local.Format("15:04") != briefTime {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	today := local.Format("2006-01-02")
	if s.lastFired[userID] == today {
		return false
	}
	s.lastFired[userID] = today
	return true
}

func (s *Scheduler) fire(ctx context.Context, userID string, now time.Time) {
	content, err := s.brief(ctx, userID)
	if err != nil {
		slog.Error("Failed to generate daily brief", "user_id", userID, "error", err)
		return
	}
	if err := s.notifier.Notify(ctx, userID, content); err != nil {
		slog.Error("Failed to deliver daily brief", "user_id", userID, "error", err)
		return
	}
	slog.Info("Daily brief delivered", "user_id", userID, "at", now.Format(time.RFC3339))
}
