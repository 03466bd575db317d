// ABOUTME: Daily workout reminder: at a fixed UTC time every user with a chat
// ABOUTME: gets their recent muscle groups and the next scheduled group.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/telemetry"
)

// RecentGroupCount is how many recent groups a reminder lists.
const RecentGroupCount = 3

// Store is the read side the scheduler needs.
type Store interface {
	ListReminderTargets(ctx context.Context) ([]*models.User, error)
	NextMuscleGroup(ctx context.Context, userID int64) (string, error)
	RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error)
}

// Sender delivers a reminder to a chat.
type Sender interface {
	SendReminder(ctx context.Context, chatID int64, text string) error
}

// Scheduler sends one reminder round per day at Hour:Minute UTC.
type Scheduler struct {
	store  Store
	sender Sender
	text   *i18n.Translator
	hour   int
	minute int
	now    func() time.Time
	log    *logrus.Entry
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New constructs a Scheduler firing daily at hour:minute UTC.
func New(store Store, sender Sender, text *i18n.Translator, hour, minute int, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:  store,
		sender: sender,
		text:   text,
		hour:   hour,
		minute: minute,
		now:    time.Now,
		log:    logrus.WithField("component", "reminder"),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextRun returns the first reminder time strictly after t.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hour, s.minute, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs the daily loop until ctx is cancelled. It should be called in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.done)

	next := s.NextRun(s.now())
	s.log.WithField("next_run", next.Format(time.RFC3339)).Info("reminder scheduler started")
	for {
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		sent, err := s.RunOnce(ctx)
		entry := s.log.WithField("sent", sent)
		if err != nil {
			entry.WithError(err).Warn("reminder round finished with errors")
		} else {
			entry.Info("reminder round finished")
		}
		next = s.NextRun(next)
	}
}

// Wait blocks until Start has returned.
func (s *Scheduler) Wait() {
	<-s.done
}

// RunOnce sends a reminder to every target. A failed user does not stop the
// round; all failures are returned together.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	users, err := s.store.ListReminderTargets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reminder targets: %w", err)
	}

	sent := 0
	var errs error
	for _, u := range users {
		if ctx.Err() != nil {
			return sent, multierr.Append(errs, ctx.Err())
		}
		if err := s.remind(ctx, u); err != nil {
			telemetry.RecordReminder("error")
			errs = multierr.Append(errs, fmt.Errorf("user %d: %w", u.ID, err))
			continue
		}
		telemetry.RecordReminder("sent")
		sent++
	}
	return sent, errs
}

func (s *Scheduler) remind(ctx context.Context, u *models.User) error {
	if u.ChatID == nil {
		return nil
	}
	text, err := s.Text(ctx, u)
	if err != nil {
		return err
	}
	return s.sender.SendReminder(ctx, *u.ChatID, text)
}

// Text renders the reminder for u in their language.
func (s *Scheduler) Text(ctx context.Context, u *models.User) (string, error) {
	next, err := s.store.NextMuscleGroup(ctx, u.ID)
	if err != nil {
		return "", fmt.Errorf("next muscle group: %w", err)
	}
	recent, err := s.store.RecentGroups(ctx, u.ID, RecentGroupCount)
	if err != nil {
		return "", fmt.Errorf("recent groups: %w", err)
	}
	lang := models.DefaultLanguage
	if u.Language != nil {
		lang = *u.Language
	}
	return s.text.Text(lang, "reminder", i18n.Params{
		"next_group": s.text.Group(lang, next),
		"recent":     s.text.Groups(lang, recent),
	}), nil
}
