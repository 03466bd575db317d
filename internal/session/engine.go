// ABOUTME: Per-user finite-state controller for logging a workout conversation.
// ABOUTME: Applies one action to a cloned context and commits it only on success.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/gymbot/internal/catalog"
	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
	"github.com/harperreed/gymbot/internal/telemetry"
)

// Store is the persistence the engine drives. *storage.DB satisfies it.
type Store interface {
	UpsertUser(ctx context.Context, u *models.User) error
	Language(ctx context.Context, userID int64) (models.Language, error)
	NextMuscleGroup(ctx context.Context, userID int64) (string, error)
	SkipDay(ctx context.Context, userID int64) (skipped, next string, err error)

	CreateSession(ctx context.Context, userID int64, group string, status models.SessionStatus) (int64, error)
	GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error)
	GetActiveSession(ctx context.Context, userID int64) (*models.WorkoutSession, error)
	CloseSession(ctx context.Context, id int64, status models.SessionStatus) error
	CompleteSession(ctx context.Context, id, userID int64, group string) (bool, error)
	SetWarmup(ctx context.Context, id int64, done bool, minutes, distanceKm *float64) error
	SetBodyWeight(ctx context.Context, id int64, kg float64) error
	LastBodyWeight(ctx context.Context, userID int64) (*float64, error)
	RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error)
	LastCompletedWorkouts(ctx context.Context, userID int64, limit int) ([]models.CompletedWorkout, error)

	AddExercise(ctx context.Context, e *models.ExerciseEntry) (int64, float64, error)
	DeleteExercise(ctx context.Context, id, userID int64) (bool, error)
	SessionTotals(ctx context.Context, sessionID int64) (models.SessionTotals, error)
	LastWeight(ctx context.Context, userID int64, name string) (*float64, error)
	MaxWeight(ctx context.Context, userID int64, name string) (*float64, error)
	RunningTotals(ctx context.Context, userID int64, start, end time.Time) (models.RunningTotals, error)
	TotalVolume(ctx context.Context, userID int64) (float64, error)
}

var _ Store = (*storage.DB)(nil)

// RecentGroupCount is how many recent groups prompts list.
const RecentGroupCount = 3

// Choice is one button: a label and the token it sends back.
type Choice struct {
	Label string
	Token string
}

// Reply is what the transport should show after an action.
type Reply struct {
	State State
	Text  string
	// Notice annotates a rejected or no-op action; Text then re-renders the state.
	Notice       string
	Choices      [][]Choice
	Illustration string
	Terminal     bool
}

// Profile identifies the user starting a conversation.
type Profile struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
}

// Engine runs workout conversations for any number of users.
type Engine struct {
	store    Store
	catalog  *catalog.Catalog
	text     *i18n.Translator
	contexts *ContextStore
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// New wires an engine. The catalog and translator are read-only.
func New(store Store, cat *catalog.Catalog, text *i18n.Translator, contexts *ContextStore, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		catalog:  cat,
		text:     text,
		contexts: contexts,
		now:      time.Now,
		log:      logrus.WithField("component", "session"),
	}
	for _, opt := range opts {
		opt(e)
	}
	contexts.OnEvicted(func(int64) {
		telemetry.SetActiveContexts(contexts.Len())
	})
	return e
}

// turn carries the working copy and the lines produced by one transition.
type turn struct {
	sc    *SessionContext
	notes []string
	final string
}

func (t *turn) note(line string) {
	if line != "" {
		t.notes = append(t.notes, line)
	}
}

func (e *Engine) tr(sc *SessionContext, key string, params i18n.Params) string {
	return e.text.Text(sc.Language, key, params)
}

// Start opens a fresh conversation, cancelling any workout left active.
func (e *Engine) Start(ctx context.Context, p Profile) (*Reply, error) {
	u := models.NewUser(p.UserID).WithNames(p.Username, p.FirstName)
	if p.ChatID != 0 {
		u.WithChat(p.ChatID)
	}
	if err := e.store.UpsertUser(ctx, u); err != nil {
		return nil, storageErr("register user", err)
	}
	lang, err := e.store.Language(ctx, p.UserID)
	if err != nil {
		return nil, storageErr("load language", err)
	}

	t := &turn{sc: newContext(p.UserID, lang, e.now())}
	closed, err := e.cancelActive(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if closed {
		t.note(e.tr(t.sc, "closed_unfinished", nil))
	}
	e.log.WithField("user_id", p.UserID).Info("workout conversation started")
	return e.commit(t, StateSelectMode), nil
}

// Handle applies action to the user's live conversation.
func (e *Engine) Handle(ctx context.Context, userID int64, action Action) (*Reply, error) {
	log := e.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"action_id": uuid.NewString(),
		"token":     action.Token(),
	})

	cur, ok := e.contexts.Get(userID)
	if !ok {
		lang, err := e.store.Language(ctx, userID)
		if err != nil {
			return nil, storageErr("load language", err)
		}
		telemetry.RecordAction("NONE", "expired")
		key := "session_expired_restart"
		if _, finishing := action.(Finish); finishing {
			key = "no_active_workout"
		}
		return &Reply{State: StateTerminal, Text: e.text.Text(lang, key, nil), Terminal: true}, nil
	}

	t := &turn{sc: cur.Clone()}
	next, err := e.transition(ctx, t, action)
	state := cur.State.String()

	switch {
	case err == nil:
		telemetry.RecordAction(state, "ok")
		log.WithField("next", next.String()).Debug("transition")
		return e.commit(t, next), nil

	case IsInput(err):
		telemetry.RecordAction(state, KindInput.String())
		reply := e.render(cur, nil)
		reply.Notice = e.tr(cur, errorKey(err), nil)
		return reply, nil

	case IsNotFound(err):
		telemetry.RecordAction(state, KindNotFound.String())
		e.contexts.Put(t.sc)
		reply := e.render(t.sc, nil)
		reply.Notice = e.tr(t.sc, errorKey(err), nil)
		return reply, nil

	case IsDesync(err):
		telemetry.RecordAction(state, KindDesync.String())
		log.WithError(err).Warn("conversation desync, restarting")
		e.drop(userID)
		return &Reply{State: StateTerminal, Text: e.tr(cur, errorKey(err), nil), Terminal: true}, nil

	default:
		telemetry.RecordAction(state, KindStorage.String())
		log.WithError(err).Error("transition failed")
		if !IsStorage(err) {
			err = storageErr("transition", err)
		}
		return nil, err
	}
}

// Cancel abandons the conversation, closing its session as cancelled.
func (e *Engine) Cancel(ctx context.Context, userID int64) (*Reply, error) {
	lang, err := e.store.Language(ctx, userID)
	if err != nil {
		return nil, storageErr("load language", err)
	}
	sc, live := e.contexts.Get(userID)
	closed := false
	if live && sc.HasSession() {
		if err := e.store.CloseSession(ctx, sc.SessionID, models.StatusCancelled); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, storageErr("cancel session", err)
		} else if err == nil {
			closed = true
			telemetry.RecordSessionClosed(string(models.StatusCancelled))
		}
	}
	orphan, err := e.cancelActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.drop(userID)

	key := "no_active_workout"
	if live || closed || orphan {
		key = "cancelled"
	}
	return &Reply{State: StateTerminal, Text: e.text.Text(lang, key, nil), Terminal: true}, nil
}

// SkipDay records a skipped rotation day outside any conversation.
func (e *Engine) SkipDay(ctx context.Context, userID int64) (*Reply, error) {
	lang, err := e.store.Language(ctx, userID)
	if err != nil {
		return nil, storageErr("load language", err)
	}
	text, err := e.skipDay(ctx, userID, lang)
	if err != nil {
		return nil, err
	}
	return &Reply{State: StateTerminal, Text: text, Terminal: true}, nil
}

func (e *Engine) skipDay(ctx context.Context, userID int64, lang models.Language) (string, error) {
	skipped, next, err := e.store.SkipDay(ctx, userID)
	if err != nil {
		return "", storageErr("skip day", err)
	}
	telemetry.RecordSessionClosed(string(models.StatusSkipped))
	return e.text.Text(lang, "skipped_day", i18n.Params{
		"skipped":    e.text.Group(lang, skipped),
		"next_group": e.text.Group(lang, next),
	}), nil
}

// Current returns a copy of the user's live context.
func (e *Engine) Current(userID int64) (*SessionContext, bool) {
	sc, ok := e.contexts.Get(userID)
	if !ok {
		return nil, false
	}
	return sc.Clone(), true
}

// cancelActive closes whatever session the store still holds active.
func (e *Engine) cancelActive(ctx context.Context, userID int64) (bool, error) {
	active, err := e.store.GetActiveSession(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("find active session", err)
	}
	if err := e.store.CloseSession(ctx, active.ID, models.StatusCancelled); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, storageErr("cancel active session", err)
	}
	telemetry.RecordSessionClosed(string(models.StatusCancelled))
	return true, nil
}

func (e *Engine) commit(t *turn, next State) *Reply {
	sc := t.sc
	sc.State = next
	sc.UpdatedAt = e.now()
	if next.IsTerminal() {
		e.drop(sc.UserID)
		lines := append(t.notes, t.final)
		return &Reply{State: next, Text: joinLines(lines), Terminal: true}
	}
	e.contexts.Put(sc)
	telemetry.SetActiveContexts(e.contexts.Len())
	return e.render(sc, t.notes)
}

func (e *Engine) drop(userID int64) {
	e.contexts.Delete(userID)
	telemetry.SetActiveContexts(e.contexts.Len())
}

func errorKey(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) && ee.Key != "" {
		return ee.Key
	}
	return "error_text"
}

func joinLines(lines []string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
