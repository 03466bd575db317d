// ABOUTME: Transport-neutral message gateway: routes commands, button taps and
// ABOUTME: free text to the session engine, reports and exports, one user at a time.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/harperreed/gymbot/internal/catalog"
	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/report"
	"github.com/harperreed/gymbot/internal/session"
)

// languageTokenPrefix marks language picker buttons; they bypass the engine.
const languageTokenPrefix = "lang:"

// Command actions, as named in the locale command tables.
const (
	ActionStart    = "start"
	ActionWorkout  = "workout"
	ActionLast     = "last"
	ActionHistory  = "history"
	ActionToday    = "today"
	ActionWeek     = "week"
	ActionMonth    = "month"
	ActionPR       = "pr"
	ActionSkip     = "skip"
	ActionLanguage = "language"
	ActionHelp     = "help"
	ActionCancel   = "cancel"
)

// Store is what the gateway reads and writes outside the engine.
type Store interface {
	UpsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	Language(ctx context.Context, userID int64) (models.Language, error)
	SetLanguage(ctx context.Context, userID int64, lang models.Language) error
	NextMuscleGroup(ctx context.Context, userID int64) (string, error)
	RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error)
	WriteHistoryCSV(ctx context.Context, w io.Writer, userID int64) (int, error)
}

// Uploader copies history exports somewhere durable.
type Uploader interface {
	UploadHistory(ctx context.Context, userID int64, csv []byte) (string, error)
}

// Chat is the conversation a request came from.
type Chat interface {
	Send(text string, choices [][]session.Choice) error
	SendPhoto(path, caption string, choices [][]session.Choice) error
	SendDocument(name string, data []byte, caption string) error
	// Notify shows a short transient message, as an alert when answering a button.
	Notify(text string) error
	// FromButton reports whether the request is a button tap.
	FromButton() bool
}

// Gateway turns inbound chat events into engine calls and replies.
type Gateway struct {
	engine   *session.Engine
	store    Store
	reporter *report.Reporter
	text     *i18n.Translator
	catalog  *catalog.Catalog
	uploader Uploader
	now      func() time.Time
	locks    *userLocks
	log      *logrus.Entry
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithUploader enables uploading /history exports.
func WithUploader(u Uploader) GatewayOption {
	return func(g *Gateway) { g.uploader = u }
}

// WithClock overrides the clock used for summary windows.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// NewGateway wires a gateway.
func NewGateway(engine *session.Engine, store Store, reporter *report.Reporter, text *i18n.Translator, cat *catalog.Catalog, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		engine:   engine,
		store:    store,
		reporter: reporter,
		text:     text,
		catalog:  cat,
		now:      time.Now,
		locks:    newUserLocks(),
		log:      logrus.WithField("component", "telegram"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Command runs a slash command action for p.
func (g *Gateway) Command(ctx context.Context, chat Chat, p session.Profile, action string) error {
	unlock := g.locks.lock(p.UserID)
	defer unlock()

	engineReply := func(r *session.Reply, err error) error {
		return g.reply(chat, p.UserID, r, err)
	}

	var err error
	switch action {
	case ActionStart:
		err = g.start(ctx, chat, p)
	case ActionWorkout:
		err = engineReply(g.engine.Start(ctx, p))
	case ActionCancel:
		err = engineReply(g.engine.Cancel(ctx, p.UserID))
	case ActionSkip:
		err = engineReply(g.engine.SkipDay(ctx, p.UserID))
	case ActionLast:
		err = g.report(ctx, chat, p.UserID, g.reporter.LastWorkouts)
	case ActionPR:
		err = g.report(ctx, chat, p.UserID, g.reporter.PersonalRecords)
	case ActionToday, ActionWeek, ActionMonth:
		err = g.summary(ctx, chat, p.UserID, action)
	case ActionHistory:
		err = g.history(ctx, chat, p.UserID)
	case ActionLanguage:
		err = g.languageMenu(ctx, chat, p.UserID)
	case ActionHelp:
		err = g.simple(ctx, chat, p.UserID, "help")
	default:
		return fmt.Errorf("unknown command action %q", action)
	}
	return g.fail(ctx, chat, p.UserID, err)
}

// Button handles a tapped inline button carrying data.
func (g *Gateway) Button(ctx context.Context, chat Chat, p session.Profile, data string) error {
	unlock := g.locks.lock(p.UserID)
	defer unlock()

	if code, ok := strings.CutPrefix(data, languageTokenPrefix); ok {
		return g.fail(ctx, chat, p.UserID, g.setLanguage(ctx, chat, p.UserID, code))
	}

	action, err := session.ParseAction(data)
	if err != nil {
		g.log.WithFields(logrus.Fields{"user_id": p.UserID, "data": data}).Debug("unparseable button")
		lang, lerr := g.store.Language(ctx, p.UserID)
		if lerr != nil {
			return g.fail(ctx, chat, p.UserID, lerr)
		}
		return chat.Notify(g.text.Text(lang, "invalid_option", nil))
	}
	reply, err := g.engine.Handle(ctx, p.UserID, action)
	return g.fail(ctx, chat, p.UserID, g.reply(chat, p.UserID, reply, err))
}

// Text handles free text. Outside a conversation it is ignored.
func (g *Gateway) Text(ctx context.Context, chat Chat, p session.Profile, raw string) error {
	unlock := g.locks.lock(p.UserID)
	defer unlock()

	if _, live := g.engine.Current(p.UserID); !live {
		return nil
	}
	reply, err := g.engine.Handle(ctx, p.UserID, session.Text{Raw: raw})
	return g.fail(ctx, chat, p.UserID, g.reply(chat, p.UserID, reply, err))
}

func (g *Gateway) reply(chat Chat, userID int64, r *session.Reply, err error) error {
	if err != nil {
		return err
	}
	if r.Notice != "" {
		if err := chat.Notify(r.Notice); err != nil {
			return err
		}
		// The tapped keyboard already shows this state.
		if chat.FromButton() {
			return nil
		}
	}
	if r.Illustration != "" {
		err := chat.SendPhoto(r.Illustration, r.Text, r.Choices)
		if err == nil {
			return nil
		}
		g.log.WithError(err).WithField("user_id", userID).Warn("illustration not sent")
	}
	return chat.Send(r.Text, r.Choices)
}

func (g *Gateway) start(ctx context.Context, chat Chat, p session.Profile) error {
	u := models.NewUser(p.UserID).WithNames(p.Username, p.FirstName)
	if p.ChatID != 0 {
		u.WithChat(p.ChatID)
	}
	if err := g.store.UpsertUser(ctx, u); err != nil {
		return err
	}
	stored, err := g.store.GetUser(ctx, p.UserID)
	if err != nil {
		return err
	}
	if stored.Language == nil {
		return g.languageMenu(ctx, chat, p.UserID)
	}
	return g.welcome(ctx, chat, p.UserID, *stored.Language)
}

func (g *Gateway) welcome(ctx context.Context, chat Chat, userID int64, lang models.Language) error {
	next, err := g.store.NextMuscleGroup(ctx, userID)
	if err != nil {
		return err
	}
	recent, err := g.store.RecentGroups(ctx, userID, session.RecentGroupCount)
	if err != nil {
		return err
	}
	return chat.Send(g.text.Text(lang, "welcome", i18n.Params{
		"next_group": g.text.Group(lang, next),
		"groups":     g.text.Groups(lang, g.catalog.MuscleGroups()),
		"recent":     g.text.Groups(lang, recent),
	}), nil)
}

func (g *Gateway) languageMenu(ctx context.Context, chat Chat, userID int64) error {
	lang, err := g.store.Language(ctx, userID)
	if err != nil {
		return err
	}
	var rows [][]session.Choice
	for _, l := range g.text.Languages() {
		rows = append(rows, []session.Choice{{Label: g.text.Label(l), Token: languageTokenPrefix + string(l)}})
	}
	return chat.Send(g.text.Text(lang, "select_language", nil), rows)
}

func (g *Gateway) setLanguage(ctx context.Context, chat Chat, userID int64, code string) error {
	if !models.IsSupportedLanguage(code) {
		lang, err := g.store.Language(ctx, userID)
		if err != nil {
			return err
		}
		return chat.Notify(g.text.Text(lang, "invalid_option", nil))
	}
	lang := models.Language(code)
	if err := g.store.SetLanguage(ctx, userID, lang); err != nil {
		return err
	}
	if err := chat.Send(g.text.Text(lang, "language_saved", nil), nil); err != nil {
		return err
	}
	return g.welcome(ctx, chat, userID, lang)
}

func (g *Gateway) simple(ctx context.Context, chat Chat, userID int64, key string) error {
	lang, err := g.store.Language(ctx, userID)
	if err != nil {
		return err
	}
	return chat.Send(g.text.Text(lang, key, nil), nil)
}

type reportFunc func(ctx context.Context, userID int64, lang models.Language) (string, error)

func (g *Gateway) report(ctx context.Context, chat Chat, userID int64, fn reportFunc) error {
	lang, err := g.store.Language(ctx, userID)
	if err != nil {
		return err
	}
	text, err := fn(ctx, userID, lang)
	if err != nil {
		return err
	}
	return chat.Send(text, nil)
}

func (g *Gateway) summary(ctx context.Context, chat Chat, userID int64, action string) error {
	now := g.now()
	var (
		kind report.Kind
		w    report.Window
	)
	switch action {
	case ActionToday:
		kind, w = report.KindToday, report.Today(now)
	case ActionWeek:
		kind, w = report.KindWeek, report.Week(now)
	default:
		kind, w = report.KindMonth, report.Month(now)
	}
	return g.report(ctx, chat, userID, func(ctx context.Context, userID int64, lang models.Language) (string, error) {
		return g.reporter.Summary(ctx, userID, lang, kind, w)
	})
}

func (g *Gateway) history(ctx context.Context, chat Chat, userID int64) error {
	lang, err := g.store.Language(ctx, userID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	n, err := g.store.WriteHistoryCSV(ctx, &buf, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return chat.Send(g.text.Text(lang, "no_history", nil), nil)
	}

	name := fmt.Sprintf("workout_history_%d.csv", userID)
	if err := chat.SendDocument(name, buf.Bytes(), g.text.Text(lang, "history_caption", nil)); err != nil {
		return err
	}
	if g.uploader != nil {
		key, err := g.uploader.UploadHistory(ctx, userID, buf.Bytes())
		if err != nil {
			g.log.WithError(err).WithField("user_id", userID).Warn("history upload failed")
			return nil
		}
		g.log.WithFields(logrus.Fields{"user_id": userID, "key": key}).Info("history uploaded")
	}
	return nil
}

// fail logs err and tells the user something went wrong without details.
func (g *Gateway) fail(ctx context.Context, chat Chat, userID int64, err error) error {
	if err == nil {
		return nil
	}
	entry := g.log.WithError(err).WithField("user_id", userID)
	if session.IsStorage(err) {
		entry = entry.WithField("kind", session.KindStorage.String())
	}
	entry.Error("request failed")

	lang := models.DefaultLanguage
	if l, lerr := g.store.Language(ctx, userID); lerr == nil {
		lang = l
	}
	if sendErr := chat.Send(g.text.Text(lang, "error_text", nil), nil); sendErr != nil {
		return multierr.Append(err, sendErr)
	}
	return nil
}

// userLocks serializes requests per user so a conversation sees one action at a time.
// An entry lives only while someone holds or waits for it.
type userLocks struct {
	mu    sync.Mutex
	users map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{users: make(map[int64]*userLock)}
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{}
		l.users[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.users, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
