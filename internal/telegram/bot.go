// ABOUTME: telebot.v4 adapter: long polling, handler registration and the
// ABOUTME: tele.Context implementation of Chat. Also delivers daily reminders.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/session"
)

// RequestTimeout bounds the work done for a single update.
const RequestTimeout = 30 * time.Second

// Options configures the bot.
type Options struct {
	Token           string
	LongPollTimeout time.Duration
	// Offline skips the getMe call; only useful in tests.
	Offline bool
}

// Bot connects a Gateway to Telegram.
type Bot struct {
	bot     *tele.Bot
	gateway *Gateway
	text    *i18n.Translator
	log     *logrus.Entry
}

// NewBot creates the telebot client and registers every handler.
func NewBot(opts Options, gw *Gateway, text *i18n.Translator) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	timeout := opts.LongPollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b := &Bot{gateway: gw, text: text, log: logrus.WithField("component", "telegram")}

	tb, err := tele.NewBot(tele.Settings{
		Token:   opts.Token,
		Poller:  &tele.LongPoller{Timeout: timeout},
		Offline: opts.Offline,
		OnError: b.onError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	b.bot = tb

	tb.Use(b.recoverMiddleware, b.loggerMiddleware)
	for _, cmd := range text.Commands() {
		tb.Handle("/"+cmd.Command, b.commandHandler(cmd.Action))
	}
	tb.Handle(tele.OnCallback, b.onCallback)
	tb.Handle(tele.OnText, b.onText)
	return b, nil
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.bot.SetCommands(b.menu(models.DefaultLanguage)); err != nil {
		b.log.WithError(err).Warn("failed to publish command menu")
	}

	done := make(chan struct{})
	go func() {
		b.bot.Start()
		close(done)
	}()
	b.log.Info("polling started")

	select {
	case <-ctx.Done():
		b.bot.Stop()
		<-done
	case <-done:
	}
	b.log.Info("polling stopped")
	return nil
}

// SendReminder delivers a reminder message to a chat.
func (b *Bot) SendReminder(_ context.Context, chatID int64, text string) error {
	_, err := b.bot.Send(tele.ChatID(chatID), text)
	return err
}

func (b *Bot) menu(lang models.Language) []tele.Command {
	var out []tele.Command
	for _, cmd := range b.text.LocaleCommands(lang) {
		out = append(out, tele.Command{Text: cmd.Command, Description: cmd.Description})
	}
	return out
}

func (b *Bot) commandHandler(action string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()
		return b.gateway.Command(ctx, newTeleChat(c), profile(c), action)
	}
}

func (b *Bot) onCallback(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()
	chat := newTeleChat(c)
	err := b.gateway.Button(ctx, chat, profile(c), c.Callback().Data)
	if !chat.responded {
		_ = c.Respond()
	}
	return err
}

func (b *Bot) onText(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()
	return b.gateway.Text(ctx, newTeleChat(c), profile(c), c.Text())
}

func (b *Bot) onError(err error, c tele.Context) {
	entry := b.log.WithError(err)
	if c != nil && c.Sender() != nil {
		entry = entry.WithField("user_id", c.Sender().ID)
	}
	entry.Error("handler error")
}

func (b *Bot) recoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				b.log.WithFields(logrus.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic recovered")
			}
		}()
		return next(c)
	}
}

func (b *Bot) loggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		fields := logrus.Fields{
			"request_id": uuid.NewString(),
			"update_id":  c.Update().ID,
		}
		if u := c.Sender(); u != nil {
			fields["user_id"] = u.ID
		}
		err := next(c)
		fields["duration_ms"] = time.Since(start).Milliseconds()
		entry := b.log.WithFields(fields)
		if err != nil {
			entry.WithError(err).Warn("update failed")
		} else {
			entry.Debug("update handled")
		}
		return err
	}
}

func profile(c tele.Context) session.Profile {
	var p session.Profile
	if u := c.Sender(); u != nil {
		p.UserID = u.ID
		p.Username = u.Username
		p.FirstName = u.FirstName
	}
	if ch := c.Chat(); ch != nil {
		p.ChatID = ch.ID
	}
	return p
}

// teleChat is Chat over a telebot update.
type teleChat struct {
	c         tele.Context
	responded bool
}

func newTeleChat(c tele.Context) *teleChat {
	return &teleChat{c: c}
}

func (t *teleChat) Send(text string, choices [][]session.Choice) error {
	return t.c.Send(text, sendOptions(choices)...)
}

func (t *teleChat) SendPhoto(path, caption string, choices [][]session.Choice) error {
	photo := &tele.Photo{File: tele.FromDisk(path), Caption: caption}
	return t.c.Send(photo, sendOptions(choices)...)
}

func (t *teleChat) SendDocument(name string, data []byte, caption string) error {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: name,
		MIME:     "text/csv",
		Caption:  caption,
	}
	return t.c.Send(doc)
}

func (t *teleChat) Notify(text string) error {
	if t.FromButton() && !t.responded {
		t.responded = true
		return t.c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return t.c.Send(text)
}

func (t *teleChat) FromButton() bool {
	return t.c.Callback() != nil
}

func sendOptions(choices [][]session.Choice) []interface{} {
	if len(choices) == 0 {
		return nil
	}
	return []interface{}{Markup(choices)}
}

// Markup converts engine choices into an inline keyboard.
func Markup(choices [][]session.Choice) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, ch := range row {
			buttons = append(buttons, tele.InlineButton{Text: ch.Label, Data: ch.Token})
		}
		rows = append(rows, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
