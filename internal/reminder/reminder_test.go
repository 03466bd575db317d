// ABOUTME: Tests for the daily reminder scheduler.
// ABOUTME: Uses a real SQLite store and a recording sender.
package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
)

type sentMessage struct {
	chatID int64
	text   string
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn int64
}

func (r *recordingSender) SendReminder(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chatID == r.failOn {
		return errors.New("chat not found")
	}
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "gymbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func addUser(t *testing.T, db *storage.DB, id int64, chat *int64) {
	t.Helper()
	require.NoError(t, db.UpsertUser(context.Background(), &models.User{ID: id, ChatID: chat}))
}

func chat(id int64) *int64 { return &id }

func TestNextRun(t *testing.T) {
	s := New(nil, nil, nil, 18, 30)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today's slot", time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC), time.Date(2024, 5, 8, 18, 30, 0, 0, time.UTC)},
		{"exactly at slot", time.Date(2024, 5, 8, 18, 30, 0, 0, time.UTC), time.Date(2024, 5, 9, 18, 30, 0, 0, time.UTC)},
		{"after slot", time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)},
		{"non-UTC input", time.Date(2024, 5, 8, 20, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)), time.Date(2024, 5, 9, 18, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.NextRun(tt.now))
		})
	}
}

func TestRunOnceSendsToUsersWithChat(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	addUser(t, db, 1, chat(100))
	addUser(t, db, 2, nil)
	addUser(t, db, 3, chat(300))
	require.NoError(t, db.SetLanguage(ctx, 3, models.LanguageGerman))
	_, err := db.CreateSession(ctx, 1, "Back", models.StatusCompleted)
	require.NoError(t, err)

	sender := &recordingSender{}
	s := New(db, sender, i18n.MustLoad(), 18, 0)

	sent, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(100), msgs[0].chatID)
	assert.Contains(t, msgs[0].text, "Next scheduled group: Chest")
	assert.Contains(t, msgs[0].text, "Recent muscle groups: Back")
	assert.Equal(t, int64(300), msgs[1].chatID)
	assert.Contains(t, msgs[1].text, "Nächste Gruppe: Brust")
}

func TestRunOnceContinuesAfterSendFailure(t *testing.T) {
	db := setupTestDB(t)
	addUser(t, db, 1, chat(100))
	addUser(t, db, 2, chat(200))

	sender := &recordingSender{failOn: 100}
	s := New(db, sender, i18n.MustLoad(), 18, 0)

	sent, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 1")
	assert.Equal(t, 1, sent)
	require.Len(t, sender.messages(), 1)
	assert.Equal(t, int64(200), sender.messages()[0].chatID)
}

func TestStartFiresAtScheduledTime(t *testing.T) {
	db := setupTestDB(t)
	addUser(t, db, 1, chat(100))

	// Frozen just before the slot: the first round fires almost immediately
	// and the next one is a day away.
	frozen := time.Date(2024, 5, 8, 17, 59, 59, 990_000_000, time.UTC)
	sender := &recordingSender{}
	s := New(db, sender, i18n.MustLoad(), 18, 0, WithClock(func() time.Time { return frozen }))

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)

	require.Eventually(t, func() bool { return len(sender.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()

	assert.Len(t, sender.messages(), 1)
	assert.True(t, strings.HasPrefix(sender.messages()[0].text, "GymBot reminder:"))
}

func TestStartStopsOnCancel(t *testing.T) {
	s := New(setupTestDB(t), &recordingSender{}, i18n.MustLoad(), 18, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
