// ABOUTME: Tests for the SQLite repository implementation.
// ABOUTME: Covers users, sessions, exercise entries and aggregates.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/gymbot/internal/models"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestOpenUsesWAL(t *testing.T) {
	db := setupTestDB(t)

	mode, err := db.JournalMode(context.Background())
	if err != nil {
		t.Fatalf("JournalMode failed: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal mode = %q, want wal", mode)
	}
}

func TestDBFilePermissions(t *testing.T) {
	db := setupTestDB(t)

	info, err := os.Stat(db.Path())
	if err != nil {
		t.Fatalf("stat db: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("db permissions = %o, want 600", perm)
	}
}

func TestUpsertUserKeepsLanguageAndRotation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := models.NewUser(42).WithChat(100).WithNames("lifter", "Sam")
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if err := db.SetLanguage(ctx, 42, models.LanguageGerman); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	if _, err := db.AdvanceRotation(ctx, 42, "Chest"); err != nil {
		t.Fatalf("AdvanceRotation failed: %v", err)
	}

	if err := db.UpsertUser(ctx, models.NewUser(42).WithChat(200).WithNames("lifter2", "Sam")); err != nil {
		t.Fatalf("second UpsertUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.ChatID == nil || *got.ChatID != 200 {
		t.Errorf("chat id = %v, want 200", got.ChatID)
	}
	if got.Username == nil || *got.Username != "lifter2" {
		t.Errorf("username = %v, want lifter2", got.Username)
	}
	if got.PreferredLanguage() != models.LanguageGerman {
		t.Errorf("language = %s, want de", got.PreferredLanguage())
	}
	if got.RotationIndex != 1 {
		t.Errorf("rotation index = %d, want 1", got.RotationIndex)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUser(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLanguage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	lang, err := db.Language(ctx, 7)
	if err != nil {
		t.Fatalf("Language failed: %v", err)
	}
	if lang != models.DefaultLanguage {
		t.Errorf("unknown user language = %s, want default", lang)
	}

	mustUser(t, db, 7)
	if err := db.SetLanguage(ctx, 7, models.Language("fr")); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if err := db.SetLanguage(ctx, 7, models.LanguageRussian); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	lang, _ = db.Language(ctx, 7)
	if lang != models.LanguageRussian {
		t.Errorf("language = %s, want ru", lang)
	}
}

func TestListReminderTargets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustUser(t, db, 1)
	if err := db.UpsertUser(ctx, models.NewUser(2)); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	users, err := db.ListReminderTargets(ctx)
	if err != nil {
		t.Fatalf("ListReminderTargets failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != 1 {
		t.Errorf("expected only user 1, got %+v", users)
	}
}

func TestRotationSkipsNonRotationGroups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)

	advanced, err := db.AdvanceRotation(ctx, 1, "Running")
	if err != nil {
		t.Fatalf("AdvanceRotation failed: %v", err)
	}
	if advanced {
		t.Error("Running must not advance the rotation")
	}

	if _, err := db.AdvanceRotation(ctx, 1, "Legs"); err != nil {
		t.Fatalf("AdvanceRotation failed: %v", err)
	}
	next, err := db.NextMuscleGroup(ctx, 1)
	if err != nil {
		t.Fatalf("NextMuscleGroup failed: %v", err)
	}
	if next != "Chest" {
		t.Errorf("next after Legs = %s, want Chest", next)
	}
}

func TestCreateSessionRejectsSecondActive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)

	if _, err := db.CreateSession(ctx, 1, "Chest", models.StatusActive); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	_, err := db.CreateSession(ctx, 1, "Back", models.StatusActive)
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}

	// Closed sessions do not count against the limit.
	if _, err := db.CreateSession(ctx, 1, "Back", models.StatusSkipped); err != nil {
		t.Errorf("skipped session rejected: %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	id, err := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	active, err := db.GetActiveSession(ctx, 1)
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if active.ID != id || active.EndedAt != nil {
		t.Errorf("unexpected active session %+v", active)
	}

	clock.Advance(time.Hour)
	if err := db.CloseSession(ctx, id, models.StatusCompleted); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	got, err := db.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(clock.now) {
		t.Errorf("ended_at = %v, want %v", got.EndedAt, clock.now)
	}

	if err := db.CloseSession(ctx, id, models.StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Errorf("closing a closed session: expected ErrNotFound, got %v", err)
	}
	if _, err := db.GetActiveSession(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no active session, got %v", err)
	}
}

func TestCompleteSessionAdvancesRotation(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)
	mustUser(t, db, 2)

	id, err := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := db.CompleteSession(ctx, id, 2, "Chest"); !errors.Is(err, ErrNotFound) {
		t.Errorf("completing another user's session: expected ErrNotFound, got %v", err)
	}
	if next, _ := db.NextMuscleGroup(ctx, 2); next != "Chest" {
		t.Errorf("other user's rotation moved to %q", next)
	}

	clock.Advance(time.Hour)
	advanced, err := db.CompleteSession(ctx, id, 1, "Chest")
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if !advanced {
		t.Error("expected the rotation to advance")
	}

	got, err := db.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(clock.now) {
		t.Errorf("ended_at = %v, want %v", got.EndedAt, clock.now)
	}
	if next, _ := db.NextMuscleGroup(ctx, 1); next != "Back" {
		t.Errorf("next group = %q, want Back", next)
	}

	if _, err := db.CompleteSession(ctx, id, 1, "Chest"); !errors.Is(err, ErrNotFound) {
		t.Errorf("completing twice: expected ErrNotFound, got %v", err)
	}
	if next, _ := db.NextMuscleGroup(ctx, 1); next != "Back" {
		t.Errorf("second completion moved the rotation to %q", next)
	}
}

func TestCompleteSessionOutsideRotation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)

	id, _ := db.CreateSession(ctx, 1, "Running", models.StatusActive)
	advanced, err := db.CompleteSession(ctx, id, 1, "Running")
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if advanced {
		t.Error("Running is outside the rotation and must not advance it")
	}
	got, _ := db.GetSession(ctx, id)
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestClosedSessionRejectsWrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)

	id, _ := db.CreateSession(ctx, 1, "Legs", models.StatusActive)
	if err := db.SetBodyWeight(ctx, id, 75); err != nil {
		t.Fatalf("SetBodyWeight failed: %v", err)
	}
	if err := db.CloseSession(ctx, id, models.StatusCancelled); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	if err := db.SetBodyWeight(ctx, id, 90); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBodyWeight on closed session: expected ErrNotFound, got %v", err)
	}
	minutes, dist := 10.0, 2.0
	if err := db.SetWarmup(ctx, id, true, &minutes, &dist); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetWarmup on closed session: expected ErrNotFound, got %v", err)
	}

	got, _ := db.GetSession(ctx, id)
	if got.BodyWeightKg == nil || *got.BodyWeightKg != 75 {
		t.Errorf("body weight = %v, want 75", got.BodyWeightKg)
	}
	if got.WarmupDone {
		t.Errorf("closed session gained a warm-up: %+v", got)
	}
}

func TestWarmupAndBodyWeight(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	if bw, err := db.LastBodyWeight(ctx, 1); err != nil || bw != nil {
		t.Fatalf("LastBodyWeight on empty history = %v, %v", bw, err)
	}

	first, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	if err := db.SetBodyWeight(ctx, first, 81.234); err != nil {
		t.Fatalf("SetBodyWeight failed: %v", err)
	}
	minutes, dist := 5.0, 1.0
	if err := db.SetWarmup(ctx, first, true, &minutes, &dist); err != nil {
		t.Fatalf("SetWarmup failed: %v", err)
	}
	_ = db.CloseSession(ctx, first, models.StatusCompleted)

	clock.Advance(24 * time.Hour)
	second, _ := db.CreateSession(ctx, 1, "Back", models.StatusActive)
	if err := db.SetBodyWeight(ctx, second, 80.5); err != nil {
		t.Fatalf("SetBodyWeight failed: %v", err)
	}
	if err := db.SetWarmup(ctx, second, false, &minutes, &dist); err != nil {
		t.Fatalf("SetWarmup failed: %v", err)
	}

	got, _ := db.GetSession(ctx, first)
	if got.BodyWeightKg == nil || *got.BodyWeightKg != 81.23 {
		t.Errorf("body weight = %v, want 81.23", got.BodyWeightKg)
	}
	if !got.WarmupDone || got.WarmupMinutesValue() != 5 || got.WarmupDistanceValue() != 1 {
		t.Errorf("unexpected warm-up fields %+v", got)
	}

	skipped, _ := db.GetSession(ctx, second)
	if skipped.WarmupDone || skipped.WarmupMinutes != nil {
		t.Errorf("declined warm-up must clear values, got %+v", skipped)
	}

	bw, err := db.LastBodyWeight(ctx, 1)
	if err != nil {
		t.Fatalf("LastBodyWeight failed: %v", err)
	}
	if bw == nil || *bw != 80.5 {
		t.Errorf("last body weight = %v, want 80.5", bw)
	}

	if err := db.SetBodyWeight(ctx, 9999, 80); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestAddExerciseRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)

	e := models.NewExerciseEntry(sid, 1, "Chest", "Bench Press").
		WithSetLog([]int{10, 8}, []float64{60, 62.5})
	id, volume, err := db.AddExercise(ctx, e)
	if err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	if volume != 1100 {
		t.Errorf("volume = %v, want 1100", volume)
	}

	history, err := db.ExerciseHistory(ctx, 1, 50, 0)
	if err != nil {
		t.Fatalf("ExerciseHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	got := history[0]
	if got.ID != id || got.Sets != 2 || got.Reps != 9 || got.Weight != 62.5 {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.RepsSequence.String() != "10 8" {
		t.Errorf("reps sequence = %q, want %q", got.RepsSequence.String(), "10 8")
	}
	if got.WeightSequence.String() != "60.00 62.50" {
		t.Errorf("weight sequence = %q", got.WeightSequence.String())
	}

	totals, err := db.SessionTotals(ctx, sid)
	if err != nil {
		t.Fatalf("SessionTotals failed: %v", err)
	}
	if totals.Count != 1 || totals.Volume != 1100 {
		t.Errorf("totals = %+v, want 1 / 1100", totals)
	}
}

func TestAddExerciseWithoutSequences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Legs", models.StatusActive)

	e := models.NewExerciseEntry(sid, 1, "Legs", "Squat").WithTotals(3, 10, 50)
	_, volume, err := db.AddExercise(ctx, e)
	if err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	if volume != 1500 {
		t.Errorf("volume = %v, want 1500", volume)
	}

	got, err := db.GetExercise(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExercise failed: %v", err)
	}
	if len(got.RepsSequence) != 0 || len(got.WeightSequence) != 0 {
		t.Errorf("expected empty sequences, got %v / %v", got.RepsSequence, got.WeightSequence)
	}
}

func TestAddExerciseRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)

	tests := []struct {
		name  string
		entry *models.ExerciseEntry
	}{
		{"zero sets", models.NewExerciseEntry(sid, 1, "Chest", "Dips").WithTotals(0, 10, 0)},
		{"zero reps", models.NewExerciseEntry(sid, 1, "Chest", "Dips").WithTotals(3, 0, 0)},
		{"negative weight", models.NewExerciseEntry(sid, 1, "Chest", "Dips").WithTotals(3, 10, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := db.AddExercise(ctx, tt.entry); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestDeleteExerciseIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)
	mustUser(t, db, 2)
	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)

	id, _, err := db.AddExercise(ctx, models.NewExerciseEntry(sid, 1, "Chest", "Dips").WithTotals(3, 10, 0))
	if err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}

	if removed, _ := db.DeleteExercise(ctx, id, 2); removed {
		t.Error("another user must not delete the entry")
	}
	removed, err := db.DeleteExercise(ctx, id, 1)
	if err != nil || !removed {
		t.Fatalf("DeleteExercise = %v, %v; want true", removed, err)
	}
	removed, err = db.DeleteExercise(ctx, id, 1)
	if err != nil || removed {
		t.Errorf("second DeleteExercise = %v, %v; want false", removed, err)
	}
}

func TestLastAndMaxWeight(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)

	if w, err := db.MaxWeight(ctx, 1, "Bench Press"); err != nil || w != nil {
		t.Fatalf("MaxWeight with no history = %v, %v", w, err)
	}

	for _, w := range []float64{60, 70, 65} {
		clock.Advance(time.Minute)
		e := models.NewExerciseEntry(sid, 1, "Chest", "Bench Press").WithTotals(3, 10, w).WithCreatedAt(clock.now)
		if _, _, err := db.AddExercise(ctx, e); err != nil {
			t.Fatalf("AddExercise failed: %v", err)
		}
	}

	last, _ := db.LastWeight(ctx, 1, "Bench Press")
	if last == nil || *last != 65 {
		t.Errorf("last weight = %v, want 65", last)
	}
	best, _ := db.MaxWeight(ctx, 1, "Bench Press")
	if best == nil || *best != 70 {
		t.Errorf("max weight = %v, want 70", best)
	}
}

func TestPersonalRecords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)

	entries := []struct {
		name   string
		weight float64
	}{
		{"bench press", 80},
		{"Dips", 20},
		{"bench press", 90},
		{"Arnold Press", 20},
	}
	for _, e := range entries {
		if _, _, err := db.AddExercise(ctx, models.NewExerciseEntry(sid, 1, "Chest", e.name).WithTotals(3, 8, e.weight)); err != nil {
			t.Fatalf("AddExercise failed: %v", err)
		}
	}

	records, err := db.PersonalRecords(ctx, 1)
	if err != nil {
		t.Fatalf("PersonalRecords failed: %v", err)
	}
	want := []models.PersonalRecord{
		{Name: "bench press", MaxWeight: 90},
		{Name: "Arnold Press", MaxWeight: 20},
		{Name: "Dips", MaxWeight: 20},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestExerciseHistoryPaging(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)
	sid, _ := db.CreateSession(ctx, 1, "Back", models.StatusActive)

	for i := 1; i <= 5; i++ {
		clock.Advance(time.Minute)
		e := models.NewExerciseEntry(sid, 1, "Back", "Row").WithTotals(3, 10, float64(i*10)).WithCreatedAt(clock.now)
		if _, _, err := db.AddExercise(ctx, e); err != nil {
			t.Fatalf("AddExercise failed: %v", err)
		}
	}

	page, err := db.ExerciseHistory(ctx, 1, 2, 1)
	if err != nil {
		t.Fatalf("ExerciseHistory failed: %v", err)
	}
	if len(page) != 2 || page[0].Weight != 40 || page[1].Weight != 30 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestSkipDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUser(t, db, 1)

	skipped, next, err := db.SkipDay(ctx, 1)
	if err != nil {
		t.Fatalf("SkipDay failed: %v", err)
	}
	if skipped != "Chest" || next != "Back" {
		t.Errorf("SkipDay = %s, %s; want Chest, Back", skipped, next)
	}

	group, _ := db.NextMuscleGroup(ctx, 1)
	if group != "Back" {
		t.Errorf("next group = %s, want Back", group)
	}

	sessions, err := db.ListSessions(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Status != models.StatusSkipped || sessions[0].EndedAt == nil {
		t.Errorf("expected one closed skipped session, got %+v", sessions)
	}

	if _, _, err := db.SkipDay(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestRecentGroupsAndLastCompleted(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	for _, g := range []string{"Chest", "Back", "Shoulders", "Legs"} {
		clock.Advance(24 * time.Hour)
		sid, err := db.CreateSession(ctx, 1, g, models.StatusActive)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		e := models.NewExerciseEntry(sid, 1, g, g+" move").WithTotals(2, 10, 10).WithCreatedAt(clock.now)
		if _, _, err := db.AddExercise(ctx, e); err != nil {
			t.Fatalf("AddExercise failed: %v", err)
		}
		if err := db.CloseSession(ctx, sid, models.StatusCompleted); err != nil {
			t.Fatalf("CloseSession failed: %v", err)
		}
	}
	cancelled, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	_ = db.CloseSession(ctx, cancelled, models.StatusCancelled)

	groups, err := db.RecentGroups(ctx, 1, 3)
	if err != nil {
		t.Fatalf("RecentGroups failed: %v", err)
	}
	want := []string{"Legs", "Shoulders", "Back"}
	if len(groups) != 3 {
		t.Fatalf("got %v, want %v", groups, want)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d = %s, want %s", i, groups[i], want[i])
		}
	}

	workouts, err := db.LastCompletedWorkouts(ctx, 1, 2)
	if err != nil {
		t.Fatalf("LastCompletedWorkouts failed: %v", err)
	}
	if len(workouts) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(workouts))
	}
	if workouts[0].MuscleGroup != "Legs" || workouts[0].ExerciseCount != 1 || workouts[0].TotalVolume != 200 {
		t.Errorf("unexpected newest workout %+v", workouts[0])
	}
}

func TestSummaryWindow(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	clock := &testClock{now: day.Add(9 * time.Hour)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	sid, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	minutes, dist := 10.0, 2.0
	_ = db.SetWarmup(ctx, sid, true, &minutes, &dist)
	_, _, _ = db.AddExercise(ctx, models.NewExerciseEntry(sid, 1, "Chest", "Bench Press").WithTotals(3, 10, 50))
	_, _, _ = db.AddExercise(ctx, models.NewExerciseEntry(sid, 1, "Back", "Row").WithTotals(2, 10, 40))
	_ = db.CloseSession(ctx, sid, models.StatusCompleted)

	// Outside the window.
	clock.now = day.Add(-time.Hour)
	old, _ := db.CreateSession(ctx, 1, "Legs", models.StatusActive)
	_, _, _ = db.AddExercise(ctx, models.NewExerciseEntry(old, 1, "Legs", "Squat").WithTotals(1, 1, 100))
	_ = db.CloseSession(ctx, old, models.StatusCompleted)

	s, err := db.Summary(ctx, 1, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.SessionCount != 1 || s.ExerciseCount != 2 {
		t.Errorf("counts = %d sessions / %d exercises, want 1 / 2", s.SessionCount, s.ExerciseCount)
	}
	if s.TotalVolume != 2300 {
		t.Errorf("total volume = %v, want 2300", s.TotalVolume)
	}
	if s.GroupVolumes["Chest"] != 1500 || s.GroupVolumes["Back"] != 800 {
		t.Errorf("group volumes = %v", s.GroupVolumes)
	}
	if s.WarmupCount != 1 || s.WarmupMinutes != 10 || s.WarmupDistance != 2 {
		t.Errorf("warm-ups = %d / %v / %v", s.WarmupCount, s.WarmupMinutes, s.WarmupDistance)
	}

	total, err := db.TotalVolume(ctx, 1)
	if err != nil {
		t.Fatalf("TotalVolume failed: %v", err)
	}
	if total != 2400 {
		t.Errorf("total volume = %v, want 2400", total)
	}
}

func TestRunningTotalsCountsAnyStatus(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	clock := &testClock{now: day.Add(8 * time.Hour)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	minutes, dist := 20.0, 3.0
	run, _ := db.CreateSession(ctx, 1, "Running", models.StatusActive)
	_ = db.SetWarmup(ctx, run, true, &minutes, &dist)
	_ = db.CloseSession(ctx, run, models.StatusCancelled)

	clock.Advance(time.Hour)
	open, _ := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	_ = db.SetWarmup(ctx, open, true, &minutes, &dist)

	totals, err := db.RunningTotals(ctx, 1, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("RunningTotals failed: %v", err)
	}
	if totals.Minutes != 40 || totals.DistanceKm != 6 {
		t.Errorf("running totals = %+v, want 40 / 6", totals)
	}
}

func mustUser(t *testing.T, db *DB, id int64) {
	t.Helper()
	if err := db.UpsertUser(context.Background(), models.NewUser(id).WithChat(id)); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	return setupTestDBWithClock(t, nil)
}

func setupTestDBWithClock(t *testing.T, clock *testClock) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gymbot.db")
	opts := Options{}
	if clock != nil {
		opts.Now = clock.Now
	}
	db, err := OpenWithOptions(dbPath, opts)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
