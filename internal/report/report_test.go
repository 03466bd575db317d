package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func setupReporter(t *testing.T, clock *fixedClock) (*Reporter, *storage.DB) {
	t.Helper()
	db, err := storage.OpenWithOptions(filepath.Join(t.TempDir(), "test.db"), storage.Options{Now: clock.Now})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.UpsertUser(context.Background(), models.NewUser(1)); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return New(db, i18n.MustLoad()), db
}

func logWorkout(t *testing.T, db *storage.DB, group string, bodyWeight float64, entries ...*models.ExerciseEntry) {
	t.Helper()
	ctx := context.Background()
	id, err := db.CreateSession(ctx, 1, group, models.StatusActive)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if bodyWeight > 0 {
		if err := db.SetBodyWeight(ctx, id, bodyWeight); err != nil {
			t.Fatalf("SetBodyWeight failed: %v", err)
		}
	}
	for _, e := range entries {
		e.SessionID = id
		if _, _, err := db.AddExercise(ctx, e); err != nil {
			t.Fatalf("AddExercise failed: %v", err)
		}
	}
	if err := db.CloseSession(ctx, id, models.StatusCompleted); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
}

func entry(group, name string, sets, reps int, weight float64) *models.ExerciseEntry {
	return models.NewExerciseEntry(0, 1, group, name).WithTotals(sets, reps, weight)
}

func TestSummaryText(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)}
	r, db := setupReporter(t, clock)
	logWorkout(t, db, "Chest", 80, entry("Chest", "Bench Press", 3, 10, 50), entry("Back", "Row", 2, 10, 40))

	text, err := r.Summary(context.Background(), 1, models.LanguageEnglish, KindWeek, Week(clock.now))
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	for _, want := range []string{
		"Week: 2024-05-06 to 2024-05-12",
		"Completed workouts: 1",
		"Exercises logged: 2",
		"Total weekly volume: 2300.00",
		"Back: 800.00\nChest: 1500.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryTextEmpty(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)}
	r, _ := setupReporter(t, clock)

	text, err := r.Summary(context.Background(), 1, models.LanguageGerman, KindToday, Today(clock.now))
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !strings.HasPrefix(text, "Heute Zusammenfassung") {
		t.Fatalf("expected German heading, got:\n%s", text)
	}
	if !strings.HasSuffix(text, "\n-") {
		t.Fatalf("expected empty group marker, got:\n%s", text)
	}
}

func TestPersonalRecordsText(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)}
	r, db := setupReporter(t, clock)

	text, err := r.PersonalRecords(context.Background(), 1, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("PersonalRecords failed: %v", err)
	}
	if !strings.HasPrefix(text, "No PRs yet") {
		t.Fatalf("unexpected empty text: %s", text)
	}

	logWorkout(t, db, "Chest", 0, entry("Chest", "Bench Press", 3, 5, 100), entry("Chest", "Bench Press", 3, 5, 90))
	text, err = r.PersonalRecords(context.Background(), 1, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("PersonalRecords failed: %v", err)
	}
	if !strings.Contains(text, "Bench Press: 100.00 kg") {
		t.Fatalf("unexpected records text:\n%s", text)
	}
}

func TestLastWorkoutsShowsBodyWeightChange(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)}
	r, db := setupReporter(t, clock)

	for i, bw := range []float64{80, 81, 80.5, 80.5} {
		clock.now = clock.now.Add(24 * time.Hour)
		logWorkout(t, db, "Chest", bw, entry("Chest", "Bench Press", 1, 10, float64(40+i)))
	}

	text, err := r.LastWorkouts(context.Background(), 1, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("LastWorkouts failed: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 lines, got:\n%s", text)
	}
	if !strings.Contains(lines[1], "bodyweight: 80.50 kg (no change)") {
		t.Errorf("unexpected newest line: %s", lines[1])
	}
	if !strings.Contains(lines[2], "(losing -0.50 kg)") {
		t.Errorf("unexpected second line: %s", lines[2])
	}
	if !strings.Contains(lines[3], "(gaining +1.00 kg)") {
		t.Errorf("unexpected third line: %s", lines[3])
	}
}

func TestLastWorkoutsEmpty(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)}
	r, _ := setupReporter(t, clock)
	text, err := r.LastWorkouts(context.Background(), 1, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("LastWorkouts failed: %v", err)
	}
	if text != "No completed workouts found yet." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestBodyWeightChange(t *testing.T) {
	tr := i18n.MustLoad()
	kg := func(v float64) *float64 { return &v }
	cases := []struct {
		current, previous *float64
		want              string
	}{
		{nil, kg(80), "not available"},
		{kg(80), nil, "first record"},
		{kg(80), kg(80.004), "no change"},
		{kg(81.25), kg(80), "gaining +1.25 kg"},
		{kg(79), kg(80), "losing -1.00 kg"},
	}
	for _, tc := range cases {
		if got := BodyWeightChange(tr, models.LanguageEnglish, tc.current, tc.previous); got != tc.want {
			t.Errorf("BodyWeightChange = %q, want %q", got, tc.want)
		}
	}
}
