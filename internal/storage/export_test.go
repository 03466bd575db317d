// ABOUTME: Tests for per-user export functionality.
// ABOUTME: Verifies CSV history, JSON and YAML export formats.
package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/gymbot/internal/models"
	"gopkg.in/yaml.v3"
)

func seedExportData(t *testing.T) *DB {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 6, 18, 30, 0, 0, time.UTC)}
	db := setupTestDBWithClock(t, clock)
	ctx := context.Background()
	mustUser(t, db, 1)

	sid, err := db.CreateSession(ctx, 1, "Chest", models.StatusActive)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	_ = db.SetBodyWeight(ctx, sid, 80)
	minutes, dist := 5.0, 1.0
	_ = db.SetWarmup(ctx, sid, true, &minutes, &dist)

	clock.Advance(10 * time.Minute)
	bench := models.NewExerciseEntry(sid, 1, "Chest", "Bench Press").WithSetLog([]int{10, 8}, []float64{60, 62.5})
	if _, _, err := db.AddExercise(ctx, bench); err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	clock.Advance(10 * time.Minute)
	dips := models.NewExerciseEntry(sid, 1, "Chest", "Dips").WithTotals(3, 12, 0)
	if _, _, err := db.AddExercise(ctx, dips); err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	if err := db.CloseSession(ctx, sid, models.StatusCompleted); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	return db
}

func TestWriteHistoryCSV(t *testing.T) {
	db := seedExportData(t)

	var buf bytes.Buffer
	n, err := db.WriteHistoryCSV(context.Background(), &buf, 1)
	if err != nil {
		t.Fatalf("WriteHistoryCSV failed: %v", err)
	}
	if n != 2 {
		t.Errorf("rows written = %d, want 2", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(HistoryHeader, ",") {
		t.Errorf("unexpected header %v", records[0])
	}

	first := records[1]
	want := []string{
		"2024-05-06T18:40:00Z", "Chest", "Bench Press", "2", "9", "10 8",
		"62.50", "60.00 62.50", "80.00", "1", "5.00", "1.00", "1100.00", first[13],
	}
	for i := range want {
		if first[i] != want[i] {
			t.Errorf("column %s = %q, want %q", HistoryHeader[i], first[i], want[i])
		}
	}
	if records[2][2] != "Dips" || records[2][5] != "" {
		t.Errorf("unexpected second row %v", records[2])
	}
}

func TestWriteHistoryCSVEmpty(t *testing.T) {
	db := setupTestDB(t)
	mustUser(t, db, 1)

	var buf bytes.Buffer
	n, err := db.WriteHistoryCSV(context.Background(), &buf, 1)
	if err != nil {
		t.Fatalf("WriteHistoryCSV failed: %v", err)
	}
	if n != 0 {
		t.Errorf("rows written = %d, want 0", n)
	}
	if !strings.HasPrefix(buf.String(), "timestamp_utc,muscle_group,") {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

func TestExportJSON(t *testing.T) {
	db := seedExportData(t)

	data, err := db.ExportJSON(context.Background(), 1)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "gymbot" {
		t.Errorf("Expected tool gymbot, got %s", export.Tool)
	}
	if len(export.Sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(export.Sessions))
	}
	if len(export.Sessions[0].Exercises) != 2 {
		t.Errorf("Expected 2 exercises, got %d", len(export.Sessions[0].Exercises))
	}
	if len(export.Records) != 2 || export.Records[0].Name != "Bench Press" {
		t.Errorf("unexpected records %+v", export.Records)
	}
}

func TestExportYAML(t *testing.T) {
	db := seedExportData(t)

	data, err := db.ExportYAML(context.Background(), 1)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if yamlData["version"] != "1.0" {
		t.Errorf("Expected version 1.0, got %v", yamlData["version"])
	}
	sessions, ok := yamlData["sessions"].([]interface{})
	if !ok || len(sessions) != 1 {
		t.Errorf("Expected 1 session, got %v", yamlData["sessions"])
	}
}

func TestExportUnknownUser(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.ExportJSON(context.Background(), 77); err == nil {
		t.Error("expected error for unknown user")
	}
}
