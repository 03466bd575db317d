// ABOUTME: Tests for per-set sequence column types.
// ABOUTME: Covers parsing, SQL scanning and NULL handling.
package models

import (
	"testing"
)

func TestParseIntSequence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IntSequence
		wantErr bool
	}{
		{"simple", "8 8 6", IntSequence{8, 8, 6}, false},
		{"extra spaces", "  10   12 ", IntSequence{10, 12}, false},
		{"empty", "", nil, false},
		{"garbage", "8 x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntSequence(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIntSequence() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseIntSequence() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSequenceScanNull(t *testing.T) {
	var reps IntSequence
	if err := reps.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if reps != nil {
		t.Errorf("expected nil sequence, got %v", reps)
	}

	var weights FloatSequence
	if err := weights.Scan([]byte("40.00 42.50")); err != nil {
		t.Fatalf("Scan([]byte) failed: %v", err)
	}
	if len(weights) != 2 || weights[1] != 42.5 {
		t.Errorf("weights = %v", weights)
	}

	if err := weights.Scan(12); err == nil {
		t.Error("expected error scanning int into FloatSequence")
	}
}

func TestEmptySequenceValueIsNull(t *testing.T) {
	v, err := IntSequence(nil).Value()
	if err != nil || v != nil {
		t.Errorf("Value() = %v, %v; want nil, nil", v, err)
	}
	v, err = FloatSequence{20}.Value()
	if err != nil || v != "20.00" {
		t.Errorf("Value() = %v, %v; want 20.00", v, err)
	}
}
