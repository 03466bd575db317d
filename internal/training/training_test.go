package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume(t *testing.T) {
	tests := []struct {
		name      string
		sets      int
		reps      int
		weight    float64
		repsSeq   []int
		weightSeq []float64
		want      float64
	}{
		{"per-set sequences", 3, 7, 45, []int{8, 8, 6}, []float64{40, 40, 45}, 910},
		{"reps sequence only", 2, 10, 20, []int{10, 10}, nil, 400},
		{"no sequences", 3, 10, 20, nil, nil, 600},
		{"length mismatch falls back to total reps", 3, 10, 50, []int{10, 10, 10}, []float64{40, 50}, 1500},
		{"weights without reps use flat rule", 2, 5, 10, nil, []float64{10, 10}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Volume(tt.sets, tt.reps, tt.weight, tt.repsSeq, tt.weightSeq), 1e-9)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, ClampWeight(-5))
	assert.Equal(t, 500.0, ClampWeight(9001))
	assert.Equal(t, 42.56, ClampWeight(42.556))
	assert.Equal(t, 1, ClampSets(0))
	assert.Equal(t, 6, ClampSets(9))
	assert.Equal(t, 1, ClampReps(-3))
	assert.Equal(t, 100, ClampReps(250))
	assert.Equal(t, 20.0, ClampBodyWeight(3))
	assert.Equal(t, 400.0, ClampBodyWeight(1000))
	assert.Equal(t, 0.0, ClampWarmupMinutes(-1))
	assert.Equal(t, 300.0, ClampWarmupMinutes(301))
	assert.Equal(t, 3.1, ClampWarmupDistance(3.14))
	assert.Equal(t, 200.0, ClampWarmupDistance(500))
}

func TestClampAfterRepeatedSmallDeltas(t *testing.T) {
	v := 70.0
	for i := 0; i < 3; i++ {
		v = ClampBodyWeight(v + 0.1)
	}
	assert.Equal(t, 70.3, v)
}

func TestDetectRecord(t *testing.T) {
	first := DetectRecord(nil, 60)
	assert.Equal(t, RecordFirst, first.Kind)
	assert.Equal(t, 60.0, first.Current)
	assert.True(t, first.IsRecord())

	prior := 60.0
	assert.Equal(t, RecordNone, DetectRecord(&prior, 60).Kind, "equal weight is not a record")
	assert.Equal(t, RecordNone, DetectRecord(&prior, 55).Kind)

	higher := DetectRecord(&prior, 62.5)
	assert.Equal(t, RecordNew, higher.Kind)
	assert.Equal(t, 60.0, higher.Previous)
	assert.Equal(t, 62.5, higher.Current)
}

func TestRotation(t *testing.T) {
	next, ok := NextRotationIndex(GroupAt(0))
	require.True(t, ok)
	assert.Equal(t, 1, next)

	next, ok = NextRotationIndex(GroupAt(1))
	require.True(t, ok)
	assert.Equal(t, 2, next)

	next, ok = NextRotationIndex(GroupAt(3))
	require.True(t, ok)
	assert.Equal(t, 0, next, "index wraps 3 -> 0")

	_, ok = NextRotationIndex(RunningGroup)
	assert.False(t, ok, "cardio never advances rotation")

	assert.Equal(t, "Chest", GroupAt(4))
	assert.Equal(t, "Legs", GroupAt(-1))
}

func TestParseBodyWeight(t *testing.T) {
	v, err := ParseBodyWeight("72,456")
	require.NoError(t, err)
	assert.Equal(t, 72.46, v)

	_, err = ParseBodyWeight("abc")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseBodyWeight("19.9")
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ParseBodyWeight("-70")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseWarmup(t *testing.T) {
	tests := []struct {
		input    string
		minutes  float64
		distance float64
		err      error
	}{
		{"5 1", 5, 1, nil},
		{"12,5 2,34", 12.5, 2.3, nil},
		{"20 0", 20, 0, nil},
		{"0 1", 0, 0, ErrOutOfRange},
		{"301 1", 0, 0, ErrOutOfRange},
		{"10 250", 0, 0, ErrOutOfRange},
		{"10", 0, 0, ErrInvalidNumber},
		{"ten 1", 0, 0, ErrInvalidNumber},
		{"1 2 3", 0, 0, ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			minutes, distance, err := ParseWarmup(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, minutes)
			assert.Equal(t, tt.distance, distance)
		})
	}
}
