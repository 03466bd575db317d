// ABOUTME: Fixed four-day muscle group rotation and the cardio pseudo-group.
// ABOUTME: Completing or skipping a rotation group advances the user's index.
package training

// RunningGroup is the cardio-only pseudo-group. It never advances rotation.
const RunningGroup = "Running"

// Rotation is the ordered training cycle.
var Rotation = []string{"Chest", "Back", "Shoulders", "Legs"}

// MuscleOptions lists every group a session may be created for.
var MuscleOptions = []string{"Chest", "Back", "Legs", "Shoulders", RunningGroup}

// RotationIndexOf returns the position of group in the cycle.
func RotationIndexOf(group string) (int, bool) {
	for i, g := range Rotation {
		if g == group {
			return i, true
		}
	}
	return 0, false
}

// InRotation reports whether group takes part in the cycle.
func InRotation(group string) bool {
	_, ok := RotationIndexOf(group)
	return ok
}

// NextRotationIndex returns the index following group, or false for non-cycle groups.
func NextRotationIndex(group string) (int, bool) {
	i, ok := RotationIndexOf(group)
	if !ok {
		return 0, false
	}
	return (i + 1) % len(Rotation), true
}

// GroupAt returns the rotation group for any stored index.
func GroupAt(index int) string {
	n := len(Rotation)
	return Rotation[((index%n)+n)%n]
}
