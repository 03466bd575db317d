// ABOUTME: Immutable exercise catalog injected into the session engine.
// ABOUTME: Built from defaults, a YAML file or an illustration directory.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/gymbot/internal/training"
)

// ErrEmptyCatalog is returned when a source yields no selectable group.
var ErrEmptyCatalog = errors.New("catalog has no exercises")

// Exercise is one selectable exercise with an optional illustration path.
type Exercise struct {
	Name         string `yaml:"name"`
	Illustration string `yaml:"illustration,omitempty"`
}

// Catalog maps muscle groups to their ordered exercise options.
// A Catalog is never mutated after construction and is safe for concurrent use.
type Catalog struct {
	groups     map[string][]Exercise
	order      []string
	bodyweight bool
}

// Option configures a Catalog under construction.
type Option func(*Catalog)

// WithBodyweight marks bodyweight exercises as available, enabling the
// "use my bodyweight" weight shortcut.
func WithBodyweight(enabled bool) Option {
	return func(c *Catalog) { c.bodyweight = enabled }
}

// New builds a catalog from groups. Groups without exercises and the
// running pseudo-group are dropped from the strength selection.
func New(groups map[string][]Exercise, opts ...Option) (*Catalog, error) {
	c := &Catalog{groups: make(map[string][]Exercise, len(groups))}
	for group, exercises := range groups {
		group = strings.TrimSpace(group)
		if group == "" || group == training.RunningGroup {
			continue
		}
		var cleaned []Exercise
		seen := make(map[string]bool, len(exercises))
		for _, ex := range exercises {
			ex.Name = strings.TrimSpace(ex.Name)
			key := strings.ToLower(ex.Name)
			if ex.Name == "" || seen[key] {
				continue
			}
			seen[key] = true
			cleaned = append(cleaned, ex)
		}
		if len(cleaned) == 0 {
			continue
		}
		c.groups[group] = cleaned
		c.order = append(c.order, group)
	}
	if len(c.order) == 0 {
		return nil, ErrEmptyCatalog
	}
	sort.Slice(c.order, func(i, j int) bool {
		return strings.ToLower(c.order[i]) < strings.ToLower(c.order[j])
	})
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MuscleGroups returns the selectable strength groups, sorted case-insensitively.
func (c *Catalog) MuscleGroups() []string {
	return append([]string(nil), c.order...)
}

// HasGroup reports whether group is selectable.
func (c *Catalog) HasGroup(group string) bool {
	_, ok := c.groups[group]
	return ok
}

// ExerciseOptions returns the ordered exercises of a group. Unknown groups yield nil.
func (c *Catalog) ExerciseOptions(group string) []Exercise {
	return append([]Exercise(nil), c.groups[group]...)
}

// Exercise returns the option at index within group.
func (c *Catalog) Exercise(group string, index int) (Exercise, error) {
	options := c.groups[group]
	if index < 0 || index >= len(options) {
		return Exercise{}, fmt.Errorf("exercise %d in %q: out of range", index, group)
	}
	return options[index], nil
}

// HasBodyweight reports whether the bodyweight weight shortcut is offered.
func (c *Catalog) HasBodyweight() bool {
	return c.bodyweight
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultGroups())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultGroups() map[string][]Exercise {
	named := func(names ...string) []Exercise {
		out := make([]Exercise, len(names))
		for i, n := range names {
			out[i] = Exercise{Name: n}
		}
		return out
	}
	return map[string][]Exercise{
		"Chest": named(
			"Bench Press", "Incline Dumbbell Press", "Cable Fly", "Chest Press Machine",
			"Dips", "Push Ups", "Decline Press", "Pec Deck",
		),
		"Back": named(
			"Pull Ups", "Lat Pulldown", "Seated Cable Row", "Barbell Row",
			"One Arm Dumbbell Row", "T-Bar Row", "Face Pull", "Straight Arm Pulldown",
			"Glute-Ham-Raise",
		),
		"Shoulders": named(
			"Overhead Press", "Arnold Press", "Lateral Raise", "Cable Lateral Raise",
			"Rear Delt Fly", "Front Raise", "Upright Row", "Shrugs",
		),
		"Legs": named(
			"Back Squat", "Leg Press", "Romanian Deadlift", "Walking Lunges",
			"Leg Extension", "Leg Curl", "Calf Raise", "Bulgarian Split Squat",
		),
	}
}
