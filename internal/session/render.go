package session

import (
	"fmt"
	"strconv"

	"github.com/harperreed/gymbot/internal/i18n"
)

var (
	bodyWeightSteps = [][]float64{{-50, -20, -10}, {-1, -0.5, -0.1}, {0.1, 0.5, 1}, {10, 20, 50}}
	minuteSteps     = [][]float64{{-60, -10, -1}, {-0.1, -0.01}, {0.01, 0.1}, {1, 10, 60}}
	distanceSteps   = [][]float64{{-10, -1, -0.1}, {0.1, 1, 10}}
	repSteps        = [][]float64{{-10, -5, -1}, {1, 5, 10}}
	weightSteps     = [][]float64{{-20, -10, -2.5, -1}, {1, 2.5, 10}, {20, 50}}
)

// render builds the prompt and keyboard for sc.State, prefixed by notes.
func (e *Engine) render(sc *SessionContext, notes []string) *Reply {
	text, choices := e.prompt(sc)
	lines := append(append([]string(nil), notes...), text)
	return &Reply{
		State:        sc.State,
		Text:         joinLines(lines),
		Choices:      choices,
		Illustration: sc.Illustration,
	}
}

func (e *Engine) prompt(sc *SessionContext) (string, [][]Choice) {
	lang := sc.Language
	end := []Choice{{Label: "🏁 " + e.tr(sc, "end_workout", nil), Token: Finish{}.Token()}}

	switch sc.State {
	case StateSelectMode:
		return e.tr(sc, "choose_workout_mode", nil), [][]Choice{
			{{Label: "🏃 " + e.tr(sc, "running_today", nil), Token: Select{ScopeMode, ModeRunning}.Token()}},
			{{Label: "🏋️ " + e.tr(sc, "strength_today", nil), Token: Select{ScopeMode, ModeStrength}.Token()}},
			{{Label: "⏭ " + e.tr(sc, "skip_day", nil), Token: Select{ScopeMode, ModeSkipDay}.Token()}},
			end,
		}

	case StateSelectMuscle:
		var rows [][]Choice
		for i, g := range e.catalog.MuscleGroups() {
			rows = append(rows, []Choice{{Label: e.text.Group(lang, g), Token: Select{ScopeMuscle, i}.Token()}})
		}
		back := "back"
		if sc.HasSession() {
			back = "back_exercise"
		}
		rows = append(rows, []Choice{{Label: "⬅️ " + e.tr(sc, back, nil), Token: Back{}.Token()}}, end)
		return e.tr(sc, "choose_muscle", i18n.Params{"recent": e.text.Groups(lang, sc.Recent)}), rows

	case StateBodyWeightInput:
		rows := adjustRows(FieldBodyWeight, bodyWeightSteps)
		rows = append(rows,
			[]Choice{{Label: fmt.Sprintf("%.2f kg", sc.BodyWeight), Token: Noop{}.Token()}},
			[]Choice{{Label: "✅ " + e.tr(sc, "confirm", nil), Token: Confirm{}.Token()}},
			end)
		text := e.tr(sc, "ask_body_weight", nil) + "\n" + e.tr(sc, "current_kg", i18n.Params{"value": sc.BodyWeight})
		return text, rows

	case StateWarmupChoice:
		return e.tr(sc, "did_warmup", nil), [][]Choice{
			{{Label: "✅ " + e.tr(sc, "yes_warmup", nil), Token: Select{ScopeWarmup, WarmupYes}.Token()}},
			{{Label: "❌ " + e.tr(sc, "no_warmup", nil), Token: Select{ScopeWarmup, WarmupNo}.Token()}},
			end,
		}

	case StateWarmupInput:
		if sc.WarmupStage == WarmupDistance {
			rows := adjustRows(FieldDistance, distanceSteps)
			rows = append(rows,
				[]Choice{{Label: fmt.Sprintf("%.1f km", sc.WarmupDistance), Token: Noop{}.Token()}},
				[]Choice{{Label: "✅ " + e.tr(sc, "confirm_distance", nil), Token: Confirm{}.Token()}},
				[]Choice{{Label: "⬅️ " + e.tr(sc, "back_minutes", nil), Token: Back{}.Token()}},
				end)
			text := e.tr(sc, "warmup_distance_prompt", nil) + "\n" + e.tr(sc, "current_km", i18n.Params{"value": sc.WarmupDistance})
			return text, rows
		}
		rows := adjustRows(FieldMinutes, minuteSteps)
		rows = append(rows,
			[]Choice{{Label: fmt.Sprintf("%.2f min", sc.WarmupMinutes), Token: Noop{}.Token()}},
			[]Choice{{Label: "✅ " + e.tr(sc, "confirm_minutes", nil), Token: Confirm{}.Token()}},
			end)
		text := e.tr(sc, "warmup_minutes_prompt", nil) + "\n" +
			e.tr(sc, "current_min", i18n.Params{"value": sc.WarmupMinutes}) + "\n" +
			e.tr(sc, "send_warmup", nil)
		return text, rows

	case StateSelectExercise:
		var rows [][]Choice
		for i, ex := range e.catalog.ExerciseOptions(sc.Group) {
			label := fmt.Sprintf("%d. %s", i+1, e.text.Exercise(lang, ex.Name))
			rows = append(rows, []Choice{{Label: label, Token: Select{ScopeExercise, i}.Token()}})
		}
		rows = append(rows, []Choice{{Label: "⬅️ " + e.tr(sc, "back_groups", nil), Token: Back{}.Token()}}, end)
		return e.tr(sc, "pick_exercise", i18n.Params{"group": e.text.Group(lang, sc.Group)}), rows

	case StateSets:
		picks := make([][]Choice, 2)
		for n := 1; n <= 6; n++ {
			picks[(n-1)/3] = append(picks[(n-1)/3], Choice{Label: strconv.Itoa(n), Token: Select{ScopeSets, n}.Token()})
		}
		rows := append(picks,
			[]Choice{
				{Label: "-1", Token: Adjust{FieldSets, -1}.Token()},
				{Label: strconv.Itoa(sc.CurrentSets), Token: Noop{}.Token()},
				{Label: "+1", Token: Adjust{FieldSets, 1}.Token()},
			},
			[]Choice{{Label: "✅ " + e.tr(sc, "confirm_sets", nil), Token: Confirm{}.Token()}},
			[]Choice{{Label: "⬅️ " + e.tr(sc, "back_exercise", nil), Token: Back{}.Token()}},
			end)
		text := e.tr(sc, "choose_sets", nil) + "\n" + e.tr(sc, "sets_current", i18n.Params{"value": sc.CurrentSets})
		return text, rows

	case StateReps:
		rows := adjustRows(FieldReps, repSteps)
		rows = append(rows,
			[]Choice{{Label: strconv.Itoa(sc.CurrentReps), Token: Noop{}.Token()}},
			[]Choice{{Label: "✅ " + e.tr(sc, "confirm_reps", nil), Token: Confirm{}.Token()}},
			[]Choice{{Label: "⬅️ " + e.tr(sc, "back_exercise", nil), Token: Back{}.Token()}},
			end)
		text := e.tr(sc, "choose_reps", i18n.Params{"set_no": sc.SetNumber(), "sets": sc.SetsTarget}) + "\n" +
			e.tr(sc, "reps_current", i18n.Params{"value": sc.CurrentReps})
		return text, rows

	case StateWeight:
		rows := adjustRows(FieldWeight, weightSteps)
		var shortcuts []Choice
		if len(sc.Weights) > 0 {
			shortcuts = append(shortcuts, Choice{Label: "↩️ " + e.tr(sc, "use_prev_weight", nil), Token: Select{ScopeWeight, WeightCopyPrevious}.Token()})
		}
		if e.bodyweightShortcut(sc) {
			shortcuts = append(shortcuts, Choice{Label: "🧍 " + e.tr(sc, "use_body_weight", nil), Token: Select{ScopeWeight, WeightBodyweight}.Token()})
		}
		if len(shortcuts) > 0 {
			rows = append(rows, shortcuts)
		}
		rows = append(rows,
			[]Choice{{Label: "✅ " + e.tr(sc, "confirm_weight", nil), Token: Confirm{}.Token()}},
			[]Choice{{Label: "⬅️ " + e.tr(sc, "back_exercise", nil), Token: Back{}.Token()}},
			end)
		// The weight being entered belongs to the last set whose reps are in.
		text := e.tr(sc, "weight_prompt", i18n.Params{"set_no": len(sc.Reps), "sets": sc.SetsTarget, "weight": sc.CurrentKg})
		return text, rows

	case StatePostAction:
		return e.tr(sc, "what_next", nil), [][]Choice{
			{{Label: "➕ " + e.tr(sc, "add_another", nil), Token: Select{ScopePost, PostNext}.Token()}},
			{{Label: "🔁 " + e.tr(sc, "replace_exercise", nil), Token: Select{ScopePost, PostReplace}.Token()}},
			end,
		}
	}
	return e.tr(sc, "session_incomplete_restart", nil), nil
}

func adjustRows(field Field, steps [][]float64) [][]Choice {
	rows := make([][]Choice, 0, len(steps))
	for _, row := range steps {
		choices := make([]Choice, 0, len(row))
		for _, d := range row {
			choices = append(choices, Choice{Label: deltaLabel(d), Token: Adjust{field, d}.Token()})
		}
		rows = append(rows, choices)
	}
	return rows
}

func deltaLabel(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if d > 0 {
		return "+" + s
	}
	return s
}
