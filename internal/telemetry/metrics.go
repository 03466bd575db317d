// ABOUTME: Prometheus counters for conversation turns, sessions and reminders.
// ABOUTME: Collectors register with the default registry at init.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

const namespace = "gymbot"

var (
	actionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "actions_total",
		Help:      "Conversation actions handled, labeled by state and result.",
	}, []string{"state", "result"})

	sessionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "sessions_closed_total",
		Help:      "Workout sessions closed, labeled by final status.",
	}, []string{"status"})

	exercisesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "exercises_logged_total",
		Help:      "Exercise entries saved, labeled by muscle group.",
	}, []string{"group"})

	recordsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "personal_records_total",
		Help:      "Personal records detected, labeled by kind.",
	}, []string{"kind"})

	remindersCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "sent_total",
		Help:      "Daily reminders attempted, labeled by result.",
	}, []string{"result"})

	activeContexts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "active_contexts",
		Help:      "Conversation contexts currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(actionsCounter, sessionsCounter, exercisesCounter, recordsCounter, remindersCounter, activeContexts)
}

// RecordAction counts one handled action.
func RecordAction(state, result string) {
	actionsCounter.WithLabelValues(state, result).Inc()
}

func RecordSessionClosed(status string) {
	sessionsCounter.WithLabelValues(status).Inc()
}

func RecordExercise(group string) {
	exercisesCounter.WithLabelValues(group).Inc()
}

// RecordPersonalRecord counts a "first" or "improved" record.
func RecordPersonalRecord(kind string) {
	recordsCounter.WithLabelValues(kind).Inc()
}

func RecordReminder(result string) {
	remindersCounter.WithLabelValues(result).Inc()
}

func SetActiveContexts(n int) {
	activeContexts.Set(float64(n))
}
