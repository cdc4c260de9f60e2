package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	m := NewMetrics()

	m.IncrementSessionsStarted("fr")
	m.IncrementSessionsStarted("fr")
	m.IncrementAnswersSubmitted()
	m.ObserveEvaluation("evaluate", OutcomeMalformed, 10*time.Millisecond)
	m.IncrementCVReviews(OutcomeSuccess)

	require.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("fr")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.answersSubmitted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("evaluate", OutcomeMalformed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cvReviews.WithLabelValues(OutcomeSuccess)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncrementSessionsStarted("en")
		m.ObserveEvaluation("opening", OutcomeSuccess, time.Second)
		m.IncrementExamsFinished(1, 2)
		m.SetActiveUsers(3)
	})
	require.NotNil(t, m.Registry())
}

func TestRegistryGathers(t *testing.T) {
	m := NewMetrics()
	m.IncrementExamsFinished(3, 4)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["interview_coach_exams_finished_total"])
	require.True(t, names["interview_coach_exam_score_ratio"])
}
