package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

func questions() []config.ExamQuestion {
	return []config.ExamQuestion{
		{ID: 1, Question: "CSS?", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 1},
		{ID: 2, Question: "SWOT?", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
		{ID: 3, Question: "IEP?", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 3},
	}
}

func play(t *testing.T, e *Exam, choices ...int) {
	t.Helper()
	for _, c := range choices {
		ok, err := e.Select(c)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, e.Next())
	}
}

func TestNotStartedRejectsInput(t *testing.T) {
	e := New(questions(), nil)
	require.Equal(t, NotStarted, e.View().Phase)

	_, err := e.Select(0)
	require.ErrorIs(t, err, ErrNotInProgress)
	require.ErrorIs(t, e.Next(), ErrNotInProgress)
}

func TestScoreCountsMatchingAnswers(t *testing.T) {
	m := metrics.NewMetrics()
	e := New(questions(), m)
	e.Start()

	play(t, e, 1, 1, 3)

	v := e.View()
	assert.Equal(t, Finished, v.Phase)
	assert.Equal(t, 2, v.Score)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 2, e.Score())
}

func TestLastQuestionCountedOnce(t *testing.T) {
	e := New(questions(), nil)
	e.Start()
	play(t, e, 1, 0, 3)

	require.Equal(t, 3, e.Score())
	require.Equal(t, 3, e.View().Score)
	require.ErrorIs(t, e.Next(), ErrNotInProgress)
	require.Equal(t, 3, e.Score())
}

func TestFirstSelectionLocks(t *testing.T) {
	e := New(questions(), nil)
	e.Start()

	ok, err := e.Select(0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Select(1)
	require.NoError(t, err)
	require.False(t, ok)

	v := e.View()
	require.True(t, v.ShowFeedback)
	require.Equal(t, 0, v.Selected)
	require.False(t, v.Correct)

	require.NoError(t, e.Next())
	require.Zero(t, e.Score())
	require.False(t, e.View().ShowFeedback)
}

func TestNextRequiresSelection(t *testing.T) {
	e := New(questions(), nil)
	e.Start()
	require.ErrorIs(t, e.Next(), ErrNoSelection)

	_, err := e.Select(7)
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestRestartZeroesCounters(t *testing.T) {
	e := New(questions(), nil)
	e.Start()
	play(t, e, 1, 0)

	e.Restart()
	v := e.View()
	require.Equal(t, InProgress, v.Phase)
	require.Zero(t, v.Score)
	require.Zero(t, v.Index)
	require.False(t, v.HasSelection)
	require.Empty(t, e.answers)
}

func TestStartAfterFinishRestarts(t *testing.T) {
	e := New(questions(), nil)
	e.Start()
	play(t, e, 0, 0, 0)
	require.Equal(t, Finished, e.View().Phase)

	e.Start()
	q, ok := e.Current()
	require.True(t, ok)
	require.Equal(t, 1, q.ID)
	require.Zero(t, e.Score())
}
