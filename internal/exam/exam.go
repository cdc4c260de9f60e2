// Package exam runs the multiple-choice practice exam.
package exam

import (
	"errors"
	"sync"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

var (
	ErrNotInProgress = errors.New("exam is not in progress")
	ErrInvalidOption = errors.New("no such option")
	ErrNoSelection   = errors.New("select an answer first")
)

type Phase string

const (
	NotStarted Phase = "not_started"
	InProgress Phase = "in_progress"
	Finished   Phase = "finished"
)

// View is what the presentation needs to render the exam.
type View struct {
	Phase        Phase
	Index        int
	Total        int
	Score        int
	Question     config.ExamQuestion
	Selected     int
	HasSelection bool
	ShowFeedback bool
	Correct      bool
}

// Exam is safe for concurrent use.
type Exam struct {
	questions []config.ExamQuestion
	metrics   *metrics.Metrics

	mu           sync.Mutex
	phase        Phase
	index        int
	answers      map[int]int
	score        int
	showFeedback bool
}

func New(questions []config.ExamQuestion, m *metrics.Metrics) *Exam {
	return &Exam{
		questions: append([]config.ExamQuestion(nil), questions...),
		metrics:   m,
		phase:     NotStarted,
		answers:   make(map[int]int),
	}
}

// Start begins the exam. Starting a finished exam is a restart.
func (e *Exam) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == InProgress {
		return
	}
	e.reset()
}

// Restart zeroes every counter and returns to the first question.
func (e *Exam) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Exam) reset() {
	e.phase = InProgress
	e.index = 0
	e.answers = make(map[int]int)
	e.score = 0
	e.showFeedback = false
	if len(e.questions) == 0 {
		e.phase = Finished
	}
}

// Select records the answer for the current question. Only the first selection
// counts; later ones return false until Next.
func (e *Exam) Select(option int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != InProgress {
		return false, ErrNotInProgress
	}
	if e.showFeedback {
		return false, nil
	}
	q := e.questions[e.index]
	if option < 0 || option >= len(q.Options) {
		return false, ErrInvalidOption
	}
	e.answers[q.ID] = option
	e.showFeedback = true
	return true, nil
}

// Next scores the current question and moves on, finishing after the last one.
// The score is counted here and nowhere else.
func (e *Exam) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != InProgress {
		return ErrNotInProgress
	}
	if !e.showFeedback {
		return ErrNoSelection
	}

	q := e.questions[e.index]
	if e.answers[q.ID] == q.CorrectAnswerIndex {
		e.score++
	}
	e.showFeedback = false

	if e.index < len(e.questions)-1 {
		e.index++
		return nil
	}
	e.phase = Finished
	e.metrics.IncrementExamsFinished(e.score, len(e.questions))
	return nil
}

func (e *Exam) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Current returns the question being asked.
func (e *Exam) Current() (config.ExamQuestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != InProgress {
		return config.ExamQuestion{}, false
	}
	return e.questions[e.index], true
}

func (e *Exam) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Phase:        e.phase,
		Index:        e.index,
		Total:        len(e.questions),
		Score:        e.score,
		ShowFeedback: e.showFeedback,
	}
	if e.phase != InProgress {
		return v
	}
	v.Question = e.questions[e.index]
	v.Selected, v.HasSelection = e.answers[v.Question.ID]
	v.Correct = v.HasSelection && v.Selected == v.Question.CorrectAnswerIndex
	return v
}
