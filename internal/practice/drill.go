// Package practice walks the question bank for spoken mock interviews.
package practice

import (
	"errors"
	"sync"

	"interview-coach/internal/config"
	"interview-coach/internal/recorder"
)

// ErrNotRecorded blocks advancing before the current answer was recorded.
var ErrNotRecorded = errors.New("record your answer before moving on")

var ErrEmptyBank = errors.New("question bank is empty")

// Drill cycles through questions, one recorded answer per question.
type Drill struct {
	questions []config.Question
	recorder  *recorder.Recorder

	mu      sync.Mutex
	started bool
	index   int
}

func New(questions []config.Question, rec *recorder.Recorder) *Drill {
	return &Drill{
		questions: append([]config.Question(nil), questions...),
		recorder:  rec,
	}
}

// Start begins at the first question with a fresh recorder.
func (d *Drill) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.questions) == 0 {
		return ErrEmptyBank
	}
	d.started = true
	d.index = 0
	d.recorder.Reset()
	return nil
}

func (d *Drill) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Current returns the question and its 1-based position.
func (d *Drill) Current() (q config.Question, position, total int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return config.Question{}, 0, len(d.questions), false
	}
	return d.questions[d.index], d.index + 1, len(d.questions), true
}

// Next moves to the following question, wrapping at the end of the bank.
// It only works once the recorder is Stopped.
func (d *Drill) Next() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return ErrEmptyBank
	}
	if d.recorder.Status() != recorder.Stopped {
		return ErrNotRecorded
	}
	d.recorder.Reset()
	d.index = (d.index + 1) % len(d.questions)
	return nil
}

func (d *Drill) Recorder() *recorder.Recorder {
	return d.recorder
}
