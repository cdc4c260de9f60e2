// Package session implements the interview turn-taking protocol.
//
// Reduce is a pure transition function over Session values. Orchestrator drives it:
// it serialises events, performs the effects Reduce asks for and feeds the results
// back as further events.
package session

import (
	"errors"
	"strings"

	"interview-coach/internal/conversation"
	"interview-coach/internal/evaluation"
	"interview-coach/internal/language"
)

var (
	// ErrInvalidState rejects an operation the current status does not allow.
	ErrInvalidState = errors.New("operation not allowed in the current session state")
	ErrEmptyAnswer  = errors.New("answer is empty")
)

type Status string

const (
	StatusIdle           Status = "idle"
	StatusAwaitingAnswer Status = "awaiting_answer"
	StatusEvaluating     Status = "evaluating"
	StatusError          Status = "error"
)

// Session is one interview conversation from greeting to restart.
type Session struct {
	ID           string
	Language     language.Code
	Log          conversation.Log
	Status       Status
	LastQuestion string
	// Pending is the request in flight, or the one that failed while in StatusError.
	Pending Effect
	Failure string
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

type Started struct {
	ID       string
	Language language.Code
}

type OpeningReceived struct {
	Text string
}

type AnswerSubmitted struct {
	Text string
}

type EvaluationReceived struct {
	Result evaluation.Result
}

type RequestFailed struct {
	Err error
}

type RetryRequested struct{}

func (Started) isEvent()            {}
func (OpeningReceived) isEvent()    {}
func (AnswerSubmitted) isEvent()    {}
func (EvaluationReceived) isEvent() {}
func (RequestFailed) isEvent()      {}
func (RetryRequested) isEvent()     {}

// Effect is a call to the evaluation service requested by Reduce. A nil Effect means none.
type Effect interface {
	isEffect()
}

type RequestOpening struct {
	Language language.Code
}

type RequestEvaluation struct {
	Question string
	Answer   string
	Language language.Code
}

func (RequestOpening) isEffect()    {}
func (RequestEvaluation) isEffect() {}

// Reduce applies ev to s. On error the returned Session equals s.
func Reduce(s Session, ev Event) (Session, Effect, error) {
	switch ev := ev.(type) {
	case Started:
		if s.Status == StatusEvaluating {
			return s, nil, ErrInvalidState
		}
		lang := ev.Language
		if !lang.Valid() {
			lang = language.Default
		}
		effect := RequestOpening{Language: lang}
		return Session{
			ID:       ev.ID,
			Language: lang,
			Log:      conversation.New(conversation.Greeting(lang.Greeting())),
			Status:   StatusEvaluating,
			Pending:  effect,
		}, effect, nil

	case OpeningReceived:
		if _, ok := s.Pending.(RequestOpening); !ok || s.Status != StatusEvaluating {
			return s, nil, ErrInvalidState
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return fail(s, errEmptyQuestion), nil, nil
		}
		next := s
		next.Log = s.Log.Append(conversation.Question(text))
		next.LastQuestion = text
		next.Status = StatusAwaitingAnswer
		next.Pending = nil
		return next, nil, nil

	case AnswerSubmitted:
		if s.Status != StatusAwaitingAnswer {
			return s, nil, ErrInvalidState
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return s, nil, ErrEmptyAnswer
		}
		effect := RequestEvaluation{Question: s.LastQuestion, Answer: text, Language: s.Language}
		next := s
		next.Log = s.Log.Append(conversation.Answer(text))
		next.Status = StatusEvaluating
		next.Pending = effect
		return next, effect, nil

	case EvaluationReceived:
		if _, ok := s.Pending.(RequestEvaluation); !ok || s.Status != StatusEvaluating {
			return s, nil, ErrInvalidState
		}
		feedback := strings.TrimSpace(ev.Result.Feedback)
		question := strings.TrimSpace(ev.Result.NextQuestion)
		if feedback == "" || question == "" {
			return fail(s, errIncompleteResult), nil, nil
		}
		next := s
		next.Log = s.Log.Append(conversation.Feedback(feedback), conversation.Question(question))
		next.LastQuestion = question
		next.Status = StatusAwaitingAnswer
		next.Pending = nil
		return next, nil, nil

	case RequestFailed:
		if s.Status != StatusEvaluating {
			return s, nil, ErrInvalidState
		}
		return fail(s, ev.Err), nil, nil

	case RetryRequested:
		if s.Status != StatusError || s.Pending == nil {
			return s, nil, ErrInvalidState
		}
		next := s
		next.Status = StatusEvaluating
		next.Failure = ""
		return next, s.Pending, nil
	}

	return s, nil, ErrInvalidState
}

var (
	errEmptyQuestion    = errors.New("opening question is empty")
	errIncompleteResult = errors.New("evaluation result is incomplete")
)

// fail keeps Pending so a retry re-issues the same request.
func fail(s Session, err error) Session {
	s.Status = StatusError
	s.Failure = FailureMessage(err)
	return s
}

// FailureMessage turns a service error into text for the user.
func FailureMessage(err error) string {
	var malformed *evaluation.MalformedResponseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, evaluation.ErrServiceUnavailable):
		return "The AI coach is not configured. Ask the administrator to set an API key."
	case errors.As(err, &malformed), errors.Is(err, errIncompleteResult):
		return "The coach sent a reply I could not understand. Use /retry to ask again."
	default:
		return "I could not reach the AI coach. Check your connection and use /retry."
	}
}
