package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"interview-coach/internal/evaluation"
	"interview-coach/internal/language"
	"interview-coach/internal/metrics"
	"interview-coach/internal/profile"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("session closed")

// Evaluator is the part of the evaluation client the orchestrator needs.
type Evaluator interface {
	Available() bool
	RequestOpeningQuestion(ctx context.Context, lang language.Code, p profile.UserProfile) (string, error)
	EvaluateAnswer(ctx context.Context, question, answer string, lang language.Code, p profile.UserProfile) (evaluation.Result, error)
}

// ProfileFunc returns the profile used to tailor prompts. It is read, never written.
type ProfileFunc func() profile.UserProfile

// Orchestrator owns one Session. Operations block until the evaluation call they
// trigger has finished; a second operation arriving meanwhile is rejected with
// ErrInvalidState because the session is Evaluating.
type Orchestrator struct {
	evaluator Evaluator
	profile   ProfileFunc
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu      sync.Mutex
	session Session
	closed  bool
}

func NewOrchestrator(evaluator Evaluator, profileFn ProfileFunc, m *metrics.Metrics, logger zerolog.Logger) *Orchestrator {
	if profileFn == nil {
		profileFn = func() profile.UserProfile { return profile.Default(language.Default) }
	}
	return &Orchestrator{
		evaluator: evaluator,
		profile:   profileFn,
		metrics:   m,
		logger:    logger.With().Str("component", "session").Logger(),
		session:   Session{Status: StatusIdle},
	}
}

// Available reports whether the evaluation service has a credential.
func (o *Orchestrator) Available() bool {
	return o.evaluator != nil && o.evaluator.Available()
}

// Start resets the session to the greeting for lang and requests the opening question.
func (o *Orchestrator) Start(ctx context.Context, lang language.Code) (Session, error) {
	if !o.Available() {
		return o.Snapshot(), evaluation.ErrServiceUnavailable
	}

	effect, err := o.apply(Started{ID: uuid.NewString(), Language: lang})
	if err != nil {
		return o.Snapshot(), err
	}
	o.metrics.IncrementSessionsStarted(string(effect.(RequestOpening).Language))
	o.perform(ctx, effect)
	return o.Snapshot(), nil
}

// ChangeLanguage starts a new session. History is never translated.
func (o *Orchestrator) ChangeLanguage(ctx context.Context, lang language.Code) (Session, error) {
	return o.Start(ctx, lang)
}

// SubmitAnswer records the answer and asks for feedback and the next question.
// A failed evaluation is not returned as an error: the session moves to StatusError.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, text string) (Session, error) {
	effect, err := o.apply(AnswerSubmitted{Text: text})
	if err != nil {
		return o.Snapshot(), err
	}
	o.metrics.IncrementAnswersSubmitted()
	o.perform(ctx, effect)
	return o.Snapshot(), nil
}

// Retry re-issues the request that failed.
func (o *Orchestrator) Retry(ctx context.Context) (Session, error) {
	effect, err := o.apply(RetryRequested{})
	if err != nil {
		return o.Snapshot(), err
	}
	o.perform(ctx, effect)
	return o.Snapshot(), nil
}

// Snapshot returns a copy of the session for rendering.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Close disposes the orchestrator. Responses that arrive afterwards are dropped.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *Orchestrator) apply(ev Event) (Effect, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrClosed
	}

	from := o.session.Status
	next, effect, err := Reduce(o.session, ev)
	if err != nil {
		o.logger.Debug().Err(err).Str("status", string(from)).Msgf("rejected %T", ev)
		return nil, err
	}
	o.session = next

	o.logger.Debug().
		Str("session_id", next.ID).
		Str("from", string(from)).
		Str("to", string(next.Status)).
		Int("turns", next.Log.Len()).
		Msgf("applied %T", ev)
	return effect, nil
}

// perform runs effect without holding the lock and feeds the outcome back.
func (o *Orchestrator) perform(ctx context.Context, effect Effect) {
	if effect == nil {
		return
	}
	p := o.profile()

	var ev Event
	switch e := effect.(type) {
	case RequestOpening:
		text, err := o.evaluator.RequestOpeningQuestion(ctx, e.Language, p)
		if err != nil {
			ev = RequestFailed{Err: err}
		} else {
			ev = OpeningReceived{Text: text}
		}
	case RequestEvaluation:
		result, err := o.evaluator.EvaluateAnswer(ctx, e.Question, e.Answer, e.Language, p)
		if err != nil {
			ev = RequestFailed{Err: err}
		} else {
			ev = EvaluationReceived{Result: result}
		}
	default:
		return
	}

	if failed, ok := ev.(RequestFailed); ok {
		o.logFailure(effect, failed.Err)
	}

	if _, err := o.apply(ev); errors.Is(err, ErrClosed) {
		o.logger.Debug().Msgf("discarded %T after close", ev)
	}
}

func (o *Orchestrator) logFailure(effect Effect, err error) {
	var malformed *evaluation.MalformedResponseError
	event := o.logger.Warn()
	reason := metrics.OutcomeTransport
	if errors.As(err, &malformed) {
		event = o.logger.Error()
		reason = metrics.OutcomeMalformed
	}
	event.Err(err).Str("reason", reason).Msgf("%T failed", effect)
}
