// Package app holds the per-user application state: profile, current screen and
// the interview, exam and drill a user is working through.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"interview-coach/internal/coach"
	"interview-coach/internal/config"
	"interview-coach/internal/exam"
	"interview-coach/internal/language"
	"interview-coach/internal/metrics"
	"interview-coach/internal/practice"
	"interview-coach/internal/profile"
	"interview-coach/internal/recorder"
	"interview-coach/internal/session"
	"interview-coach/internal/storage"
)

// ErrNotAuthenticated is returned for anything but onboarding before Login.
var ErrNotAuthenticated = errors.New("log in with /start first")

// Deps are shared by every user's state.
type Deps struct {
	Evaluator   session.Evaluator
	Coach       coach.Replier
	Catalog     *config.Catalog
	Preferences storage.PreferenceStore
	NewDevice   func() recorder.Device
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// State is created at login and replaced wholesale at logout.
type State struct {
	deps Deps
	user string

	mu            sync.Mutex
	authenticated bool
	profile       profile.UserProfile
	screen        Screen
	interview     *session.Orchestrator
	exam          *exam.Exam
	device        recorder.Device
	recorder      *recorder.Recorder
	drill         *practice.Drill
	chat          *coach.Chat
}

// New returns a logged-out state showing onboarding.
func New(user string, deps Deps) *State {
	return &State{
		deps:    deps,
		user:    user,
		profile: profile.Default(language.Default),
		screen:  Onboarding{},
	}
}

// Login is a stub: it accepts everyone with the default profile and moves to
// profile setup.
func (s *State) Login(lang language.Code) Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = true
	s.profile = profile.Default(lang)
	s.interview = session.NewOrchestrator(s.deps.Evaluator, s.Profile, s.deps.Metrics,
		s.deps.Logger.With().Str("user", s.user).Logger())
	s.exam = exam.New(s.deps.Catalog.Exam, s.deps.Metrics)
	if s.deps.NewDevice != nil {
		s.device = s.deps.NewDevice()
	}
	s.recorder = recorder.New(s.device, s.deps.Metrics, s.deps.Logger)
	s.drill = practice.New(s.deps.Catalog.QuestionsFor(s.profile.JobCategory), s.recorder)
	s.screen = ProfileSetup{Draft: s.profile}
	return s.screen
}

// Close disposes the interview so late evaluation results are dropped.
func (s *State) Close() {
	s.mu.Lock()
	interview, chat := s.interview, s.chat
	s.mu.Unlock()

	if interview != nil {
		interview.Close()
	}
	if chat != nil {
		chat.Close()
	}
}

func (s *State) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Profile returns a copy of the user's profile.
func (s *State) Profile() profile.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *State) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *State) Interview() *session.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interview
}

func (s *State) Exam() *exam.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exam
}

func (s *State) Drill() *practice.Drill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drill
}

func (s *State) Recorder() *recorder.Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder
}

// Device returns the capture device backing the recorder.
func (s *State) Device() recorder.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// SetProfile validates and saves the profile, then shows the dashboard.
// A language change goes through SetLanguage.
func (s *State) SetProfile(ctx context.Context, p profile.UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	languageChanged := p.Language != s.profile.Language
	categoryChanged := p.JobCategory != s.profile.JobCategory
	s.profile = p
	if categoryChanged {
		s.drill = practice.New(s.deps.Catalog.QuestionsFor(p.JobCategory), s.recorder)
	}
	_, onInterview := s.screen.(Interview)
	interview := s.interview
	if !onInterview {
		s.screen = Dashboard{Name: p.Name}
	}
	s.mu.Unlock()

	if languageChanged && onInterview {
		if _, err := interview.ChangeLanguage(ctx, p.Language); err != nil {
			return err
		}
	}
	return nil
}

// SetLanguage updates the profile language. On the interview screen the session
// restarts in the new language first; it reports whether that happened. A
// restart the session rejects leaves the profile language unchanged.
func (s *State) SetLanguage(ctx context.Context, lang language.Code) (bool, error) {
	if !lang.Valid() {
		return false, fmt.Errorf("unsupported language %q", lang)
	}

	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return false, ErrNotAuthenticated
	}
	_, onInterview := s.screen.(Interview)
	interview := s.interview
	s.mu.Unlock()

	var err error
	if onInterview {
		_, err = interview.ChangeLanguage(ctx, lang)
		if errors.Is(err, session.ErrInvalidState) || errors.Is(err, session.ErrClosed) {
			return false, err
		}
	}

	s.mu.Lock()
	s.profile.Language = lang
	if settings, ok := s.screen.(Settings); ok {
		settings.Language = lang
		s.screen = settings
	}
	s.mu.Unlock()
	return onInterview, err
}

// Navigate switches to the screen of the given kind, building its data.
func (s *State) Navigate(ctx context.Context, kind ScreenKind) (Screen, error) {
	if kind == KindOnboarding {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.screen = Onboarding{}
		return s.screen, nil
	}

	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	p := s.profile
	s.mu.Unlock()

	var screen Screen
	switch kind {
	case KindProfileSetup:
		screen = ProfileSetup{Draft: p}
	case KindDashboard:
		screen = Dashboard{Name: p.Name}
	case KindQuestionBank:
		screen = QuestionBank{Category: p.JobCategory, Questions: s.deps.Catalog.QuestionsFor(p.JobCategory)}
	case KindMockInterview:
		screen = MockInterview{Drill: s.Drill()}
	case KindPracticeExam:
		screen = PracticeExam{Exam: s.Exam()}
	case KindTips:
		screen = Tips{Tips: s.deps.Catalog.Tips}
	case KindProgress:
		screen = Progress{Points: s.deps.Catalog.Progress}
	case KindCVReview:
		screen = CVReview{}
	case KindSettings:
		theme, err := s.Theme(ctx)
		if err != nil {
			s.deps.Logger.Warn().Err(err).Str("user", s.user).Msg("reading theme preference")
		}
		screen = Settings{Theme: theme, Language: p.Language}
	case KindInterview:
		screen = Interview{Session: s.Interview()}
	case KindChat:
		screen = Chat{Coach: s.coachChat()}
	default:
		return nil, fmt.Errorf("unknown screen %q", kind)
	}

	s.mu.Lock()
	s.screen = screen
	s.mu.Unlock()
	return screen, nil
}

// coachChat returns the user's chat, starting it on first use.
func (s *State) coachChat() *coach.Chat {
	s.mu.Lock()
	chat := s.chat
	s.mu.Unlock()
	if chat != nil {
		return chat
	}

	// New reads the profile, which takes s.mu.
	chat = coach.New(s.deps.Coach, s.Profile, s.deps.Logger.With().Str("user", s.user).Logger())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		s.chat = chat
	}
	return s.chat
}

// StartInterview opens the interview screen and starts a session in the
// profile language.
func (s *State) StartInterview(ctx context.Context) (session.Session, error) {
	screen, err := s.Navigate(ctx, KindInterview)
	if err != nil {
		return session.Session{}, err
	}
	orchestrator := screen.(Interview).Session
	return orchestrator.Start(ctx, s.Profile().Language)
}

// ShowReview stores CV feedback on the review screen.
func (s *State) ShowReview(feedback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = CVReview{Feedback: feedback}
}

// Theme reads the saved theme, defaulting to light.
func (s *State) Theme(ctx context.Context) (storage.Theme, error) {
	if s.deps.Preferences == nil {
		return storage.ThemeLight, nil
	}
	return s.deps.Preferences.Theme(ctx, s.user)
}

// ToggleTheme flips and saves the theme.
func (s *State) ToggleTheme(ctx context.Context) (storage.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if s.deps.Preferences != nil {
		if err := s.deps.Preferences.SetTheme(ctx, s.user, next); err != nil {
			return current, err
		}
	}

	s.mu.Lock()
	if settings, ok := s.screen.(Settings); ok {
		settings.Theme = next
		s.screen = settings
	}
	s.mu.Unlock()
	return next, nil
}
