package app

import (
	"interview-coach/internal/coach"
	"interview-coach/internal/config"
	"interview-coach/internal/exam"
	"interview-coach/internal/language"
	"interview-coach/internal/practice"
	"interview-coach/internal/profile"
	"interview-coach/internal/session"
	"interview-coach/internal/storage"
)

type ScreenKind string

const (
	KindOnboarding    ScreenKind = "onboarding"
	KindProfileSetup  ScreenKind = "profile_setup"
	KindDashboard     ScreenKind = "dashboard"
	KindQuestionBank  ScreenKind = "question_bank"
	KindMockInterview ScreenKind = "mock_interview"
	KindPracticeExam  ScreenKind = "practice_exam"
	KindTips          ScreenKind = "tips"
	KindProgress      ScreenKind = "progress"
	KindCVReview      ScreenKind = "cv_review"
	KindSettings      ScreenKind = "settings"
	KindInterview     ScreenKind = "interview"
	KindChat          ScreenKind = "chat"
)

// Screen is one presentation state. Each variant carries only what it renders.
type Screen interface {
	Kind() ScreenKind
}

type Onboarding struct{}

type ProfileSetup struct {
	Draft profile.UserProfile
}

type Dashboard struct {
	Name string
}

type QuestionBank struct {
	Category  profile.JobCategory
	Questions []config.Question
}

type MockInterview struct {
	Drill *practice.Drill
}

type PracticeExam struct {
	Exam *exam.Exam
}

type Tips struct {
	Tips []config.Tip
}

type Progress struct {
	Points []config.ProgressPoint
}

type CVReview struct {
	Feedback string
}

type Settings struct {
	Theme    storage.Theme
	Language language.Code
}

type Interview struct {
	Session *session.Orchestrator
}

// Chat is the free-form conversation with the coach.
type Chat struct {
	Coach *coach.Chat
}

func (Onboarding) Kind() ScreenKind    { return KindOnboarding }
func (ProfileSetup) Kind() ScreenKind  { return KindProfileSetup }
func (Dashboard) Kind() ScreenKind     { return KindDashboard }
func (QuestionBank) Kind() ScreenKind  { return KindQuestionBank }
func (MockInterview) Kind() ScreenKind { return KindMockInterview }
func (PracticeExam) Kind() ScreenKind  { return KindPracticeExam }
func (Tips) Kind() ScreenKind          { return KindTips }
func (Progress) Kind() ScreenKind      { return KindProgress }
func (CVReview) Kind() ScreenKind      { return KindCVReview }
func (Settings) Kind() ScreenKind      { return KindSettings }
func (Interview) Kind() ScreenKind     { return KindInterview }
func (Chat) Kind() ScreenKind          { return KindChat }
