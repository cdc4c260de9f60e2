package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/app"
	"interview-coach/internal/coach"
	"interview-coach/internal/config"
	"interview-coach/internal/evaluation"
	"interview-coach/internal/language"
	"interview-coach/internal/profile"
	"interview-coach/internal/recorder"
	"interview-coach/internal/storage"
)

const testToken = "TEST"

// fakeAPI records what the bot sends and serves uploaded files.
type fakeAPI struct {
	mu     sync.Mutex
	texts  []string
	voices []string
	files  map[string][]byte
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{files: make(map[string][]byte)}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	filePrefix := "/file/bot" + testToken + "/"
	if strings.HasPrefix(r.URL.Path, filePrefix) {
		data, ok := f.files[strings.TrimPrefix(r.URL.Path, filePrefix)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/bot"+testToken+"/") {
	case "sendMessage":
		var req SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.texts = append(f.texts, req.Text)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"}}}`))
	case "sendVoice":
		var req SendVoiceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.voices = append(f.voices, req.Voice)
		_, _ = w.Write([]byte(`{"ok":true}`))
	case "getFile":
		var req GetFileRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fmt.Fprintf(w, `{"ok":true,"result":{"file_id":%q,"file_path":"documents/%s.txt"}}`, req.FileID, req.FileID)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func (f *fakeAPI) last() string {
	texts := f.sent()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type stubEvaluator struct {
	available bool
	feedback  string
	chatErr   error
	// entered and release, when set, hold EvaluateAnswer open.
	entered chan struct{}
	release chan struct{}
}

func (s *stubEvaluator) Available() bool { return s.available }

func (s *stubEvaluator) RequestOpeningQuestion(ctx context.Context, lang language.Code, p profile.UserProfile) (string, error) {
	return "Tell me about yourself, in " + lang.Name(), nil
}

func (s *stubEvaluator) EvaluateAnswer(ctx context.Context, question, answer string, lang language.Code, p profile.UserProfile) (evaluation.Result, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	feedback := s.feedback
	if feedback == "" {
		feedback = "Good structure."
	}
	return evaluation.Result{Feedback: feedback, NextQuestion: "Why this role?"}, nil
}

func (s *stubEvaluator) Chat(ctx context.Context, history []evaluation.Message, message string, p profile.UserProfile) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return fmt.Sprintf("Reply %d to %q", len(history)/2+1, message), nil
}

type stubReviewer struct {
	texts []string
}

func (s *stubReviewer) ReviewDocument(ctx context.Context, text string, p profile.UserProfile) string {
	s.texts = append(s.texts, text)
	return "Add measurable results."
}

type harness struct {
	api       *fakeAPI
	handler   *Handler
	evaluator *stubEvaluator
	reviewer  *stubReviewer
	catalog   *config.Catalog
	nextID    int
}

func newHarness(t *testing.T, available bool, rateLimit int) *harness {
	t.Helper()
	api, srv := newFakeAPI(t)

	catalog, err := config.Load(filepath.Join("..", "..", "config", "content.yaml"))
	require.NoError(t, err)

	evaluator := &stubEvaluator{available: available}
	deps := app.Deps{
		Evaluator:   evaluator,
		Coach:       evaluator,
		Catalog:     catalog,
		Preferences: storage.NewFileStore(filepath.Join(t.TempDir(), "prefs.json")),
		Logger:      zerolog.Nop(),
	}
	reviewer := &stubReviewer{}
	h := NewHandler(New(testToken, srv.URL, zerolog.Nop()), deps, reviewer, config.TelegramConfig{RateLimit: rateLimit})
	return &harness{api: api, handler: h, evaluator: evaluator, reviewer: reviewer, catalog: catalog}
}

func (h *harness) message(userID int64) *Message {
	h.nextID++
	return &Message{
		MessageID: h.nextID,
		From:      &User{ID: userID, FirstName: "Aline", LanguageCode: "en"},
		Chat:      &Chat{ID: userID, Type: "private"},
	}
}

func (h *harness) say(userID int64, text string) string {
	msg := h.message(userID)
	msg.Text = text
	h.handler.HandleUpdate(context.Background(), Update{UpdateID: h.nextID, Message: msg})
	return h.api.last()
}

func (h *harness) state(userID int64) *app.State {
	h.handler.sessionsMu.Lock()
	defer h.handler.sessionsMu.Unlock()
	return h.handler.sessions[userID].state
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t, true, 100)

	require.Contains(t, h.say(1, "/menu"), "/start")
	require.Contains(t, h.say(1, "hello"), "/start")
	require.False(t, h.state(1).Authenticated())
}

func TestStartUsesTelegramLanguage(t *testing.T) {
	h := newHarness(t, true, 100)

	msg := h.message(7)
	msg.Text = "/start"
	msg.From.LanguageCode = "fr-FR"
	h.handler.HandleUpdate(context.Background(), Update{Message: msg})

	require.Equal(t, language.French, h.state(7).Profile().Language)
	require.Contains(t, h.api.sent(), h.catalog.Label(language.French, "welcome"))
	require.Contains(t, h.api.last(), "/profile Name | Category | Level")
}

func TestProfileCommand(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	reply := h.say(1, "/profile Jean | health | professional | fr")
	require.Contains(t, reply, "Hi, Jean!")

	p := h.state(1).Profile()
	require.Equal(t, profile.CategoryHealth, p.JobCategory)
	require.Equal(t, profile.LevelProfessional, p.ExperienceLevel)
	require.Equal(t, language.French, p.Language)

	require.Contains(t, h.say(1, "/profile Jean | Astronaut | Beginner"), "unknown job category")
}

func TestInterviewConversation(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	h.say(1, "/interview")
	sent := h.api.sent()
	require.Contains(t, sent, "👋 "+language.English.Greeting())
	require.Equal(t, "❓ Tell me about yourself, in English", sent[len(sent)-1])

	before := len(h.api.sent())
	h.say(1, "I build payment systems.")
	require.Equal(t, []string{"💬 Good structure.", "❓ Why this role?"}, h.api.sent()[before:])

	snap := h.state(1).Interview().Snapshot()
	require.Equal(t, 5, snap.Log.Len())
}

func TestLanguageSwitchRestartsInterview(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/interview")

	require.Equal(t, "❓ Tell me about yourself, in Kinyarwanda", h.say(1, "/lang rw"))
	snap := h.state(1).Interview().Snapshot()
	require.Equal(t, language.Kinyarwanda, snap.Language)
	require.Equal(t, 2, snap.Log.Len())
}

func TestLongFeedbackIsSplit(t *testing.T) {
	h := newHarness(t, true, 100)
	h.evaluator.feedback = strings.Repeat("Use the STAR method. ", 272)
	require.Greater(t, len(h.evaluator.feedback), 5700)
	h.say(1, "/start")
	h.say(1, "/interview")

	before := len(h.api.sent())
	h.say(1, "I build payment systems.")
	sent := h.api.sent()[before:]
	require.Len(t, sent, 3)
	require.True(t, strings.HasPrefix(sent[0], "(1/2)\n💬 Use the STAR method."))
	require.True(t, strings.HasPrefix(sent[1], "(2/2)\n"))
	require.Equal(t, "❓ Why this role?", sent[2])
	for _, text := range sent {
		require.LessOrEqual(t, len(text), 4096)
	}

	joined := strings.TrimPrefix(sent[0], "(1/2)\n") + strings.TrimPrefix(sent[1], "(2/2)\n")
	require.Equal(t, "💬 "+h.evaluator.feedback, joined)
}

func TestLanguageSwitchRejectedWhileEvaluating(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/interview")
	h.evaluator.entered = make(chan struct{})
	h.evaluator.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.say(1, "I build payment systems.")
	}()
	<-h.evaluator.entered

	require.Equal(t, "The coach is still answering. Try /lang again in a moment.", h.say(1, "/lang fr"))
	require.Equal(t, language.English, h.state(1).Profile().Language)

	close(h.evaluator.release)
	<-done
	require.Equal(t, "❓ Why this role?", h.api.last())
	require.NotContains(t, h.api.sent(), "🌐 French. Starting a new interview.")
}

func TestLanguageCommandOutsideInterview(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	require.Contains(t, h.say(1, "/lang xx"), "/lang rw (Kinyarwanda)")
	require.Equal(t, "🌐 Language set to French.", h.say(1, "/lang fr"))
	require.Equal(t, language.French, h.state(1).Profile().Language)
}

func TestTranscriptCommand(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	require.Contains(t, h.say(1, "/transcript"), "No interview yet")

	h.say(1, "/interview")
	h.say(1, "I build payment systems.")
	reply := h.say(1, "/transcript")
	require.True(t, strings.HasPrefix(reply, "📝 Transcript"))
	require.Contains(t, reply, "You: I build payment systems.")
	require.Contains(t, reply, "Coach: Why this role?")
}

func TestStatusShowsExamScore(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/exam")
	h.say(1, fmt.Sprint(h.catalog.Exam[0].CorrectAnswerIndex+1))
	require.Contains(t, h.say(1, "/status"), fmt.Sprintf("Exam score: 0/%d", len(h.catalog.Exam)))

	h.say(1, "/next")
	require.Contains(t, h.say(1, "/status"), fmt.Sprintf("Exam score: 1/%d", len(h.catalog.Exam)))
}

func TestCoachChat(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/profile Aline | IT | Beginner")

	greeting := h.say(1, "/chat")
	require.Contains(t, greeting, "Hello Aline! I'm Mackson")

	require.Equal(t, `🤖 Reply 1 to "How do I answer salary questions?"`, h.say(1, "How do I answer salary questions?"))
	require.Equal(t, `🤖 Reply 2 to "And notice periods?"`, h.say(1, "And notice periods?"))

	// Returning to the chat shows the conversation so far.
	h.say(1, "/menu")
	transcript := h.say(1, "/chat")
	require.Contains(t, transcript, "🗣 And notice periods?")
	require.Contains(t, transcript, `🤖 Reply 2 to "And notice periods?"`)
}

func TestCoachChatFailureKeepsChatOpen(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/chat")

	h.evaluator.chatErr = fmt.Errorf("connection reset")
	require.Equal(t, "🤖 "+coach.TroubleReply, h.say(1, "Are you there?"))

	h.evaluator.chatErr = nil
	require.Equal(t, `🤖 Reply 1 to "Are you there?"`, h.say(1, "Are you there?"))
}

func TestCoachChatDisabledWithoutCredential(t *testing.T) {
	h := newHarness(t, false, 100)
	h.say(1, "/start")

	require.Equal(t, disabledMessage, h.say(1, "/chat"))
	require.NotEqual(t, app.KindChat, h.state(1).Screen().Kind())
}

func TestRecorderFailureNeverBare(t *testing.T) {
	rec := recorder.New(newVoiceMic(), nil, zerolog.Nop())
	require.Equal(t, "❌ "+recorder.ErrBusy.Error(), recorderFailure(rec, recorder.ErrBusy))

	broken := recorder.New(nil, nil, zerolog.Nop())
	err := broken.Start(context.Background())
	require.ErrorIs(t, err, recorder.ErrNoDevice)
	require.Equal(t, "❌ "+broken.Remediation(), recorderFailure(broken, err))
	require.NotEqual(t, "❌ ", recorderFailure(broken, err))
}

func TestInterviewDisabledWithoutCredential(t *testing.T) {
	h := newHarness(t, false, 100)
	h.say(1, "/start")

	require.Equal(t, disabledMessage, h.say(1, "/interview"))
	require.Contains(t, h.say(1, "/help"), "AI features are disabled")

	// The rest of the app keeps working.
	require.Contains(t, h.say(1, "/tips"), h.catalog.Tips[0].Title)
}

func TestExamAnsweredByNumber(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	require.Contains(t, h.say(1, "/exam"), "Question 1/")

	first := h.catalog.Exam[0]
	reply := h.say(1, fmt.Sprint(first.CorrectAnswerIndex+1))
	require.Contains(t, reply, h.catalog.Label(language.English, "correct")+"!")

	require.Contains(t, h.say(1, "1"), "locked in")
	require.Contains(t, h.say(1, "nine"), "number")

	for range h.catalog.Exam {
		h.say(1, "/next")
		h.say(1, "1")
	}
	require.Equal(t, 1+countCorrectFirstOption(h.catalog.Exam[1:]), h.state(1).Exam().Score())
	require.Contains(t, h.say(1, "/restart"), "Question 1/")
}

func countCorrectFirstOption(questions []config.ExamQuestion) int {
	n := 0
	for _, q := range questions {
		if q.CorrectAnswerIndex == 0 {
			n++
		}
	}
	return n
}

func TestMockInterviewWithVoiceNotes(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	require.Contains(t, h.say(1, "/mock"), "Question 1/")
	require.Contains(t, h.say(1, "/next"), "voice message first")
	require.Contains(t, h.say(1, "/replay"), "no recorded answer")

	voice := h.message(1)
	voice.Voice = &Voice{FileID: "voice-1", Duration: 12, MimeType: "audio/ogg"}
	h.handler.HandleUpdate(context.Background(), Update{Message: voice})
	require.Contains(t, h.api.last(), "recorded")

	h.say(1, "/replay")
	h.api.mu.Lock()
	require.Equal(t, []string{"voice-1"}, h.api.voices)
	h.api.mu.Unlock()

	require.Contains(t, h.say(1, "/next"), "Question 2/")
}

func TestCVReviewFromTextAndDocument(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/cv")

	require.Equal(t, "Add measurable results.", h.say(1, "Jane Doe, nurse, 5 years."))

	h.api.mu.Lock()
	h.api.files["documents/cv.txt"] = []byte("Jane Doe\nRegistered nurse\n")
	h.api.files["documents/photo.txt"] = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	h.api.mu.Unlock()

	doc := h.message(1)
	doc.Document = &Document{FileID: "cv", FileName: "cv.txt", FileSize: 27}
	h.handler.HandleUpdate(context.Background(), Update{Message: doc})
	require.Equal(t, "Add measurable results.", h.api.last())
	require.Equal(t, "Jane Doe\nRegistered nurse\n", h.reviewer.texts[1])

	h.say(1, "/cv")
	fake := h.message(1)
	fake.Document = &Document{FileID: "photo", FileName: "photo.txt", FileSize: 16}
	h.handler.HandleUpdate(context.Background(), Update{Message: fake})
	require.Contains(t, h.api.last(), "plain .txt")
	require.Len(t, h.reviewer.texts, 2)
}

func TestThemeAndSettings(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")

	require.Contains(t, h.say(1, "/settings"), "Theme: light")
	require.Equal(t, "🎨 Theme: dark", h.say(1, "/theme"))
	require.Contains(t, h.say(1, "/settings"), "Theme: dark")
}

func TestLogoutReplacesState(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(1, "/interview")
	old := h.state(1)

	require.Contains(t, h.say(1, "/logout"), "logged out")
	require.NotSame(t, old, h.state(1))
	require.False(t, h.state(1).Authenticated())
}

func TestRateLimitedUser(t *testing.T) {
	h := newHarness(t, true, 2)

	h.say(1, "/help")
	h.say(1, "/help")
	require.Contains(t, h.say(1, "/help"), "Too many messages")
	require.Contains(t, h.say(2, "/help"), "Commands:")
}

func TestCleanupDropsIdleUsers(t *testing.T) {
	h := newHarness(t, true, 100)
	h.say(1, "/start")
	h.say(2, "/start")

	h.handler.sessionsMu.Lock()
	h.handler.sessions[1].lastActivity = time.Now().Add(-48 * time.Hour)
	h.handler.sessionsMu.Unlock()

	h.handler.cleanupInactiveSessions(time.Now())

	h.handler.sessionsMu.Lock()
	defer h.handler.sessionsMu.Unlock()
	require.NotContains(t, h.handler.sessions, int64(1))
	require.Contains(t, h.handler.sessions, int64(2))
}

func TestSplitCommand(t *testing.T) {
	cmd, args := splitCommand("/LANG@CoachBot  fr ")
	require.Equal(t, "/lang", cmd)
	require.Equal(t, "fr", args)

	cmd, args = splitCommand("/menu")
	require.Equal(t, "/menu", cmd)
	require.Empty(t, args)
}

func TestParseProfileKeepsLanguageByDefault(t *testing.T) {
	base := profile.Default(language.Kinyarwanda)

	p, err := parseProfile("Eric | IT | Intermediate", base)
	require.NoError(t, err)
	require.Equal(t, "Eric", p.Name)
	require.Equal(t, language.Kinyarwanda, p.Language)

	_, err = parseProfile("Eric | IT", base)
	require.Error(t, err)
}

func TestValidateUserInput(t *testing.T) {
	require.NoError(t, validateUserInput("I led a team of four."))
	require.Error(t, validateUserInput(strings.Repeat("a", 50)))
	require.Error(t, validateUserInput(strings.Repeat("word ", 1000)))
}
