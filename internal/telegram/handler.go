package telegram

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"interview-coach/internal/app"
	"interview-coach/internal/coach"
	"interview-coach/internal/config"
	"interview-coach/internal/evaluation"
	"interview-coach/internal/exam"
	"interview-coach/internal/language"
	"interview-coach/internal/practice"
	"interview-coach/internal/profile"
	"interview-coach/internal/recorder"
	"interview-coach/internal/session"
)

const (
	maxAnswerLength  = 4000
	maxDocumentBytes = 512 * 1024
)

// Reviewer produces CV feedback. Failures are returned as readable text.
type Reviewer interface {
	ReviewDocument(ctx context.Context, text string, p profile.UserProfile) string
}

// Handler routes Telegram updates to per-user application state.
type Handler struct {
	bot         *Bot
	deps        app.Deps
	reviewer    Reviewer
	sessions    map[int64]*userEntry
	sessionsMu  sync.Mutex
	rateLimiter *RateLimiter
	idleTTL     time.Duration
	logger      zerolog.Logger
}

func NewHandler(bot *Bot, deps app.Deps, reviewer Reviewer, cfg config.TelegramConfig) *Handler {
	idleTTL := cfg.SessionIdleTTL
	if idleTTL <= 0 {
		idleTTL = 24 * time.Hour
	}
	return &Handler{
		bot:         bot,
		deps:        deps,
		reviewer:    reviewer,
		sessions:    make(map[int64]*userEntry),
		rateLimiter: NewRateLimiter(cfg.RateLimit, time.Minute),
		idleTTL:     idleTTL,
		logger:      deps.Logger.With().Str("component", "handler").Logger(),
	}
}

// Run polls for updates until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	h.startSessionCleanup(ctx)
	return h.bot.StartPolling(ctx, func(update Update) {
		h.HandleUpdate(ctx, update)
	})
}

func (h *Handler) startSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupInactiveSessions(time.Now())
			}
		}
	}()
}

func (h *Handler) cleanupInactiveSessions(now time.Time) {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()

	cutoff := now.Add(-h.idleTTL)
	for uid, entry := range h.sessions {
		if entry.lastActivity.Before(cutoff) {
			entry.state.Close()
			delete(h.sessions, uid)
			h.rateLimiter.Forget(uid)
		}
	}
	h.deps.Metrics.SetActiveUsers(len(h.sessions))
}

func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !h.rateLimiter.IsAllowed(userID) {
		h.send(chatID, "⏳ Too many messages. Please wait a minute.")
		return
	}

	state := h.getOrCreateState(userID)
	log := h.logger.With().Int64("user_id", userID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("handler panicked")
			h.send(chatID, "Something went wrong. Use /menu to continue.")
		}
	}()

	text := strings.TrimSpace(msg.Text)
	switch {
	case msg.Voice != nil:
		h.handleVoice(ctx, chatID, state, msg.Voice)
	case msg.Document != nil:
		h.handleDocument(ctx, chatID, state, msg.Document)
	case strings.HasPrefix(text, "/"):
		h.handleCommand(ctx, chatID, msg.From, text, state)
	case text != "":
		h.handleUserInput(ctx, chatID, text, state)
	}
}

// handleCommand dispatches a slash command with its arguments.
func (h *Handler) handleCommand(ctx context.Context, chatID int64, from *User, text string, state *app.State) {
	command, args := splitCommand(text)

	switch command {
	case "/start":
		h.handleStartCommand(chatID, from, state)
		return
	case "/help":
		h.handleHelpCommand(chatID)
		return
	}

	if !state.Authenticated() {
		h.send(chatID, "👋 Welcome! Use /start to log in.")
		return
	}

	switch command {
	case "/menu":
		h.navigate(ctx, chatID, state, app.KindDashboard)
	case "/profile":
		h.handleProfileCommand(ctx, chatID, args, state)
	case "/interview":
		h.handleInterviewCommand(ctx, chatID, state)
	case "/retry":
		h.handleRetryCommand(ctx, chatID, state)
	case "/restart":
		h.handleRestartCommand(ctx, chatID, state)
	case "/lang":
		h.handleLanguageCommand(ctx, chatID, args, state)
	case "/exam":
		h.handleExamCommand(ctx, chatID, state)
	case "/next":
		h.handleNextCommand(ctx, chatID, state)
	case "/mock":
		h.handleMockCommand(ctx, chatID, state)
	case "/replay":
		h.handleReplayCommand(chatID, state)
	case "/questions":
		h.navigate(ctx, chatID, state, app.KindQuestionBank)
	case "/tips":
		h.navigate(ctx, chatID, state, app.KindTips)
	case "/progress":
		h.navigate(ctx, chatID, state, app.KindProgress)
	case "/cv":
		h.navigate(ctx, chatID, state, app.KindCVReview)
	case "/settings":
		h.navigate(ctx, chatID, state, app.KindSettings)
	case "/theme":
		h.handleThemeCommand(ctx, chatID, state)
	case "/logout":
		h.handleLogoutCommand(chatID, from.ID)
	case "/status":
		h.handleStatusCommand(chatID, state)
	case "/chat":
		h.handleChatCommand(ctx, chatID, state)
	case "/transcript":
		h.handleTranscriptCommand(chatID, state)
	default:
		h.send(chatID, "Unknown command. Use /help to see the list of commands.")
	}
}

func (h *Handler) handleStartCommand(chatID int64, from *User, state *app.State) {
	if state.Authenticated() {
		p := state.Profile()
		h.send(chatID, renderDashboard(h.deps.Catalog, p.Language, p.Name))
		return
	}

	// Telegram sends IETF tags such as "fr-FR".
	code, _, _ := strings.Cut(from.LanguageCode, "-")
	lang, err := language.Parse(code)
	if err != nil {
		lang = language.Default
	}
	screen := state.Login(lang)
	h.send(chatID, h.deps.Catalog.Label(lang, "welcome"))
	h.render(chatID, state, screen)
}

func (h *Handler) handleHelpCommand(chatID int64) {
	helpText := `🤖 Interview Coach

Commands:
/start - Log in and set up your profile
/menu - Show the dashboard
/profile Name | Category | Level - Save your profile
/interview - Start an AI mock interview
/transcript - Show the interview so far
/chat - Talk with Mackson, your AI career coach
/retry - Retry the last failed request
/restart - Restart the interview (or the exam)
/lang en|fr|rw - Change language
/exam - Practice exam
/next - Next exam or mock interview question
/mock - Voice mock interview
/replay - Listen to your recorded answer
/questions - Question bank
/tips - Tips & guidance
/progress - Progress tracker
/cv - CV review
/settings - Settings
/theme - Toggle light/dark theme
/status - Show what you are doing
/logout - Sign out
/help - Show this message`

	if !h.aiAvailable() {
		helpText += "\n\n⚠️ AI features are disabled: no API key is configured."
	}
	h.send(chatID, helpText)
}

func (h *Handler) handleProfileCommand(ctx context.Context, chatID int64, args string, state *app.State) {
	if args == "" {
		h.navigate(ctx, chatID, state, app.KindProfileSetup)
		return
	}

	p, err := parseProfile(args, state.Profile())
	if err == nil {
		err = state.SetProfile(ctx, p)
	}
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\nFormat: /profile Name | Category | Level")
		return
	}
	h.render(chatID, state, state.Screen())
}

func (h *Handler) handleInterviewCommand(ctx context.Context, chatID int64, state *app.State) {
	if !h.aiAvailable() {
		h.send(chatID, disabledMessage)
		return
	}

	current := state.Interview().Snapshot()
	if current.Status == session.StatusAwaitingAnswer || current.Status == session.StatusError {
		if _, err := state.Navigate(ctx, app.KindInterview); err == nil {
			h.send(chatID, "Your interview is still open. /restart starts a new one.\n\n"+renderSessionStatus(current))
			return
		}
	}

	h.send(chatID, "⏳ Preparing your first question...")
	snap, err := state.StartInterview(ctx)
	h.reportSession(chatID, snap, 0, err)
}

func (h *Handler) handleRetryCommand(ctx context.Context, chatID int64, state *app.State) {
	orchestrator := state.Interview()
	before := orchestrator.Snapshot().Log.Len()
	snap, err := orchestrator.Retry(ctx)
	if errors.Is(err, session.ErrInvalidState) {
		h.send(chatID, "Nothing to retry. "+renderSessionStatus(snap))
		return
	}
	h.reportSession(chatID, snap, before, err)
}

func (h *Handler) handleRestartCommand(ctx context.Context, chatID int64, state *app.State) {
	if _, onExam := state.Screen().(app.PracticeExam); onExam {
		e := state.Exam()
		e.Restart()
		h.send(chatID, renderExam(h.deps.Catalog, state.Profile().Language, e.View()))
		return
	}
	h.handleInterviewRestart(ctx, chatID, state)
}

func (h *Handler) handleInterviewRestart(ctx context.Context, chatID int64, state *app.State) {
	if !h.aiAvailable() {
		h.send(chatID, disabledMessage)
		return
	}
	snap, err := state.StartInterview(ctx)
	h.reportSession(chatID, snap, 0, err)
}

func (h *Handler) handleLanguageCommand(ctx context.Context, chatID int64, args string, state *app.State) {
	lang, err := language.Parse(args)
	if err != nil {
		h.send(chatID, languageUsage())
		return
	}

	restarted, err := state.SetLanguage(ctx, lang)
	if errors.Is(err, session.ErrInvalidState) {
		h.send(chatID, "The coach is still answering. Try /lang again in a moment.")
		return
	}
	if restarted {
		h.send(chatID, fmt.Sprintf("🌐 %s. Starting a new interview.", lang.Name()))
		h.reportSession(chatID, state.Interview().Snapshot(), 0, err)
		return
	}
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	h.send(chatID, fmt.Sprintf("🌐 Language set to %s.", lang.Name()))
}

func languageUsage() string {
	options := make([]string, 0, len(language.All()))
	for _, code := range language.All() {
		options = append(options, fmt.Sprintf("/lang %s (%s)", code, code.Name()))
	}
	return "Choose a language: " + strings.Join(options, ", ")
}

func (h *Handler) handleExamCommand(ctx context.Context, chatID int64, state *app.State) {
	screen, err := state.Navigate(ctx, app.KindPracticeExam)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	e := screen.(app.PracticeExam).Exam
	e.Start()
	h.send(chatID, renderExam(h.deps.Catalog, state.Profile().Language, e.View()))
}

func (h *Handler) handleNextCommand(ctx context.Context, chatID int64, state *app.State) {
	lang := state.Profile().Language

	switch screen := state.Screen().(type) {
	case app.PracticeExam:
		if err := screen.Exam.Next(); err != nil {
			h.send(chatID, "❌ "+err.Error())
			return
		}
		h.send(chatID, renderExam(h.deps.Catalog, lang, screen.Exam.View()))
	case app.MockInterview:
		if err := screen.Drill.Next(); err != nil {
			if errors.Is(err, practice.ErrNotRecorded) {
				h.send(chatID, "🎙 "+err.Error()+": send a voice message first.")
				return
			}
			h.send(chatID, "❌ "+err.Error())
			return
		}
		h.send(chatID, renderDrill(h.deps.Catalog, lang, screen.Drill))
	default:
		h.send(chatID, "/next works in the practice exam (/exam) and the mock interview (/mock).")
	}
}

func (h *Handler) handleMockCommand(ctx context.Context, chatID int64, state *app.State) {
	screen, err := state.Navigate(ctx, app.KindMockInterview)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	drill := screen.(app.MockInterview).Drill
	if err := drill.Start(); err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	h.send(chatID, renderDrill(h.deps.Catalog, state.Profile().Language, drill))
}

func (h *Handler) handleReplayCommand(chatID int64, state *app.State) {
	clip, ok := state.Recorder().Playback()
	if !ok {
		h.send(chatID, "There is no recorded answer yet. Use /mock and send a voice message.")
		return
	}
	if err := h.bot.SendVoice(chatID, clip.Handle, "Your answer"); err != nil {
		h.logger.Error().Err(err).Msg("replaying voice note")
		h.send(chatID, "❌ Could not play the recording back.")
	}
}

func (h *Handler) handleThemeCommand(ctx context.Context, chatID int64, state *app.State) {
	theme, err := state.ToggleTheme(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("saving theme")
		h.send(chatID, "❌ Could not save the theme.")
		return
	}
	h.send(chatID, fmt.Sprintf("🎨 Theme: %s", theme))
}

// handleLogoutCommand replaces the user's state wholesale.
func (h *Handler) handleLogoutCommand(chatID, userID int64) {
	h.sessionsMu.Lock()
	if entry, ok := h.sessions[userID]; ok {
		entry.state.Close()
	}
	h.sessions[userID] = h.newEntry(userID)
	h.sessionsMu.Unlock()

	h.send(chatID, "👋 You are logged out. Use /start to log in again.")
}

func (h *Handler) handleStatusCommand(chatID int64, state *app.State) {
	p := state.Profile()
	status := fmt.Sprintf("📊 Status\n\nProfile: %s, %s, %s\nLanguage: %s\nScreen: %s\nInterview: %s\nExam score: %d/%d",
		p.Name, p.JobCategory, p.ExperienceLevel, p.Language.Name(),
		state.Screen().Kind(), renderSessionStatus(state.Interview().Snapshot()),
		state.Exam().Score(), len(h.deps.Catalog.Exam))
	if !h.aiAvailable() {
		status += "\n\n⚠️ AI features are disabled."
	}
	h.send(chatID, status)
}

func (h *Handler) handleTranscriptCommand(chatID int64, state *app.State) {
	transcript := state.Interview().Snapshot().Log.Transcript()
	if transcript == "" {
		h.send(chatID, "No interview yet. Use /interview to start one.")
		return
	}
	h.sendLong(chatID, "📝 Transcript\n\n"+transcript)
}

func (h *Handler) handleChatCommand(ctx context.Context, chatID int64, state *app.State) {
	if !h.chatAvailable() {
		h.send(chatID, disabledMessage)
		return
	}
	h.navigate(ctx, chatID, state, app.KindChat)
}

func (h *Handler) handleChatMessage(ctx context.Context, chatID int64, text string, chat *coach.Chat) {
	if err := validateUserInput(text); err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	reply, err := chat.Send(ctx, text)
	switch {
	case errors.Is(err, evaluation.ErrServiceUnavailable):
		h.send(chatID, disabledMessage)
	case errors.Is(err, coach.ErrBusy):
		h.send(chatID, "⏳ Mackson is still typing. Please wait for the reply.")
	case errors.Is(err, coach.ErrEmptyMessage):
		h.send(chatID, "Please type a message.")
	case err != nil:
		h.logger.Warn().Err(err).Msg("chat message rejected")
		h.send(chatID, "Use /chat to talk with the coach again.")
	default:
		h.sendLong(chatID, "🤖 "+reply)
	}
}

// handleUserInput routes free text according to the active screen.
func (h *Handler) handleUserInput(ctx context.Context, chatID int64, text string, state *app.State) {
	if !state.Authenticated() {
		h.send(chatID, "👋 Welcome! Use /start to log in.")
		return
	}

	switch screen := state.Screen().(type) {
	case app.Interview:
		h.handleAnswer(ctx, chatID, text, screen.Session)
	case app.PracticeExam:
		h.handleExamAnswer(chatID, text, state, screen.Exam)
	case app.CVReview:
		h.handleReview(ctx, chatID, text, state)
	case app.ProfileSetup:
		h.handleProfileCommand(ctx, chatID, text, state)
	case app.Chat:
		h.handleChatMessage(ctx, chatID, text, screen.Coach)
	case app.MockInterview:
		h.send(chatID, "🎙 Please answer with a voice message.")
	default:
		h.send(chatID, "Use /menu to pick an activity or /help for the list of commands.")
	}
}

func (h *Handler) handleAnswer(ctx context.Context, chatID int64, text string, orchestrator *session.Orchestrator) {
	if err := validateUserInput(text); err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	before := orchestrator.Snapshot()
	snap, err := orchestrator.SubmitAnswer(ctx, text)
	if errors.Is(err, session.ErrInvalidState) {
		h.send(chatID, renderSessionStatus(snap))
		return
	}
	h.reportSession(chatID, snap, before.Log.Len(), err)
}

func (h *Handler) handleExamAnswer(chatID int64, text string, state *app.State, e *exam.Exam) {
	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		h.send(chatID, "Reply with the number of your answer.")
		return
	}

	accepted, err := e.Select(choice - 1)
	switch {
	case errors.Is(err, exam.ErrNotInProgress):
		h.send(chatID, "Use /exam to start the exam.")
		return
	case err != nil:
		h.send(chatID, "❌ "+err.Error())
		return
	case !accepted:
		h.send(chatID, "Your answer is locked in. Use /next to continue.")
		return
	}
	h.send(chatID, renderExam(h.deps.Catalog, state.Profile().Language, e.View()))
}

func (h *Handler) handleReview(ctx context.Context, chatID int64, text string, state *app.State) {
	h.send(chatID, "🔍 Analyzing your CV...")
	feedback := h.reviewer.ReviewDocument(ctx, text, state.Profile())
	state.ShowReview(feedback)
	h.sendLong(chatID, feedback)
}

func (h *Handler) handleVoice(ctx context.Context, chatID int64, state *app.State, voice *Voice) {
	if !state.Authenticated() {
		h.send(chatID, "👋 Welcome! Use /start to log in.")
		return
	}
	screen, ok := state.Screen().(app.MockInterview)
	if !ok || !screen.Drill.Started() {
		h.send(chatID, "Voice answers are used in the mock interview. Use /mock to start it.")
		return
	}

	mic, ok := state.Device().(*voiceMic)
	if !ok {
		h.send(chatID, "❌ Recording is not available.")
		return
	}

	rec := state.Recorder()
	if rec.Status() == recorder.Stopped {
		rec.Reset()
	}
	if rec.Status() != recorder.Recording {
		if err := rec.Start(ctx); err != nil {
			h.send(chatID, recorderFailure(rec, err))
			return
		}
	}
	mic.Deliver(voice)
	if err := rec.Stop(); err != nil {
		h.send(chatID, recorderFailure(rec, err))
		return
	}
	h.send(chatID, renderDrill(h.deps.Catalog, state.Profile().Language, screen.Drill))
}

// recorderFailure prefers the recorder's remediation and falls back to err.
func recorderFailure(rec *recorder.Recorder, err error) string {
	if hint := rec.Remediation(); hint != "" {
		return "❌ " + hint
	}
	return "❌ " + err.Error()
}

func (h *Handler) handleDocument(ctx context.Context, chatID int64, state *app.State, doc *Document) {
	if _, ok := state.Screen().(app.CVReview); !ok || !state.Authenticated() {
		h.send(chatID, "To review a CV, open /cv first.")
		return
	}
	if doc.FileSize > maxDocumentBytes {
		h.send(chatID, "❌ The file is too large. Please send a .txt file under 512 KB.")
		return
	}
	if ext := strings.ToLower(filepath.Ext(doc.FileName)); ext != "" && ext != ".txt" {
		h.send(chatID, "❌ Please send your CV as a plain .txt file, or paste the text.")
		return
	}

	file, err := h.bot.GetFile(ctx, doc.FileID)
	var data []byte
	if err == nil {
		data, err = h.bot.DownloadFile(ctx, file.FilePath, maxDocumentBytes)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("file_id", doc.FileID).Msg("downloading CV")
		h.send(chatID, "❌ Could not download the file. Please try again or paste the text.")
		return
	}

	if mtype := mimetype.Detect(data); !mtype.Is("text/plain") {
		h.logger.Info().Str("mime", mtype.String()).Msg("rejected CV upload")
		h.send(chatID, "❌ Please send your CV as a plain .txt file, or paste the text.")
		return
	}
	h.handleReview(ctx, chatID, string(data), state)
}

// navigate switches screen and renders it.
func (h *Handler) navigate(ctx context.Context, chatID int64, state *app.State, kind app.ScreenKind) {
	screen, err := state.Navigate(ctx, kind)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	h.render(chatID, state, screen)
}

func (h *Handler) render(chatID int64, state *app.State, screen app.Screen) {
	catalog := h.deps.Catalog
	lang := state.Profile().Language

	switch s := screen.(type) {
	case app.Onboarding:
		h.send(chatID, catalog.Label(lang, "welcome")+"\n\nUse /start to log in.")
	case app.ProfileSetup:
		h.send(chatID, renderProfileSetup(s))
	case app.Dashboard:
		h.send(chatID, renderDashboard(catalog, lang, s.Name))
	case app.QuestionBank:
		h.sendLong(chatID, renderQuestionBank(catalog, lang, s))
	case app.MockInterview:
		h.send(chatID, renderDrill(catalog, lang, s.Drill))
	case app.PracticeExam:
		h.send(chatID, renderExam(catalog, lang, s.Exam.View()))
	case app.Tips:
		h.sendLong(chatID, renderTips(catalog, lang, s.Tips))
	case app.Progress:
		h.send(chatID, renderProgress(catalog, lang, s.Points))
	case app.CVReview:
		if s.Feedback != "" {
			h.sendLong(chatID, s.Feedback)
			return
		}
		h.send(chatID, "📄 "+catalog.Label(lang, "cvReview")+"\n\nPaste your CV text or send it as a .txt file.")
	case app.Settings:
		h.send(chatID, renderSettings(catalog, s))
	case app.Interview:
		h.send(chatID, renderSessionStatus(s.Session.Snapshot()))
	case app.Chat:
		h.sendLong(chatID, renderChat(s.Coach.Transcript()))
	}
}

// reportSession sends the turns added since `from` plus any failure.
func (h *Handler) reportSession(chatID int64, snap session.Session, from int, err error) {
	switch {
	case errors.Is(err, evaluation.ErrServiceUnavailable):
		h.send(chatID, disabledMessage)
		return
	case errors.Is(err, session.ErrEmptyAnswer):
		h.send(chatID, "Please type an answer.")
		return
	case err != nil:
		h.logger.Warn().Err(err).Msg("interview operation rejected")
		h.send(chatID, renderSessionStatus(snap))
		return
	}

	for _, text := range renderTurns(snap.Log.Since(from)) {
		h.sendLong(chatID, text)
	}
	if snap.Status == session.StatusError {
		h.send(chatID, renderSessionStatus(snap))
	}
}

const disabledMessage = "⚠️ The AI coach is disabled because no API key is configured. " +
	"The question bank, exam, tips and voice practice still work."

func (h *Handler) aiAvailable() bool {
	return h.deps.Evaluator != nil && h.deps.Evaluator.Available()
}

func (h *Handler) chatAvailable() bool {
	return h.deps.Coach != nil && h.deps.Coach.Available()
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.bot.SendMessage(chatID, text); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("sending message")
	}
}

// sendLong splits text over several messages when needed.
func (h *Handler) sendLong(chatID int64, text string) {
	chunks := splitMessage(text)
	for i, chunk := range chunks {
		if len(chunks) > 1 {
			chunk = fmt.Sprintf("(%d/%d)\n%s", i+1, len(chunks), chunk)
		}
		h.send(chatID, chunk)
	}
}

func (h *Handler) getOrCreateState(userID int64) *app.State {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()

	entry, exists := h.sessions[userID]
	if !exists {
		entry = h.newEntry(userID)
		h.sessions[userID] = entry
		h.deps.Metrics.SetActiveUsers(len(h.sessions))
	}
	entry.lastActivity = time.Now()
	return entry.state
}

func (h *Handler) newEntry(userID int64) *userEntry {
	mic := newVoiceMic()
	deps := h.deps
	deps.NewDevice = func() recorder.Device { return mic }
	return &userEntry{
		state:        app.New(strconv.FormatInt(userID, 10), deps),
		lastActivity: time.Now(),
	}
}

func splitCommand(text string) (string, string) {
	command, args, _ := strings.Cut(text, " ")
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	return strings.ToLower(command), strings.TrimSpace(args)
}

// parseProfile reads "Name | Category | Level [| Language]" over base.
func parseProfile(args string, base profile.UserProfile) (profile.UserProfile, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 3 || len(parts) > 4 {
		return base, fmt.Errorf("expected 3 or 4 fields separated by |")
	}

	p := base
	p.Name = strings.TrimSpace(parts[0])

	category, err := profile.ParseCategory(parts[1])
	if err != nil {
		return base, err
	}
	p.JobCategory = category

	level, err := profile.ParseLevel(parts[2])
	if err != nil {
		return base, err
	}
	p.ExperienceLevel = level

	if len(parts) == 4 {
		lang, err := language.Parse(parts[3])
		if err != nil {
			return base, err
		}
		p.Language = lang
	}
	return p, nil
}

func validateUserInput(text string) error {
	if len(text) > maxAnswerLength {
		return fmt.Errorf("message is too long (maximum %d characters)", maxAnswerLength)
	}

	if len(text) > 10 && strings.Count(text, text[:1]) > len(text)*8/10 {
		return fmt.Errorf("message contains too many repeated characters")
	}

	return nil
}
