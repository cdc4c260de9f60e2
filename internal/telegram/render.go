package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"interview-coach/internal/app"
	"interview-coach/internal/config"
	"interview-coach/internal/conversation"
	"interview-coach/internal/evaluation"
	"interview-coach/internal/exam"
	"interview-coach/internal/language"
	"interview-coach/internal/practice"
	"interview-coach/internal/profile"
	"interview-coach/internal/recorder"
	"interview-coach/internal/session"
)

const maxChunkSize = 3500

func renderTurn(t conversation.Turn) string {
	switch t.Kind {
	case conversation.KindGreeting:
		return "👋 " + t.Text
	case conversation.KindQuestion:
		return "❓ " + t.Text
	case conversation.KindFeedback:
		return "💬 " + t.Text
	default:
		return "🗣 " + t.Text
	}
}

// renderTurns skips the candidate's own answers, which are already in the chat.
func renderTurns(turns []conversation.Turn) []string {
	var out []string
	for _, t := range turns {
		if t.Speaker == conversation.Candidate {
			continue
		}
		out = append(out, renderTurn(t))
	}
	return out
}

func renderSessionStatus(s session.Session) string {
	switch s.Status {
	case session.StatusIdle:
		return "No interview running. Use /interview to start one."
	case session.StatusAwaitingAnswer:
		return fmt.Sprintf("🎤 Waiting for your answer to:\n%s", s.LastQuestion)
	case session.StatusEvaluating:
		return "⏳ The coach is thinking..."
	case session.StatusError:
		return "⚠️ " + s.Failure
	default:
		return string(s.Status)
	}
}

func renderDashboard(catalog *config.Catalog, lang language.Code, name string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏠 %s\n", catalog.Label(lang, "dashboard")))
	b.WriteString(fmt.Sprintf("Hi, %s! %s\n\n", name, catalog.Label(lang, "welcome")))
	b.WriteString(fmt.Sprintf("/questions : %s\n", catalog.Label(lang, "questionBank")))
	b.WriteString(fmt.Sprintf("/mock : %s\n", catalog.Label(lang, "mockInterview")))
	b.WriteString(fmt.Sprintf("/exam : %s\n", catalog.Label(lang, "practiceExam")))
	b.WriteString(fmt.Sprintf("/interview : %s\n", catalog.Label(lang, "startInterview")))
	b.WriteString(fmt.Sprintf("/tips : %s\n", catalog.Label(lang, "tipsGuidance")))
	b.WriteString(fmt.Sprintf("/progress : %s\n", catalog.Label(lang, "progressTracker")))
	b.WriteString(fmt.Sprintf("/cv : %s\n", catalog.Label(lang, "cvReview")))
	b.WriteString(fmt.Sprintf("/settings : %s", catalog.Label(lang, "settings")))
	return b.String()
}

func renderQuestionBank(catalog *config.Catalog, lang language.Code, screen app.QuestionBank) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 %s (%s)\n", catalog.Label(lang, "questionBank"), screen.Category))
	for i, q := range screen.Questions {
		b.WriteString(fmt.Sprintf("\n%d. %s\n💡 %s\n", i+1, q.Question, q.Answer))
	}
	return b.String()
}

func renderTips(catalog *config.Catalog, lang language.Code, tips []config.Tip) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✨ %s\n", catalog.Label(lang, "tipsGuidance")))
	for _, tip := range tips {
		b.WriteString(fmt.Sprintf("\n• %s\n%s\n", tip.Title, tip.Content))
	}
	return b.String()
}

func renderProgress(catalog *config.Catalog, lang language.Code, points []config.ProgressPoint) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 %s\n\n", catalog.Label(lang, "progressTracker")))
	for _, p := range points {
		b.WriteString(fmt.Sprintf("%s\n  practiced %-3d %s\n  score     %-3.1f %s\n",
			p.Name, p.Practiced, strings.Repeat("▇", p.Practiced),
			p.Score, strings.Repeat("▇", int(p.Score))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderExam(catalog *config.Catalog, lang language.Code, v exam.View) string {
	switch v.Phase {
	case exam.NotStarted:
		return "📝 Ready for your Practice Exam?\nTest your knowledge with multiple-choice questions and get your score instantly.\n\n/exam : " +
			catalog.Label(lang, "startExam")
	case exam.Finished:
		return fmt.Sprintf("🏁 Exam Completed!\n%s: %d / %d\n\n/restart : %s",
			catalog.Label(lang, "yourScore"), v.Score, v.Total, catalog.Label(lang, "tryAgain"))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Question %d/%d    Score: %d\n\n%s\n", v.Index+1, v.Total, v.Score, v.Question.Question))
	for i, option := range v.Question.Options {
		marker := "  "
		if v.ShowFeedback {
			switch {
			case i == v.Question.CorrectAnswerIndex:
				marker = "✅"
			case v.HasSelection && i == v.Selected:
				marker = "❌"
			}
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", marker, i+1, option))
	}

	if !v.ShowFeedback {
		b.WriteString("\nReply with the number of your answer.")
		return b.String()
	}

	verdict := catalog.Label(lang, "incorrect")
	if v.Correct {
		verdict = catalog.Label(lang, "correct")
	}
	next := catalog.Label(lang, "nextQuestion")
	if v.Index == v.Total-1 {
		next = catalog.Label(lang, "finishExam")
	}
	b.WriteString(fmt.Sprintf("\n%s!\n/next : %s", verdict, next))
	return b.String()
}

func renderDrill(catalog *config.Catalog, lang language.Code, d *practice.Drill) string {
	q, position, total, ok := d.Current()
	if !ok {
		return "🎙 Ready for your Mock Interview?\nI will ask you questions. Record your answers as voice messages to practice.\n\n/mock : " +
			catalog.Label(lang, "startInterview")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Question %d/%d\n\n%s\n\n", position, total, q.Question))

	rec := d.Recorder()
	switch rec.Status() {
	case recorder.Idle:
		b.WriteString("🎙 " + catalog.Label(lang, "startRecording") + ": send your answer as a voice message.")
	case recorder.Recording:
		b.WriteString("🔴 Recording...")
	case recorder.Stopped:
		b.WriteString(fmt.Sprintf("✅ %s recorded.\n/replay : listen\n/next : %s",
			catalog.Label(lang, "yourAnswer"), catalog.Label(lang, "nextQuestion")))
	case recorder.PermissionError, recorder.Failed:
		b.WriteString("⚠️ Microphone Access Problem\n" + rec.Remediation())
	}
	return b.String()
}

func renderSettings(catalog *config.Catalog, screen app.Settings) string {
	return fmt.Sprintf("⚙️ %s\n\nLanguage: %s\nTheme: %s\n\n/lang en|fr|rw : change language\n/theme : toggle light/dark\n/profile Name | Category | Level : edit profile\n/logout : sign out",
		catalog.Label(screen.Language, "settings"), screen.Language.Name(), screen.Theme)
}

func renderProfileSetup(screen app.ProfileSetup) string {
	var categories []string
	for _, c := range profile.Categories() {
		categories = append(categories, string(c))
	}
	var levels []string
	for _, l := range profile.Levels() {
		levels = append(levels, string(l))
	}
	return fmt.Sprintf("👤 Create Profile\n\nCurrent: %s, %s, %s, %s\n\nSend:\n/profile Name | Category | Level\n\nCategories: %s\nLevels: %s\n\nOr use /menu to keep the defaults.",
		screen.Draft.Name, screen.Draft.JobCategory, screen.Draft.ExperienceLevel, screen.Draft.Language.Name(),
		strings.Join(categories, ", "), strings.Join(levels, ", "))
}

func renderChat(transcript []evaluation.Message) string {
	var b strings.Builder
	b.WriteString("💬 Chat with Mackson\n")
	for _, m := range transcript {
		if m.Role == evaluation.RoleUser {
			b.WriteString("\n🗣 " + m.Text + "\n")
			continue
		}
		b.WriteString("\n🤖 " + m.Text + "\n")
	}
	b.WriteString("\nType your message. /menu leaves the chat.")
	return b.String()
}

// splitMessage cuts text into chunks Telegram accepts, preferring line breaks.
func splitMessage(text string) []string {
	var chunks []string
	for len(text) > maxChunkSize {
		cut := strings.LastIndex(text[:maxChunkSize], "\n")
		if cut <= 0 {
			cut = maxChunkSize
			for cut > 1 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

