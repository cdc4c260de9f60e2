package evaluation

import (
	"fmt"
	"strings"

	"interview-coach/internal/language"
	"interview-coach/internal/profile"
)

const coachPersona = "You are an experienced, friendly interview coach running a mock job interview. " +
	"Keep every reply short, encouraging and actionable."

// buildOpeningPrompt asks for the first interview question only.
func buildOpeningPrompt(lang language.Code, p profile.UserProfile) Prompt {
	var user strings.Builder

	user.WriteString("Start a mock interview.\n\n")
	writeCandidate(&user, p)
	user.WriteString(fmt.Sprintf("Ask the first interview question in %s.\n", lang.Name()))
	user.WriteString("Reply with the text of the question only, without greetings, numbering or comments.")

	return Prompt{System: coachPersona, User: user.String()}
}

// buildEvaluationPrompt asks for feedback on one answer plus a follow-up question.
func buildEvaluationPrompt(question, answer string, lang language.Code, p profile.UserProfile) Prompt {
	var user strings.Builder

	writeCandidate(&user, p)
	user.WriteString("QUESTION:\n")
	user.WriteString(question)
	user.WriteString("\n\nCANDIDATE ANSWER:\n")
	user.WriteString(answer)
	user.WriteString("\n\nTASK:\n")
	user.WriteString("- Give brief, constructive feedback on the answer (what worked, what to improve).\n")
	user.WriteString("- Then ask the next interview question, building on the answer where it makes sense.\n")
	user.WriteString(fmt.Sprintf("- Write both the feedback and the question in %s.\n\n", lang.Name()))
	user.WriteString(`Respond with a JSON object with exactly two string fields: {"feedback": "...", "nextQuestion": "..."}`)

	return Prompt{System: coachPersona, User: user.String(), JSON: true}
}

// buildReviewPrompt asks for markdown feedback on a CV.
func buildReviewPrompt(cvText string, p profile.UserProfile) Prompt {
	var user strings.Builder

	user.WriteString("Review the following CV for a candidate with these details:\n")
	user.WriteString(fmt.Sprintf("- Job Category: %s\n", p.JobCategory))
	user.WriteString(fmt.Sprintf("- Experience Level: %s\n\n", p.ExperienceLevel))
	user.WriteString("CV Text:\n---\n")
	user.WriteString(cvText)
	user.WriteString("\n---\n\n")
	user.WriteString("Provide constructive feedback in markdown format. Focus on:\n")
	user.WriteString("1. Clarity and conciseness\n")
	user.WriteString("2. Impact of achievement statements (suggest improvements using action verbs)\n")
	user.WriteString("3. Relevance to the candidate's job category\n")
	user.WriteString("4. Formatting and overall presentation\n\n")
	user.WriteString(fmt.Sprintf("Write the feedback in %s. Keep it professional, encouraging and actionable.", p.Language.Name()))

	return Prompt{System: "You are an expert career coach.", User: user.String()}
}

func writeCandidate(b *strings.Builder, p profile.UserProfile) {
	b.WriteString("CANDIDATE:\n")
	if p.JobCategory != "" {
		b.WriteString(fmt.Sprintf("- Job category: %s\n", p.JobCategory))
	}
	if p.ExperienceLevel != "" {
		b.WriteString(fmt.Sprintf("- Experience level: %s\n", p.ExperienceLevel))
	}
	b.WriteString("\n")
}

const chatPersona = "You are Mackson, a friendly and professional AI career coach. " +
	"Your goal is to help users prepare for their job interviews by answering their questions, " +
	"providing tips, and conducting mini role-plays. Keep your responses concise, encouraging, and actionable."

// buildChatPrompt carries the coach chat history and the new message.
func buildChatPrompt(history []Message, message string, p profile.UserProfile) Prompt {
	var system strings.Builder

	system.WriteString(chatPersona)
	system.WriteString("\n\n")
	writeCandidate(&system, p)
	system.WriteString(fmt.Sprintf("Reply in %s.", p.Language.Name()))

	return Prompt{
		System:  system.String(),
		History: append([]Message(nil), history...),
		User:    message,
	}
}
