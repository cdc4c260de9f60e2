// Package conversation holds the ordered transcript of an interview session.
package conversation

import "strings"

// Speaker identifies who produced a turn.
type Speaker string

const (
	Interviewer Speaker = "interviewer"
	Candidate   Speaker = "candidate"
)

// Kind tells the presentation how to render a turn.
type Kind string

const (
	KindGreeting Kind = "greeting"
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
	KindFeedback Kind = "feedback"
)

// Turn is one utterance in the conversation.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Kind    Kind    `json:"kind"`
	Text    string  `json:"text"`
}

// Log is an append-only sequence of turns. The zero value is an empty log.
//
// Append never mutates the receiver's backing array in place: it returns a new Log
// so that copies held by callers keep seeing the turns they were given.
type Log struct {
	turns []Turn
}

// New creates a log seeded with the given turns.
func New(turns ...Turn) Log {
	return Log{turns: append([]Turn(nil), turns...)}
}

// Append returns a log with the turns added at the end.
func (l Log) Append(turns ...Turn) Log {
	next := make([]Turn, 0, len(l.turns)+len(turns))
	next = append(next, l.turns...)
	next = append(next, turns...)
	return Log{turns: next}
}

// Len returns the number of turns.
func (l Log) Len() int {
	return len(l.turns)
}

// Turns returns a copy of the turns in chronological order.
func (l Log) Turns() []Turn {
	return append([]Turn(nil), l.turns...)
}

// Since returns the turns appended after the first n.
func (l Log) Since(n int) []Turn {
	if n < 0 {
		n = 0
	}
	if n >= len(l.turns) {
		return nil
	}
	return append([]Turn(nil), l.turns[n:]...)
}

// Texts returns only the text of every turn, mostly useful in tests and summaries.
func (l Log) Texts() []string {
	out := make([]string, len(l.turns))
	for i, t := range l.turns {
		out[i] = t.Text
	}
	return out
}

// Transcript renders the log as plain text, one turn per paragraph.
func (l Log) Transcript() string {
	var b strings.Builder
	for i, t := range l.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch t.Speaker {
		case Candidate:
			b.WriteString("You: ")
		default:
			b.WriteString("Coach: ")
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// Greeting builds the interviewer's opening turn.
func Greeting(text string) Turn {
	return Turn{Speaker: Interviewer, Kind: KindGreeting, Text: text}
}

// Question builds an interviewer question turn.
func Question(text string) Turn {
	return Turn{Speaker: Interviewer, Kind: KindQuestion, Text: text}
}

// Feedback builds an interviewer feedback turn.
func Feedback(text string) Turn {
	return Turn{Speaker: Interviewer, Kind: KindFeedback, Text: text}
}

// Answer builds a candidate answer turn.
func Answer(text string) Turn {
	return Turn{Speaker: Candidate, Kind: KindAnswer, Text: text}
}
