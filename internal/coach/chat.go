// Package coach runs the free-form chat with the AI career coach.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"interview-coach/internal/evaluation"
	"interview-coach/internal/profile"
)

// TroubleReply is shown in the chat when the coach could not be reached.
const TroubleReply = "Sorry, I'm having trouble connecting right now. Please try again later."

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("the coach is still answering")
	ErrClosed       = errors.New("chat is closed")
)

// Replier produces the coach's next reply.
type Replier interface {
	Available() bool
	Chat(ctx context.Context, history []evaluation.Message, message string, p profile.UserProfile) (string, error)
}

// Chat keeps two histories: what the user sees, and the exchanges sent to the
// model. Failed exchanges only reach the first one.
type Chat struct {
	replier Replier
	profile func() profile.UserProfile
	logger  zerolog.Logger

	mu         sync.Mutex
	transcript []evaluation.Message
	exchanges  []evaluation.Message
	busy       bool
	closed     bool
}

// New starts a chat greeted by name.
func New(replier Replier, profileFn func() profile.UserProfile, logger zerolog.Logger) *Chat {
	name := profileFn().Name
	greeting := fmt.Sprintf("Hello %s! I'm Mackson, your AI career coach. How can I help you prepare for your interview today?", name)
	return &Chat{
		replier:    replier,
		profile:    profileFn,
		logger:     logger.With().Str("component", "coach").Logger(),
		transcript: []evaluation.Message{{Role: evaluation.RoleModel, Text: greeting}},
	}
}

func (c *Chat) Available() bool {
	return c.replier != nil && c.replier.Available()
}

// Send posts a message and returns the coach's reply. A failed call is not an
// error: the reply is TroubleReply and the user may send again.
func (c *Chat) Send(ctx context.Context, text string) (string, error) {
	if !c.Available() {
		return "", evaluation.ErrServiceUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return "", ErrClosed
	case c.busy:
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.busy = true
	c.transcript = append(c.transcript, evaluation.Message{Role: evaluation.RoleUser, Text: text})
	history := append([]evaluation.Message(nil), c.exchanges...)
	c.mu.Unlock()

	reply, err := c.replier.Chat(ctx, history, text, c.profile())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.closed {
		return "", ErrClosed
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("coach reply failed")
		reply = TroubleReply
	} else {
		c.exchanges = append(c.exchanges,
			evaluation.Message{Role: evaluation.RoleUser, Text: text},
			evaluation.Message{Role: evaluation.RoleModel, Text: reply})
	}
	c.transcript = append(c.transcript, evaluation.Message{Role: evaluation.RoleModel, Text: reply})
	return reply, nil
}

// Transcript returns every message shown to the user, greeting first.
func (c *Chat) Transcript() []evaluation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]evaluation.Message(nil), c.transcript...)
}

// Close drops replies that arrive afterwards.
func (c *Chat) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
