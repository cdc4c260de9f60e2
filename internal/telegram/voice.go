package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"interview-coach/internal/recorder"
)

var errNoVoiceNote = errors.New("no voice note received")

// voiceMic backs a user's recorder with Telegram voice notes. Telegram does the
// actual recording on the client; a received note completes the capture.
type voiceMic struct {
	mu      sync.Mutex
	pending *recorder.Clip
}

func newVoiceMic() *voiceMic {
	return &voiceMic{}
}

func (m *voiceMic) Open(ctx context.Context) (recorder.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return m, nil
}

// Deliver hands a received voice note to the open capture.
func (m *voiceMic) Deliver(v *Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &recorder.Clip{
		Handle:   v.FileID,
		Duration: time.Duration(v.Duration) * time.Second,
		MIMEType: v.MimeType,
	}
}

func (m *voiceMic) Stop() (recorder.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return recorder.Clip{}, errNoVoiceNote
	}
	clip := *m.pending
	m.pending = nil
	return clip, nil
}
