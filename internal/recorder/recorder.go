// Package recorder tracks the answer-recording lifecycle over an opaque capture device.
// It never looks at the recorded audio.
package recorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"interview-coach/internal/metrics"
)

var (
	// ErrPermissionDenied is returned by a Device when the user refused access.
	ErrPermissionDenied = errors.New("recording permission denied")
	ErrNoDevice         = errors.New("no recording device")
	ErrBusy             = errors.New("recorder is not ready for this action")
)

type Status string

const (
	Idle            Status = "idle"
	Recording       Status = "recording"
	Stopped         Status = "stopped"
	PermissionError Status = "permission_error"
	Failed          Status = "failed"
)

// Clip is a finished recording. Handle is whatever the device uses to play it back.
type Clip struct {
	Handle   string
	Duration time.Duration
	MIMEType string
}

type Capture interface {
	Stop() (Clip, error)
}

type Device interface {
	Open(ctx context.Context) (Capture, error)
}

type Recorder struct {
	device  Device
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu      sync.Mutex
	status  Status
	capture Capture
	clip    Clip
	err     error
}

func New(device Device, m *metrics.Metrics, logger zerolog.Logger) *Recorder {
	return &Recorder{
		device:  device,
		metrics: m,
		logger:  logger.With().Str("component", "recorder").Logger(),
		status:  Idle,
	}
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Start opens the device. It is allowed from Idle and from either error status.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case Idle, PermissionError, Failed:
	default:
		return ErrBusy
	}
	if r.device == nil {
		r.setFailure(ErrNoDevice)
		return ErrNoDevice
	}

	capture, err := r.device.Open(ctx)
	if err != nil {
		r.setFailure(err)
		return err
	}
	r.capture = capture
	r.err = nil
	r.status = Recording
	r.metrics.IncrementRecordings(string(Recording))
	return nil
}

// Stop finishes the recording and keeps the clip for playback.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != Recording {
		return ErrBusy
	}
	clip, err := r.capture.Stop()
	r.capture = nil
	if err != nil {
		r.setFailure(err)
		return err
	}
	r.clip = clip
	r.status = Stopped
	r.metrics.IncrementRecordings(string(Stopped))
	return nil
}

// Reset discards any clip or error and returns to Idle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capture != nil {
		if _, err := r.capture.Stop(); err != nil {
			r.logger.Debug().Err(err).Msg("discarding capture")
		}
		r.capture = nil
	}
	r.clip = Clip{}
	r.err = nil
	r.status = Idle
}

// Playback returns the clip once the recorder is Stopped.
func (r *Recorder) Playback() (Clip, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != Stopped {
		return Clip{}, false
	}
	return r.clip, true
}

// Err returns the failure behind PermissionError or Failed.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Remediation explains how to recover from the current error status.
func (r *Recorder) Remediation() string {
	switch r.Status() {
	case PermissionError:
		return "The coach needs access to your microphone to record answers.\n" +
			"How to fix it:\n" +
			"- Open Telegram settings and allow microphone access for the app.\n" +
			"- Hold the microphone button and send your answer as a voice message.\n" +
			"- Then use /mock to try again."
	case Failed:
		return "Recording failed. Send your answer as a voice message, or use /mock to start over."
	default:
		return ""
	}
}

func (r *Recorder) setFailure(err error) {
	r.err = err
	r.capture = nil
	if errors.Is(err, ErrPermissionDenied) {
		r.status = PermissionError
	} else {
		r.status = Failed
	}
	r.metrics.IncrementRecordings(string(r.status))
	r.logger.Warn().Err(err).Str("status", string(r.status)).Msg("recording failed")
}
