// Package kiosk runs the interactive attendance station: it polls the
// recognition sidecar for frame observations, keeps per-session liveness
// state, and marks attendance when the operator triggers a punch.
package kiosk

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/identity"
	"github.com/kozaktomas/punchclock/internal/ledger"
	"github.com/kozaktomas/punchclock/internal/liveness"
	"github.com/kozaktomas/punchclock/internal/recognizer"
)

// frameInterval is how often the sidecar is polled for a new observation.
const frameInterval = 200 * time.Millisecond

// FrameSource delivers per-frame observations. Satisfied by the recognizer
// HTTP client; tests substitute canned frames.
type FrameSource interface {
	Observe(ctx context.Context) (*recognizer.Observation, error)
}

// Marker records a punch attempt. Satisfied by the attendance ledger.
type Marker interface {
	Mark(name string, alive bool, now time.Time) (ledger.Status, error)
}

// Outcome describes what a trigger attempt did.
type Outcome struct {
	// Display is the name or sentinel shown to the operator.
	Display string
	// Attempted reports whether a ledger mark was performed.
	Attempted bool
	// Status is the ledger decision when Attempted is true.
	Status ledger.Status
	// Reason explains a skipped attempt.
	Reason string
}

// Session is one kiosk run. Each session owns its liveness tracker; nothing
// is shared between concurrent sessions.
type Session struct {
	id       uuid.UUID
	cfg      *config.Config
	source   FrameSource
	matcher  *identity.Matcher
	tracker  *liveness.Tracker
	marker   Marker
	enrolled []identity.Enrolled
	log      *slog.Logger

	mu      sync.Mutex
	last    identity.Result
	verdict liveness.Verdict
}

// NewSession builds a session over a fixed enrollment snapshot. Enrollment
// changes require a new session.
func NewSession(cfg *config.Config, source FrameSource, marker Marker, enrolled []identity.Enrolled, log *slog.Logger) *Session {
	id := uuid.New()
	return &Session{
		id:       id,
		cfg:      cfg,
		source:   source,
		matcher:  identity.NewMatcher(cfg.Recognition),
		tracker:  liveness.NewTracker(cfg.Liveness),
		marker:   marker,
		enrolled: enrolled,
		log:      log.With("session_id", id.String()),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// ProcessFrame pulls one observation from the source and folds it into the
// session state. Losing the face (or seeing more than one) resets the
// liveness window; it must be re-established on a single tracked face.
func (s *Session) ProcessFrame(ctx context.Context) error {
	obs, err := s.source.Observe(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var verdict liveness.Verdict
	if obs.Faces == 1 {
		verdict = s.tracker.Update(&obs.Patch)
	} else {
		verdict = s.tracker.Update(nil)
	}

	result := s.matcher.Match(obs.Faces, obs.Embedding, s.enrolled)
	s.last = result
	s.verdict = verdict

	brightness := liveness.Brightness(&obs.Patch)
	s.log.Debug("frame processed",
		"faces", obs.Faces,
		"match", result.DisplayName(),
		"distance", result.Distance,
		"alive", verdict.Alive,
		"motion", verdict.AverageMotion,
		"presence", s.tracker.PresenceFrames(),
		"brightness", liveness.BrightnessStatus(brightness, s.cfg.Brightness),
	)
	return nil
}

// Trigger attempts to mark attendance based on the current session state.
func (s *Session) Trigger(now time.Time) (Outcome, error) {
	s.mu.Lock()
	last := s.last
	verdict := s.verdict
	presence := s.tracker.PresenceFrames()
	s.mu.Unlock()

	switch {
	case last.Kind == identity.MultipleFaces:
		return Outcome{Display: last.DisplayName(), Reason: "multiple faces in view"}, nil
	case last.Kind == identity.NoFace:
		return Outcome{Reason: "no face detected"}, nil
	case presence < s.cfg.Liveness.MinFacePresence:
		return Outcome{Display: last.DisplayName(), Reason: "face not held in position long enough"}, nil
	case last.Kind == identity.Unknown:
		return Outcome{Display: last.DisplayName(), Reason: "face not recognized"}, nil
	}

	status, err := s.marker.Mark(last.Name, verdict.Alive, now)
	outcome := Outcome{Display: last.Name, Attempted: true, Status: status}
	if err != nil {
		return outcome, err
	}

	s.log.Info("attendance marked",
		"name", last.Name,
		"status", string(status),
		"confidence", last.Confidence,
		"alive", verdict.Alive,
	)
	return outcome, nil
}

// Reset discards the liveness window and the last match, forcing the next
// punch attempt to re-establish both.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset()
	s.last = identity.Result{}
	s.verdict = liveness.Verdict{}
	s.log.Info("session reset")
}

// Run drives the session until the context is cancelled or the command
// stream ends. Commands are single-letter lines: "a" marks attendance,
// "r" resets the liveness window, "q" quits.
func (s *Session) Run(ctx context.Context, commands io.Reader) error {
	s.log.Info("kiosk session started",
		"enrolled", len(s.enrolled),
		"min_presence", s.cfg.Liveness.MinFacePresence,
	)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(commands)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch line {
			case "a":
				outcome, err := s.Trigger(time.Now())
				if err != nil {
					s.log.Error("mark failed", "error", err, "status", string(outcome.Status))
					continue
				}
				if !outcome.Attempted {
					s.log.Warn("punch skipped", "reason", outcome.Reason, "match", outcome.Display)
				}
			case "r":
				s.Reset()
			case "q":
				s.log.Info("kiosk session ended")
				return nil
			}

		case <-ticker.C:
			if err := s.ProcessFrame(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("frame poll failed", "error", err)
			}
		}
	}
}
