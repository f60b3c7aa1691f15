package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/metrics"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

var (
	// ErrNoFile is returned by Submit when no file is selected.
	ErrNoFile = errors.New("no file selected")
	// ErrBusy is returned by Submit while another submission is in flight.
	ErrBusy = errors.New("a verification is already in progress")
	// ErrDiscarded is returned when the session was reset while the
	// submission was in flight; its result is dropped.
	ErrDiscarded = errors.New("session was reset during verification")
)

// Verifier uploads a document and returns the server's verdict.
type Verifier interface {
	ProcessDocument(ctx context.Context, name, contentType string, r io.Reader) (*protocol.VerificationResult, error)
}

// Session is the selected file, the loading flag, the last result and the
// result history (most recent first, one entry per fingerprint). It is safe
// for concurrent use.
type Session struct {
	mu         sync.Mutex
	selected   *FileHandle
	loading    bool
	last       *protocol.VerificationResult
	history    []protocol.VerificationResult
	generation uint64

	now func() time.Time
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// SelectFile validates f and makes it the selection. A rejected file leaves
// the previous selection in place.
func (s *Session) SelectFile(f *FileHandle) error {
	if f == nil {
		return ErrNoFile
	}
	if err := Validate(f); err != nil {
		metrics.RecordVerification("rejected")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = f
	return nil
}

// Selected returns the selected file, or nil.
func (s *Session) Selected() *FileHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// ClearSelection drops the selected file and keeps the history.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Loading reports whether a submission is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Submit uploads the selected file through v. On success the result becomes
// the last result and is added to the front of the history unless its
// fingerprint is already there. The loading flag is cleared however Submit
// returns.
func (s *Session) Submit(ctx context.Context, v Verifier) (protocol.VerificationResult, error) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return protocol.VerificationResult{}, ErrNoFile
	}
	if s.loading {
		s.mu.Unlock()
		return protocol.VerificationResult{}, ErrBusy
	}
	s.loading = true
	gen := s.generation
	file := s.selected
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.generation == gen {
			s.loading = false
		}
		s.mu.Unlock()
	}()

	log := logging.WithContext(ctx)
	rc, err := file.Open()
	if err != nil {
		metrics.RecordVerification("error")
		return protocol.VerificationResult{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	start := time.Now()
	res, err := v.ProcessDocument(ctx, file.Name, file.ContentType, rc)
	if err != nil {
		metrics.RecordVerification("error")
		log.Warn("verification failed", logging.String("file", file.Name), logging.Err(err))
		return protocol.VerificationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Info("discarding verification result after reset", logging.String("file", file.Name))
		return protocol.VerificationResult{}, ErrDiscarded
	}

	if res.RetrievedFromCache {
		metrics.RecordVerification("cached")
	} else {
		metrics.RecordVerification("success")
	}
	log.Info("document verified",
		logging.String("file", file.Name),
		logging.String("status", res.Status),
		logging.Int("tamper_score", int(res.TamperAnalysis.TamperScore)),
		logging.Duration("elapsed", time.Since(start)))

	return s.record(res), nil
}

// Record stores res as the last result and adds it to the history if its
// fingerprint is new. A missing timestamp is set to now.
func (s *Session) Record(res *protocol.VerificationResult) protocol.VerificationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(res)
}

func (s *Session) record(res *protocol.VerificationResult) protocol.VerificationResult {
	stored := res.Clone()
	if stored.ProcessingTimestamp.IsZero() {
		stored.ProcessingTimestamp = protocol.Timestamp{Time: s.now()}
	}
	last := stored.Clone()
	s.last = &last

	if !s.contains(stored.Fingerprint()) {
		s.history = append([]protocol.VerificationResult{stored}, s.history...)
	}
	return stored.Clone()
}

func (s *Session) contains(fingerprint string) bool {
	for i := range s.history {
		if s.history[i].Fingerprint() == fingerprint {
			return true
		}
	}
	return false
}

// Last returns the result currently on display.
func (s *Session) Last() (protocol.VerificationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return protocol.VerificationResult{}, false
	}
	return s.last.Clone(), true
}

// History returns a copy of the history, most recent first.
func (s *Session) History() []protocol.VerificationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.VerificationResult, len(s.history))
	for i := range s.history {
		out[i] = s.history[i].Clone()
	}
	return out
}

// Len returns the number of history entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// View makes history[index] the last result. Out of range is a no-op.
func (s *Session) View(index int) (protocol.VerificationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.history) {
		return protocol.VerificationResult{}, false
	}
	last := s.history[index].Clone()
	s.last = &last
	return last.Clone(), true
}

// Delete removes history[index] if confirm agrees. Out of range is a no-op
// and confirm is not asked.
func (s *Session) Delete(index int, confirm func() bool) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.history) {
		s.mu.Unlock()
		return false
	}
	fingerprint := s.history[index].Fingerprint()
	s.mu.Unlock()

	if confirm != nil && !confirm() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The history may have changed while confirm was asking.
	if index >= len(s.history) || s.history[index].Fingerprint() != fingerprint {
		return false
	}
	s.history = append(s.history[:index], s.history[index+1:]...)
	return true
}

// Reset clears the selection, the last result and the history. A submission
// still in flight will have its result discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.selected = nil
	s.loading = false
	s.last = nil
	s.history = nil
}
