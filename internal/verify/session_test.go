package verify

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpoint/proofpoint/pkg/protocol"
)

type fakeVerifier struct {
	mu      sync.Mutex
	calls   int
	results map[string]*protocol.VerificationResult
	err     error
	gate    chan struct{} // when set, ProcessDocument blocks until it is closed
	started chan struct{}
	gotBody string
}

func (f *fakeVerifier) ProcessDocument(ctx context.Context, name, contentType string, r io.Reader) (*protocol.VerificationResult, error) {
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	f.calls++
	f.gotBody = string(data)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[name], nil
}

func result(hash, status string, details map[string]any) *protocol.VerificationResult {
	return &protocol.VerificationResult{FileHash: hash, Status: status, ExtractedDetails: details}
}

func pdf(name string, size int64) *FileHandle {
	return NewFileHandle(name, size, "application/pdf", func() (io.ReadCloser, error) {
		return io.NopCloser(io.LimitReader(zeroReader{}, 16)), nil
	})
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestSelectFileRejectsOversizedKeepingPrevious(t *testing.T) {
	s := NewSession()
	prev := pdf("small.pdf", 1024)
	require.NoError(t, s.SelectFile(prev))

	err := s.SelectFile(pdf("huge.pdf", 15*1024*1024))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonSize, ve.Reason)
	assert.Same(t, prev, s.Selected())
}

func TestSelectFileRejectsTextPlain(t *testing.T) {
	s := NewSession()
	err := s.SelectFile(BytesFile("notes.txt", "text/plain", []byte("hello")))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonType, ve.Reason)
	assert.Nil(t, s.Selected())
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"pdf at limit", "application/pdf", MaxFileSize, false},
		{"pdf over limit", "application/pdf", MaxFileSize + 1, true},
		{"png", "image/png", 10, false},
		{"jpeg", "image/jpeg", 10, false},
		{"jpg alias", "image/jpg", 10, false},
		{"gif", "image/gif", 10, true},
		{"empty type", "", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(NewFileHandle("f", tt.size, tt.contentType, nil))
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestSubmitWithoutFile(t *testing.T) {
	s := NewSession()
	_, err := s.Submit(context.Background(), &fakeVerifier{})
	assert.ErrorIs(t, err, ErrNoFile)
	assert.False(t, s.Loading())
}

func TestSubmitDeduplicatesByFingerprint(t *testing.T) {
	s := NewSession()
	v := &fakeVerifier{results: map[string]*protocol.VerificationResult{
		"a.pdf": result("h1", "Verified", nil),
	}}
	require.NoError(t, s.SelectFile(pdf("a.pdf", 100)))

	_, err := s.Submit(context.Background(), v)
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, 2, v.calls)
	assert.Equal(t, 1, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "h1", last.FileHash)
	assert.False(t, s.Loading())
}

func TestSubmitPrependsNewResults(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	s := NewSession()
	s.now = func() time.Time { return now }
	v := &fakeVerifier{results: map[string]*protocol.VerificationResult{
		"a.pdf": result("h1", "Verified", nil),
		"b.pdf": result("h2", "Tampered", nil),
	}}

	require.NoError(t, s.SelectFile(pdf("a.pdf", 100)))
	_, err := s.Submit(context.Background(), v)
	require.NoError(t, err)
	require.NoError(t, s.SelectFile(pdf("b.pdf", 100)))
	_, err = s.Submit(context.Background(), v)
	require.NoError(t, err)

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, "h2", h[0].FileHash)
	assert.Equal(t, "h1", h[1].FileHash)
	assert.True(t, h[0].ProcessingTimestamp.Equal(now), "missing timestamp filled in")
}

func TestSubmitErrorClearsLoading(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SelectFile(pdf("a.pdf", 100)))
	boom := errors.New("Verification failed")

	_, err := s.Submit(context.Background(), &fakeVerifier{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Loading())
	assert.Zero(t, s.Len())
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SelectFile(pdf("a.pdf", 100)))
	v := &fakeVerifier{
		results: map[string]*protocol.VerificationResult{"a.pdf": result("h1", "Verified", nil)},
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), v)
		done <- err
	}()
	<-v.started
	assert.True(t, s.Loading())

	_, err := s.Submit(context.Background(), v)
	assert.ErrorIs(t, err, ErrBusy)

	close(v.gate)
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
	assert.Equal(t, 1, v.calls)
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SelectFile(pdf("a.pdf", 100)))
	v := &fakeVerifier{
		results: map[string]*protocol.VerificationResult{"a.pdf": result("h1", "Verified", nil)},
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), v)
		done <- err
	}()
	<-v.started
	s.Reset()
	close(v.gate)

	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Selected())
}

func TestViewAndDelete(t *testing.T) {
	s := NewSession()
	s.Record(result("h1", "Verified", nil))
	s.Record(result("h2", "Tampered", nil))

	r, ok := s.View(1)
	require.True(t, ok)
	assert.Equal(t, "h1", r.FileHash)
	last, _ := s.Last()
	assert.Equal(t, "h1", last.FileHash)

	_, ok = s.View(5)
	assert.False(t, ok)
	_, ok = s.View(-1)
	assert.False(t, ok)

	asked := false
	assert.False(t, s.Delete(7, func() bool { asked = true; return true }))
	assert.False(t, asked, "out of range does not ask")

	assert.False(t, s.Delete(0, func() bool { return false }))
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Delete(0, func() bool { return true }))
	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, "h1", h[0].FileHash)
}

func TestHistoryEntriesAreImmutable(t *testing.T) {
	s := NewSession()
	in := result("h1", "Verified", map[string]any{"name": "Ravi"})
	s.Record(in)
	in.ExtractedDetails["name"] = "changed"

	h := s.History()
	h[0].ExtractedDetails["name"] = "changed again"
	assert.Equal(t, "Ravi", s.History()[0].ExtractedDetails["name"])
}

func TestClearSelectionKeepsHistory(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SelectFile(pdf("a.pdf", 1)))
	s.Record(result("h1", "Verified", nil))
	s.ClearSelection()
	assert.Nil(t, s.Selected())
	assert.Equal(t, 1, s.Len())
}

func TestOpenFileDetectsType(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "cert.bin")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"), 0644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain words"), 0644))

	f, err := OpenFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, "cert.bin", f.Name)
	assert.NoError(t, Validate(f))

	rc, err := f.Open()
	require.NoError(t, err)
	rc.Close()

	f, err = OpenFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", f.ContentType)
	assert.Error(t, Validate(f))

	_, err = OpenFile(dir)
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "10 MiB", FormatSize(MaxFileSize))
}
