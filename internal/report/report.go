// Package report stores generated verification reports.
package report

import (
	"context"
	"fmt"
	"regexp"

	"github.com/proofpoint/proofpoint/internal/report/local"
	s3sink "github.com/proofpoint/proofpoint/internal/report/s3"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Sink writes a report and returns where it went.
type Sink interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Type() string
}

// Config selects and configures a sink.
type Config struct {
	Type  string // "local" or "s3"
	Local local.Config
	S3    s3sink.Config
}

// NewSink creates the sink named by cfg.Type.
func NewSink(ctx context.Context, cfg Config) (Sink, error) {
	switch cfg.Type {
	case "", "local":
		return local.New(cfg.Local)
	case "s3":
		return s3sink.New(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown report sink: %s", cfg.Type)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the download name for a report on r:
// ProofPoint_Report_<document number, roll number or "details">.pdf.
func FileName(r *protocol.VerificationResult) string {
	id := r.Detail("document_number", "roll_no")
	if id == "" {
		id = "details"
	}
	return "ProofPoint_Report_" + unsafeChars.ReplaceAllString(id, "_") + ".pdf"
}
