package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/proofpoint/proofpoint/pkg/metrics"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// FileField is the multipart field the server reads the document from.
const FileField = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ProcessDocument uploads a document for verification. The part carries the
// declared content type rather than a sniffed one.
func (c *Client) ProcessDocument(ctx context.Context, name, contentType string, r io.Reader) (*protocol.VerificationResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("process_document: %w", err)
	}
	n, err := io.Copy(part, r)
	if err != nil {
		return nil, fmt.Errorf("process_document: read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("process_document: %w", err)
	}

	cl := call{
		op:          "process_document",
		method:      http.MethodPost,
		path:        "/process_document",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		auth:        true,
	}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	metrics.RecordUpload(n)

	var result protocol.VerificationResult
	if err := decodeJSON(cl.op, resp, &result); err != nil {
		return nil, err
	}
	if result.SourceFilename == "" {
		result.SourceFilename = name
	}
	metrics.ObserveTamperScore(int(result.TamperAnalysis.TamperScore))
	return &result, nil
}

// Report is a generated verification report.
type Report struct {
	Data        []byte
	ContentType string
	Filename    string // from Content-Disposition, may be empty
}

// GenerateReport asks the server to render result as a PDF.
func (c *Client) GenerateReport(ctx context.Context, result *protocol.VerificationResult) (*Report, error) {
	cl, err := jsonCall("generate_report", http.MethodPost, "/generate_report", result, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", cl.op, err)
	}

	rep := &Report{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			rep.Filename = params["filename"]
		}
	}
	return rep, nil
}
