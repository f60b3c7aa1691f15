package termui

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpoint/proofpoint/internal/events"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/verify"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score protocol.Score
		want  Band
	}{
		{0, BandLow},
		{30, BandLow},
		{31, BandMedium},
		{70, BandMedium},
		{71, BandHigh},
		{100, BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreBand(tt.score), "score %d", tt.score)
	}
}

func TestPositiveStatus(t *testing.T) {
	assert.True(t, PositiveStatus("Verified"))
	assert.True(t, PositiveStatus("Likely Authentic"))
	assert.False(t, PositiveStatus("Tampered"))
	assert.False(t, PositiveStatus(""))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Fathers Name", TitleCase("fathers_name"))
	assert.Equal(t, "Roll No", TitleCase("roll_no"))
	assert.Equal(t, "Name", TitleCase("name"))
	assert.Equal(t, "", TitleCase(""))
}

func TestDetailRowsSkipsEmpty(t *testing.T) {
	rows := DetailRows(map[string]any{
		"roll_no": "42",
		"name":    "Asha",
		"board":   "",
		"remarks": nil,
		"marks":   float64(91),
	})
	require.Len(t, rows, 3)
	assert.Equal(t, DetailRow{Label: "Marks", Value: "91"}, rows[0])
	assert.Equal(t, DetailRow{Label: "Name", Value: "Asha"}, rows[1])
	assert.Equal(t, DetailRow{Label: "Roll No", Value: "42"}, rows[2])
}

func TestHeadlineAndDocNumber(t *testing.T) {
	r := &protocol.VerificationResult{ExtractedDetails: map[string]any{"document_name": "Marksheet", "roll_no": "7"}}
	assert.Equal(t, "Marksheet", Headline(r))
	assert.Equal(t, "7", DocNumber(r))

	empty := &protocol.VerificationResult{}
	assert.Equal(t, "Unknown Document", Headline(empty))
	assert.Equal(t, "N/A", DocNumber(empty))
}

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "light")
	r.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	return r, &buf
}

func TestRenderResult(t *testing.T) {
	r, buf := newTestRenderer()
	qr := "https://example.org/cert/1"
	r.RenderResult(protocol.VerificationResult{
		Status:              "Verified",
		TamperAnalysis:      protocol.TamperAnalysis{TamperScore: 12, AnalysisSummary: "Clean"},
		ExtractedDetails:    map[string]any{"name": "Asha", "grade": ""},
		ProcessingTimestamp: protocol.Timestamp{Time: time.Date(2026, 1, 2, 11, 0, 0, 0, time.UTC)},
		RetrievedFromCache:  true,
		QRCodeData:          &qr,
	})
	out := buf.String()
	assert.Contains(t, out, "Verified")
	assert.Contains(t, out, "retrieved from cache")
	assert.Contains(t, out, "12 / 100")
	assert.Contains(t, out, "Clean")
	assert.Contains(t, out, qr)
	assert.Contains(t, out, "Asha")
	assert.Contains(t, out, "1 hour ago")
	assert.NotContains(t, out, "Grade")
}

func TestRenderResultFallbacks(t *testing.T) {
	r, buf := newTestRenderer()
	r.RenderResult(protocol.VerificationResult{})
	out := buf.String()
	assert.Contains(t, out, "Unknown")
	assert.Contains(t, out, "No analysis available")
	assert.Contains(t, out, "No structured details could be extracted from this document.")
}

func TestRenderHistory(t *testing.T) {
	r, buf := newTestRenderer()
	r.RenderHistory(nil)
	assert.Contains(t, buf.String(), "No verification history found.")

	buf.Reset()
	r.RenderHistory([]verify.Entry{
		{Index: 2, Result: protocol.VerificationResult{
			Status:           "Tampered",
			ExtractedDetails: map[string]any{"name": "Ravi", "document_number": "D-9"},
			TamperAnalysis:   protocol.TamperAnalysis{TamperScore: 88},
		}},
	})
	out := buf.String()
	assert.Contains(t, out, "[2] Ravi")
	assert.Contains(t, out, "Doc No: D-9")
	assert.Contains(t, out, "88/100")
}

func TestRenderDashboard(t *testing.T) {
	r, buf := newTestRenderer()
	r.RenderDashboard(&protocol.DashboardData{Role: protocol.RoleAdmin, TotalVerifications: 12345, HighRiskAlerts: 3})
	assert.Contains(t, buf.String(), "12,345")
	assert.Contains(t, buf.String(), "High Risk Alerts")

	buf.Reset()
	r.RenderDashboard(&protocol.DashboardData{Role: protocol.RoleInstitution, VerificationsToday: 4})
	assert.Contains(t, buf.String(), "Institution")
	assert.Contains(t, buf.String(), "Verifications Today")
}

func TestRenderPageAndUser(t *testing.T) {
	r, buf := newTestRenderer()
	r.RenderPage(nav.Transition{From: nav.Landing, To: nav.Upload}, true)
	assert.Contains(t, buf.String(), "Upload Document")
	assert.Contains(t, buf.String(), "back available")

	buf.Reset()
	r.RenderUser("Dana", protocol.RoleAdmin)
	assert.Contains(t, buf.String(), "Hello, Dana")
	assert.Contains(t, buf.String(), "Admin Dashboard")

	buf.Reset()
	r.RenderUser("", protocol.RoleOther)
	assert.Empty(t, buf.String())
}

func TestRenderFileSelection(t *testing.T) {
	r, buf := newTestRenderer()
	r.RenderFileSelection(nil)
	assert.Contains(t, buf.String(), "No file selected")

	buf.Reset()
	r.RenderFileSelection(verify.BytesFile("cert.pdf", "application/pdf", make([]byte, 2048)))
	assert.Contains(t, buf.String(), "cert.pdf")
	assert.Contains(t, buf.String(), "2.0 KiB")
}

func TestShowErrorAndEvents(t *testing.T) {
	r, buf := newTestRenderer()
	r.ShowError("File size must be less than 10MB.")
	assert.Contains(t, buf.String(), "Error: File size must be less than 10MB.")

	buf.Reset()
	r.PrintEvent(events.Event{Level: events.LevelSuccess, Message: "Document verified successfully!"})
	assert.Contains(t, buf.String(), "* Document verified successfully!")
}

func TestSetTheme(t *testing.T) {
	r, _ := newTestRenderer()
	assert.False(t, r.styles.Theme.IsDark)
	r.SetTheme("dark")
	assert.True(t, r.styles.Theme.IsDark)
	r.SetTheme("light")
	assert.Equal(t, "light", r.styles.Theme.Name)
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompt(bufio.NewReader(strings.NewReader(tt.input)), &out)
		assert.Equal(t, tt.want, p.Confirm("Delete?"), "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N]: ", out.String())
	}
}
