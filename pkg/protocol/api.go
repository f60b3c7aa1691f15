// Package protocol defines the request/response types of the ProofPoint API.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/proofpoint/proofpoint/pkg/logging"
)

// ErrorResponse is returned on API errors. Auth endpoints use "message",
// document endpoints use "error".
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever message field the server filled in.
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token    string `json:"token"`
	UserName string `json:"userName"`
	UserRole string `json:"userRole"`
}

// AuthCheckResponse is returned by POST /check_auth.
type AuthCheckResponse struct {
	Message  string `json:"message,omitempty"`
	UserName string `json:"userName"`
	UserRole string `json:"userRole"`
}

// TicketRequest is the body for POST /submit_ticket.
type TicketRequest struct {
	Message string `json:"message"`
}

// TicketResponse is returned by POST /submit_ticket.
type TicketResponse struct {
	Message string `json:"message"`
}

// DashboardData is returned by GET /admin/dashboard_data and
// GET /institution/dashboard_data. Only the fields of the caller's role are set.
type DashboardData struct {
	Role Role `json:"-"`

	// admin
	TotalVerifications int `json:"total_verifications"`
	HighRiskAlerts     int `json:"high_risk_alerts"`
	SupportTickets     int `json:"support_tickets"`

	// institution
	InstitutionName    string `json:"institution_name"`
	VerificationsToday int    `json:"verifications_today"`
	TotalRecordsInDB   int    `json:"total_records_in_db"`
}

// TamperAnalysis is the forensic part of a verification result.
type TamperAnalysis struct {
	TamperScore     Score  `json:"tamper_score"`
	AnalysisSummary string `json:"analysis_summary"`
}

// VerificationResult is returned by POST /process_document and sent back
// verbatim to POST /generate_report.
type VerificationResult struct {
	FileHash            string         `json:"file_hash"`
	SourceFilename      string         `json:"source_filename,omitempty"`
	Status              string         `json:"verification_status"`
	TamperAnalysis      TamperAnalysis `json:"tamper_analysis"`
	ExtractedDetails    map[string]any `json:"extracted_details"`
	ProcessingTimestamp Timestamp      `json:"processing_timestamp"`
	RetrievedFromCache  bool           `json:"retrieved_from_cache"`
	QRCodeData          *string        `json:"qr_code_data"`
}

// Fingerprint identifies the verified document. Two results with the same
// fingerprint describe the same upload.
func (r *VerificationResult) Fingerprint() string {
	return r.FileHash
}

// Clone returns a copy that shares no mutable state with r.
func (r *VerificationResult) Clone() VerificationResult {
	c := *r
	c.ExtractedDetails = maps.Clone(r.ExtractedDetails)
	if r.QRCodeData != nil {
		qr := *r.QRCodeData
		c.QRCodeData = &qr
	}
	return c
}

// Detail returns the first non-empty extracted detail among keys, stringified.
func (r *VerificationResult) Detail(keys ...string) string {
	for _, k := range keys {
		if v, ok := r.ExtractedDetails[k]; ok {
			if s := DetailString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// DetailString stringifies an extracted detail value the way it is displayed.
func DetailString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Score is a tamper score clamped to 0..100. The server produces it from a
// model response, so fractional and out-of-range values are tolerated.
type Score int

// UnmarshalJSON accepts integers, floats, numeric strings and null. Anything
// else reads as 0.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		logging.Warn("unparseable tamper score, using 0", logging.String("value", raw))
		*s = 0
		return nil
	}
	*s = ClampScore(int(math.Round(f)))
	return nil
}

// ClampScore bounds a score to 0..100.
func ClampScore(v int) Score {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return Score(v)
	}
}

// Timestamp parses the server's ISO-8601 timestamps, which may lack a zone.
// The server's text is kept in Raw and written back unchanged, since the
// result is echoed to /generate_report.
type Timestamp struct {
	time.Time
	Raw string `json:"-"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts RFC 3339 and zone-less ISO timestamps. Empty or null
// leaves the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		t.Time, t.Raw = time.Time{}, ""
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Raw = parsed, s
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes the server's original text if there is one, otherwise
// RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
