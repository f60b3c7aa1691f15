package termui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Band is a tamper score risk band.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

// ScoreBand returns High above 70, Medium above 30, Low otherwise.
func ScoreBand(score protocol.Score) Band {
	switch {
	case score > 70:
		return BandHigh
	case score > 30:
		return BandMedium
	default:
		return BandLow
	}
}

// PositiveStatus reports whether a status label reads as a pass.
func PositiveStatus(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "verified") || strings.Contains(s, "authentic")
}

// StatusLabel returns status, or "Unknown" when empty.
func StatusLabel(status string) string {
	if status == "" {
		return "Unknown"
	}
	return status
}

// TitleCase turns a detail key like "fathers_name" into "Fathers Name".
func TitleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// DetailRow is one extracted detail as displayed.
type DetailRow struct {
	Label string
	Value string
}

// DetailRows returns the non-empty extracted details sorted by key.
func DetailRows(details map[string]any) []DetailRow {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]DetailRow, 0, len(keys))
	for _, k := range keys {
		v := protocol.DetailString(details[k])
		if v == "" {
			continue
		}
		rows = append(rows, DetailRow{Label: TitleCase(k), Value: v})
	}
	return rows
}

// Headline returns the title of a history entry.
func Headline(r *protocol.VerificationResult) string {
	if h := r.Detail("name", "document_name"); h != "" {
		return h
	}
	return "Unknown Document"
}

// DocNumber returns the document number shown under a history entry.
func DocNumber(r *protocol.VerificationResult) string {
	if n := r.Detail("document_number", "roll_no"); n != "" {
		return n
	}
	return "N/A"
}

var pageTitles = map[string]string{
	"login":                 "Sign In",
	"landing":               "ProofPoint",
	"upload":                "Upload Document",
	"results":               "Verification Result",
	"history":               "Verification History",
	"admin-dashboard":       "Admin Dashboard",
	"institution-dashboard": "Institution Dashboard",
}

// PageTitle returns the heading for a page.
func PageTitle(page string) string {
	if t, ok := pageTitles[page]; ok {
		return t
	}
	return TitleCase(strings.ReplaceAll(page, "-", "_"))
}
