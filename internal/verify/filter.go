package verify

import (
	"strings"

	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// StatusAll matches every status.
const StatusAll = "all"

// Matches reports whether r passes the history search and status filter.
// An empty term matches everything; otherwise the term must occur,
// ignoring case, in an extracted detail value or in the status label.
// The status must equal r's status exactly unless it is StatusAll.
func Matches(r *protocol.VerificationResult, term, status string) bool {
	if status != StatusAll && r.Status != status {
		return false
	}
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, v := range r.ExtractedDetails {
		if strings.Contains(strings.ToLower(protocol.DetailString(v)), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(r.Status), term)
}

// Filter returns the entries of history that match, in order. The result is
// never nil.
func Filter(history []protocol.VerificationResult, term, status string) []protocol.VerificationResult {
	out := make([]protocol.VerificationResult, 0, len(history))
	for i := range history {
		if Matches(&history[i], term, status) {
			out = append(out, history[i])
		}
	}
	return out
}

// Entry is a history entry with its position in the full history.
type Entry struct {
	Index  int
	Result protocol.VerificationResult
}

// FilterIndexed is Filter, keeping each entry's history index so it can be
// viewed or deleted.
func FilterIndexed(history []protocol.VerificationResult, term, status string) []Entry {
	out := make([]Entry, 0, len(history))
	for i := range history {
		if Matches(&history[i], term, status) {
			out = append(out, Entry{Index: i, Result: history[i]})
		}
	}
	return out
}
