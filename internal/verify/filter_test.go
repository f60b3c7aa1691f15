package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/proofpoint/proofpoint/pkg/protocol"
)

func sampleHistory() []protocol.VerificationResult {
	return []protocol.VerificationResult{
		*result("h1", "Verified", map[string]any{"name": "Ravi Kumar", "roll_no": float64(4521)}),
		*result("h2", "Tampered", map[string]any{"name": "Asha Rao", "board": "CBSE"}),
		*result("h3", "Verified", map[string]any{"document_name": "Degree", "year": nil}),
	}
}

func hashes(rs []protocol.VerificationResult) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].FileHash
	}
	return out
}

func TestFilterEmptyTermAllStatuses(t *testing.T) {
	got := Filter(sampleHistory(), "", StatusAll)
	assert.Equal(t, []string{"h1", "h2", "h3"}, hashes(got))
}

func TestFilterByStatus(t *testing.T) {
	got := Filter(sampleHistory(), "", "Verified")
	assert.Equal(t, []string{"h1", "h3"}, hashes(got))

	got = Filter(sampleHistory(), "", "verified")
	assert.Empty(t, got, "status match is exact")
	assert.NotNil(t, got)
}

func TestFilterByTerm(t *testing.T) {
	tests := []struct {
		term   string
		status string
		want   []string
	}{
		{"ravi", StatusAll, []string{"h1"}},
		{"RAO", StatusAll, []string{"h2"}},
		{"452", StatusAll, []string{"h1"}},
		{"tamper", StatusAll, []string{"h2"}},
		{"verif", StatusAll, []string{"h1", "h3"}},
		{"degree", "Tampered", []string{}},
		{"null", StatusAll, []string{}},
		{"zzz", StatusAll, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term+"/"+tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, hashes(Filter(sampleHistory(), tt.term, tt.status)))
		})
	}
}

func TestFilterNilHistory(t *testing.T) {
	got := Filter(nil, "", StatusAll)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterIndexedKeepsPositions(t *testing.T) {
	got := FilterIndexed(sampleHistory(), "", "Verified")
	if assert.Len(t, got, 2) {
		assert.Equal(t, 0, got[0].Index)
		assert.Equal(t, 2, got[1].Index)
		assert.Equal(t, "h3", got[1].Result.FileHash)
	}
}

func TestFilterReturnsStoredResults(t *testing.T) {
	history := sampleHistory()
	got := Filter(history, "asha", StatusAll)
	if diff := cmp.Diff(history[1:2], got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}
