package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAPIRequestLabels(t *testing.T) {
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("check_auth", "401"))
	RecordAPIRequest("check_auth", 401, 10*time.Millisecond)
	after := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("check_auth", "401"))
	assert.Equal(t, before+1, after)

	beforeErr := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("login", "transport_error"))
	RecordAPIRequest("login", 0, time.Millisecond)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(apiRequestsTotal.WithLabelValues("login", "transport_error")))
}

func TestSessionCounters(t *testing.T) {
	before := testutil.ToFloat64(forcedLogoutsTotal)
	RecordForcedLogout()
	assert.Equal(t, before+1, testutil.ToFloat64(forcedLogoutsTotal))

	beforeV := testutil.ToFloat64(verificationsTotal.WithLabelValues("cached"))
	RecordVerification("cached")
	assert.Equal(t, beforeV+1, testutil.ToFloat64(verificationsTotal.WithLabelValues("cached")))
}

func TestHandlerExposesClientMetrics(t *testing.T) {
	RecordUpload(2048)
	ObserveTamperScore(42)
	RecordNotification("info")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"proofpoint_client_upload_bytes_total",
		"proofpoint_client_tamper_score",
		"proofpoint_client_notifications_total",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
