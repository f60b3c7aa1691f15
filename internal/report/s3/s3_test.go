package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePutsObject(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
		ctype  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body, ctype = r.Method, r.URL.Path, string(data), r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := New(context.Background(), Config{
		Endpoint:  srv.URL,
		Bucket:    "reports",
		Prefix:    "proofpoint",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)

	loc, err := sink.Save(context.Background(), "ProofPoint_Report_4521.pdf", []byte("%PDF-report"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/proofpoint/ProofPoint_Report_4521.pdf", loc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/reports/proofpoint/ProofPoint_Report_4521.pdf", path)
	assert.True(t, strings.Contains(body, "%PDF-report"))
	assert.Equal(t, "application/pdf", ctype)
}

func TestSaveSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	sink, err := New(context.Background(), Config{Endpoint: srv.URL, Bucket: "reports", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)

	_, err = sink.Save(context.Background(), "r.pdf", []byte("x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put object r.pdf")
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
