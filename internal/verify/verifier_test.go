package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier(srv *httptest.Server) *Verifier {
	v := New(nil)
	v.hc = srv.Client()
	v.Timeout = 2 * time.Second
	return v
}

func TestCheckURLAccessible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok, status := testVerifier(srv).CheckURL(context.Background(), srv.URL)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
}

func TestCheckURLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ok, status := testVerifier(srv).CheckURL(context.Background(), srv.URL)
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckURLRetriesWithGETWhenHEADRejected(t *testing.T) {
	var heads, gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			heads.Add(1)
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			gets.Add(1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	ok, status := testVerifier(srv).CheckURL(context.Background(), srv.URL)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(1), heads.Load())
	assert.Equal(t, int32(1), gets.Load())
}

func TestCheckURLTimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	v := testVerifier(srv)
	v.Timeout = 30 * time.Millisecond

	ok, status := v.CheckURL(context.Background(), srv.URL)
	assert.False(t, ok)
	assert.Equal(t, 0, status)
}

func TestCheckURLUnreachableHost(t *testing.T) {
	v := New(nil)
	v.Timeout = 200 * time.Millisecond

	ok, status := v.CheckURL(context.Background(), "http://127.0.0.1:1/nothing")
	assert.False(t, ok)
	assert.Equal(t, 0, status)
}

func TestVerifyVerdictFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := testVerifier(srv)
	p := cleanPosting()
	p.ApplyURL = srv.URL + "/jobs/1"

	verdict := v.Verify(context.Background(), p)

	require.True(t, verdict.URLAccessible)
	assert.Equal(t, http.StatusOK, verdict.HTTPStatus)
	assert.Empty(t, verdict.RedFlags)
	// 127.0.0.1 is no ATS and its root probe goes nowhere, so the
	// verdict as a whole fails on domain trust alone.
	assert.False(t, verdict.DomainTrusted)
	assert.False(t, verdict.Valid)
}

func TestVerifyRedFlagsSinkAnOtherwiseCleanPosting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := testVerifier(srv)
	p := cleanPosting()
	p.ApplyURL = srv.URL
	p.Description += " Guaranteed income, no experience needed!"

	verdict := v.Verify(context.Background(), p)
	assert.Contains(t, verdict.RedFlags, "guaranteed-income")
	assert.False(t, verdict.Valid)
}
