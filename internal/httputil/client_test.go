// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "gene-atlas-test/0.1",
		},
		MinInterval: time.Nanosecond,
	}, zerolog.Nop())
	c.SetHTTPClient(ts.Client())
	return c
}

func TestClientGetReturnsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gene-atlas-test/0.1", r.Header.Get("User-Agent"))
		assert.Equal(t, "TP53", r.URL.Query().Get("term"))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer ts.Close()

	body, err := testClient(ts).Get(context.Background(), ts.URL, url.Values{"term": {"TP53"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClientGetNonRecoverableStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := testClient(ts).Get(context.Background(), ts.URL, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.True(t, IsNotFound(err))
}

func TestClientGetRetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := testClient(ts).Get(context.Background(), ts.URL, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.False(t, IsNotFound(err))
	// 1 initial + 3 retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClientGetPubMedEmbeddedError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// HTTP 200 carrying an application-level error.
		fmt.Fprint(w, `<eSearchResult><ERROR>API rate limit exceeded</ERROR></eSearchResult>`)
	}))
	defer ts.Close()

	_, err := testClient(ts).Get(context.Background(), ts.URL, url.Values{"db": {"pubmed"}})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusOK, reqErr.StatusCode)
	assert.Contains(t, reqErr.Error(), "API rate limit exceeded")
}

func TestClientGetNonPubMedBodyNotInspected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<result><ERROR>spurious</ERROR></result>`)
	}))
	defer ts.Close()

	body, err := testClient(ts).Get(context.Background(), ts.URL, url.Values{"db": {"gene"}})
	require.NoError(t, err)
	assert.Contains(t, string(body), "spurious")
}

func TestEmbeddedError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"upper tag", `<x><ERROR>boom</ERROR></x>`, "boom"},
		{"lower tag", `<x><error>quota hit</error></x>`, "quota hit"},
		{"no error", `<x><ok>fine</ok></x>`, ""},
		{"word only", `{"note":"no errors encountered"}`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embeddedError([]byte(tt.body)))
		})
	}
}
