package restyutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetriesTransientServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, int32(2), hits.Load())
}

func TestDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode())
	require.Equal(t, int32(1), hits.Load())
}

func TestDoesNotRetryPost(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	res, err := client.R().Post("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode())
	require.Equal(t, int32(1), hits.Load())
}
