package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	t.Run("decodes response and sends headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			json.NewEncoder(w).Encode(map[string]string{"echo": in["title"]})
		}))
		defer server.Close()

		c := NewClient(time.Second, 0)
		var out map[string]string
		err := c.PostJSON(context.Background(), server.URL, map[string]string{"Authorization": "Bearer key"},
			map[string]string{"title": "Tutor"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "Tutor", out["echo"])
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(time.Second, 2)
		c.baseDelay = time.Millisecond
		require.NoError(t, c.PostJSON(context.Background(), server.URL, nil, struct{}{}, nil))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("bad idea"))
		}))
		defer server.Close()

		c := NewClient(time.Second, 3)
		c.baseDelay = time.Millisecond
		err := c.PostJSON(context.Background(), server.URL, nil, struct{}{}, nil)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		assert.Equal(t, "bad idea", statusErr.Body)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
