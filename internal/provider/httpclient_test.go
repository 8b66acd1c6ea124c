package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/items", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": "42.5"}`))
	}))
	defer server.Close()

	client := NewHTTPClient("test", server.URL+"/", WithUserAgent("test-agent"), WithHeader("X-Key", "secret"))

	var out struct {
		Value number `json:"value"`
	}
	err := client.GetJSON(context.Background(), "/v1/items", map[string][]string{"limit": {"5"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42.5, out.Value.Float())
}

func TestHTTPClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    FailureKind
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			kind: FailureNetwork,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			kind: FailureNetwork,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>not json</html>`))
			},
			kind: FailureMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			}))
			defer server.Close()

			client := NewHTTPClient("test", server.URL)
			var out map[string]interface{}
			err := client.GetJSON(context.Background(), "/", nil, &out)
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "test", fe.Provider)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, 1, calls, "requests are never retried")
		})
	}
}

func TestHTTPClient_TimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewHTTPClient("slow", server.URL, WithTimeout(50*time.Millisecond))
	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "/", nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, FailureNetwork, KindOf(err))
}

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NetworkError("coingecko", cause)

	assert.EqualError(t, err, "coingecko: network-error: connection refused")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrEmpty)

	empty := EmptyError("rss")
	assert.EqualError(t, empty, "rss: empty-result")
	assert.Equal(t, FailureEmpty, KindOf(empty))
	assert.Equal(t, FailureNetwork, KindOf(errors.New("panic")))
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var v struct {
		A number `json:"a"`
		B number `json:"b"`
		C number `json:"c"`
		D number `json:"d"`
	}
	err := jsonUnmarshal(`{"a": 1.5, "b": "2.25", "c": null, "d": "n/a"}`, &v)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v.A.Float())
	assert.Equal(t, 2.25, v.B.Float())
	assert.Zero(t, v.C.Float())
	assert.Zero(t, v.D.Float())
}
