package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSources(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sources", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sources":[
			{"id":"src-1","name":"Lending API","description":"loan docs","category":"lending","created_at":"2025-11-03T12:30:00Z"},
			{"id":"src-2","name":"eKYC","category":"ekyc"}
		]}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, WithToken("secret"))
	require.NoError(t, err)

	sources, err := client.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "src-1", sources[0].ID)
	assert.Equal(t, "lending", sources[0].Category)
	assert.Equal(t, time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC), sources[0].CreatedAt)
	assert.True(t, sources[1].CreatedAt.IsZero(), "created_at is optional")
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestListSourcesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.ListSources(context.Background())
	assert.Error(t, err)
}

func TestFetchContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sources/src-1/content", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"loan origination flow"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	content, err := client.FetchContent(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, "loan origination flow", content)
}

func TestFetchContentMissingIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	content, err := client.FetchContent(context.Background(), "src-gone")
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient("")
	assert.Error(t, err)
}
