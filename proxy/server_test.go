package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/contextgraph/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	server := httptest.NewServer(NewServer(embedder, "hash-v1").Router())
	t.Cleanup(server.Close)
	return server, embedder
}

func postEmbeddings(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/embeddings", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	server, _ := setupServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEmbeddingsSingleString(t *testing.T) {
	server, _ := setupServer(t)

	resp := postEmbeddings(t, server.URL, `{"input":"hello world","model":"ignored"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Object string `json:"object"`
		Model  string `json:"model"`
		Data   []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "list", payload.Object)
	assert.Equal(t, "hash-v1", payload.Model)
	require.Len(t, payload.Data, 1)
	assert.NotEmpty(t, payload.Data[0].Embedding)
}

func TestEmbeddingsStringArray(t *testing.T) {
	server, _ := setupServer(t)

	resp := postEmbeddings(t, server.URL, `{"input":["one","two","three"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data []struct {
			Index int `json:"index"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 3)
	for i, d := range payload.Data {
		assert.Equal(t, i, d.Index)
	}
}

func TestEmbeddingsEmptyInput(t *testing.T) {
	server, _ := setupServer(t)

	resp := postEmbeddings(t, server.URL, `{"input":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmbeddingsBadBody(t *testing.T) {
	server, _ := setupServer(t)

	resp := postEmbeddings(t, server.URL, `{"input":42}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postEmbeddings(t, server.URL, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmbeddingsEmbedderFailure(t *testing.T) {
	server, embedder := setupServer(t)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("offline")
	}

	resp := postEmbeddings(t, server.URL, `{"input":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
