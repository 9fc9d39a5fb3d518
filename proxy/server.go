// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package proxy exposes the configured embedder over an OpenAI-compatible
// HTTP surface, so tools that speak the embeddings API can reuse whatever
// embedder the service runs with, including the deterministic hash one.
package proxy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/contextgraph/ai"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
)

// Server serves the embeddings endpoint.
type Server struct {
	embedder ai.Embedder
	model    string
	logger   *slog.Logger
}

// NewServer creates a proxy server over the given embedder. The model name
// is echoed back in responses.
func NewServer(embedder ai.Embedder, model string) *Server {
	return &Server{
		embedder: embedder,
		model:    model,
		logger:   slog.Default().With("component", "embedding-proxy"),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Post("/embeddings", s.handleEmbeddings)
	r.Post("/v1/embeddings", s.handleEmbeddings)
	return r
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.logger.Info("embedding proxy listening", "addr", addr, "model", s.model)
	return srv.ListenAndServe()
}

type embeddingsRequest struct {
	// Input is a string or an array of strings, per the OpenAI API.
	Input json.RawMessage `json:"input"`
	Model string          `json:"model"`
}

type embeddingObject struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingsResponse struct {
	Object string            `json:"object"`
	Data   []embeddingObject `json:"data"`
	Model  string            `json:"model"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	texts, err := decodeInput(req.Input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(texts) == 0 {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	vectors, err := s.embedder.EmbedTexts(r.Context(), texts)
	if err != nil {
		s.logger.Error("embedding failed", "inputs", len(texts), "error", err)
		writeError(w, http.StatusBadGateway, "embedding failed")
		return
	}

	resp := embeddingsResponse{
		Object: "list",
		Data:   make([]embeddingObject, len(vectors)),
		Model:  s.model,
	}
	for i, v := range vectors {
		resp.Data[i] = embeddingObject{Object: "embedding", Index: i, Embedding: v}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeInput accepts the two shapes the OpenAI API allows for input: a
// single string or an array of strings.
func decodeInput(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("input must be a string or an array of strings")
	}
	return many, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": msg},
	})
}
