// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs (OpenAI, Ollama, LocalAI, vLLM, and similar). Embeddings and
// summarization may target different hosts and models; see ai.Config.
package openai
