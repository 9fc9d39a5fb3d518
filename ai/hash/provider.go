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

package hash

import (
	"context"
	"strings"

	"github.com/poiesic/contextgraph/ai"
)

// excerptLen is the maximum length of the leading excerpt used as a summary.
const excerptLen = 240

// Provider implements ai.Provider with no external services: the
// deterministic embedder plus an excerpt summarizer. It is the default
// until a real model provider is configured.
type Provider struct {
	embedder ai.Embedder
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a fully local provider.
//
// Returns ai.Provider interface for consistency with ai/openai.
func NewProvider(opts ...Option) ai.Provider {
	return &Provider{embedder: NewEmbedder(opts...)}
}

// Embedder returns the deterministic hash embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Summarizer returns the excerpt summarizer.
func (p *Provider) Summarizer() ai.Summarizer {
	return excerptSummarizer{}
}

// Close is a no-op; nothing external is held.
func (p *Provider) Close() error {
	return nil
}

// excerptSummarizer summarizes by taking the leading excerpt of the text,
// cut at a word boundary. It never fails.
type excerptSummarizer struct{}

var _ ai.Summarizer = excerptSummarizer{}

func (excerptSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLen {
		return text, nil
	}

	cut := text[:excerptLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "...", nil
}
