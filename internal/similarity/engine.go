// Package similarity converts text to fixed-length vectors and scores
// lexical relevance between texts. The embedding is a stored artifact; the
// relevance score is what actually drives memory ranking.
package similarity

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shipsy/feedback-assistant/internal/metrics"
)

// Dim is the fixed embedding dimension. The local fallback always produces
// vectors of this length and external vectors of any other length are
// rejected in favor of the fallback.
const Dim = 384

// DefaultRelevanceThreshold is the score above which a candidate counts as
// relevant. Inherited configuration, no documented derivation.
const DefaultRelevanceThreshold = 0.1

// Engine produces embeddings and relevance scores. A nil client means the
// external service is not configured and every embedding comes from the
// local fallback.
type Engine struct {
	client    *EmbedClient
	threshold float64
}

func NewEngine(client *EmbedClient, threshold float64) *Engine {
	if threshold == 0 {
		threshold = DefaultRelevanceThreshold
	}
	return &Engine{
		client:    client,
		threshold: threshold,
	}
}

// Embed returns a vector for text. The external service is attempted first;
// on any failure (no client, transport error, non-2xx, wrong dimension) the
// deterministic local embedding is used instead. Embed never fails.
func (e *Engine) Embed(ctx context.Context, text string) []float32 {
	if e.client != nil {
		vec, err := e.client.EmbedSingle(ctx, text)
		if err == nil && len(vec) == Dim {
			return vec
		}
		if err != nil {
			log.Debug().Err(err).Msg("External embedding failed, using fallback")
		} else {
			log.Debug().Int("dim", len(vec)).Msg("Unexpected embedding dimension, using fallback")
		}
	}

	metrics.EmbeddingFallbackTotal.Inc()
	return FallbackEmbed(text)
}

// FallbackEmbed is the deterministic hash-based bag-of-words projection:
// each whitespace token increments one bucket selected by a stable 32-bit
// hash, then the vector is L2-normalized. A zero-token input yields the
// zero vector unchanged.
func FallbackEmbed(text string) []float32 {
	embedding := make([]float32, Dim)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		embedding[h.Sum32()%Dim]++
	}

	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] = float32(float64(embedding[i]) / magnitude)
	}
	return embedding
}

// Relevance is the token-overlap ratio between query and candidate:
// |distinct query tokens present in candidate| / |distinct query tokens|.
// An empty query scores 0. The result is always in [0,1].
func (e *Engine) Relevance(query, candidate string) float64 {
	queryTokens := distinctTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}

	candidateTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(candidate)) {
		candidateTokens[tok] = struct{}{}
	}

	matches := 0
	for tok := range queryTokens {
		if _, ok := candidateTokens[tok]; ok {
			matches++
		}
	}

	return float64(matches) / float64(len(queryTokens))
}

// Relevant reports whether a score clears the relevance threshold.
func (e *Engine) Relevant(score float64) bool {
	return score > e.threshold
}

func distinctTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[tok] = struct{}{}
	}
	return tokens
}
