package detect

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Embedder turns texts into vectors. One call per batch; order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type SimilarityConfig struct {
	ThreatThreshold float64
	QuoteThreshold  float64
	QuoteRecentMax  int
}

// SimilarityDetector compares message text against reference phrases by
// embedding both and taking the maximum cosine similarity. Embedding failures
// degrade to a negative result; they never block the pipeline.
type SimilarityDetector struct {
	embedder   Embedder
	threatRefs func() []string
	cfg        SimilarityConfig
	logger     *slog.Logger
}

func NewSimilarityDetector(embedder Embedder, threatRefs func() []string, cfg SimilarityConfig, logger *slog.Logger) *SimilarityDetector {
	if cfg.ThreatThreshold <= 0 {
		cfg.ThreatThreshold = 0.72
	}
	if cfg.QuoteThreshold <= 0 {
		cfg.QuoteThreshold = 0.9
	}
	if cfg.QuoteRecentMax < 1 {
		cfg.QuoteRecentMax = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilarityDetector{
		embedder:   embedder,
		threatRefs: threatRefs,
		cfg:        cfg,
		logger:     logger,
	}
}

// MaxSimilarity embeds the text and every reference phrase and returns the
// highest pairwise cosine similarity, in [0,1] for well-behaved embeddings.
func (d *SimilarityDetector) MaxSimilarity(ctx context.Context, text string, refs []string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(refs) == 0 {
		return 0, nil
	}

	vectors, err := d.embedder.Embed(ctx, append([]string{text}, refs...))
	if err != nil {
		return 0, fmt.Errorf("embed for similarity: %w", err)
	}
	if len(vectors) != len(refs)+1 {
		return 0, fmt.Errorf("similarity embedding returned %d vectors, want %d", len(vectors), len(refs)+1)
	}

	input := vectors[0]
	max := 0.0
	for _, ref := range vectors[1:] {
		if score := cosine(input, ref); score > max {
			max = score
		}
	}
	return max, nil
}

// IsImplicitThreat checks the text against the threat reference phrases.
func (d *SimilarityDetector) IsImplicitThreat(ctx context.Context, text string) (bool, float64) {
	score, err := d.MaxSimilarity(ctx, text, d.threatRefs())
	if err != nil {
		d.logger.Error("implicit threat check degraded to false", "error", err)
		return false, 0
	}
	return score >= d.cfg.ThreatThreshold, score
}

// IsLikelyQuoted reports whether the text is near-verbatim repetition of one
// of the recent context messages. Optional hook; wired in only when quote
// suppression is enabled.
func (d *SimilarityDetector) IsLikelyQuoted(ctx context.Context, text string, recent []string) bool {
	refs := make([]string, 0, d.cfg.QuoteRecentMax)
	for i := len(recent) - 1; i >= 0 && len(refs) < d.cfg.QuoteRecentMax; i-- {
		if candidate := strings.TrimSpace(recent[i]); candidate != "" {
			refs = append(refs, candidate)
		}
	}
	if len(refs) == 0 {
		return false
	}

	score, err := d.MaxSimilarity(ctx, text, refs)
	if err != nil {
		d.logger.Error("quote check degraded to false", "error", err)
		return false
	}
	return score >= d.cfg.QuoteThreshold
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
