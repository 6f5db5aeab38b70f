// Package scorer classifies an assembled conversation transcript into
// toxicity categories using an external chat-completion model.
package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veigalabs/tonesentry/internal/llm"
)

const systemInstruction = "You are a toxicity classifier for workplace chat messages. Given the conversation context below, " +
	"return a JSON object with a `scores` dictionary (toxic category: float between 0 and 1) and `triggered` list of triggered labels. " +
	"Toxicity categories include: `aggression`, `harassment`, `threat`, `coercive_authority`, and `condescension`. " +
	"The category `coercive_authority` refers to subtle or indirect language that pressures, monitors, or corrects someone's behavior by " +
	"implying hierarchical control, using policy speak, surveillance language, or piling on questions that make the recipient feel micromanaged or distrusted. " +
	"However, if the message is from a manager responding to previous unprofessional behavior, and the tone is proportionate and necessary for accountability or clarity, it should not be flagged."

// Category names the model may score. Anything else is a schema violation.
const (
	CategoryAggression        = "aggression"
	CategoryHarassment        = "harassment"
	CategoryThreat            = "threat"
	CategoryCoerciveAuthority = "coercive_authority"
	CategoryCondescension     = "condescension"
)

var knownCategories = map[string]struct{}{
	CategoryAggression:        {},
	CategoryHarassment:        {},
	CategoryThreat:            {},
	CategoryCoerciveAuthority: {},
	CategoryCondescension:     {},
}

var ErrSchemaMismatch = errors.New("assessment schema mismatch")

type Assessment struct {
	Scores    map[string]float64 `json:"scores"`
	Triggered []string           `json:"triggered"`
}

// MaxScore returns the highest category score, 0 when no scores exist.
func (a Assessment) MaxScore() float64 {
	max := 0.0
	for _, score := range a.Scores {
		if score > max {
			max = score
		}
	}
	return max
}

type Scorer struct {
	completer llm.Completer
	logger    *slog.Logger
}

func New(completer llm.Completer, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		completer: completer,
		logger:    logger,
	}
}

// Score sends the transcript to the classification model and parses the
// structured result. Call or parse failures return an error; the caller
// aborts that message's processing with no warning.
func (s *Scorer) Score(ctx context.Context, contextText string) (Assessment, error) {
	raw, err := s.completer.Complete(ctx, systemInstruction, contextText)
	if err != nil {
		return Assessment{}, fmt.Errorf("classification call: %w", err)
	}

	assessment, err := parseAssessment(raw)
	if err != nil {
		s.logger.Error("unparsable model assessment", "error", err, "raw", raw)
		return Assessment{}, err
	}
	return assessment, nil
}

// parseAssessment strips an optional markdown fence, unmarshals, and
// validates the schema: only known category keys, scores inside [0,1].
func parseAssessment(raw string) (Assessment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var assessment Assessment
	if err := json.Unmarshal([]byte(cleaned), &assessment); err != nil {
		return Assessment{}, fmt.Errorf("parse model assessment: %w", err)
	}

	for category, score := range assessment.Scores {
		if _, ok := knownCategories[category]; !ok {
			return Assessment{}, fmt.Errorf("%w: unknown category %q", ErrSchemaMismatch, category)
		}
		if score < 0 || score > 1 {
			return Assessment{}, fmt.Errorf("%w: score %.3f for %q outside [0,1]", ErrSchemaMismatch, score, category)
		}
	}
	for _, label := range assessment.Triggered {
		if _, ok := knownCategories[label]; !ok {
			return Assessment{}, fmt.Errorf("%w: unknown triggered label %q", ErrSchemaMismatch, label)
		}
	}
	return assessment, nil
}
