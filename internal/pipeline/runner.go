package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veigalabs/tonesentry/internal/detect"
	"github.com/veigalabs/tonesentry/internal/scorer"
	"github.com/veigalabs/tonesentry/internal/summary"
	"github.com/veigalabs/tonesentry/internal/transcript"
)

// Notifier posts a warning back to the originating channel. One delivery
// attempt per action; failures are logged and never retried.
type Notifier interface {
	Notify(ctx context.Context, channel, text string) error
}

type InboundMessage struct {
	Channel   string
	User      string
	Text      string
	Timestamp string
}

type RunnerConfig struct {
	QuoteSuppression bool
}

// Runner executes the full moderation pipeline for one message. Each run is
// independent of every other in-flight message; the summary store is the only
// shared state it touches.
type Runner struct {
	lexical    *detect.LexicalDetector
	similarity *detect.SimilarityDetector
	assembler  *transcript.Assembler
	scorer     *scorer.Scorer
	engine     *Engine
	notifier   Notifier
	scores     *summary.Store
	cfg        RunnerConfig
	logger     *slog.Logger
}

func NewRunner(
	lexical *detect.LexicalDetector,
	similarity *detect.SimilarityDetector,
	assembler *transcript.Assembler,
	categoryScorer *scorer.Scorer,
	engine *Engine,
	notifier Notifier,
	scores *summary.Store,
	cfg RunnerConfig,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		lexical:    lexical,
		similarity: similarity,
		assembler:  assembler,
		scorer:     categoryScorer,
		engine:     engine,
		notifier:   notifier,
		scores:     scores,
		cfg:        cfg,
		logger:     logger,
	}
}

// Process runs the detector sequence and issues at most one warning. No error
// escapes: every collaborator failure degrades to a safe default.
func (r *Runner) Process(ctx context.Context, msg InboundMessage) {
	logger := r.logger.With("run_id", "run-"+uuid.NewString(), "channel", msg.Channel, "user", msg.User)
	logger.Info("evaluating message")

	if r.lexical.ContainsLegalJustification(msg.Text) {
		logger.Info("legal justification present, skipping all checks")
		return
	}

	if r.lexical.MatchesExplicitThreat(msg.Text) {
		logger.Info("explicit threat matched")
		r.notify(ctx, logger, msg.Channel, explicitThreatWarning(msg.User))
		r.record(msg.User, 1.0)
		return
	}

	implicit, similarityScore := r.similarity.IsImplicitThreat(ctx, msg.Text)
	if implicit {
		logger.Info("implicit threat matched", "similarity", similarityScore)
		r.notify(ctx, logger, msg.Channel, implicitThreatWarning(msg.User))
		r.record(msg.User, similarityScore)
		return
	}

	abusive := r.lexical.IsInappropriateLanguage(msg.Text)

	window := r.assembler.Build(ctx, msg.Channel, msg.Timestamp)
	contextText := transcript.Fold(window)
	if contextText == "" {
		contextText = msg.Text
	}

	if r.cfg.QuoteSuppression && r.similarity.IsLikelyQuoted(ctx, msg.Text, transcript.Texts(window, msg.Timestamp)) {
		logger.Info("message quotes recent context, suppressing")
		return
	}

	assessment, err := r.scorer.Score(ctx, contextText)
	if err != nil {
		logger.Error("category scoring failed, skipping message", "error", err)
		return
	}
	logger.Info("model assessment", "scores", fmt.Sprintf("%v", assessment.Scores), "triggered", assessment.Triggered)

	action := r.engine.Decide(Input{
		Text:           msg.Text,
		Flags:          Flags{Abusive: abusive},
		Assessment:     assessment,
		HasAssessment:  true,
		LegalJustified: false,
	})

	if len(assessment.Scores) > 0 {
		r.record(msg.User, assessment.MaxScore())
	}

	if action == ActionNone {
		logger.Info("no category matched above threshold")
		return
	}
	logger.Info("warning issued", "action", action.String())
	r.notify(ctx, logger, msg.Channel, warningText(action, msg.User))
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, channel, text string) {
	if err := r.notifier.Notify(ctx, channel, text); err != nil {
		logger.Error("failed to send warning", "error", err)
	}
}

func (r *Runner) record(user string, score float64) {
	if r.scores == nil {
		return
	}
	r.scores.Append(user, score, time.Now().UTC())
}

func explicitThreatWarning(user string) string {
	return fmt.Sprintf(":rotating_light: <@%s>, sua mensagem contém uma ameaça explícita. Esse tipo de linguagem não é apropriado.", user)
}

func implicitThreatWarning(user string) string {
	return fmt.Sprintf(":warning: <@%s>, sua mensagem pode conter uma ameaça explícita ou implícita. Por favor, reconsidere o tom.", user)
}

func warningText(action Action, user string) string {
	switch action {
	case ActionThreat:
		return fmt.Sprintf(":rotating_light: <@%s>, sua mensagem contém uma ameaça. Esse tipo de linguagem não é apropriado.", user)
	case ActionCoercive:
		return fmt.Sprintf(":warning: <@%s>, sua mensagem contém autoridade excessiva. Por favor, mantenha o respeito.", user)
	case ActionAbusive:
		return fmt.Sprintf(":warning: <@%s>, sua mensagem contém linguagem abusiva ou ofensiva. Por favor, mantenha o respeito.", user)
	default:
		return ""
	}
}
