package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veigalabs/tonesentry/internal/config"
	"github.com/veigalabs/tonesentry/internal/detect"
	"github.com/veigalabs/tonesentry/internal/embed"
	"github.com/veigalabs/tonesentry/internal/httpapi"
	"github.com/veigalabs/tonesentry/internal/llm/openai"
	"github.com/veigalabs/tonesentry/internal/pipeline"
	"github.com/veigalabs/tonesentry/internal/scorer"
	"github.com/veigalabs/tonesentry/internal/slackbridge"
	"github.com/veigalabs/tonesentry/internal/summary"
	"github.com/veigalabs/tonesentry/internal/transcript"
	"github.com/veigalabs/tonesentry/internal/watcher"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	summary    *summary.Service
	watcher    *watcher.Service
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slackClient := slackbridge.New(cfg.SlackBotToken, logger.With("component", "slack"))

	embedder := embed.New(embed.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.EmbeddingModel,
	}, logger.With("component", "embeddings"))

	completer := openai.New(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.ChatModel,
		Temperature: cfg.ModelTemperature,
		Timeout:     time.Duration(cfg.ModelTimeoutSec) * time.Second,
	}, logger.With("component", "llm-openai"))

	lexicon := detect.DefaultLexicon()
	if cfg.LexiconPath != "" {
		loaded, err := detect.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			logger.Warn("lexicon file unusable, keeping defaults", "path", cfg.LexiconPath, "error", err)
		} else {
			lexicon = loaded
		}
	}
	lexical := detect.NewLexicalDetector(lexicon)

	similarity := detect.NewSimilarityDetector(embedder, lexical.ThreatReferences, detect.SimilarityConfig{
		ThreatThreshold: cfg.ImplicitThreatThreshold,
		QuoteThreshold:  cfg.QuoteSimilarityThreshold,
	}, logger.With("component", "similarity"))

	assembler := transcript.NewAssembler(slackClient, transcript.AssemblerConfig{
		Limit:    cfg.ContextLimit,
		Attempts: cfg.HistoryFetchRetries,
	}, logger.With("component", "transcript"))

	categoryScorer := scorer.New(completer, logger.With("component", "scorer"))

	engine := pipeline.NewEngine(pipeline.Thresholds{
		Aggression:        cfg.AggressionThreshold,
		Harassment:        cfg.HarassmentThreshold,
		Threat:            cfg.ThreatThreshold,
		CoerciveAuthority: cfg.CoerciveAuthorityThreshold,
		Condescension:     cfg.CondescensionThreshold,
	}, scorer.IsReasonableResponse)

	scoreStore := summary.NewStore()

	runner := pipeline.NewRunner(
		lexical,
		similarity,
		assembler,
		categoryScorer,
		engine,
		slackClient,
		scoreStore,
		pipeline.RunnerConfig{QuoteSuppression: cfg.QuoteSuppressionEnabled},
		logger.With("component", "pipeline"),
	)

	summaryService := summary.New(scoreStore, slackClient, cfg.SummarySchedule, logger.With("component", "summary"))

	var watchService *watcher.Service
	if cfg.LexiconPath != "" {
		service, err := watcher.New(cfg.LexiconPath, logger.With("component", "watcher"), func(ctx context.Context, path string) {
			reloaded, loadErr := detect.LoadLexicon(path)
			if loadErr != nil {
				logger.Error("lexicon reload failed, keeping previous lists", "path", path, "error", loadErr)
				return
			}
			lexical.Reload(reloaded)
			logger.Info("lexicon reloaded", "path", path)
		})
		if err != nil {
			return nil, err
		}
		watchService = service
	}

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config: cfg,
		Runner: runner,
		Logger: logger.With("component", "api"),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		summary:    summaryService,
		watcher:    watchService,
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("tonesentry starting", "addr", r.cfg.HTTPAddr, "environment", r.cfg.Environment)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.summary.Start(groupCtx)
	})
	if r.watcher != nil {
		group.Go(func() error {
			return r.watcher.Start(groupCtx)
		})
	}
	group.Go(func() error {
		err := r.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
