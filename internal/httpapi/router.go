package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack/slackevents"

	"github.com/veigalabs/tonesentry/internal/config"
	"github.com/veigalabs/tonesentry/internal/pipeline"
	"github.com/veigalabs/tonesentry/internal/slackbridge"
)

const maxEventBodyBytes = 1 << 20

type Dependencies struct {
	Config config.Config
	Runner *pipeline.Runner
	Logger *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.handleRoot)
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/events", rt.handleEvents)
	return mux
}

func (r *router) handleRoot(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("tonesentry is running"))
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents receives the provider event envelope. Transport failures (bad
// signature, malformed body) are rejected here and never reach the pipeline;
// accepted message events run in their own goroutine, one worker per message.
func (r *router) handleEvents(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxEventBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if err := slackbridge.VerifySignature(r.deps.Config.SlackSigningSecret, req.Header, body); err != nil {
		r.deps.Logger.Warn("rejected event with invalid signature", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request signature"})
		return
	}

	envelope, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed event envelope"})
		return
	}

	switch envelope.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed challenge"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge.Challenge})
		return
	case slackevents.CallbackEvent:
		if event, ok := envelope.InnerEvent.Data.(*slackevents.MessageEvent); ok && event.BotID == "" && event.SubType == "" {
			msg := pipeline.InboundMessage{
				Channel:   event.Channel,
				User:      event.User,
				Text:      event.Text,
				Timestamp: event.TimeStamp,
			}
			go r.deps.Runner.Process(context.Background(), msg)
		}
		w.WriteHeader(http.StatusOK)
		return
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
