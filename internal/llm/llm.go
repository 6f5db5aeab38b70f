package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
