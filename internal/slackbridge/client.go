// Package slackbridge adapts the Slack Web API to the narrow provider
// contracts the pipeline consumes.
package slackbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/veigalabs/tonesentry/internal/transcript"
)

type Client struct {
	api    *slack.Client
	logger *slog.Logger
}

func New(token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    slack.New(token),
		logger: logger,
	}
}

// FetchHistory returns up to limit messages at/before latest, newest first.
// Slack rate limits surface as *transcript.RateLimitedError so the assembler
// can honor the Retry-After interval.
func (c *Client) FetchHistory(ctx context.Context, channel, latest string, limit int, inclusive bool) ([]transcript.Message, error) {
	response, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Latest:    latest,
		Limit:     limit,
		Inclusive: inclusive,
	})
	if err != nil {
		var rateLimited *slack.RateLimitedError
		if errors.As(err, &rateLimited) {
			return nil, &transcript.RateLimitedError{RetryAfter: rateLimited.RetryAfter}
		}
		return nil, fmt.Errorf("fetch conversation history: %w", err)
	}

	messages := make([]transcript.Message, 0, len(response.Messages))
	for _, msg := range response.Messages {
		messages = append(messages, transcript.Message{
			Timestamp: msg.Timestamp,
			Channel:   channel,
			Author:    msg.User,
			Text:      msg.Text,
			IsBot:     msg.BotID != "",
		})
	}
	return messages, nil
}

// Notify posts text to a channel. One attempt, no retries.
func (c *Client) Notify(ctx context.Context, channel, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post message to %s: %w", channel, err)
	}
	return nil
}
