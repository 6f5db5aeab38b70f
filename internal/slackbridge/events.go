package slackbridge

import (
	"net/http"

	"github.com/slack-go/slack"
)

// VerifySignature checks Slack's HMAC signing scheme (timestamp + body) on an
// inbound webhook request. A failure means the request never reaches the
// pipeline.
func VerifySignature(signingSecret string, header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}
