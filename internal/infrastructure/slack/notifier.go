// Package slack posts trending digests to a Slack channel.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// Notifier wraps a slack-go client bound to one channel.
type Notifier struct {
	api     *slack.Client
	channel string
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier builds a notifier; opts are passed to slack.New.
func NewNotifier(token, channel string, opts ...slack.Option) *Notifier {
	return &Notifier{api: slack.New(token, opts...), channel: channel}
}

// Name identifies the channel in logs.
func (n *Notifier) Name() string { return "slack" }

// PublishDigest posts the digest as a plain message.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.channel == "" {
		return fmt.Errorf("slack notifier misconfigured")
	}
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(digest, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("%w: slack post: %v", domain.ErrUpstream, err)
	}
	return nil
}
