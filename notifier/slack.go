package notifier

import (
	"context"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/TEENet-io/ncg-bridge/metrics"
)

const DefaultSlackTimeout = 10 * time.Second

type SlackConfig struct {
	Token   string
	Channel string
	// APIURL overrides https://slack.com/api/, mostly for tests.
	APIURL string
	// Timeout bounds a single post, DefaultSlackTimeout if zero.
	Timeout time.Duration
}

type SlackNotifier struct {
	client  *slack.Client
	channel string
	timeout time.Duration
}

func NewSlackNotifier(cfg *SlackConfig) *SlackNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultSlackTimeout
	}

	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &SlackNotifier{
		client:  slack.New(cfg.Token, opts...),
		channel: cfg.Channel,
		timeout: timeout,
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, msg *Message) {
	attachment := slack.Attachment{
		Color:    msg.Color,
		Title:    msg.Title,
		Text:     msg.Text,
		Fallback: msg.Title,
	}
	for _, f := range msg.Fields {
		attachment.Fields = append(attachment.Fields, slack.AttachmentField{
			Title: f.Title,
			Value: f.Value,
		})
	}

	// callers may pass a context that never ends
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, _, err := n.client.PostMessageContext(
		ctx,
		n.channel,
		slack.MsgOptionText(msg.Title, false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues("slack").Inc()
		logger.WithFields(logger.Fields{
			"channel": n.channel,
			"title":   msg.Title,
		}).WithError(err).Warn("failed to post slack message")
	}
}
