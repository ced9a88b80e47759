package alert

import (
	"context"

	"github.com/slack-go/slack"
)

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	URL string
}

// NewSlack returns a notifier for the incoming webhook at url.
func NewSlack(url string) *SlackNotifier {
	return &SlackNotifier{URL: url}
}

func (s *SlackNotifier) Name() string { return "slack" }

// Notify posts msg as an attachment with one short field per line.
func (s *SlackNotifier) Notify(ctx context.Context, msg Message) error {
	att := slack.Attachment{
		Color: "#e8a317",
		Title: msg.Title,
		Text:  msg.Body,
	}
	for _, f := range msg.Fields {
		att.Fields = append(att.Fields, slack.AttachmentField{Title: f.Name, Value: f.Value, Short: true})
	}
	return slack.PostWebhookContext(ctx, s.URL, &slack.WebhookMessage{
		Text:        msg.Title,
		Attachments: []slack.Attachment{att},
	})
}
