package alert

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// webhookSession abstracts the discordgo.Session method we use, enabling
// test mocks.
type webhookSession interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier executes a Discord webhook.
type DiscordNotifier struct {
	sess  webhookSession
	id    string
	token string
}

// NewDiscord returns a notifier for a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>.
func NewDiscord(rawURL string) (*DiscordNotifier, error) {
	id, token, err := parseWebhookURL(rawURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution needs no bot token.
	sess, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("alert: discord session: %w", err)
	}
	return &DiscordNotifier{sess: sess, id: id, token: token}, nil
}

func parseWebhookURL(rawURL string) (id, token string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("alert: discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("alert: discord webhook url %q: want .../webhooks/<id>/<token>", rawURL)
}

func (d *DiscordNotifier) Name() string { return "discord" }

// Notify sends msg as one embed.
func (d *DiscordNotifier) Notify(ctx context.Context, msg Message) error {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       0xe8a317,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: true})
	}
	_, err := d.sess.WebhookExecute(d.id, d.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	return err
}
