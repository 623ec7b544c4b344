package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

const discordAPIBase = "https://discord.com/api/v10"

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	URL         string              `json:"url,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Image       *discordEmbedImage  `json:"image,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbedImage struct {
	URL string `json:"url"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type rateLimitResponse struct {
	RetryAfter float64 `json:"retry_after"`
}

func toEmbed(msg Message) discordEmbed {
	embed := discordEmbed{
		Title:       msg.Title,
		URL:         msg.URL,
		Description: msg.Description,
		Color:       msg.Color,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if msg.ImageURL != "" {
		embed.Image = &discordEmbedImage{URL: msg.ImageURL}
	}
	if msg.FooterText != "" {
		embed.Footer = &discordEmbedFooter{Text: msg.FooterText}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}
	return embed
}

// DiscordWebhook broadcasts messages to a channel webhook.
type DiscordWebhook struct {
	http       *resty.Client
	webhookURL string
	username   string
	avatarURL  string
}

// NewDiscordWebhook creates a webhook broadcaster. username and avatarURL
// override the webhook's defaults and may be empty.
func NewDiscordWebhook(webhookURL, username, avatarURL string) *DiscordWebhook {
	return &DiscordWebhook{
		http:       resty.New().SetTimeout(15 * time.Second),
		webhookURL: webhookURL,
		username:   username,
		avatarURL:  avatarURL,
	}
}

func (d *DiscordWebhook) Send(msg Message) error {
	payload := map[string]any{
		"embeds": []discordEmbed{toEmbed(msg)},
	}
	if d.username != "" {
		payload["username"] = d.username
	}
	if d.avatarURL != "" {
		payload["avatar_url"] = d.avatarURL
	}
	return postWithRetry(d.http, d.webhookURL, nil, payload)
}

// DiscordBot delivers direct messages through a bot token.
type DiscordBot struct {
	http  *resty.Client
	token string

	// DM channel IDs are stable per user, cache them for the run.
	channels map[string]string
}

func NewDiscordBot(token string) *DiscordBot {
	return &DiscordBot{
		http:     resty.New().SetTimeout(15 * time.Second),
		token:    token,
		channels: make(map[string]string),
	}
}

func (d *DiscordBot) SendTo(userID string, msg Message) error {
	channelID, err := d.dmChannel(userID)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"embeds": []discordEmbed{toEmbed(msg)},
	}
	url := fmt.Sprintf("%s/channels/%s/messages", discordAPIBase, channelID)
	return postWithRetry(d.http, url, d.authHeader(), payload)
}

func (d *DiscordBot) dmChannel(userID string) (string, error) {
	if id, ok := d.channels[userID]; ok {
		return id, nil
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := d.http.R().
		SetHeaders(d.authHeader()).
		SetBody(map[string]string{"recipient_id": userID}).
		SetResult(&created).
		Post(discordAPIBase + "/users/@me/channels")
	if err != nil {
		return "", fmt.Errorf("failed to open DM channel for %s: %w", userID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to open DM channel for %s: status %d", userID, resp.StatusCode())
	}
	d.channels[userID] = created.ID
	return created.ID, nil
}

func (d *DiscordBot) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bot " + d.token}
}

// postWithRetry posts the payload, retrying once on a 429 after the wait the
// server asks for.
func postWithRetry(client *resty.Client, url string, headers map[string]string, payload any) error {
	for attempt := 0; attempt < 2; attempt++ {
		var rl rateLimitResponse
		resp, err := client.R().
			SetHeaders(headers).
			SetBody(payload).
			SetError(&rl).
			Post(url)
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
		if resp.StatusCode() == 429 && attempt == 0 {
			wait := time.Duration(rl.RetryAfter * float64(time.Second))
			if wait <= 0 {
				wait = time.Second
			}
			log.Printf("Discord rate limited, retrying in %v", wait)
			time.Sleep(wait)
			continue
		}
		if resp.IsError() {
			return fmt.Errorf("discord returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return nil
	}
	return fmt.Errorf("discord rate limit persisted after retry")
}
