package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	colorGreen  = 0x2ECC71 // rebuild with no skips
	colorYellow = 0xF1C40F // rebuild with skipped products
)

// Discord allows max 10 embed fields we care to fill; we cap drop rows lower.
const maxDropRows = 5

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendRebuildComplete announces a finished rebuild as a Discord embed, with
// the top price drops as fields.
func (d *DiscordNotifier) SendRebuildComplete(ctx context.Context, payload *RebuildPayload) error {
	embed := discordEmbed{
		Title: fmt.Sprintf("Catalog rebuilt: %d phones", payload.Records),
		Color: colorGreen,
		Fields: []discordEmbedField{
			{Name: "Version", Value: payload.Version, Inline: true},
			{Name: "Duration", Value: payload.Duration.Round(time.Millisecond).String(), Inline: true},
		},
	}

	if payload.Skipped > 0 {
		embed.Color = colorYellow
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Skipped",
			Value:  fmt.Sprintf("%d", payload.Skipped),
			Inline: true,
		})
	}

	limit := min(len(payload.TopDrops), maxDropRows)
	for i := range limit {
		drop := &payload.TopDrops[i]
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: fmt.Sprintf("%s %s", drop.Brand, drop.Name),
			Value: fmt.Sprintf("₱%.0f (save ₱%.0f, %d%%)",
				drop.Price, drop.Savings, drop.Percent),
		})
	}

	return d.post(ctx, discordWebhookPayload{Embeds: []discordEmbed{embed}})
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
