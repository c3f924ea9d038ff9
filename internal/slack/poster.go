package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/minutes/internal/processor"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster sends batch digests to a Slack channel. Without a token or channel
// the digest is written to the log instead.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// Enabled reports whether digests go to Slack.
func (p *Poster) Enabled() bool {
	return p.token != "" && p.channel != ""
}

// PostDigest summarises the stored and failed documents of one batch.
func (p *Poster) PostDigest(ctx context.Context, results []processor.FileResult) error {
	text := FormatDigest(results)
	if !p.Enabled() {
		p.logger.Info("batch digest", "digest", text)
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"channel":      p.channel,
		"text":         text,
		"unfurl_links": false,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	ts, err := p.post(ctx, body)
	if err != nil {
		return err
	}
	p.logger.Info("posted digest to slack", "ts", ts, "documents", len(results))
	return nil
}

func (p *Poster) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

// FormatDigest renders the Slack mrkdwn digest for a batch. Skipped documents
// are counted but not listed.
func FormatDigest(results []processor.FileResult) string {
	var stored, failed []processor.FileResult
	skipped := 0
	for _, r := range results {
		switch r.Status {
		case processor.StatusStored:
			stored = append(stored, r)
		case processor.StatusFailed:
			failed = append(failed, r)
		default:
			skipped++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Meeting notes processed:* %d stored, %d failed, %d skipped\n", len(stored), len(failed), skipped)

	if len(stored) > 0 {
		sb.WriteString("\n*Stored*\n")
		for _, r := range stored {
			entity := "_unassociated_"
			if r.EntityType != "" {
				entity = fmt.Sprintf("%s `%s`", r.EntityType, r.EntityID)
				if r.MatchedEmail != "" {
					entity += " via " + r.MatchedEmail
				}
			}
			fmt.Fprintf(&sb, "• %s → %s\n", docLink(r), entity)
		}
	}

	if len(failed) > 0 {
		sb.WriteString("\n*Failed*\n")
		for _, r := range failed {
			fmt.Fprintf(&sb, "• %s: %s\n", docLink(r), r.Error)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func docLink(r processor.FileResult) string {
	name := r.Document.Name
	if name == "" {
		name = r.Document.ID
	}
	if r.Document.WebViewLink == "" {
		return name
	}
	return fmt.Sprintf("<%s|%s>", r.Document.WebViewLink, name)
}
