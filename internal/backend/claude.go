package backend

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	claudeName = "claude"

	// Confidence assigned when the model answered with clean JSON vs. when
	// titles had to be scraped out of free text.
	claudeJSONConfidence = 0.95
	claudeTextConfidence = 0.90

	claudeMaxTextTitles = 30
)

// ClaudeBackend reads spine titles with Anthropic's Claude vision models.
type ClaudeBackend struct {
	client *anthropic.Client
	model  string
}

func NewClaudeBackend(apiKey string, modelName string) *ClaudeBackend {
	b := &ClaudeBackend{model: modelName}
	if apiKey != "" {
		b.client = anthropic.NewClient(apiKey)
	}
	return b
}

func (b *ClaudeBackend) Name() string { return claudeName }

func (b *ClaudeBackend) Detect(ctx context.Context, img Image) ([]model.RawDetection, error) {
	if b.client == nil {
		return nil, Wrap(ErrUnavailable, claudeName, errors.New("api key not configured"))
	}

	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	encoded := base64.StdEncoding.EncodeToString(img.Bytes)

	resp, err := b.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(b.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(
						anthropic.NewMessageContentSource(anthropic.MessagesContentSourceTypeBase64, mediaType, encoded),
					),
					anthropic.NewTextMessageContent(spinePrompt),
				},
			},
		},
		MaxTokens: 4000,
	})
	if err != nil {
		return nil, Wrap(classifyAnthropicErr(err), claudeName, err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return nil, Wrap(ErrMalformedResponse, claudeName, errors.New("empty response content"))
	}
	content := *resp.Content[0].Text

	titles, err := parseTitleArray(content)
	confidence := claudeJSONConfidence
	if err != nil {
		// The model ignored the JSON instruction; fall back to line parsing.
		titles = parseTitleLines(content, claudeMaxTextTitles)
		confidence = claudeTextConfidence
	}

	detections := make([]model.RawDetection, 0, len(titles))
	for _, t := range titles {
		detections = append(detections, model.RawDetection{
			Text:              t,
			BackendConfidence: confidence,
			BackendName:       claudeName,
		})
	}
	return detections, nil
}

func classifyAnthropicErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthenticationErr(), apiErr.IsPermissionErr():
			return ErrAuth
		case apiErr.IsRateLimitErr():
			return ErrRateLimited
		case apiErr.IsOverloadedErr():
			return ErrUnavailable
		}
	}
	return ErrUnavailable
}
