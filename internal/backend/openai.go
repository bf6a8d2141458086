package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	openaiName = "openai"

	openaiJSONConfidence = 0.93
	openaiTextConfidence = 0.88

	openaiMaxTextTitles = 30
)

// OpenAIBackend reads spine titles with an OpenAI vision-capable chat model.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey string, modelName string, baseURL string) *OpenAIBackend {
	b := &OpenAIBackend{model: modelName}
	if apiKey != "" {
		config := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			config.BaseURL = baseURL
		}
		b.client = openai.NewClientWithConfig(config)
	}
	return b
}

func (b *OpenAIBackend) Name() string { return openaiName }

func (b *OpenAIBackend) Detect(ctx context.Context, img Image) ([]model.RawDetection, error) {
	if b.client == nil {
		return nil, Wrap(ErrUnavailable, openaiName, errors.New("api key not configured"))
	}

	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(img.Bytes))

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: spinePrompt,
					},
				},
			},
		},
		MaxTokens: 4000,
	})
	if err != nil {
		return nil, Wrap(classifyOpenAIErr(err), openaiName, err)
	}

	if len(resp.Choices) == 0 {
		return nil, Wrap(ErrMalformedResponse, openaiName, errors.New("no response choices"))
	}
	content := resp.Choices[0].Message.Content

	titles, err := parseTitleArray(content)
	confidence := openaiJSONConfidence
	if err != nil {
		titles = parseTitleLines(content, openaiMaxTextTitles)
		confidence = openaiTextConfidence
	}

	detections := make([]model.RawDetection, 0, len(titles))
	for _, t := range titles {
		detections = append(detections, model.RawDetection{
			Text:              t,
			BackendConfidence: confidence,
			BackendName:       openaiName,
		})
	}
	return detections, nil
}

func classifyOpenAIErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusTooManyRequests:
			return ErrRateLimited
		}
	}
	return ErrUnavailable
}
