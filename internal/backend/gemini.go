package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	geminiName = "gemini"

	geminiJSONConfidence = 0.92
	geminiTextConfidence = 0.87

	geminiMaxTextTitles = 30
)

// GeminiBackend reads spine titles with a Google Gemini vision model.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

func NewGeminiBackend(ctx context.Context, apiKey string, modelName string) (*GeminiBackend, error) {
	b := &GeminiBackend{model: modelName}
	if apiKey == "" {
		return b, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	b.client = client
	return b, nil
}

func (b *GeminiBackend) Name() string { return geminiName }

func (b *GeminiBackend) Detect(ctx context.Context, img Image) ([]model.RawDetection, error) {
	if b.client == nil {
		return nil, Wrap(ErrUnavailable, geminiName, errors.New("api key not configured"))
	}

	format := "jpeg"
	if mt := img.MediaType; mt != "" {
		format = strings.TrimPrefix(mt, "image/")
	}

	gm := b.client.GenerativeModel(b.model)
	resp, err := gm.GenerateContent(ctx, genai.ImageData(format, img.Bytes), genai.Text(spinePrompt))
	if err != nil {
		return nil, Wrap(classifyGoogleErr(err), geminiName, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, Wrap(ErrMalformedResponse, geminiName, errors.New("no response candidates"))
	}
	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, Wrap(ErrMalformedResponse, geminiName, errors.New("unexpected response part type"))
	}
	content := string(txt)

	titles, err := parseTitleArray(content)
	confidence := geminiJSONConfidence
	if err != nil {
		titles = parseTitleLines(content, geminiMaxTextTitles)
		confidence = geminiTextConfidence
	}

	detections := make([]model.RawDetection, 0, len(titles))
	for _, t := range titles {
		detections = append(detections, model.RawDetection{
			Text:              t,
			BackendConfidence: confidence,
			BackendName:       geminiName,
		})
	}
	return detections, nil
}

// classifyGoogleErr maps googleapi transport errors onto the backend error
// taxonomy. Shared by the Gemini and Cloud Vision adapters.
func classifyGoogleErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusTooManyRequests:
			return ErrRateLimited
		}
	}
	return ErrUnavailable
}
