package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	googleVisionName = "google_vision"

	googleVisionConfidence = 0.90
	googleVisionMaxResults = 50
)

// GoogleVisionBackend runs Cloud Vision document text detection over the
// whole image and emits one raw detection per text line. Shelf photos put one
// spine per line, so lines are the natural candidate unit.
type GoogleVisionBackend struct {
	service *vision.Service
}

func NewGoogleVisionBackend(ctx context.Context, apiKey string) (*GoogleVisionBackend, error) {
	b := &GoogleVisionBackend{}
	if apiKey == "" {
		return b, nil
	}
	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	b.service = svc
	return b, nil
}

func (b *GoogleVisionBackend) Name() string { return googleVisionName }

func (b *GoogleVisionBackend) Detect(ctx context.Context, img Image) ([]model.RawDetection, error) {
	if b.service == nil {
		return nil, Wrap(ErrUnavailable, googleVisionName, errors.New("api key not configured"))
	}

	req := &vision.AnnotateImageRequest{
		Image: &vision.Image{
			Content: base64.StdEncoding.EncodeToString(img.Bytes),
		},
		Features: []*vision.Feature{
			{Type: "DOCUMENT_TEXT_DETECTION", MaxResults: googleVisionMaxResults},
		},
		ImageContext: &vision.ImageContext{
			LanguageHints: []string{"en"},
		},
	}

	resp, err := b.service.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, Wrap(classifyGoogleErr(err), googleVisionName, err)
	}

	if len(resp.Responses) == 0 {
		return nil, Wrap(ErrMalformedResponse, googleVisionName, errors.New("empty annotate response"))
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return nil, Wrap(ErrMalformedResponse, googleVisionName,
			fmt.Errorf("vision api error: %s", annotated.Error.Message))
	}
	if annotated.FullTextAnnotation == nil || annotated.FullTextAnnotation.Text == "" {
		return nil, nil
	}

	var detections []model.RawDetection
	for _, line := range strings.Split(annotated.FullTextAnnotation.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		detections = append(detections, model.RawDetection{
			Text:              line,
			BackendConfidence: googleVisionConfidence,
			BackendName:       googleVisionName,
		})
	}
	return detections, nil
}
