package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/otiai10/gosseract/v2"

	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

const (
	tesseractName = "tesseract"

	// Tesseract gives no usable per-line confidence through the plain text
	// API, and local OCR on angled spine text is noticeably weaker than the
	// vision models, so every line gets one flat score.
	tesseractConfidence = 0.75
)

// The tesseract engine is expensive to initialize, so a single process-wide
// client is created lazily on first use and reused across invocations.
// Engine calls are serialized: the client is not safe for concurrent use.
var (
	engineMu sync.Mutex
	engine   *gosseract.Client
)

func acquireEngine(langs []string) (*gosseract.Client, error) {
	if engine != nil {
		return engine, nil
	}
	client := gosseract.NewClient()
	if len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			client.Close()
			return nil, err
		}
	}
	engine = client
	return engine, nil
}

// ReleaseEngine shuts down the shared tesseract engine. Idempotent; safe to
// call when the engine was never initialized.
func ReleaseEngine() {
	engineMu.Lock()
	defer engineMu.Unlock()
	if engine != nil {
		engine.Close()
		engine = nil
	}
}

// TesseractBackend runs local OCR. When the caller supplies region hints the
// image is cropped and each region recognized separately, which reads angled
// spine text far better than one pass over the whole shelf; with no hints the
// whole image is recognized in one pass.
type TesseractBackend struct {
	languages []string
}

func NewTesseractBackend(languages []string) *TesseractBackend {
	return &TesseractBackend{languages: languages}
}

func (b *TesseractBackend) Name() string { return tesseractName }

func (b *TesseractBackend) Detect(ctx context.Context, img Image) ([]model.RawDetection, error) {
	engineMu.Lock()
	defer engineMu.Unlock()

	client, err := acquireEngine(b.languages)
	if err != nil {
		return nil, Wrap(ErrUnavailable, tesseractName, err)
	}

	regions, err := regionImages(img)
	if err != nil {
		return nil, Wrap(ErrMalformedResponse, tesseractName, err)
	}

	var detections []model.RawDetection
	for _, regionBytes := range regions {
		if ctx.Err() != nil {
			return nil, Wrap(classifyCtxErr(ctx.Err()), tesseractName, ctx.Err())
		}
		if err := client.SetImageFromBytes(regionBytes); err != nil {
			return nil, Wrap(ErrMalformedResponse, tesseractName, err)
		}
		text, err := client.Text()
		if err != nil {
			return nil, Wrap(ErrUnavailable, tesseractName, err)
		}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			detections = append(detections, model.RawDetection{
				Text:              line,
				BackendConfidence: tesseractConfidence,
				BackendName:       tesseractName,
			})
		}
	}
	return detections, nil
}

// regionImages returns the encoded crops to recognize: one per valid hint, or
// the input bytes unchanged when no hints apply.
func regionImages(img Image) ([][]byte, error) {
	if len(img.Hints) == 0 {
		return [][]byte{img.Bytes}, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := decoded.Bounds()

	var crops [][]byte
	for _, hint := range img.Hints {
		rect := image.Rect(hint.X, hint.Y, hint.X+hint.Width, hint.Y+hint.Height).Intersect(bounds)
		if rect.Empty() {
			continue
		}
		crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(crop, crop.Bounds(), decoded, rect.Min, draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, crop); err != nil {
			return nil, fmt.Errorf("encode crop: %w", err)
		}
		crops = append(crops, buf.Bytes())
	}
	if len(crops) == 0 {
		// Hints were all out of bounds; fall back to the whole image.
		return [][]byte{img.Bytes}, nil
	}
	return crops, nil
}

func classifyCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUnavailable
}
