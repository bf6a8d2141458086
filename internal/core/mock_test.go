package core

import (
	"context"

	"github.com/bernsteinjack-debug/shelfsnap/internal/backend"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
)

// MockBackend is a scriptable backend adapter for pipeline tests.
type MockBackend struct {
	name       string
	detections []model.RawDetection
	err        error
	block      bool // block until the attempt context is done
	calls      int
}

func (m *MockBackend) Name() string { return m.name }

func (m *MockBackend) Detect(ctx context.Context, img backend.Image) ([]model.RawDetection, error) {
	m.calls++
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.detections, nil
}

func raw(text string, confidence float64, backendName string) model.RawDetection {
	return model.RawDetection{
		Text:              text,
		BackendConfidence: confidence,
		BackendName:       backendName,
	}
}
