package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernsteinjack-debug/shelfsnap/internal/backend"
	"github.com/bernsteinjack-debug/shelfsnap/internal/config"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
	"github.com/bernsteinjack-debug/shelfsnap/internal/enrich"
)

type stubBackend struct {
	name       string
	detections []model.RawDetection
	err        error
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Detect(ctx context.Context, img backend.Image) ([]model.RawDetection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detections, nil
}

func newTestServer(backends ...backend.Adapter) *Server {
	gin.SetMode(gin.TestMode)
	return &Server{
		Pipeline: core.NewPipeline(backends, config.Default(), slog.Default()),
		Enricher: enrich.NewClient("", ""),
		Logger:   slog.Default(),
	}
}

func shelfBackend() *stubBackend {
	return &stubBackend{
		name: "stub",
		detections: []model.RawDetection{
			{Text: "THE DARK KNIGHT", BackendConfidence: 0.95, BackendName: "stub"},
			{Text: "SNATCH BLU-RAY", BackendConfidence: 0.9, BackendName: "stub"},
		},
	}
}

func TestDetect_JSONBody(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	body, _ := json.Marshal(DetectRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake-image")),
		MediaType:   "image/jpeg",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "THE DARK KNIGHT", resp.Results[0].Title)
	assert.Equal(t, "SNATCH", resp.Results[1].Title)
	assert.Empty(t, resp.Outcomes, "diagnostics are opt-in")
}

func TestDetect_DiagnosticsOptIn(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	body, _ := json.Marshal(DetectRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake-image")),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect?diagnostics=true", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, "stub", resp.Outcomes[0].BackendName)
	assert.True(t, resp.Outcomes[0].Success)
}

func TestDetect_MultipartUpload(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "shelf.jpg")
	require.NoError(t, err)
	part.Write([]byte("fake-image"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestDetect_InvalidBase64(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect",
		bytes.NewReader([]byte(`{"image_base64": "not-base64!!!"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetect_EmptyImage(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect",
		bytes.NewReader([]byte(`{"image_base64": ""}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetect_AllBackendsFailedReturnsEmptyList(t *testing.T) {
	failing := &stubBackend{name: "down", err: backend.Wrap(backend.ErrUnavailable, "down", nil)}
	srv := newTestServer(failing)
	r := srv.SetupRouter()

	body, _ := json.Marshal(DetectRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake-image")),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect?diagnostics=true", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// No titles is a valid, silent outcome; never an error and never
	// padded with made-up titles.
	require.Equal(t, http.StatusOK, w.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	require.Len(t, resp.Outcomes, 1)
	assert.False(t, resp.Outcomes[0].Success)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stub")
}

func TestEnrich_RequiresTitle(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/enrich", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrich_NotConfigured(t *testing.T) {
	srv := newTestServer(shelfBackend())
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/enrich?title=Heat", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEnrich_LookupFlow(t *testing.T) {
	omdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("t") == "Heat" {
			w.Write([]byte(`{"Response": "True", "Title": "Heat", "Year": "1995"}`))
			return
		}
		w.Write([]byte(`{"Response": "False"}`))
	}))
	defer omdb.Close()

	srv := newTestServer(shelfBackend())
	srv.Enricher = enrich.NewClient("test-key", omdb.URL)
	r := srv.SetupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/enrich?title=Heat", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1995")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/enrich?title=Unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
