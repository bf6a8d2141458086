package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bernsteinjack-debug/shelfsnap/internal/backend"
	"github.com/bernsteinjack-debug/shelfsnap/internal/config"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
	"github.com/bernsteinjack-debug/shelfsnap/internal/enrich"
)

// maxImageBytes bounds uploads; shelf photos are a few MB at most.
const maxImageBytes = 20 << 20

type Server struct {
	Pipeline *core.Pipeline
	Enricher *enrich.Client
	Logger   *slog.Logger
}

// New wires the detection pipeline and enrichment client from configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	adapters, err := backend.Chain(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		Pipeline: core.NewPipeline(adapters, cfg, logger),
		Enricher: enrich.NewClient(cfg.Enrichment.OMDBAPIKey, cfg.Enrichment.BaseURL),
		Logger:   logger.With("component", "server"),
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.Health)
	v1.POST("/detect", s.Detect)
	v1.GET("/enrich", s.Enrich)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"backends": s.Pipeline.BackendNames(),
	})
}

// DetectRequest is the JSON form of a detect call. Multipart uploads with a
// "photo" file field are accepted as well.
type DetectRequest struct {
	ImageBase64 string         `json:"image_base64"`
	MediaType   string         `json:"media_type"`
	Regions     []model.Region `json:"regions,omitempty"`
}

type DetectResponse struct {
	Results  []model.DetectionResult `json:"results"`
	Total    int                     `json:"total"`
	Outcomes []model.BackendOutcome  `json:"outcomes,omitempty"`
}

// Detect runs the title detection pipeline over an uploaded shelf photo.
// Pass ?diagnostics=true to include per-backend outcomes in the response.
// An empty result list is a normal 200; the client prompts manual entry.
func (s *Server) Detect(c *gin.Context) {
	img, ok := s.readImage(c)
	if !ok {
		return
	}

	results, outcomes, err := s.Pipeline.Detect(c.Request.Context(), img)
	if err != nil {
		if errors.Is(err, core.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty image"})
			return
		}
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing useful to send.
			c.Status(http.StatusRequestTimeout)
			return
		}
		s.Logger.Error("detection failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	resp := DetectResponse{
		Results: results,
		Total:   len(results),
	}
	if c.Query("diagnostics") == "true" {
		resp.Outcomes = outcomes
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Enrich(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title parameter is required"})
		return
	}
	if !s.Enricher.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "enrichment not configured"})
		return
	}

	meta, err := s.Enricher.Lookup(c.Request.Context(), title)
	if err != nil {
		s.Logger.Error("enrichment lookup failed", "title", title, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "enrichment lookup failed"})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no metadata found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// readImage extracts the image from either a multipart "photo" field or the
// JSON request body. Responds with 400 and returns ok=false on bad input.
func (s *Server) readImage(c *gin.Context) (backend.Image, bool) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/") {
		file, header, err := c.Request.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing photo file"})
			return backend.Image{}, false
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
			return backend.Image{}, false
		}
		return backend.Image{
			Bytes:     data,
			MediaType: header.Header.Get("Content-Type"),
		}, true
	}

	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return backend.Image{}, false
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base64 image"})
		return backend.Image{}, false
	}
	return backend.Image{
		Bytes:     data,
		MediaType: req.MediaType,
		Hints:     req.Regions,
	}, true
}
