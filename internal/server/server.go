// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/pipeline"
	"github.com/ppiankov/truthquest/internal/transcript"
)

// Analyzer is the part of the pipeline the HTTP API needs
type Analyzer interface {
	Extract(ctx context.Context, text string) (*model.Extraction, error)
	Run(ctx context.Context, text string, mode model.Mode) (*model.Report, error)
	Analyze(ctx context.Context, videoRef string, mode model.Mode) (*model.Report, error)
	FetchTranscript(ctx context.Context, videoRef string) (*transcript.Transcript, error)
	Capabilities(ctx context.Context) []pipeline.CapabilityStatus
}

const (
	userIDHeader = "X-User-ID"

	// statusClientClosed is the non-standard status logged when the caller
	// disconnects before the run finishes
	statusClientClosed = 499

	capabilityCheckTimeout = 15 * time.Second
)

type handlers struct {
	analyzer   Analyzer
	quota      pipeline.QuotaGate
	runTimeout time.Duration
	log        io.Writer
}

// New builds the gin engine. A nil quota allows every request.
func New(cfg model.ServerConfig, analyzer Analyzer, quota pipeline.QuotaGate, log io.Writer) *gin.Engine {
	if quota == nil {
		quota = pipeline.AllowAll{}
	}
	if log == nil {
		log = io.Discard
	}

	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	h := handlers{
		analyzer:   analyzer,
		quota:      quota,
		runTimeout: cfg.RunTimeout,
		log:        log,
	}

	api := g.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/transcription", h.transcription)
		api.POST("/extract-facts", h.extractFacts)
		api.POST("/analyze", h.analyze)
	}
	return g
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", userIDHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	httpSrv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

// health answers liveness. With ?deep=true it also checks that the
// language models are reachable and reports 503 when one is not.
func (h handlers) health(c *gin.Context) {
	if c.Query("deep") != "true" {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Truth Quest API is running"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), capabilityCheckTimeout)
	defer cancel()

	capabilities := h.analyzer.Capabilities(ctx)
	status, code := "ok", http.StatusOK
	for _, s := range capabilities {
		if !s.Available {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, gin.H{
		"status":       status,
		"message":      "Truth Quest API is running",
		"capabilities": capabilities,
	})
}

func (h handlers) transcription(c *gin.Context) {
	var req struct {
		YouTubeURL string `json:"youtubeUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.YouTubeURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "YouTube URL is required"})
		return
	}

	t, err := h.analyzer.FetchTranscript(c.Request.Context(), req.YouTubeURL)
	if err != nil {
		h.fail(c, "Failed to fetch transcription", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"videoId": t.VideoID,
		"transcript": gin.H{
			"full":     t.FullText(),
			"segments": t.Segments,
		},
		"method": t.Method,
	})
}

func (h handlers) extractFacts(c *gin.Context) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transcript text is required"})
		return
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	extraction, err := h.analyzer.Extract(ctx, req.Transcript)
	if err != nil {
		h.fail(c, "Failed to extract facts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"factCount":     len(extraction.Facts),
		"facts":         extraction.Facts,
		"centralThesis": extraction.CentralThesis,
		"usage":         extraction.Usage,
	})
}

func (h handlers) analyze(c *gin.Context) {
	var req struct {
		Transcript string `json:"transcript"`
		YouTubeURL string `json:"youtubeUrl"`
		Mode       string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Transcript == "" && req.YouTubeURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transcript text or YouTube URL is required"})
		return
	}

	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		h.fail(c, "Invalid check mode", err)
		return
	}

	identity := c.GetHeader(userIDHeader)
	if identity == "" {
		identity = "ip:" + c.ClientIP()
	}

	ok, err := h.quota.WithinLimit(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, "Failed to check quota", err)
		return
	}
	if !ok {
		h.fail(c, "Daily analysis limit reached", model.ErrQuotaExceeded)
		return
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	var report *model.Report
	if req.Transcript != "" {
		report, err = h.analyzer.Run(ctx, req.Transcript, mode)
	} else {
		report, err = h.analyzer.Analyze(ctx, req.YouTubeURL, mode)
	}
	if err != nil {
		h.fail(c, "Failed to analyze transcript", err)
		return
	}

	if err := h.quota.Record(c.Request.Context(), identity); err != nil {
		fmt.Fprintf(h.log, "Warning: failed to record quota for %s: %v\n", identity, err)
	}

	c.JSON(http.StatusOK, report)
}

func (h handlers) runContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.runTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.runTimeout)
}

func (h handlers) fail(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == statusClientClosed {
		c.AbortWithStatus(status)
		return
	}
	if status >= http.StatusInternalServerError {
		fmt.Fprintf(h.log, "%s %s: %v\n", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var extractionErr *model.ExtractionError
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrEmptyTranscript):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrTranscriptUnavailable):
		return http.StatusNotFound
	case errors.Is(err, model.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &extractionErr), errors.Is(err, model.ErrCapabilityUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
