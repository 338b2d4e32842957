// Package api exposes the scoring engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lexiscan/lexiscan/internal/database"
	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/processor"
)

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Handler handles HTTP requests for the lexiscan API. The profile and
// history repositories are optional; without a database the profile
// endpoints return 503 and scoring history is not recorded.
type Handler struct {
	registry       *detector.Registry
	batchProcessor *processor.BatchProcessor
	profilesRepo   *database.ProfilesRepository
	historyRepo    *database.HistoryRepository
	logger         Logger
	serviceName    string
	serviceVersion string
}

// NewHandler creates a new API handler.
func NewHandler(
	registry *detector.Registry,
	batchProcessor *processor.BatchProcessor,
	profilesRepo *database.ProfilesRepository,
	historyRepo *database.HistoryRepository,
	logger Logger,
	serviceName, serviceVersion string,
) *Handler {
	return &Handler{
		registry:       registry,
		batchProcessor: batchProcessor,
		profilesRepo:   profilesRepo,
		historyRepo:    historyRepo,
		logger:         logger,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
	}
}

// Score handles POST /api/v1/score
func (h *Handler) Score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid scoring request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng, ok := h.registry.Engine(req.Detector)
	if !ok {
		h.logger.Warn("Unknown detector requested", "detector", req.Detector)
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown detector: " + req.Detector})
		return
	}

	start := time.Now()

	var result *domain.ScoringResult
	var err error
	if req.Sensitivity != nil {
		result, err = eng.ScoreWithSensitivity(c.Request.Context(), req.Text, *req.Sensitivity)
	} else {
		result, err = eng.Score(c.Request.Context(), req.Text)
	}
	if err != nil {
		h.logger.Error("Scoring failed", "detector", req.Detector, "error", err)
		c.JSON(http.StatusInternalServerError, ScoreResponse{Error: err.Error()})
		return
	}

	h.recordHistory(c, result, len(req.Text), time.Since(start))

	h.logger.Info("Text scored",
		"detector", result.Detector,
		"classification", result.Classification,
		"aggregate_score", result.AggregateScore,
	)

	c.JSON(http.StatusOK, ScoreResponse{Result: result})
}

// ScoreBatch handles POST /api/v1/score/batch
func (h *Handler) ScoreBatch(c *gin.Context) {
	var req BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid batch scoring request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sensitivity := -1.0
	if req.Sensitivity != nil {
		sensitivity = *req.Sensitivity
	}

	results, err := h.batchProcessor.Process(c.Request.Context(), req.Detector, req.Texts, sensitivity)
	if err != nil {
		if errors.Is(err, processor.ErrUnknownDetector) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Batch scoring failed", "detector", req.Detector, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Batch scored", "detector", req.Detector, "total", len(results))

	c.JSON(http.StatusOK, BatchScoreResponse{
		Results: results,
		Total:   len(results),
	})
}

// ListDetectors handles GET /api/v1/detectors
func (h *Handler) ListDetectors(c *gin.Context) {
	profiles := h.registry.Profiles()

	response := make([]DetectorResponse, len(profiles))
	for i := range profiles {
		response[i] = toDetectorResponse(&profiles[i])
	}

	c.JSON(http.StatusOK, DetectorsListResponse{
		Detectors: response,
		Total:     len(response),
	})
}

// GetDetector handles GET /api/v1/detectors/:name
func (h *Handler) GetDetector(c *gin.Context) {
	name := c.Param("name")

	eng, ok := h.registry.Engine(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown detector: " + name})
		return
	}

	profile := eng.Profile()
	c.JSON(http.StatusOK, profile)
}

// CreateProfile handles POST /api/v1/profiles
func (h *Handler) CreateProfile(c *gin.Context) {
	if h.profilesRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile storage is not enabled"})
		return
	}

	var profile domain.DetectorProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.logger.Warn("Invalid create profile request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Compiling registers the profile only when it is well formed, so
	// validation and persistence cannot diverge.
	if err := h.registry.Register(profile); err != nil {
		h.logger.Warn("Profile rejected", "profile", profile.Name, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profilesRepo.Create(c.Request.Context(), &profile); err != nil {
		h.registry.Remove(profile.Name)
		h.logger.Error("Failed to store profile", "profile", profile.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile"})
		return
	}

	h.logger.Info("Profile created", "profile", profile.Name)

	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/v1/profiles/:name
func (h *Handler) UpdateProfile(c *gin.Context) {
	if h.profilesRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile storage is not enabled"})
		return
	}

	name := c.Param("name")

	var profile domain.DetectorProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.logger.Warn("Invalid update profile request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if profile.Name != name {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile name does not match URL"})
		return
	}

	if _, err := h.profilesRepo.GetByName(c.Request.Context(), name); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found: " + name})
			return
		}
		h.logger.Error("Failed to load profile", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	if err := h.registry.Register(profile); err != nil {
		h.logger.Warn("Profile rejected", "profile", name, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profilesRepo.Update(c.Request.Context(), &profile); err != nil {
		h.logger.Error("Failed to update profile", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.logger.Info("Profile updated", "profile", name)

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/v1/profiles/:name
func (h *Handler) DeleteProfile(c *gin.Context) {
	if h.profilesRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile storage is not enabled"})
		return
	}

	name := c.Param("name")

	if err := h.profilesRepo.Delete(c.Request.Context(), name); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found: " + name})
			return
		}
		h.logger.Error("Failed to delete profile", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}

	h.registry.Remove(name)

	h.logger.Info("Profile deleted", "profile", name)

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	if h.historyRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scoring history is not enabled"})
		return
	}

	stats, err := h.historyRepo.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetHistory handles GET /api/v1/stats/history
func (h *Handler) GetHistory(c *gin.Context) {
	if h.historyRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scoring history is not enabled"})
		return
	}

	records, err := h.historyRepo.Recent(c.Request.Context(), c.Query("detector"), 50)
	if err != nil {
		h.logger.Error("Failed to get history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "total": len(records)})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.serviceName,
		"version": h.serviceVersion,
	})
}

// ReadyCheck handles GET /ready
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.registry.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "detectors": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"detectors": h.registry.Len(),
	})
}

// recordHistory persists an audit row for one scoring call. History is
// best effort; failures are logged and never surface to the caller.
func (h *Handler) recordHistory(c *gin.Context, result *domain.ScoringResult, textLen int, took time.Duration) {
	if h.historyRepo == nil {
		return
	}
	record := &domain.ScoreRecord{
		Detector:         result.Detector,
		TextLength:       textLen,
		AggregateScore:   result.AggregateScore,
		Classification:   result.Classification,
		Confidence:       result.Confidence,
		Sensitivity:      result.Sensitivity,
		EmptyInput:       result.EmptyInput,
		ProcessingTimeMs: took.Milliseconds(),
		ScoredAt:         time.Now().UTC(),
	}
	if err := h.historyRepo.Create(c.Request.Context(), record); err != nil {
		h.logger.Warn("Failed to record scoring history", "detector", result.Detector, "error", err)
	}
}
