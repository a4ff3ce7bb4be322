// Package api exposes the HTTP boundary the presentation layer talks to:
// voice listing, audio generation, and replay of stored clips.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/service"
	"github.com/upskill-audio/text-to-audio-service/internal/synth"
)

// Preference values accepted from the presentation layer. "Any" relaxes
// the corresponding constraint.
const (
	preferenceAny    = "Any"
	preferenceFemale = "Female"
)

const healthCheckTimeout = 10 * time.Second

// HealthChecker probes the downstream synthesis provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler wires the generation service into HTTP routes.
type Handler struct {
	generator       *service.Generator
	health          HealthChecker
	store           core.ObjectStore
	defaultLanguage string
	preferFemale    bool
	log             *logger.Logger
}

// NewHandler creates an API handler. store may be nil when no object
// store is configured; the audio replay route then reports 404.
func NewHandler(
	generator *service.Generator,
	health HealthChecker,
	store core.ObjectStore,
	defaultLanguage string,
	preferFemale bool,
	log *logger.Logger,
) *Handler {
	return &Handler{
		generator:       generator,
		health:          health,
		store:           store,
		defaultLanguage: defaultLanguage,
		preferFemale:    preferFemale,
		log:             log,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.HandleHealth)

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/voices", h.HandleVoices)
	apiGroup.POST("/generate", h.HandleGenerate)
	apiGroup.GET("/audio/:key", h.HandleAudio)

	return router
}

// generateRequest is the JSON body of POST /api/v1/generate.
type generateRequest struct {
	Text       string  `json:"text" binding:"required"`
	Voice      string  `json:"voice"`
	Language   string  `json:"language"`
	Gender     string  `json:"gender"`
	RateSlider int     `json:"rate_slider"`
	Volume     float64 `json:"volume"`
	FileName   string  `json:"filename"`
}

// voicesResponse is the JSON body of GET /api/v1/voices.
type voicesResponse struct {
	Voices       []service.LabeledVoice `json:"voices"`
	DefaultLabel string                 `json:"default_label"`
}

// HandleHealth reports liveness and the provider's health.
func (h *Handler) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	err := h.health.HealthCheck(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleVoices returns the filtered, labeled voice list for the query's
// language and gender preferences, falling back to the configured
// defaults when the query is silent.
func (h *Handler) HandleVoices(c *gin.Context) {
	locale, preferFemale := h.resolvePreferences(
		c.Query("language"),
		c.Query("gender"),
	)

	labeled, defaultLabel, err := h.generator.Voices(c.Request.Context(), locale, preferFemale)
	if err != nil {
		h.log.Error("Failed to list voices: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, voicesResponse{
		Voices:       labeled,
		DefaultLabel: defaultLabel,
	})
}

// HandleGenerate runs one generation action and streams the MP3 back.
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req generateRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	locale, preferFemale := h.resolvePreferences(req.Language, req.Gender)

	result, err := h.generator.Generate(c.Request.Context(), service.GenerateRequest{
		Text:           req.Text,
		VoiceShortName: req.Voice,
		Locale:         locale,
		PreferFemale:   preferFemale,
		RateSlider:     req.RateSlider,
		VolumeFraction: req.Volume,
		FileName:       req.FileName,
	})
	if err != nil {
		h.respondGenerateError(c, err)

		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.AudioBytes)
}

// HandleAudio replays a previously stored clip by its object store key.
func (h *Handler) HandleAudio(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio store is not configured"})

		return
	}

	key := c.Param("key")

	data, err := h.store.Download(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("clip %q not found", key)})

		return
	}

	c.Data(http.StatusOK, service.ContentTypeMP3, data)
}

// respondGenerateError maps generation failures onto HTTP statuses. The
// too-short case gets a user-facing hint since it usually means a bad
// voice/parameter combination rather than a provider outage.
func (h *Handler) respondGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter some text"})
	case errors.Is(err, service.ErrUnknownVoice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "a generation is already in progress"})
	case errors.Is(err, synth.ErrAudioTooShort):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "generated audio is empty, try a different voice",
		})
	default:
		h.log.Error("Generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// resolvePreferences translates presentation-layer preference strings
// into filter arguments. Empty values fall back to the configured
// defaults; "Any" relaxes the constraint explicitly.
func (h *Handler) resolvePreferences(language, gender string) (string, bool) {
	locale := h.defaultLanguage
	if language != "" {
		locale = language
	}

	if locale == preferenceAny {
		locale = ""
	}

	preferFemale := h.preferFemale

	switch gender {
	case preferenceFemale:
		preferFemale = true
	case preferenceAny:
		preferFemale = false
	}

	return locale, preferFemale
}
