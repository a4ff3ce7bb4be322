// Package service orchestrates one text-to-audio generation action:
// input validation, voice resolution, parameter mapping, and the
// synthesis call, guarded so at most one generation is in flight.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/book-expert/logger"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/params"
	"github.com/upskill-audio/text-to-audio-service/internal/ttsutils"
	"github.com/upskill-audio/text-to-audio-service/internal/voices"
)

// Static errors.
var (
	// ErrBusy is returned when a generation is already in flight.
	// Requests are rejected at the boundary, never queued.
	ErrBusy = errors.New("a generation is already in progress")

	// ErrEmptyInput is returned when the text is blank after trimming.
	ErrEmptyInput = errors.New("text is empty")

	// ErrUnknownVoice is returned when the requested voice is not in the
	// current catalog snapshot.
	ErrUnknownVoice = errors.New("unknown voice")
)

const (
	// ContentTypeMP3 is the content type of every generated result.
	ContentTypeMP3 = "audio/mpeg"

	defaultFileName = "speech.mp3"
	mp3Extension    = ".mp3"
)

// GenerateRequest carries the raw inputs of one generation action, in
// the units the presentation layer works with: a 100-250 rate slider and
// a 0.0-1.0 volume fraction.
type GenerateRequest struct {
	Text           string
	VoiceShortName string
	Locale         string
	PreferFemale   bool
	RateSlider     int
	VolumeFraction float64
	FileName       string
}

// GenerateResult is a finished generation, ready for playback or download.
type GenerateResult struct {
	AudioBytes     []byte
	SizeBytes      int
	FileName       string
	ContentType    string
	VoiceShortName string
	Rate           string
	Volume         string
}

// LabeledVoice pairs a voice descriptor with its selection label.
type LabeledVoice struct {
	Label string     `json:"label"`
	Voice core.Voice `json:"voice"`
}

// Generator drives generation actions against the synthesis provider.
// Its busy gate admits one action at a time; concurrent callers get
// ErrBusy immediately.
type Generator struct {
	catalog     *voices.Catalog
	synthesizer core.Synthesizer
	log         *logger.Logger
	busy        atomic.Bool
}

// NewGenerator creates a generator over the given catalog and synthesizer.
func NewGenerator(
	catalog *voices.Catalog,
	synthesizer core.Synthesizer,
	log *logger.Logger,
) *Generator {
	return &Generator{
		catalog:     catalog,
		synthesizer: synthesizer,
		log:         log,
	}
}

// Busy reports whether a generation action is currently in flight.
func (g *Generator) Busy() bool {
	return g.busy.Load()
}

// Voices returns the filtered, labeled voice list for the given
// preferences, plus the label to preselect.
func (g *Generator) Voices(
	ctx context.Context,
	locale string,
	preferFemale bool,
) ([]LabeledVoice, string, error) {
	catalog, err := g.catalog.Voices(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load voice catalog: %w", err)
	}

	filtered := voices.Filter(catalog, locale, preferFemale)

	labeled := make([]LabeledVoice, 0, len(filtered))
	labels := make([]string, 0, len(filtered))

	for _, voice := range filtered {
		label := voices.Label(voice)
		labeled = append(labeled, LabeledVoice{Label: label, Voice: voice})
		labels = append(labels, label)
	}

	return labeled, voices.DefaultLabel(labels), nil
}

// Generate runs one generation action. Empty input is rejected before
// any outbound call. The busy gate is acquired on entry and released on
// every exit path, so a failed action is immediately retryable.
func (g *Generator) Generate(
	ctx context.Context,
	req GenerateRequest,
) (*GenerateResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer g.busy.Store(false)

	voice, err := g.resolveVoice(ctx, req)
	if err != nil {
		return nil, err
	}

	synthReq := core.SynthesisRequest{
		Text:   text,
		Voice:  voice.ShortName,
		Rate:   params.RateOffset(req.RateSlider),
		Volume: params.VolumeOffset(req.VolumeFraction),
	}

	result, err := g.synthesizer.Synthesize(ctx, synthReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	fileName := normalizeFileName(req.FileName)

	g.log.Info("Generated %s with voice %s (%d bytes)",
		fileName, voice.ShortName, result.SizeBytes)

	return &GenerateResult{
		AudioBytes:     result.AudioBytes,
		SizeBytes:      result.SizeBytes,
		FileName:       fileName,
		ContentType:    ContentTypeMP3,
		VoiceShortName: voice.ShortName,
		Rate:           synthReq.Rate,
		Volume:         synthReq.Volume,
	}, nil
}

// resolveVoice returns the requested voice if it exists in the catalog,
// or the default pick for the request's locale/gender preferences when
// no voice was named.
func (g *Generator) resolveVoice(
	ctx context.Context,
	req GenerateRequest,
) (core.Voice, error) {
	catalog, err := g.catalog.Voices(ctx)
	if err != nil {
		return core.Voice{}, fmt.Errorf("failed to load voice catalog: %w", err)
	}

	if req.VoiceShortName != "" {
		for _, voice := range catalog {
			if voice.ShortName == req.VoiceShortName {
				return voice, nil
			}
		}

		return core.Voice{}, fmt.Errorf("%w: '%s'", ErrUnknownVoice, req.VoiceShortName)
	}

	filtered := voices.Filter(catalog, req.Locale, req.PreferFemale)

	labels := make([]string, 0, len(filtered))
	for _, voice := range filtered {
		labels = append(labels, voices.Label(voice))
	}

	defaultLabel := voices.DefaultLabel(labels)
	for i, label := range labels {
		if label == defaultLabel {
			return filtered[i], nil
		}
	}

	return filtered[0], nil
}

// normalizeFileName sanitizes the user-requested download name and
// guarantees an .mp3 extension.
func normalizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultFileName
	}

	name = ttsutils.SanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), mp3Extension) {
		name += mp3Extension
	}

	return name
}
