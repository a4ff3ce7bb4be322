package synth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/book-expert/logger"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
)

// MinAudioBytes is the smallest MP3 payload treated as a valid result.
// Anything shorter is almost always a silent or failed render for the
// chosen voice, not a legitimately short clip.
const MinAudioBytes = 2000

// File permissions for transient audio files.
const filePermissions = 0o600

// ErrAudioTooShort is returned when the provider produced a payload
// below MinAudioBytes. It signals a bad voice/parameter combination
// rather than a transport failure.
var ErrAudioTooShort = errors.New("generated audio is below the minimum size")

const tempFilePattern = "text-to-audio-*.mp3"

// Invoker performs one synthesis request/response cycle against the
// provider: it stages the returned stream in a call-scoped temp file,
// reads it back, and validates that the result is non-trivially sized.
type Invoker struct {
	client *HTTPClient
	log    *logger.Logger
}

// NewInvoker creates a synthesis invoker around the given provider client.
func NewInvoker(client *HTTPClient, log *logger.Logger) *Invoker {
	return &Invoker{
		client: client,
		log:    log,
	}
}

// Synthesize implements core.Synthesizer. The temp file lives only for
// the duration of the call and is removed on every exit path.
func (i *Invoker) Synthesize(
	ctx context.Context,
	req core.SynthesisRequest,
) (*core.SynthesisResult, error) {
	audioData, err := i.client.GenerateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	tempFile, err := os.CreateTemp("", tempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for audio output: %w", err)
	}

	defer func() {
		removeErr := os.Remove(tempFile.Name())
		if removeErr != nil {
			i.log.Warn("Failed to remove temp file '%s': %v", tempFile.Name(), removeErr)
		}
	}()

	closeErr := tempFile.Close()
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	writeErr := os.WriteFile(tempFile.Name(), audioData, filePermissions)
	if writeErr != nil {
		return nil, fmt.Errorf("failed to stage audio data: %w", writeErr)
	}

	staged, err := os.ReadFile(tempFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read staged audio data: %w", err)
	}

	if len(staged) < MinAudioBytes {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d",
			ErrAudioTooShort, len(staged), MinAudioBytes)
	}

	i.log.Info("Generated audio: %s (%d bytes)", req.Voice, len(staged))

	return &core.SynthesisResult{
		AudioBytes: staged,
		SizeBytes:  len(staged),
	}, nil
}
