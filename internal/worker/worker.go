// Package worker provides a NATS worker that processes audio generation
// jobs and stores the resulting clips.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/events"
	"github.com/upskill-audio/text-to-audio-service/internal/service"
)

const handleMessageTimeout = 60 * time.Second

const audioKeySuffix = ".mp3"

// ErrTextEmpty indicates that an event carried no text to speak.
var ErrTextEmpty = errors.New("event text cannot be empty")

// AudioGenerator runs one generation action. Satisfied by
// *service.Generator.
type AudioGenerator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
}

// NatsWorker listens for audio generation jobs on a NATS subject,
// synthesizes each one, uploads the MP3 to the audio store, and replies
// with the clip's key.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	store          core.ObjectStore
	generator      AudioGenerator
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.ObjectStore,
	generator AudioGenerator,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		store:          store,
		generator:      generator,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate event: %v", err)

		return
	}

	replyEvent, processErr := w.processJob(ctx, event)
	if processErr != nil {
		w.log.Error(
			"Failed to process audio job for workflow %s: %v",
			event.Header.WorkflowID,
			processErr,
		)

		return
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error(
			"Failed to publish reply event for workflow %s: %v",
			event.Header.WorkflowID,
			err,
		)
	}
}

// processJob runs the generation and uploads the clip under a fresh key.
func (w *NatsWorker) processJob(
	ctx context.Context,
	event *events.AudioRequestedEvent,
) (*events.AudioCreatedEvent, error) {
	result, err := w.generator.Generate(ctx, service.GenerateRequest{
		Text:           event.Text,
		VoiceShortName: event.Voice,
		Locale:         event.Locale,
		PreferFemale:   event.PreferFemale,
		RateSlider:     event.RateSlider,
		VolumeFraction: event.VolumeFraction,
		FileName:       event.FileName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio: %w", err)
	}

	audioKey := uuid.NewString() + audioKeySuffix

	err = w.store.Upload(ctx, audioKey, result.AudioBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return &events.AudioCreatedEvent{
		Header:    event.Header,
		AudioKey:  audioKey,
		FileName:  result.FileName,
		SizeBytes: result.SizeBytes,
		Voice:     result.VoiceShortName,
	}, nil
}

// publishReplyEvent marshals and responds with the AudioCreatedEvent.
func (w *NatsWorker) publishReplyEvent(
	msg *nats.Msg,
	replyEvent *events.AudioCreatedEvent,
) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func (w *NatsWorker) parseAndValidateEvent(msg *nats.Msg) (*events.AudioRequestedEvent, error) {
	var event events.AudioRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if strings.TrimSpace(event.Text) == "" {
		return nil, ErrTextEmpty
	}

	return &event, nil
}
