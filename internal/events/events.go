// Package events defines the message payloads exchanged over NATS for
// asynchronous audio generation.
package events

import "time"

// EventHeader carries the correlation metadata attached to every event.
type EventHeader struct {
	WorkflowID string    `json:"workflow_id"`
	EventID    string    `json:"event_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// AudioRequestedEvent asks the worker to generate one audio clip. Rate
// and volume arrive in presentation units (100-250 slider, 0.0-1.0
// fraction) and are mapped to provider offsets by the worker.
type AudioRequestedEvent struct {
	Header         EventHeader `json:"header"`
	Text           string      `json:"text"`
	Voice          string      `json:"voice"`
	Locale         string      `json:"locale,omitempty"`
	PreferFemale   bool        `json:"prefer_female,omitempty"`
	RateSlider     int         `json:"rate_slider"`
	VolumeFraction float64     `json:"volume_fraction"`
	FileName       string      `json:"file_name,omitempty"`
}

// AudioCreatedEvent reports a finished generation. AudioKey addresses
// the MP3 payload in the audio object store.
type AudioCreatedEvent struct {
	Header    EventHeader `json:"header"`
	AudioKey  string      `json:"audio_key"`
	FileName  string      `json:"file_name"`
	SizeBytes int         `json:"size_bytes"`
	Voice     string      `json:"voice"`
}
