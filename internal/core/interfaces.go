// Package core defines the core business logic and interfaces for the
// text-to-audio service.
package core

import "context"

// Voice describes one selectable synthesis voice as reported by the
// external provider.
type Voice struct {
	// ShortName is the provider's stable identifier, e.g. "en-US-JennyNeural".
	ShortName string `json:"ShortName"`

	// Locale is the language-region tag, e.g. "en-US".
	Locale string `json:"Locale"`

	// Gender is the provider-reported gender. Comparisons are case-insensitive.
	Gender string `json:"Gender"`
}

// SynthesisRequest holds the normalized parameters for one synthesis call.
// Rate and Volume are signed percentage offsets in the provider's native
// format, e.g. "+12%" or "-50%".
type SynthesisRequest struct {
	Text   string
	Voice  string
	Rate   string
	Volume string
}

// SynthesisResult is the outcome of one synthesis call.
type SynthesisResult struct {
	AudioBytes []byte
	SizeBytes  int
}

// Synthesizer converts text into MP3 audio via the external provider.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// VoiceLister fetches the full voice catalog from the external provider.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
