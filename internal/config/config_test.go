// Package config_test tests the configuration loading for the service.
package config_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskill-audio/text-to-audio-service/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[http]
listen_address = ":9090"

[tts]
base_url = "https://tts.example.com"
timeout_seconds = 45
default_language = "en-US"
prefer_female = true
catalog_ttl_hours = 24

[nats]
url = "nats://127.0.0.1:4222"
audio_requested_subject = "audio.requested"
audio_object_store_bucket = "AUDIO_CLIPS"

[paths]
base_logs_dir = "/var/log/text-to-audio"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address())
	assert.Equal(t, "https://tts.example.com", cfg.TTS.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.TTS.Timeout())
	assert.Equal(t, "en-US", cfg.TTS.DefaultLanguage)
	assert.True(t, cfg.TTS.PreferFemale)
	assert.Equal(t, 24*time.Hour, cfg.TTS.CatalogTTL())
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "audio.requested", cfg.NATS.AudioRequestedSubject)
	assert.Equal(t, "AUDIO_CLIPS", cfg.NATS.AudioObjectStoreBucket)
	assert.True(t, cfg.NATS.WorkerEnabled())
	assert.Equal(t, "/var/log/text-to-audio", cfg.Paths.BaseLogsDir)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	assert.Equal(t, ":8080", cfg.HTTP.Address())
	assert.Equal(t, 60*time.Second, cfg.TTS.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.TTS.CatalogTTL())
	assert.False(t, cfg.NATS.WorkerEnabled())
}
