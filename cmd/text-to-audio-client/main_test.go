package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseFlags verifies that command-line flags are parsed correctly,
// including the slider defaults applied when a flag is omitted.
func TestParseFlags(t *testing.T) {
	oldArgs := os.Args

	t.Cleanup(func() { os.Args = oldArgs })

	tests := []struct {
		name       string
		args       []string
		wantText   string
		wantRate   int
		wantVolume float64
	}{
		{
			name:       "text flag with slider defaults",
			args:       []string{"cmd", "-text", "Hello, world!"},
			wantText:   "Hello, world!",
			wantRate:   defaultRateSlider,
			wantVolume: defaultVolume,
		},
		{
			name:       "explicit rate and volume",
			args:       []string{"cmd", "-text", "Hi", "-rate", "250", "-volume", "0.5"},
			wantText:   "Hi",
			wantRate:   250,
			wantVolume: 0.5,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			// Reset flag parsing state for each test run to ensure isolation.
			flag.CommandLine = flag.NewFlagSet(testCase.name, flag.ContinueOnError)
			os.Args = testCase.args

			flags := parseFlags()

			if flags.text != testCase.wantText {
				t.Errorf("Expected text flag %q, got %q", testCase.wantText, flags.text)
			}

			if flags.rate != testCase.wantRate {
				t.Errorf("Expected rate %d, got %d", testCase.wantRate, flags.rate)
			}

			if flags.volume != testCase.wantVolume {
				t.Errorf("Expected volume %v, got %v", testCase.wantVolume, flags.volume)
			}
		})
	}
}

// TestWriteOutput verifies extension handling and directory creation for
// the output path.
func TestWriteOutput(t *testing.T) {
	t.Parallel()

	audio := []byte("not really mp3 bytes")

	t.Run("appends mp3 extension", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "clip")

		outputPath, err := writeOutput(target, audio)
		if err != nil {
			t.Fatalf("Did not expect an error, but got: %v", err)
		}

		if !strings.HasSuffix(outputPath, ".mp3") {
			t.Errorf("Expected .mp3 suffix, got %q", outputPath)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "nested", "dir", "clip.mp3")

		outputPath, err := writeOutput(target, audio)
		if err != nil {
			t.Fatalf("Did not expect an error, but got: %v", err)
		}

		written, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("Failed to read written file: %v", err)
		}

		if string(written) != string(audio) {
			t.Errorf("Written bytes do not match input")
		}
	})
}
