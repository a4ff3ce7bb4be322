package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"

	"github.com/upskill-audio/text-to-audio-service/internal/config"
	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/params"
	"github.com/upskill-audio/text-to-audio-service/internal/synth"
	"github.com/upskill-audio/text-to-audio-service/internal/ttsutils"
	"github.com/upskill-audio/text-to-audio-service/internal/voices"
)

// Flag descriptions.
const (
	flagTextDesc       = "Text to convert to speech"
	flagVoiceDesc      = "Voice short name (e.g. en-US-JennyNeural); picked from the catalog when empty"
	flagLanguageDesc   = "Locale prefix used to pick a voice when -voice is empty (e.g. en-US)"
	flagRateDesc       = "Speech rate slider, 100 (slowest) to 250 (fastest)"
	flagVolumeDesc     = "Volume fraction, 0.0 (quietest) to 1.0 (full)"
	flagOutputDesc     = "Output file path (.mp3)"
	flagListVoicesDesc = "List matching voices and exit"
	flagHealthDesc     = "Check synthesis provider health and exit"
	flagVerboseDesc    = "Enable verbose logging"
)

// Flag names.
const (
	flagText       = "text"
	flagVoice      = "voice"
	flagLanguage   = "language"
	flagRate       = "rate"
	flagVolume     = "volume"
	flagOutput     = "output"
	flagListVoices = "list-voices"
	flagHealth     = "health"
	flagVerbose    = "verbose"
)

// Error and log messages.
const (
	errFailedToLoadConfig  = "Failed to load configuration: %v"
	errFailedToInitLogger  = "Failed to initialize logger: %v"
	errHealthCheckFailed   = "Health check failed: %v"
	errServiceNotHealthy   = "Synthesis provider is not healthy: %v\n"
	msgServiceHealthy      = "Synthesis provider is healthy"
	errTextRequired        = "-text must be provided"
	errFailedToListVoices  = "Failed to list voices: %v"
	errFailedToSynthesize  = "Failed to synthesize speech: %v"
	errFailedToWriteOutput = "Failed to write output file: %v"
	logSynthesizing        = "Synthesizing %d characters with voice %s (rate %s, volume %s)"
	logGenerated           = "Generated: %s (%s)\n"
)

// File names and defaults.
const (
	logFileNameDefault = "text-to-audio-client.log"
	logFileNameVerbose = "text-to-audio-client-verbose.log"
	defaultOutputFile  = "speech.mp3"
	defaultRateSlider  = 175
	defaultVolume      = 1.0
	healthTimeout      = 10 * time.Second
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text       string
	voice      string
	language   string
	rate       int
	volume     float64
	output     string
	listVoices bool
	health     bool
	verbose    bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	cfg, appLogger, err := setup(flags.verbose)
	if err != nil {
		return err
	}
	defer appLogger.Close()

	client := synth.NewHTTPClient(cfg.TTS.BaseURL, cfg.TTS.Timeout())
	ctx := context.Background()

	if flags.health {
		return handleHealthCheck(ctx, client, appLogger)
	}

	if flags.listVoices {
		return handleListVoices(ctx, client, cfg, flags)
	}

	return handleSynthesis(ctx, client, cfg, appLogger, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.language, flagLanguage, "", flagLanguageDesc)
	flag.IntVar(&flags.rate, flagRate, defaultRateSlider, flagRateDesc)
	flag.Float64Var(&flags.volume, flagVolume, defaultVolume, flagVolumeDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.BoolVar(&flags.listVoices, flagListVoices, false, flagListVoicesDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.Parse()

	return flags
}

// setup loads the configuration and initializes the logger.
func setup(verbose bool) (*config.Config, *logger.Logger, error) {
	bootstrapLogger, err := logger.New(os.TempDir(), logFileNameDefault)
	if err != nil {
		return nil, nil, fmt.Errorf(errFailedToInitLogger, err)
	}

	cfg, err := config.Load(bootstrapLogger)
	if err != nil {
		_ = bootstrapLogger.Close()

		return nil, nil, fmt.Errorf(errFailedToLoadConfig, err)
	}

	logFileName := logFileNameDefault
	if verbose {
		logFileName = logFileNameVerbose
	}

	appLogger, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		_ = bootstrapLogger.Close()

		return nil, nil, fmt.Errorf(errFailedToInitLogger, err)
	}

	_ = bootstrapLogger.Close()

	return cfg, appLogger, nil
}

// handleHealthCheck probes the provider and prints the result.
func handleHealthCheck(
	ctx context.Context,
	client *synth.HTTPClient,
	appLogger *logger.Logger,
) error {
	healthCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	err := client.HealthCheck(healthCtx)
	if err != nil {
		appLogger.Error(errHealthCheckFailed, err)
		fmt.Printf(errServiceNotHealthy, err)

		return err
	}

	fmt.Println(msgServiceHealthy)

	return nil
}

// handleListVoices prints the labeled voices matching the language and
// gender preferences.
func handleListVoices(
	ctx context.Context,
	client *synth.HTTPClient,
	cfg *config.Config,
	flags appFlags,
) error {
	matched, defaultLabel, err := matchVoices(ctx, client, cfg, flags)
	if err != nil {
		return err
	}

	for _, voice := range matched {
		label := voices.Label(voice)
		marker := " "

		if label == defaultLabel {
			marker = "*"
		}

		fmt.Printf("%s %-45s %s\n", marker, voice.ShortName, label)
	}

	return nil
}

// handleSynthesis converts a single text to an MP3 file on disk.
func handleSynthesis(
	ctx context.Context,
	client *synth.HTTPClient,
	cfg *config.Config,
	appLogger *logger.Logger,
	flags appFlags,
) error {
	if flags.text == "" {
		flag.Usage()
		appLogger.Error(errTextRequired)

		return errors.New(errTextRequired)
	}

	voiceName, err := resolveVoice(ctx, client, cfg, flags)
	if err != nil {
		return err
	}

	rate := params.RateOffset(flags.rate)
	volume := params.VolumeOffset(flags.volume)

	appLogger.Info(logSynthesizing, len(flags.text), voiceName, rate, volume)

	invoker := synth.NewInvoker(client, appLogger)

	result, err := invoker.Synthesize(ctx, core.SynthesisRequest{
		Text:   flags.text,
		Voice:  voiceName,
		Rate:   rate,
		Volume: volume,
	})
	if err != nil {
		appLogger.Error(errFailedToSynthesize, err)

		return fmt.Errorf(errFailedToSynthesize, err)
	}

	outputPath, err := writeOutput(flags.output, result.AudioBytes)
	if err != nil {
		appLogger.Error(errFailedToWriteOutput, err)

		return fmt.Errorf(errFailedToWriteOutput, err)
	}

	fmt.Printf(logGenerated, outputPath, ttsutils.FormatFileSize(int64(result.SizeBytes)))

	return nil
}

// matchVoices fetches the catalog and filters it by the requested
// language and the configured gender preference.
func matchVoices(
	ctx context.Context,
	client *synth.HTTPClient,
	cfg *config.Config,
	flags appFlags,
) ([]core.Voice, string, error) {
	catalog, err := client.ListVoices(ctx)
	if err != nil {
		return nil, "", fmt.Errorf(errFailedToListVoices, err)
	}

	language := flags.language
	if language == "" {
		language = cfg.TTS.DefaultLanguage
	}

	matched := voices.Filter(catalog, language, cfg.TTS.PreferFemale)

	labels := make([]string, 0, len(matched))
	for _, voice := range matched {
		labels = append(labels, voices.Label(voice))
	}

	return matched, voices.DefaultLabel(labels), nil
}

// resolveVoice returns the explicit -voice value or picks the default
// from the filtered catalog.
func resolveVoice(
	ctx context.Context,
	client *synth.HTTPClient,
	cfg *config.Config,
	flags appFlags,
) (string, error) {
	if flags.voice != "" {
		return flags.voice, nil
	}

	matched, defaultLabel, err := matchVoices(ctx, client, cfg, flags)
	if err != nil {
		return "", err
	}

	if len(matched) == 0 {
		return "", voices.ErrCatalogEmpty
	}

	for _, voice := range matched {
		if voices.Label(voice) == defaultLabel {
			return voice.ShortName, nil
		}
	}

	return matched[0].ShortName, nil
}

// writeOutput writes the MP3 bytes to the chosen path, creating parent
// directories as needed.
func writeOutput(outputFlag string, audio []byte) (string, error) {
	outputPath := outputFlag
	if outputPath == "" {
		outputPath = defaultOutputFile
	}

	if !ttsutils.IsValidAudioFile(outputPath) {
		outputPath += ".mp3"
	}

	dir := filepath.Dir(outputPath)
	if dir != "." {
		err := ttsutils.EnsureDir(dir)
		if err != nil {
			return "", err
		}
	}

	err := os.WriteFile(outputPath, audio, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return outputPath, nil
}
