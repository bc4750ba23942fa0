package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/whispr/internal/config"
	"github.com/petems/whispr/internal/logging"
)

type options struct {
	configFile  string
	duration    int
	model       string
	language    string
	ocr         bool
	combined    bool
	demo        bool
	noChain     bool
	listen      bool
	overlay     bool
	solanaLog   bool
	tesseract   string
	geminiKey   string
	logLevel    string
	listDevices bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "whispr",
		Short: "Discrete AI assistant that listens when you can't",
		Long: `Whispr records a short spoken question, transcribes it locally with
whisper.cpp, reads the screen with tesseract and asks Gemini for an answer.

Examples:
  whispr -d 3                     # transcribe 3 seconds of speech
  whispr --ocr                    # print the text on screen
  whispr --demo --overlay         # full run with a result card
  whispr --combined --solana-log  # full run, memo posted to devnet
  whispr --listen                 # tray app, Ctrl+Shift+W to capture`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, selectMode(opts), cfg, opts, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file (default is the platform config dir)")
	f.IntVarP(&opts.duration, "duration", "d", 0, "seconds of audio to record (default 5)")
	f.StringVarP(&opts.model, "model", "m", "", "whisper model name (base.en) or path to a ggml .bin file")
	f.StringVarP(&opts.language, "language", "l", "", "language code for transcription and OCR (default en)")
	f.BoolVar(&opts.ocr, "ocr", false, "run OCR only (screenshot + OCR, no ASR)")
	f.BoolVar(&opts.combined, "combined", false, "run ASR + OCR + response")
	f.BoolVar(&opts.demo, "demo", false, "run the combined steps with styled output")
	f.BoolVar(&opts.noChain, "no-chain", false, "skip Solana logging in demo mode")
	f.BoolVar(&opts.listen, "listen", false, "run in the tray and capture on the global hotkey")
	f.BoolVar(&opts.overlay, "overlay", false, "show the result card after a run")
	f.BoolVar(&opts.solanaLog, "solana-log", false, "log the response summary to Solana devnet")
	f.StringVar(&opts.tesseract, "tesseract", "", "path to the tesseract executable")
	f.StringVar(&opts.geminiKey, "gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&opts.listDevices, "list-devices", false, "list audio input devices and exit")

	return cmd
}

func setup(cmd *cobra.Command, opts *options) (*config.Config, zerolog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cfg, cmd, opts)
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, logging.NewWithLevel(cfg.LogLevel), nil
}

// applyFlags overrides config values with flags the user actually set.
func applyFlags(cfg *config.Config, cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	if f.Changed("duration") {
		cfg.DurationSecs = opts.duration
	}
	if f.Changed("model") {
		if looksLikePath(opts.model) {
			cfg.Whisper.ModelPath = opts.model
		} else {
			cfg.Whisper.Model = opts.model
			cfg.Whisper.ModelPath = ""
		}
	}
	if f.Changed("language") {
		cfg.Language = opts.language
	}
	if f.Changed("tesseract") {
		cfg.OCR.TesseractPath = opts.tesseract
	}
	if f.Changed("gemini-key") {
		cfg.Assist.APIKey = opts.geminiKey
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.solanaLog {
		cfg.Chain.Enabled = true
	}
	if opts.noChain {
		cfg.Chain.Enabled = false
	}
}

func looksLikePath(model string) bool {
	return strings.HasSuffix(model, ".bin") || strings.ContainsRune(model, filepath.Separator) || strings.Contains(model, "/")
}

type mode int

const (
	modeASR mode = iota
	modeOCR
	modeCombined
	modeDemo
	modeListen
	modeDevices
)

// selectMode picks one mode; listen wins over demo, demo over combined,
// combined over ocr.
func selectMode(opts *options) mode {
	switch {
	case opts.listDevices:
		return modeDevices
	case opts.listen:
		return modeListen
	case opts.demo:
		return modeDemo
	case opts.combined:
		return modeCombined
	case opts.ocr:
		return modeOCR
	default:
		return modeASR
	}
}

func run(ctx context.Context, m mode, cfg *config.Config, opts *options, log zerolog.Logger) error {
	switch m {
	case modeDevices:
		return runListDevices(cfg, os.Stdout)
	case modeListen:
		return runListen(ctx, cfg, opts, log)
	case modeDemo:
		return runDemo(ctx, cfg, opts, log)
	case modeCombined:
		return runCombined(ctx, cfg, log)
	case modeOCR:
		return runOCR(ctx, cfg, log)
	default:
		return runASR(ctx, cfg, log)
	}
}
