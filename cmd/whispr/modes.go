package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/app"
	"github.com/petems/whispr/internal/assist"
	"github.com/petems/whispr/internal/audio"
	"github.com/petems/whispr/internal/chainlog"
	"github.com/petems/whispr/internal/config"
	"github.com/petems/whispr/internal/hotkey"
	"github.com/petems/whispr/internal/inject"
	"github.com/petems/whispr/internal/permissions"
	"github.com/petems/whispr/internal/pipeline"
	"github.com/petems/whispr/internal/report"
	"github.com/petems/whispr/internal/screen"
	"github.com/petems/whispr/internal/tray"
	"github.com/petems/whispr/internal/whisper"
)

const shutdownTimeout = 5 * time.Second

// speech owns the audio host and the model for the lifetime of a command.
type speech struct {
	host audio.Host
	stt  whisper.Transcriber
	pipe *pipeline.Pipeline
}

func newSpeech(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*speech, error) {
	host, err := audio.New(cfg.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}

	stt, err := whisper.New(ctx, cfg, log)
	if err != nil {
		host.Close()
		return nil, fmt.Errorf("failed to initialize whisper: %w", err)
	}

	return &speech{
		host: host,
		stt:  stt,
		pipe: pipeline.New(pipeline.Config{
			Capturer:   audio.NewCapturer(host, log),
			Recognizer: stt,
			Language:   cfg.Language,
			TargetRate: config.TargetSampleRate,
			Logger:     log,
		}),
	}, nil
}

func (s *speech) Close() {
	s.stt.Close()
	s.host.Close()
}

func duration(cfg *config.Config) time.Duration {
	return time.Duration(cfg.DurationSecs) * time.Second
}

func ensure(n permissions.Needs, log zerolog.Logger) error {
	if err := permissions.Ensure(n); err != nil {
		if hint := permissions.Hint(err); hint != "" {
			log.Warn().Str("settings", hint).Msg("Grant access, then run again")
		}
		return fmt.Errorf("required permissions not granted: %w", err)
	}
	return nil
}

func runASR(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := ensure(permissions.Needs{Microphone: true}, log); err != nil {
		return err
	}

	s, err := newSpeech(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Recording %ds of audio...\n", cfg.DurationSecs)
	res, err := s.pipe.Run(ctx, duration(cfg))
	if err != nil {
		return err
	}

	fmt.Println(orPlaceholder(res.Text, "(no speech detected)"))
	return nil
}

func runOCR(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := ensure(permissions.Needs{Screen: true}, log); err != nil {
		return err
	}

	text, _, err := screen.New(cfg.OCR, cfg.Language, log).Capture(ctx)
	if err != nil {
		return err
	}

	fmt.Println(orPlaceholder(text, "(no text detected)"))
	return nil
}

func runListDevices(cfg *config.Config, w io.Writer) error {
	host, err := audio.New(cfg.Audio)
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	defer host.Close()

	devices, err := audio.NewCapturer(host, zerolog.Nop()).Devices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s (%d Hz, %d ch, %s)\n", mark, d.Name, d.Config.SampleRate, d.Config.Channels, d.Config.Encoding)
	}
	return nil
}

// newAssistant wires the full run. The returned cleanup releases audio
// and the model.
func newAssistant(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.Assistant, func(), error) {
	responder, err := assist.New(ctx, cfg.Assist, log)
	if err != nil {
		return nil, nil, err
	}

	s, err := newSpeech(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	a := &app.Assistant{
		Speech:    s.pipe,
		Screen:    screen.New(cfg.OCR, cfg.Language, log),
		Responder: responder,
		Duration:  duration(cfg),
		Logger:    log,
	}
	if cfg.Chain.Enabled {
		a.Chain = chainlog.New(cfg.Chain, log)
	}
	return a, s.Close, nil
}

func runCombined(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := ensure(permissions.Needs{Microphone: true, Screen: true}, log); err != nil {
		return err
	}

	a, cleanup, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Print("=== Combined Mode: ASR + OCR + Response ===\n\n")
	_, err = a.Run(ctx, &plainObserver{out: os.Stdout, errOut: os.Stderr, secs: cfg.DurationSecs})
	return err
}

func runDemo(ctx context.Context, cfg *config.Config, opts *options, log zerolog.Logger) error {
	if err := ensure(permissions.Needs{Microphone: true, Screen: true}, log); err != nil {
		return err
	}

	a, cleanup, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	p := report.New(os.Stdout)
	p.Banner("🎤 WHISPR - AI Assistant Demo Mode", "Discrete AI assistant that listens when you can't")

	out, err := a.Run(ctx, &demoObserver{p: p})
	if err != nil {
		return err
	}

	if opts.overlay {
		p.Card(out.Transcript, out.Response)
	}
	return nil
}

func runListen(ctx context.Context, cfg *config.Config, opts *options, log zerolog.Logger) error {
	// macOS requires explicit approval before capture, screenshots or hotkeys work
	if err := ensure(permissions.Needs{Microphone: true, Screen: true, Hotkeys: true}, log); err != nil {
		return err
	}

	a, cleanup, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	hkManager, err := hotkey.New()
	if err != nil {
		return fmt.Errorf("failed to initialize hotkeys: %w", err)
	}
	defer hkManager.Close()

	p := report.New(os.Stdout)

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, Version, Commit, log)

	application := app.New(app.Config{
		Runner:        a,
		Injector:      inject.New(cfg.Inject),
		Config:        cfg,
		Logger:        log,
		StatusUpdater: trayUI,
		OnOutcome: func(o *app.Outcome) {
			trayUI.ShowOutcome(o)
			if opts.overlay {
				p.Card(o.Transcript, o.Response)
			} else {
				p.Summary(o.Response)
			}
		},
		OnError: func(err error) {
			p.Fail("Capture failed", err)
		},
	})
	trayUI.SetApp(application)

	accel := cfg.PlatformHotkey()
	if err := hkManager.Register(accel, application.OnHotkey); err != nil {
		return fmt.Errorf("failed to register hotkey %s: %w", accel, err)
	}
	defer hkManager.Unregister(accel)

	p.Banner("🎧 WHISPR - Hotkey Listener Mode", fmt.Sprintf("Press %s to trigger capture", accel))
	log.Info().Str("hotkey", accel).Msg("Whispr listening...")

	// Tray UI must run on the main thread
	if err := trayUI.Run(ctx); err != nil {
		return fmt.Errorf("tray error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return application.Shutdown(shutdownCtx)
}

func orPlaceholder(s, placeholder string) string {
	if s = strings.TrimSpace(s); s == "" {
		return placeholder
	}
	return s
}
