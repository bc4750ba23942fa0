package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/chainlog"
	"github.com/petems/whispr/internal/pipeline"
)

// Step identifies one stage of an assistant run.
type Step int

const (
	StepSpeech Step = iota + 1
	StepScreen
	StepResponse
	StepChain
)

func (s Step) String() string {
	switch s {
	case StepSpeech:
		return "speech"
	case StepScreen:
		return "screen"
	case StepResponse:
		return "response"
	case StepChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Observer is told about step progress. Implementations must be cheap.
type Observer interface {
	StepStarted(s Step)
	StepDone(s Step, o *Outcome)
	StepFailed(s Step, err error)
}

// Speech records and transcribes one utterance.
type Speech interface {
	Run(ctx context.Context, duration time.Duration) (*pipeline.Result, error)
}

// Screen captures the display and returns its text and screenshot path.
type Screen interface {
	Capture(ctx context.Context) (text, path string, err error)
}

// Responder replies to a transcript given a screenshot.
type Responder interface {
	Respond(ctx context.Context, transcript, screenshotPath string) (string, error)
}

// Chain posts a summary on chain.
type Chain interface {
	Post(ctx context.Context, summary string) (*chainlog.Receipt, error)
}

// Outcome collects what a run produced so far.
type Outcome struct {
	Utterance      *pipeline.Result
	Transcript     string
	ScreenText     string
	ScreenshotPath string
	Response       string
	Receipt        *chainlog.Receipt
}

// Assistant runs speech, screen, response and optional chain logging in
// order. Chain failures are reported to the observer and do not fail the
// run; every other step aborts it.
type Assistant struct {
	Speech    Speech
	Screen    Screen
	Responder Responder
	Chain     Chain // nil disables chain logging
	Duration  time.Duration
	Logger    zerolog.Logger
}

func (a *Assistant) Run(ctx context.Context, obs Observer) (*Outcome, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	out := &Outcome{}

	obs.StepStarted(StepSpeech)
	res, err := a.Speech.Run(ctx, a.Duration)
	if err != nil {
		obs.StepFailed(StepSpeech, err)
		return out, err
	}
	out.Utterance = res
	out.Transcript = res.Text
	obs.StepDone(StepSpeech, out)

	obs.StepStarted(StepScreen)
	text, path, err := a.Screen.Capture(ctx)
	if err != nil {
		obs.StepFailed(StepScreen, err)
		return out, fmt.Errorf("screen capture failed: %w", err)
	}
	out.ScreenText, out.ScreenshotPath = text, path
	obs.StepDone(StepScreen, out)

	obs.StepStarted(StepResponse)
	reply, err := a.Responder.Respond(ctx, out.Transcript, out.ScreenshotPath)
	if err != nil {
		obs.StepFailed(StepResponse, err)
		return out, fmt.Errorf("response generation failed: %w", err)
	}
	out.Response = reply
	obs.StepDone(StepResponse, out)

	if a.Chain != nil {
		obs.StepStarted(StepChain)
		receipt, err := a.Chain.Post(ctx, out.Response)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Chain logging failed")
			obs.StepFailed(StepChain, err)
		} else {
			out.Receipt = receipt
			obs.StepDone(StepChain, out)
		}
	}

	return out, nil
}

type nopObserver struct{}

func (nopObserver) StepStarted(Step)        {}
func (nopObserver) StepDone(Step, *Outcome) {}
func (nopObserver) StepFailed(Step, error)  {}
