package main

import (
	"fmt"
	"io"

	"github.com/petems/whispr/internal/app"
	"github.com/petems/whispr/internal/report"
)

const ocrPreviewLimit = 80

// demoObserver prints the numbered, styled progress of a demo run.
type demoObserver struct {
	p *report.Printer
}

var demoTitles = map[app.Step]string{
	app.StepSpeech:   "Audio Input & Transcription (ASR)",
	app.StepScreen:   "Screen Capture & OCR",
	app.StepResponse: "AI Response Generation",
	app.StepChain:    "Blockchain Logging (Solana Devnet)",
}

func (d *demoObserver) StepStarted(s app.Step) {
	d.p.Step(int(s), demoTitles[s])
}

func (d *demoObserver) StepDone(s app.Step, o *app.Outcome) {
	switch s {
	case app.StepSpeech:
		d.p.Done("Audio captured")
		d.p.Done("Transcription complete")
		d.p.Detail(o.Transcript, "(no speech detected)", 0)
	case app.StepScreen:
		d.p.Done("Screenshot captured & processed")
		d.p.Detail(o.ScreenText, "(no text detected)", ocrPreviewLimit)
	case app.StepResponse:
		d.p.Done("Response generated")
		d.p.Blank()
		d.p.Summary(o.Response)
		return
	case app.StepChain:
		d.p.Done("Transaction confirmed")
		d.p.Line(o.Receipt.Signature)
		d.p.Line("🔗 " + o.Receipt.ExplorerURL)
	}
	d.p.Blank()
}

func (d *demoObserver) StepFailed(s app.Step, err error) {
	if s == app.StepChain {
		d.p.Fail("Solana logging failed", err)
	} else {
		d.p.Fail(demoTitles[s]+" failed", err)
	}
	d.p.Blank()
}

// plainObserver prints the unstyled combined-mode output.
type plainObserver struct {
	out    io.Writer
	errOut io.Writer
	secs   int
}

func (c *plainObserver) StepStarted(s app.Step) {
	switch s {
	case app.StepSpeech:
		fmt.Fprintf(c.out, "Recording %ds of audio...\n", c.secs)
	case app.StepScreen:
		fmt.Fprintln(c.out, "Capturing screenshot...")
	case app.StepChain:
		fmt.Fprintln(c.out, "\n--- Logging to Solana Devnet ---")
	}
}

func (c *plainObserver) StepDone(s app.Step, o *app.Outcome) {
	switch s {
	case app.StepSpeech:
		fmt.Fprintf(c.out, "ASR: %s\n\n", orPlaceholder(o.Transcript, "(no speech)"))
	case app.StepScreen:
		fmt.Fprintf(c.out, "OCR: %s\n\n", orPlaceholder(o.ScreenText, "(no text)"))
	case app.StepResponse:
		fmt.Fprintf(c.out, "=== Response ===\n%s\n", o.Response)
	case app.StepChain:
		fmt.Fprintln(c.out, "✅ Transaction confirmed!")
		fmt.Fprintf(c.out, "   Signature: %s\n", o.Receipt.Signature)
		fmt.Fprintf(c.out, "   Explorer: %s\n", o.Receipt.ExplorerURL)
		fmt.Fprintf(c.out, "   Memo: %s\n", o.Receipt.Memo)
	}
}

func (c *plainObserver) StepFailed(s app.Step, err error) {
	if s == app.StepChain {
		fmt.Fprintf(c.errOut, "⚠️  Solana logging failed: %v\n", err)
	}
}
