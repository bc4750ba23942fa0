// Command whispr records a short question, reads the screen and asks a
// vision model for an answer.
//
// Usage:
//
//	whispr [flags]
//
// Modes:
//
//	(default)   record --duration seconds and print the transcript
//	--ocr       screenshot + OCR only
//	--combined  transcript + OCR + assistant response
//	--demo      the combined run with step-by-step styled output
//	--listen    tray app, triggered by the global hotkey
package main

import (
	"fmt"
	"os"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
