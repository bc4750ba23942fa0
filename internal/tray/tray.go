package tray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/app"
	"github.com/petems/whispr/internal/config"
	"github.com/petems/whispr/internal/logging"
	"github.com/petems/whispr/internal/report"
)

const (
	previewLimit    = 40
	shutdownTimeout = 3 * time.Second
)

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mCapture     *systray.MenuItem
	mLast        *systray.MenuItem
	mCopyLast    *systray.MenuItem
	mCopyAuto    *systray.MenuItem
	mPastePrefer *systray.MenuItem
}

// Status update methods for the app to call
func (u *UI) SetIdle() {
	u.updateStatus("idle")
}

func (u *UI) SetRecording() {
	u.updateStatus("recording")
}

func (u *UI) SetProcessing() {
	u.updateStatus("processing")
}

func (u *UI) SetError() {
	u.updateStatus("error")
}

func New(application *app.App, cfg *config.Config, version, commit string, log zerolog.Logger) *UI {
	return &UI{
		app:     application,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// Run blocks on the systray loop until Quit is chosen or ctx is done.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

// ShowOutcome puts a preview of the latest response in the menu.
func (u *UI) ShowOutcome(o *app.Outcome) {
	if u.mLast == nil {
		return
	}
	u.mLast.SetTitle(previewTitle(o))
	u.mCopyLast.Enable()
}

func (u *UI) onReady() {
	u.updateStatus("idle")
	systray.SetTooltip(fmt.Sprintf("Whispr: press %s to ask about your screen", u.cfg.PlatformHotkey()))

	u.mCapture = systray.AddMenuItem("Capture now", "Record a question and capture the screen")
	systray.AddSeparator()

	u.mLast = systray.AddMenuItem(previewTitle(nil), "Latest response")
	u.mLast.Disable()
	u.mCopyLast = systray.AddMenuItem("Copy last response", "Copy the latest response to the clipboard")
	u.mCopyLast.Disable()

	systray.AddSeparator()
	u.mCopyAuto = systray.AddMenuItemCheckbox("Copy Responses", "Copy each response to the clipboard", u.cfg.Inject.CopyResponse)
	u.mPastePrefer = systray.AddMenuItemCheckbox("Prefer Paste", "Paste responses into the focused app", u.cfg.Inject.PreferPaste)

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About Whispr")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mCapture.ClickedCh:
			u.app.Trigger()
		case <-u.mCopyLast.ClickedCh:
			if err := u.app.CopyLast(context.Background()); err != nil {
				u.log.Error().Err(err).Msg("Failed to copy last response")
			}
		case <-u.mCopyAuto.ClickedCh:
			u.toggleCopyResponse()
		case <-u.mPastePrefer.ClickedCh:
			u.togglePastePrefer()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) toggleCopyResponse() {
	u.cfg.Inject.CopyResponse = !u.cfg.Inject.CopyResponse
	if u.cfg.Inject.CopyResponse {
		u.mCopyAuto.Check()
	} else {
		u.mCopyAuto.Uncheck()
	}
	u.log.Info().Bool("enabled", u.cfg.Inject.CopyResponse).Msg("Changed copy responses")
	u.save()
}

func (u *UI) togglePastePrefer() {
	u.cfg.Inject.PreferPaste = !u.cfg.Inject.PreferPaste
	if u.cfg.Inject.PreferPaste {
		u.mPastePrefer.Check()
		u.log.Info().Msg("Enabled prefer paste")
	} else {
		u.mPastePrefer.Uncheck()
		u.log.Info().Msg("Disabled prefer paste (clipboard only)")
	}
	u.save()
}

// save persists only the toggles owned by the menu.
func (u *UI) save() {
	if err := u.cfg.SaveInject(); err != nil {
		u.log.Error().Err(err).Msg("Failed to save config")
	}
}

func (u *UI) openLogs() {
	name, args := openCommand(runtime.GOOS, logging.Path())
	if err := exec.Command(name, args...).Start(); err != nil {
		u.log.Error().Err(err).Str("path", logging.Path()).Msg("Failed to open logs")
	}
}

func (u *UI) showAbout() {
	u.log.Info().
		Str("version", u.version).
		Str("commit", u.commit).
		Str("hotkey", u.cfg.PlatformHotkey()).
		Msg("Whispr: voice and screen assistant")
}

func (u *UI) onExit() {
	if u.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := u.app.Shutdown(ctx); err != nil {
		u.log.Warn().Err(err).Msg("Capture still running at exit")
	}
}

// updateStatus sets the tray title with microphone emoji and status indicator
func (u *UI) updateStatus(status string) {
	systray.SetTitle(fmt.Sprintf("🎤 %s", emojiForStatus(status)))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "recording":
		return "🔴" // Red - recording
	case "processing":
		return "🟡" // Yellow - OCR and response
	case "idle":
		return "🟢" // Green - ready/idle
	case "error":
		return "⚪️" // White - error
	default:
		return "🟢" // Green - default to ready
	}
}

func previewTitle(o *app.Outcome) string {
	if o == nil || o.Response == "" {
		return "No response yet"
	}
	return "Last: " + report.Truncate(o.Response, previewLimit)
}

func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}
