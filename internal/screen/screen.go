// Package screen captures the primary display and extracts its text with
// the tesseract command line tool.
package screen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kbinani/screenshot"
	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/config"
)

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no screens detected for screenshot")

// commonTesseractPaths are tried after PATH lookup fails.
var commonTesseractPaths = []string{
	`C:\Program Files\Tesseract-OCR\tesseract.exe`,
	`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`,
	"/opt/homebrew/bin/tesseract",
	"/usr/local/bin/tesseract",
	"/usr/bin/tesseract",
}

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

type OCR struct {
	cfg      config.OCRConfig
	language string
	log      zerolog.Logger

	grab     func() (image.Image, error)
	run      runner
	lookPath func(string) (string, error)
	exists   func(string) bool
}

func New(cfg config.OCRConfig, language string, log zerolog.Logger) *OCR {
	return &OCR{
		cfg:      cfg,
		language: language,
		log:      log,
		grab:     grabPrimary,
		run:      execRunner,
		lookPath: exec.LookPath,
		exists:   fileExists,
	}
}

// Capture saves a screenshot of the primary display as PNG and returns the
// recognized text with whitespace collapsed, plus the PNG path.
func (o *OCR) Capture(ctx context.Context) (string, string, error) {
	img, err := o.grab()
	if err != nil {
		return "", "", err
	}

	path, err := o.save(img)
	if err != nil {
		return "", "", err
	}

	text, err := o.Recognize(ctx, path)
	if err != nil {
		return "", path, err
	}
	return text, path, nil
}

// Recognize runs tesseract over the image at path.
func (o *OCR) Recognize(ctx context.Context, path string) (string, error) {
	bin, err := o.findTesseract()
	if err != nil {
		return "", err
	}

	var args []string
	if os.Getenv("TESSDATA_PREFIX") == "" {
		if dir := filepath.Join(filepath.Dir(bin), "tessdata"); filepath.IsAbs(bin) && o.exists(dir) {
			args = append(args, "--tessdata-dir", dir)
		}
	}
	args = append(args, path, "stdout", "-l", tesseractLanguage(o.language))

	o.log.Debug().Str("tesseract", bin).Strs("args", args).Msg("Running OCR")
	out, err := o.run(ctx, bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return collapseWhitespace(string(out)), nil
}

func (o *OCR) save(img image.Image) (string, error) {
	dir := o.cfg.OutputDir
	if dir == "" {
		dir = "out"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %w", err)
	}

	path := filepath.Join(dir, "screenshot.png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// findTesseract resolves the binary from the configured path, PATH, then
// common install locations.
func (o *OCR) findTesseract() (string, error) {
	if p := o.cfg.TesseractPath; p != "" {
		if o.exists(p) {
			return p, nil
		}
		return "", fmt.Errorf("tesseract path %q does not exist", p)
	}
	if p, err := o.lookPath("tesseract"); err == nil {
		return p, nil
	}
	for _, c := range commonTesseractPaths {
		if o.exists(c) {
			return c, nil
		}
	}
	return "", errors.New("tesseract not found: install it, add it to PATH, or set --tesseract or TESSERACT_PATH")
}

func grabPrimary() (image.Image, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, ErrNoDisplay
	}
	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(0))
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return img, nil
}

// tesseractLanguage maps ISO 639-1 codes used for speech to tesseract's
// traineddata names; anything else is passed through.
func tesseractLanguage(lang string) string {
	switch lang {
	case "", "auto", "en":
		return "eng"
	case "hr":
		return "hrv"
	case "de":
		return "deu"
	case "fr":
		return "fra"
	case "es":
		return "spa"
	case "it":
		return "ita"
	default:
		return lang
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
