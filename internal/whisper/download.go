package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// ggmlMagic is the little-endian 0x67676d6c header of every ggml model.
var ggmlMagic = []byte("lmgg")

// ErrNotModel is returned when a download is not a ggml model, e.g. an
// HTML error page served with status 200.
var ErrNotModel = errors.New("downloaded file is not a ggml model")

var knownModels = []string{
	"tiny.en", "base.en", "base", "small.en", "small",
	"medium.en", "large-v3", "large-v3-turbo",
}

func modelURL(model string) (string, bool) {
	for _, m := range knownModels {
		if m == model {
			return modelBaseURL + "ggml-" + model + ".bin", true
		}
	}
	return "", false
}

const progressEvery = 2 * time.Second

// progress logs download state at most every progressEvery.
type progress struct {
	model string
	total int64
	done  int64
	last  time.Time
	now   func() time.Time
	log   zerolog.Logger
}

func (p *progress) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if t := p.now(); t.Sub(p.last) >= progressEvery || p.done >= p.total {
		p.last = t
		p.log.Info().
			Str("model", p.model).
			Float64("percent", float64(p.done)/float64(p.total)*100).
			Float64("downloaded_mb", mb(p.done)).
			Float64("total_mb", mb(p.total)).
			Msg("Downloading model")
	}
	return len(b), nil
}

func mb(n int64) float64 { return float64(n) / 1024 / 1024 }

func downloadModel(ctx context.Context, model, destPath string, log zerolog.Logger) error {
	url, ok := modelURL(model)
	if !ok {
		return fmt.Errorf("unknown model: %s", model)
	}
	return fetch(ctx, http.DefaultClient, url, model, destPath, log)
}

// fetch streams url into a temp file next to destPath, checks the ggml
// header and renames it into place. destPath is never left half written.
func fetch(ctx context.Context, client *http.Client, url, model, destPath string, log zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}

	log.Info().Str("model", model).Str("url", url).Msg("Starting model download")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download model: HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	defer os.Remove(tmpPath)

	written, err := writeModel(tmpPath, resp, model, log)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move model file: %w", err)
	}

	log.Info().
		Str("model", model).
		Str("path", destPath).
		Float64("size_mb", mb(written)).
		Msg("Model downloaded")
	return nil
}

func writeModel(path string, resp *http.Response, model string, log zerolog.Logger) (int64, error) {
	header := make([]byte, len(ggmlMagic))
	if _, err := io.ReadFull(resp.Body, header); err != nil || !bytes.Equal(header, ggmlMagic) {
		return 0, ErrNotModel
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	var w io.Writer = out
	if resp.ContentLength > 0 {
		w = io.MultiWriter(out, &progress{
			model: model,
			total: resp.ContentLength,
			done:  int64(len(header)),
			last:  time.Now(),
			now:   time.Now,
			log:   log,
		})
	} else {
		log.Warn().Str("model", model).Msg("Content-Length not provided, progress tracking unavailable")
	}

	n, err := io.Copy(w, io.MultiReader(bytes.NewReader(header), resp.Body))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write model file: %w", err)
	}
	return n, nil
}
