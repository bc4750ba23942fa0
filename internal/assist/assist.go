// Package assist asks a Gemini vision model for a short reply to what the
// user said, given a screenshot of what they are looking at.
package assist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/petems/whispr/internal/config"
)

// ErrMissingAPIKey is returned when no Gemini key is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set: get a key at https://aistudio.google.com/app/apikey and export it, or pass --gemini-key")

const noResponse = "No response from Gemini"

const silentPrompt = "You are Whispr, a helpful AI assistant. The user didn't say anything, but here's what they're looking at. " +
	"Provide a brief, helpful comment or insight about what you see on their screen (1-2 sentences). " +
	"Be natural and friendly, like a smart colleague glancing over."

const spokenPrompt = "You are Whispr, a helpful AI assistant. The user said: %q\n\n" +
	"You can see what's on their screen in the image. Respond naturally and briefly (1-2 sentences) as if you're a smart friend. " +
	"Provide helpful insight, advice, or a relevant comment based on what they said AND what you see on the screen. " +
	"Don't just describe the screen - they can already see it. Be conversational and helpful."

// Responder produces a reply for a transcript and a screenshot.
type Responder interface {
	Respond(ctx context.Context, transcript, screenshotPath string) (string, error)
}

// generator is the slice of the genai client the assistant uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type gemini struct {
	models  generator
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Gemini-backed Responder.
func New(ctx context.Context, cfg config.AssistConfig, log zerolog.Logger) (Responder, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGemini(client.Models, cfg, log), nil
}

func newGemini(models generator, cfg config.AssistConfig, log zerolog.Logger) *gemini {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &gemini{
		models:  models,
		model:   cfg.Model,
		timeout: timeout,
		log:     log,
	}
}

func (g *gemini) Respond(ctx context.Context, transcript, screenshotPath string) (string, error) {
	img, err := os.ReadFile(screenshotPath)
	if err != nil {
		return "", fmt.Errorf("failed to read screenshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(Prompt(transcript)),
			genai.NewPartFromBytes(img, "image/png"),
		},
	}}

	g.log.Debug().Str("model", g.model).Int("image_bytes", len(img)).Msg("Calling Gemini")
	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstText(resp), nil
}

// Prompt builds the instruction sent alongside the screenshot.
func Prompt(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return silentPrompt
	}
	return fmt.Sprintf(spokenPrompt, transcript)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return noResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			return strings.TrimSpace(part.Text)
		}
	}
	return noResponse
}
