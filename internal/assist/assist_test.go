package assist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/petems/whispr/internal/config"
)

type fakeModels struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func writeScreenshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screenshot.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG fake"), 0644))
	return path
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestPrompt(t *testing.T) {
	assert.Equal(t, silentPrompt, Prompt("   "))

	p := Prompt(" what is this error? ")
	assert.Contains(t, p, `The user said: "what is this error?"`)
	assert.Contains(t, p, "Don't just describe the screen")
}

func TestRespondSendsPromptAndImage(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  Looks like a missing import.  ")}
	g := newGemini(fake, config.AssistConfig{Model: "gemini-2.0-flash"}, zerolog.Nop())

	got, err := g.Respond(context.Background(), "why does this fail", writeScreenshot(t))
	require.NoError(t, err)

	assert.Equal(t, "Looks like a missing import.", got)
	assert.Equal(t, "gemini-2.0-flash", fake.model)
	require.Len(t, fake.contents, 1)

	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, Prompt("why does this fail"), parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("\x89PNG fake"), parts[1].InlineData.Data)
}

func TestRespondEmptyCandidates(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{}}
	g := newGemini(fake, config.AssistConfig{}, zerolog.Nop())

	got, err := g.Respond(context.Background(), "", writeScreenshot(t))
	require.NoError(t, err)
	assert.Equal(t, noResponse, got)
}

func TestRespondErrors(t *testing.T) {
	g := newGemini(&fakeModels{err: errors.New("quota")}, config.AssistConfig{}, zerolog.Nop())

	_, err := g.Respond(context.Background(), "hi", writeScreenshot(t))
	assert.ErrorContains(t, err, "quota")

	_, err = g.Respond(context.Background(), "hi", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "failed to read screenshot")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), config.AssistConfig{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
