package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tochi-dev/medisync/internal/core"
)

const extractionSystemPrompt = `You are a hospital resource report parser.
Given the raw text of a hospital resource report or prescription, return a
single JSON object with this shape:

{
  "doctors": [{"name": "", "available_days": "", "time": ""}],
  "nurses": [{"name": "", "available_days": "", "time": ""}],
  "inventory": {
    "medicines": [{"name": "", "count": 0}],
    "saline": 0, "injections": 0, "antibodies": 0, "ot_rooms": 0,
    "general_beds": 0, "available_nurses_count": 0,
    "instruments": [{"name": "", "count": 0}],
    "ecg_machines": 0, "ct_scan": 0, "endoscopy": 0, "bp_machines": 0,
    "ultrasonography": 0, "xray_machines": 0,
    "other_equipment": [{"name": "", "count": 0}]
  }
}

Fill in whatever the document mentions and omit nothing you can find.
Respond with JSON only, no prose.`

type GeminiExtractor struct {
	client    *genai.Client
	modelName string
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiExtractor{client: cl, modelName: modelName}, nil
}

func (g *GeminiExtractor) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ExtractResources sends the document text to Gemini and decodes the JSON
// reply into an untrusted map. No shape validation happens here, that is
// the normalization layer's job. An error means the service could not be
// reached or replied with something that is not JSON at all.
func (g *GeminiExtractor) ExtractResources(ctx context.Context, text string) (map[string]any, string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(extractionSystemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, g.modelName, fmt.Errorf("gemini extract: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, g.modelName, fmt.Errorf("gemini extract: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	raw := map[string]any{}
	if err := json.Unmarshal([]byte(stripFences(b.String())), &raw); err != nil {
		return nil, g.modelName, fmt.Errorf("gemini extract: non-JSON reply: %w", err)
	}
	return raw, g.modelName, nil
}

// stripFences removes a markdown code fence the model sometimes wraps the
// JSON in despite the JSON response type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ core.ResourceExtractor = (*GeminiExtractor)(nil)
