package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-screener/internal/models"
)

// ErrAIResponseFormat marks model output that could not be decoded as the
// requested JSON shape, distinct from a failed call.
var ErrAIResponseFormat = errors.New("ai returned invalid JSON")

const embedInputLimit = 40000

type GeminiService interface {
	GenerateRubric(ctx context.Context, prompt string) (string, error)
	EvaluateResume(ctx context.Context, prompt string) (*models.EvaluationResult, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey, modelName string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateRubric implements GeminiService. The model replies with free
// text; an empty reply is an error.
func (g *geminiService) GenerateRubric(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate rubric: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("ai did not return a valid rubric text")
	}

	return text, nil
}

// EvaluateResume implements GeminiService. The model is constrained to a
// JSON reply; the expected shape travels in the prompt because the
// competency map has dynamic keys the schema type cannot express.
func (g *geminiService) EvaluateResume(ctx context.Context, prompt string) (*models.EvaluationResult, error) {
	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate resume: %w", err)
	}

	if resp == nil {
		return nil, fmt.Errorf("no response generated (nil response)")
	}

	return DecodeEvaluation(resp.Text())
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long for the embedding model
	if len(text) > embedInputLimit {
		text = text[:embedInputLimit]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// DecodeEvaluation parses a model reply into an EvaluationResult. A reply
// that is not the requested JSON shape yields ErrAIResponseFormat.
func DecodeEvaluation(text string) (*models.EvaluationResult, error) {
	jsonStr := extractJSON(text)

	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIResponseFormat, err)
	}

	return &result, nil
}

// extractJSON strips markdown fencing the model may wrap around a JSON
// object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
