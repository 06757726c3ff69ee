package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/lmoreira/jobmatch/internal/embedding"
)

const (
	defaultModel      = "gemini-embedding-001"
	defaultDimensions = 768
)

// Encoder implements embedding.Encoder on top of the Gemini API backend.
type Encoder struct {
	client     *genai.Client
	modelName  string
	dimensions int
}

// NewEncoder creates an encoder for the given model name. A missing API
// key or a client construction failure is reported as
// embedding.ErrModelUnavailable so callers can tell "backend absent" apart
// from a transient encode error.
func NewEncoder(ctx context.Context, apiKey, model string, dimensions int) (*Encoder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", embedding.ErrModelUnavailable)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", embedding.ErrModelUnavailable, err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}

	return &Encoder{client: client, modelName: model, dimensions: dimensions}, nil
}

func (e *Encoder) Model() string {
	if e == nil {
		return ""
	}
	return e.modelName
}

func (e *Encoder) Dimensions() int {
	if e == nil {
		return 0
	}
	return e.dimensions
}

// Encode embeds the texts in a single batched request, preserving input
// order.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("%w: gemini encoder is not initialized", embedding.ErrModelUnavailable)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}

	cfg := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dimensions)),
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, errors.New("gemini api returned an unexpected number of embeddings")
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned an empty embedding for document %d", i)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}
