package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"storyloom/internal/config"
	"storyloom/internal/store"
)

// Client wraps the hosted model API behind the three calls the pipeline
// needs: query/document embedding, narrative generation, and the
// tool-calling field analysis pass.
type Client struct {
	genai           *genai.Client
	chatModel       string
	embeddingModel  string
	analysisModel   string
	temperature     float32
	maxOutputTokens int32
}

func New(ctx context.Context, apiKey string, cfg config.ModelConfig) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		genai:           client,
		chatModel:       cfg.ChatModel,
		embeddingModel:  cfg.EmbeddingModel,
		analysisModel:   cfg.AnalysisModel,
		temperature:     float32(cfg.Temperature),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// EmbedQuery embeds one retrieval query, pinned to the canon vector width.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of canon texts for storage.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

func (c *Client) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := c.genai.Models.EmbedContent(ctx,
		c.embeddingModel,
		contents,
		&genai.EmbedContentConfig{
			TaskType:             task,
			OutputDimensionality: genai.Ptr[int32](store.EmbeddingDim),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding content: got %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != store.EmbeddingDim {
			return nil, fmt.Errorf("embedding content: unexpected vector width %d", len(emb.Values))
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (c *Client) Close() error {
	return nil
}
