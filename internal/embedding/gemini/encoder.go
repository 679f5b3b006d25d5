package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/venturescout/vc-sourcer/internal/ratelimit"
	"github.com/venturescout/vc-sourcer/internal/utils"
)

// rateSource is the limiter bucket for all outbound embedding calls.
const rateSource = "gemini"

const (
	defaultModel      = "gemini-embedding-001"
	defaultMaxRetries = 2
	retryBackoff      = 2 * time.Second
)

// embedCaller issues a single EmbedContent request, so tests can exercise
// the retry and guard paths without a live client.
type embedCaller interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content) (*genai.EmbedContentResponse, error)
}

type genaiEmbedCaller struct {
	client *genai.Client
}

func (g *genaiEmbedCaller) EmbedContent(ctx context.Context, model string, contents []*genai.Content) (*genai.EmbedContentResponse, error) {
	return g.client.Models.EmbedContent(ctx, model, contents, nil)
}

// Encoder wraps the Google GenAI client to turn text into embedding vectors.
// The similarity cache is its only caller.
type Encoder struct {
	caller     embedCaller
	modelName  string
	maxRetries int
	limiter    *ratelimit.Limiter

	// wait is swappable for tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewEncoder creates an Encoder configured for the Gemini API backend. A nil
// limiter disables request throttling.
func NewEncoder(ctx context.Context, apiKey, model string, maxRetries int, limiter *ratelimit.Limiter) (*Encoder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &Encoder{
		caller:     &genaiEmbedCaller{client: client},
		modelName:  model,
		maxRetries: maxRetries,
		limiter:    limiter,
		wait:       utils.WaitFor,
	}, nil
}

// Encode returns the embedding vector for the text, retrying transient
// failures with a flat backoff.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.caller == nil {
		return nil, errors.New("gemini encoder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	wait := e.wait
	if wait == nil {
		wait = utils.WaitFor
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, retryBackoff); err != nil {
				return nil, err
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Acquire(ctx, rateSource); err != nil {
				return nil, err
			}
		}

		vector, err := e.embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("embed content after %d attempts: %w", e.maxRetries+1, lastErr)
}

func (e *Encoder) embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
	}}

	resp, err := e.caller.EmbedContent(ctx, e.modelName, contents)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embeddings")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("gemini api returned an empty embedding")
	}

	return values, nil
}

// Model reports the configured embedding model name.
func (e *Encoder) Model() string {
	if e == nil {
		return ""
	}
	return e.modelName
}
