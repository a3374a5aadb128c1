package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/profilescan/profilescan/internal/model"
)

// DefaultModel is the chat model used for extraction unless overridden.
const DefaultModel = openai.ChatModelGPT4oMini

// extractionTemperature keeps responses close to deterministic; profile
// extraction is a reading task, not a writing one.
const extractionTemperature = 0.1

// Extractor extracts profile records from a block of page text.
//
// Design decision: We use an interface so the pipeline and its tests can
// run against a stub without a network. The production implementation is
// OpenAIExtractor.
type Extractor interface {
	// Extract returns the profiles found in text, in the order the
	// model returned them. A nil slice with a nil error means the text
	// simply mentioned nobody.
	Extract(ctx context.Context, text string) ([]model.Profile, error)
}

// OpenAIExtractor extracts profiles via the OpenAI chat completions API.
type OpenAIExtractor struct {
	client *openai.Client
	model  openai.ChatModel
	logger *slog.Logger

	// clientOpts are extra client options; tests use these to point the
	// client at a local server.
	clientOpts []option.RequestOption
}

// Option configures an OpenAIExtractor.
type Option func(*OpenAIExtractor)

// WithModel sets the chat model used for extraction.
func WithModel(m openai.ChatModel) Option {
	return func(e *OpenAIExtractor) {
		e.model = m
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *OpenAIExtractor) {
		e.logger = logger
	}
}

// WithClientOptions appends options for the underlying OpenAI client,
// such as a custom base URL or HTTP client.
func WithClientOptions(opts ...option.RequestOption) Option {
	return func(e *OpenAIExtractor) {
		e.clientOpts = append(e.clientOpts, opts...)
	}
}

// NewOpenAIExtractor creates an extractor authenticated with the given
// API key.
func NewOpenAIExtractor(apiKey string, opts ...Option) *OpenAIExtractor {
	e := &OpenAIExtractor{
		model:  DefaultModel,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, e.clientOpts...)
	e.client = openai.NewClient(clientOpts...)

	return e
}

// Extract sends the cleaned page text to the model and decodes the
// response. Empty text short-circuits to zero profiles without an API
// call. Any transport error or malformed response is returned as an
// error; the caller decides whether that aborts anything (it shouldn't).
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) ([]model.Profile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(e.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(text),
		}),
		Temperature: openai.F(extractionTemperature),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	profiles, err := decodeProfiles(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("extraction completed",
		"profiles", len(profiles),
		"input_bytes", len(text),
	)

	return profiles, nil
}

// profilesEnvelope is the strict response shape the model is instructed
// to produce.
type profilesEnvelope struct {
	Profiles []model.Profile `json:"profiles"`
}

// decodeProfiles decodes a model response into profile records.
//
// Design decision: The response is decoded into a fixed envelope rather
// than trusting whatever shape arrives at runtime. Records missing a
// name or about text are dropped here, so downstream code only ever
// sees complete profiles.
func decodeProfiles(content string) ([]model.Profile, error) {
	var envelope profilesEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("response is not valid profile JSON: %w", err)
	}

	profiles := make([]model.Profile, 0, len(envelope.Profiles))
	for _, p := range envelope.Profiles {
		if p.IsValid() {
			profiles = append(profiles, p)
		}
	}

	return profiles, nil
}
