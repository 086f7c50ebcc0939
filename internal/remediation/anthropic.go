package remediation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	// DefaultAnthropicMaxTokens bounds the size of a synthesized draft.
	DefaultAnthropicMaxTokens int64 = 4096

	anthropicTextBlockTypeConstant   = "text"
	anthropicTokenRequiredMessage    = "anthropic engine requires an API token"
	anthropicFallbackMessageConstant = "draft synthesis failed, using template draft"
	anthropicEmptyResponseMessage    = "anthropic response contained no text"
	logFieldSuggestionIDConstant     = "suggestion_id"
	logFieldModelConstant            = "model"
)

// ErrMissingToken indicates the anthropic engine was selected without a token.
var ErrMissingToken = errors.New(anthropicTokenRequiredMessage)

// AnthropicConfiguration tunes the Messages API calls.
type AnthropicConfiguration struct {
	Token          string
	Model          string
	MaxTokens      int64
	RequestOptions []option.RequestOption
}

// AnthropicSynthesizer sends prompts to the Anthropic Messages API. Failed
// calls fall back to the template draft so a batch always completes.
type AnthropicSynthesizer struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	fallback  Synthesizer
	logger    *zap.Logger
}

// NewAnthropicSynthesizer constructs an AnthropicSynthesizer.
func NewAnthropicSynthesizer(configuration AnthropicConfiguration, fallback Synthesizer, logger *zap.Logger) (*AnthropicSynthesizer, error) {
	token := strings.TrimSpace(configuration.Token)
	if len(token) == 0 {
		return nil, ErrMissingToken
	}
	model := strings.TrimSpace(configuration.Model)
	if len(model) == 0 {
		model = DefaultAnthropicModel
	}
	maxTokens := configuration.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	requestOptions := append([]option.RequestOption{option.WithAPIKey(token)}, configuration.RequestOptions...)
	return &AnthropicSynthesizer{
		client:    anthropic.NewClient(requestOptions...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		fallback:  fallback,
		logger:    logger,
	}, nil
}

// Synthesize requests a draft for the prompt.
func (synthesizer *AnthropicSynthesizer) Synthesize(executionContext context.Context, item suggestion.Suggestion, prompt string) (string, error) {
	draft, requestError := synthesizer.request(executionContext, prompt)
	if requestError == nil {
		return fmt.Sprintf(draftHeaderTemplate, item.Title) + draft, nil
	}
	if synthesizer.fallback == nil {
		return "", requestError
	}
	synthesizer.logger.Warn(
		anthropicFallbackMessageConstant,
		zap.Int(logFieldSuggestionIDConstant, item.ID),
		zap.String(logFieldModelConstant, string(synthesizer.model)),
		zap.Error(requestError),
	)
	return synthesizer.fallback.Synthesize(executionContext, item, prompt)
}

func (synthesizer *AnthropicSynthesizer) request(executionContext context.Context, prompt string) (string, error) {
	response, apiError := synthesizer.client.Messages.New(executionContext, anthropic.MessageNewParams{
		Model:     synthesizer.model,
		MaxTokens: synthesizer.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if apiError != nil {
		return "", apiError
	}

	var responseText strings.Builder
	for _, block := range response.Content {
		if block.Type == anthropicTextBlockTypeConstant {
			responseText.WriteString(block.Text)
		}
	}
	if len(strings.TrimSpace(responseText.String())) == 0 {
		return "", errors.New(anthropicEmptyResponseMessage)
	}
	return responseText.String(), nil
}
