package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.Model)
	assert.InDelta(t, 0.3, config.Temperature, 1e-6)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, DefaultModel, config.Model)
	assert.Equal(t, "custom-model", newConfig.Model)

	// Empty model keeps the current one
	assert.Same(t, config, config.WithModel(""))
}

func TestWithTemperature(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithTemperature(0.9)

	assert.InDelta(t, 0.3, config.Temperature, 1e-6)
	assert.InDelta(t, 0.9, newConfig.Temperature, 1e-6)
}

func TestNewClient_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, DefaultConfig(), "")
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(ctx, &Config{Provider: "openai", Model: "gpt"}, "key")
	assert.ErrorContains(t, err, "unsupported LLM provider")

	_, err = NewClient(ctx, &Config{Provider: ProviderGemini}, "key")
	assert.ErrorContains(t, err, "model is required")
}

func TestExtractTextFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: true,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: true,
		},
		{
			name: "joins text parts and trims",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text("  Dear Hiring Manager,\n"),
						genai.Text("I am applying.  "),
					}},
				}},
			},
			want: "Dear Hiring Manager,\nI am applying.",
		},
		{
			name: "whitespace only",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{genai.Text("   ")}},
				}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTextFromResponse(tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrEmptyResponse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPICallError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &APICallError{Model: "gemini-2.5-flash", Cause: cause}

	assert.Equal(t, "generate with gemini-2.5-flash: quota exceeded", err.Error())
	assert.ErrorIs(t, err, cause)
}
