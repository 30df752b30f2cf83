// Package llm provides the text-generation client used to draft application emails.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultModel is the model used when none is configured
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature keeps drafts formal and close to the prompt
const DefaultTemperature float32 = 0.3

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
}

// WithModel returns a copy of the config using model, or the receiver unchanged when model is empty
func (c *Config) WithModel(model string) *Config {
	if model == "" {
		return c
	}
	out := *c
	out.Model = model
	return &out
}

// WithTemperature returns a copy of the config using temperature
func (c *Config) WithTemperature(temperature float32) *Config {
	out := *c
	out.Temperature = temperature
	return &out
}
