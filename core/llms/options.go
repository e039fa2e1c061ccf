package llms

import "github.com/satyavak/courtroom-core/internal/utils"

// DefaultTemperature matches the sampling the court prompt was tuned with.
const DefaultTemperature = 0.7

// PromptOptions contains the options shared by every response gateway.
type PromptOptions struct {
	// SystemPrompt is sent ahead of the rendered court prompt when set.
	SystemPrompt string
	// Temperature is left to the provider default when nil.
	Temperature *float64
}

// PromptOption is a function that can be used to modify the prompt options.
type PromptOption func(*PromptOptions)

// NewPromptOptions applies opts on top of the defaults.
func NewPromptOptions(opts ...PromptOption) PromptOptions {
	options := PromptOptions{Temperature: utils.Ptr(DefaultTemperature)}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithSystemPrompt sets the system prompt for the request.
// Repeating this option will overwrite the previous system prompt.
func WithSystemPrompt(prompt string) PromptOption {
	return func(opts *PromptOptions) {
		opts.SystemPrompt = prompt
	}
}

// WithTemperature overrides the sampling temperature. A negative value
// removes it from the request.
func WithTemperature(temperature float64) PromptOption {
	return func(opts *PromptOptions) {
		if temperature < 0 {
			opts.Temperature = nil
			return
		}
		opts.Temperature = utils.Ptr(temperature)
	}
}
