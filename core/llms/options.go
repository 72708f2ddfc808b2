package llms

// PromptOptions carries per-request settings shared by all backends.
type PromptOptions struct {
	Instructions string
	Turns        []Turn
	Tools        []Tool
}

type PromptOption func(*PromptOptions)

// WithInstructions sets the system instructions for the request.
func WithInstructions(instructions string) PromptOption {
	return func(o *PromptOptions) {
		o.Instructions = instructions
	}
}

// WithTurns provides prior conversation turns as request context.
func WithTurns(turns ...Turn) PromptOption {
	return func(o *PromptOptions) {
		o.Turns = turns
	}
}

// WithTools offers tool declarations to the model.
func WithTools(tools ...Tool) PromptOption {
	return func(o *PromptOptions) {
		o.Tools = tools
	}
}
