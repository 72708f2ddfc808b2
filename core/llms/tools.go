package llms

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// Tool is a function declaration offered to the model. Dispatch of the
// resulting calls is handled entirely by the caller.
type Tool struct {
	Function ToolFunction
}

type ToolFunction struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  Parameters `json:"parameters"`
}

type Parameters struct {
	Type       string                   `json:"type"`
	Properties map[string]ParameterBase `json:"properties,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type ParameterBase struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Enum        []string                 `json:"enum,omitempty"`
	Items       *ParameterBase           `json:"items,omitempty"`
	Properties  map[string]ParameterBase `json:"properties,omitempty"`
}

// NewDeclaration builds a tool declaration with object parameters.
func NewDeclaration(name string, description string, parameters map[string]ParameterBase) Tool {
	return Tool{
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters: Parameters{
				Type:       "object",
				Properties: parameters,
			},
		},
	}
}

// WithRequired marks parameters as required in the declaration.
func (t Tool) WithRequired(names ...string) Tool {
	t.Function.Parameters.Required = names
	return t
}

// DecodeArguments unmarshals model-emitted tool arguments into T,
// repairing near-JSON output (truncated braces, single quotes) before
// giving up. An empty argument string decodes to the zero value.
func DecodeArguments[T any](arguments string) (T, error) {
	var args T
	if arguments == "" {
		return args, nil
	}
	err := json.Unmarshal([]byte(arguments), &args)
	if err == nil {
		return args, nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, repairErr := jsonrepair.JSONRepair(arguments)
		if repairErr != nil {
			return args, fmt.Errorf("decoding arguments: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), &args); err != nil {
			return args, fmt.Errorf("decoding repaired arguments: %w", err)
		}
		return args, nil
	}
	return args, fmt.Errorf("decoding arguments: %w", err)
}
