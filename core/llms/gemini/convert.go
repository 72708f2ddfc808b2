package gemini

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/kivria40/foxdot-composer/core/llms"
	"google.golang.org/genai"
)

func toContents(turns []llms.Turn, prompt *string) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range turns {
		switch turn.Role {
		case llms.TurnRoleAgent:
			parts := []*genai.Part{}
			if turn.Content != "" {
				parts = append(parts, &genai.Part{Text: turn.Content})
			}
			var responseParts []*genai.Part
			for _, tCall := range turn.ToolCalls {
				args := map[string]any{}
				if tCall.Arguments != "" {
					// Best effort: an undecodable argument string is
					// replayed as an empty argument map.
					_ = json.Unmarshal([]byte(tCall.Arguments), &args)
				}
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					Name: tCall.Name,
					Args: args,
				}})
				if tCall.Response != "" {
					responseParts = append(responseParts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
						Name:     tCall.Name,
						Response: map[string]any{"result": tCall.Response},
					}})
				}
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
			if len(responseParts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: responseParts})
			}
		default:
			if turn.Content != "" {
				contents = append(contents, &genai.Content{
					Role:  genai.RoleUser,
					Parts: []*genai.Part{{Text: turn.Content}},
				})
			}
		}
	}
	if prompt != nil {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: *prompt}},
		})
	}
	return contents
}

func toGenaiTools(tools []llms.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  toGenaiParameters(tool.Function.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func toGenaiParameters(parameters llms.Parameters) *genai.Schema {
	schema := &genai.Schema{
		Type:     genai.TypeObject,
		Required: parameters.Required,
	}
	if len(parameters.Properties) > 0 {
		schema.Properties = map[string]*genai.Schema{}
		for name, property := range parameters.Properties {
			schema.Properties[name] = toGenaiSchema(property)
		}
	}
	return schema
}

func toGenaiSchema(parameter llms.ParameterBase) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGenaiType(parameter.Type),
		Description: parameter.Description,
		Enum:        parameter.Enum,
	}
	if parameter.Items != nil {
		schema.Items = toGenaiSchema(*parameter.Items)
	}
	if len(parameter.Properties) > 0 {
		schema.Properties = map[string]*genai.Schema{}
		for name, property := range parameter.Properties {
			schema.Properties[name] = toGenaiSchema(property)
		}
	}
	return schema
}

func toGenaiType(jsonType string) genai.Type {
	switch jsonType {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func toToolCall(call *genai.FunctionCall) llms.ToolCall {
	id := call.ID
	if id == "" {
		id = uuid.NewString()
	}
	arguments := "{}"
	if len(call.Args) > 0 {
		if data, err := json.Marshal(call.Args); err == nil {
			arguments = string(data)
		}
	}
	return llms.ToolCall{
		ID:        id,
		Name:      call.Name,
		Arguments: arguments,
	}
}
