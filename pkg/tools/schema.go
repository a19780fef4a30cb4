package tools

import "github.com/sashabaranov/go-openai/jsonschema"

func object(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	if props == nil {
		props = map[string]jsonschema.Definition{}
	}
	return jsonschema.Definition{Type: jsonschema.Object, Properties: props, Required: required}
}

func stringParam(description string, enum ...string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: description, Enum: enum}
}

func numberParam(description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Number, Description: description}
}

func boolParam(description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Boolean, Description: description}
}

func stringListParam(description string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: description,
		Items:       &jsonschema.Definition{Type: jsonschema.String},
	}
}
