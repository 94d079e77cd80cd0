package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func shellSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"description": "The terminal command to execute, as a command line or an argv array",
				"oneOf": []any{
					map[string]any{"type": "string", "minLength": 1},
					map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 1,
					},
				},
			},
			"is_background": map[string]any{
				"type":        "boolean",
				"description": "Whether the command should be run in the background",
			},
			"workdir": map[string]any{
				"type":        "string",
				"description": "The working directory for the command",
			},
			"timeout_sec": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Seconds to wait before the command is killed",
			},
		},
		"required": []any{"command"},
	}
}

func editSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_file": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The path of the file to edit",
			},
			"code_edit": map[string]any{
				"type":        "string",
				"description": "The new content for the file or a patch in the format '*** Begin Patch\\n...'",
			},
		},
		"required": []any{"target_file", "code_edit"},
	}
}

// Definitions lists the tools exposed to the model.
func Definitions() []Definition {
	return []Definition{
		{Name: TerminalToolName, Description: "Run a terminal command on the user's system", Parameters: shellSchema()},
		{Name: EditFileToolName, Description: "Edit a file or create a new one", Parameters: editSchema()},
	}
}

type schemaValidationError struct {
	issues []string
}

func (e schemaValidationError) Error() string {
	if len(e.issues) == 0 {
		return "arguments failed schema validation"
	}
	return strings.Join(e.issues, "; ")
}

// validateArguments checks raw against schema. Schema violations are
// reported as schemaValidationError; malformed JSON is a plain error.
func validateArguments(schema map[string]any, raw string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("tools: schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return schemaValidationError{issues: issues}
}
