package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

// createJSONResponse wraps data as the single text content of a result.
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result so the
// client sees it, with IsError set.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if ule, ok := asUnsupported(err); ok {
		errorData["language"] = ule.Language
		errorData["reason"] = string(ule.Reason)
		errorData["help"] = unsupportedHelp(ule)
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func asUnsupported(err error) (*cnerrors.UnsupportedLanguageError, bool) {
	var ule *cnerrors.UnsupportedLanguageError
	ok := errors.As(err, &ule)
	return ule, ok
}

func unsupportedHelp(ule *cnerrors.UnsupportedLanguageError) string {
	switch {
	case ule.Reason == cnerrors.ReasonBroken:
		return "The language grammar failed to load; rebuild codenav or report the error"
	case ule.Language == "":
		return "Use list_languages to see the supported file extensions"
	default:
		return fmt.Sprintf("Enable %s in the languages section of .codenav.kdl, or use list_languages to see what is installed", ule.Language)
	}
}

// addWarningsToResponse adds a "warnings" field to a JSON object result.
// Non-object content gets the warnings appended as text.
func addWarningsToResponse(result *mcp.CallToolResult, warnings []string) {
	if result == nil || len(warnings) == 0 || len(result.Content) == 0 {
		return
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &data); err == nil {
		data["warnings"] = warnings
		if updated, err := json.Marshal(data); err == nil {
			result.Content[0] = &mcp.TextContent{Text: string(updated)}
			return
		}
	}
	text.Text += "\n\nWarnings:\n"
	for _, w := range warnings {
		text.Text += fmt.Sprintf("- %s\n", w)
	}
}

// createResponseWithWarnings creates a JSON response carrying warnings.
func createResponseWithWarnings(data interface{}, warnings []string) (*mcp.CallToolResult, error) {
	response, err := createJSONResponse(data)
	if err != nil {
		return nil, err
	}
	addWarningsToResponse(response, warnings)
	return response, nil
}
