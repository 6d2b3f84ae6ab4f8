package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/standardbeagle/codenav/internal/types"
)

// SymbolsParams are the get_symbols arguments.
type SymbolsParams struct {
	File             string   `json:"file"`
	Hierarchical     *bool    `json:"hierarchical,omitempty"`
	SymbolTypes      []string `json:"symbolTypes,omitempty"`
	IncludePrivate   *bool    `json:"includePrivate,omitempty"`
	IncludeImports   *bool    `json:"includeImports,omitempty"`
	IncludeSynthetic *bool    `json:"includeSynthetic,omitempty"`
}

// options applies the set flags over the extraction defaults.
func (p SymbolsParams) options() types.ExtractOptions {
	opts := types.DefaultExtractOptions()
	for _, s := range p.SymbolTypes {
		if s = strings.TrimSpace(s); s != "" {
			opts.SymbolTypes = append(opts.SymbolTypes, types.ParseSymbolKind(s))
		}
	}
	if p.IncludePrivate != nil {
		opts.IncludePrivate = *p.IncludePrivate
	}
	if p.IncludeImports != nil {
		opts.IncludeImports = *p.IncludeImports
	}
	if p.IncludeSynthetic != nil {
		opts.IncludeSynthetic = *p.IncludeSynthetic
	}
	return opts
}

// PositionParams address a location either by byte offset or by 1-based
// line and column.
type PositionParams struct {
	File   string `json:"file,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (p PositionParams) hasPosition() bool {
	return p.File != "" && (p.Offset != nil || p.Line > 0)
}

// DefinitionParams are the find_definition arguments.
type DefinitionParams struct {
	SymbolName string `json:"symbolName,omitempty"`
	PositionParams
}

// ReferencesParams are the find_references arguments.
type ReferencesParams struct {
	SymbolName         string `json:"symbolName,omitempty"`
	IncludeDeclaration bool   `json:"includeDeclaration,omitempty"`
	IncludeComments    bool   `json:"includeComments,omitempty"`
	Grouped            *bool  `json:"grouped,omitempty"`
	PositionParams
}

// HoverParams are the get_hover_info arguments.
type HoverParams struct {
	PositionParams
}

// decodeParams unmarshals raw arguments into dst and reports parameters
// dst does not know about.
func decodeParams(raw json.RawMessage, dst interface{}) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return ValidateAndWarnExtraParams(raw, dst), nil
}

// ValidateAndWarnExtraParams returns a warning for every top-level JSON
// field that validStruct has no json tag for.
func ValidateAndWarnExtraParams(jsonBytes []byte, validStruct interface{}) []string {
	var provided map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &provided); err != nil {
		return nil
	}
	valid := make(map[string]bool)
	collectFieldNames(reflect.TypeOf(validStruct), valid)

	var warnings []string
	for name := range provided {
		if !valid[name] {
			warnings = append(warnings, fmt.Sprintf("Unknown parameter '%s' was provided and will be ignored", name))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// collectFieldNames gathers the json names of t, descending into embedded
// structs the way encoding/json flattens them.
func collectFieldNames(t reflect.Type, into map[string]bool) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if field.Anonymous && name == "" {
			collectFieldNames(field.Type, into)
			continue
		}
		switch name {
		case "-":
		case "":
			into[field.Name] = true
		default:
			into[name] = true
		}
	}
}
