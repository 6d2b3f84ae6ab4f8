package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codenav/internal/analyzer"
	"github.com/standardbeagle/codenav/internal/types"
)

type symbolsResponse struct {
	File    string              `json:"file"`
	Symbols []*types.SymbolInfo `json:"symbols"`
	Count   int                 `json:"count"`
}

type definitionsResponse struct {
	Definitions []*types.DefinitionLocation `json:"definitions"`
}

type groupedReferencesResponse struct {
	Target *types.DefinitionLocation `json:"target"`
	*types.GroupedReferencesResult
}

type hoverResponse struct {
	Hover *types.HoverInfo `json:"hover"`
}

type languagesResponse struct {
	Languages []analyzer.LanguageStatus `json:"languages"`
}

func (s *Server) handleGetSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("get_symbols", func() (*mcp.CallToolResult, error) {
		var p SymbolsParams
		warnings, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, err
		}
		if p.File == "" {
			return nil, fmt.Errorf("file is required")
		}
		hierarchical := p.Hierarchical == nil || *p.Hierarchical
		syms, err := s.engine.GetSymbols(p.File, hierarchical, p.options())
		if err != nil {
			return nil, err
		}
		return createResponseWithWarnings(symbolsResponse{File: p.File, Symbols: syms, Count: len(syms)}, warnings)
	})
}

func (s *Server) handleFindDefinition(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("find_definition", func() (*mcp.CallToolResult, error) {
		var p DefinitionParams
		warnings, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, err
		}
		var defs []*types.DefinitionLocation
		switch {
		case p.SymbolName != "":
			defs = s.engine.FindDefinitionByName(p.SymbolName)
		case p.hasPosition():
			offset, err := s.offset(p.PositionParams)
			if err != nil {
				return nil, err
			}
			if defs, err = s.engine.FindDefinitionAt(p.File, offset); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("either symbolName or file with offset or line/column is required")
		}
		return createResponseWithWarnings(definitionsResponse{Definitions: defs}, warnings)
	})
}

func (s *Server) handleFindReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("find_references", func() (*mcp.CallToolResult, error) {
		var p ReferencesParams
		warnings, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, err
		}
		opts := types.ReferenceOptions{IncludeDeclaration: p.IncludeDeclaration, IncludeComments: p.IncludeComments}

		var search *analyzer.ReferenceSearch
		switch {
		case p.SymbolName != "":
			search = s.engine.FindReferencesByName(p.SymbolName, opts)
		case p.hasPosition():
			offset, err := s.offset(p.PositionParams)
			if err != nil {
				return nil, err
			}
			if search, err = s.engine.FindReferencesAt(p.File, offset, opts); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("either symbolName or file with offset or line/column is required")
		}

		if p.Grouped != nil && !*p.Grouped {
			return createResponseWithWarnings(search, warnings)
		}
		grouped := s.engine.GroupAndSummarize(search)
		return createResponseWithWarnings(groupedReferencesResponse{Target: search.Target, GroupedReferencesResult: grouped}, warnings)
	})
}

func (s *Server) handleGetHoverInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("get_hover_info", func() (*mcp.CallToolResult, error) {
		var p HoverParams
		warnings, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, err
		}
		if !p.hasPosition() {
			return nil, fmt.Errorf("file with offset or line/column is required")
		}
		offset, err := s.offset(p.PositionParams)
		if err != nil {
			return nil, err
		}
		h, err := s.engine.HoverAt(p.File, offset)
		if err != nil {
			return nil, err
		}
		return createResponseWithWarnings(hoverResponse{Hover: h}, warnings)
	})
}

func (s *Server) handleListLanguages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("list_languages", func() (*mcp.CallToolResult, error) {
		return createJSONResponse(languagesResponse{Languages: s.engine.Languages()})
	})
}

// offset converts a position to a byte offset. Unknown positions become
// -1, which every engine operation treats as out of range.
func (s *Server) offset(p PositionParams) (int, error) {
	if p.Offset != nil {
		return *p.Offset, nil
	}
	return s.engine.PositionToOffset(p.File, p.Line, p.Column)
}
