package mcp

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codenav/internal/analyzer"
	"github.com/standardbeagle/codenav/internal/config"
	cndebug "github.com/standardbeagle/codenav/internal/debug"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/version"
)

// Server exposes the engine operations as MCP tools.
type Server struct {
	project          *sourcemodel.Project
	engine           *analyzer.Engine
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
	watcher          *sourcemodel.Watcher
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger replaces the default file-backed diagnostic logger.
func WithLogger(dl *DiagnosticLogger) Option {
	return func(s *Server) { s.diagnosticLogger = dl }
}

// NewServer creates an MCP server answering from engine. project is the
// model engine reads; it is watched for changes when watch mode is on.
func NewServer(project *sourcemodel.Project, engine *analyzer.Engine, cfg *config.Config, opts ...Option) (*Server, error) {
	if project == nil || engine == nil || cfg == nil {
		return nil, fmt.Errorf("mcp server needs a project, an engine and a config")
	}
	s := &Server{project: project, engine: engine, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.diagnosticLogger == nil {
		s.diagnosticLogger = NewDiagnosticLogger(true)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codenav",
		Version: version.Info(),
	}, nil)
	s.registerTools()
	s.diagnosticLogger.Printf("MCP server initialized for %s (%d files)", project.Root(), project.FileCount())
	return s, nil
}

func (s *Server) registerTools() {
	position := map[string]*jsonschema.Schema{
		"file": {
			Type:        "string",
			Description: "File path, relative to the project root or absolute",
		},
		"offset": {
			Type:        "integer",
			Description: "0-based byte offset in the file",
		},
		"line": {
			Type:        "integer",
			Description: "1-based line, used with column when offset is absent",
		},
		"column": {
			Type:        "integer",
			Description: "1-based column (bytes)",
		},
	}
	with := func(extra map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
		out := make(map[string]*jsonschema.Schema, len(position)+len(extra))
		for k, v := range position {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "get_symbols",
		Description: "List the declarations of a Java, Python, JavaScript or TypeScript file, flat or nested by containing type.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "File path, relative to the project root or absolute",
				},
				"hierarchical": {
					Type:        "boolean",
					Description: "Nest members under their containing types (default true)",
				},
				"symbolTypes": {
					Type:        "array",
					Description: "Only these kinds, e.g. class, method, constant, enum_member",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"includePrivate": {
					Type:        "boolean",
					Description: "Include private members (default true)",
				},
				"includeImports": {
					Type:        "boolean",
					Description: "Include import bindings (default true)",
				},
				"includeSynthetic": {
					Type:        "boolean",
					Description: "Include compiler-generated members (default true)",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleGetSymbols)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_definition",
		Description: "Find where a symbol is declared, by name (Outer.member accepted) or by file position. Results carry a confidence in [0,1].",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: with(map[string]*jsonschema.Schema{
				"symbolName": {
					Type:        "string",
					Description: "Simple or qualified symbol name",
				},
			}),
		},
	}, s.handleFindDefinition)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_references",
		Description: "Find and classify the usages of a symbol, by name or by file position, grouped by usage type with insights.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: with(map[string]*jsonschema.Schema{
				"symbolName": {
					Type:        "string",
					Description: "Simple or qualified symbol name",
				},
				"includeDeclaration": {
					Type:        "boolean",
					Description: "Prepend the declaration itself",
				},
				"includeComments": {
					Type:        "boolean",
					Description: "Also report mentions in comments and docstrings",
				},
				"grouped": {
					Type:        "boolean",
					Description: "Group by usage type and add a summary (default true)",
				},
			}),
		},
	}, s.handleFindReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_hover_info",
		Description: "Describe the element at a file position: type, signature, documentation, hierarchy, usage count and complexity.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: with(nil),
			Required:   []string{"file"},
		},
	}, s.handleGetHoverInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_languages",
		Description: "Report each supported language and whether it is installed, disabled or broken.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleListLanguages)
}

// recoverFromPanic runs handler and turns a panic into an error result.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("panic in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Errorf("%s: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// Start serves MCP over stdio until ctx is done or the client disconnects.
// In watch mode the project is kept in sync with the file system.
func (s *Server) Start(ctx context.Context) error {
	cndebug.SetMCPMode(true)
	if s.cfg.Index.WatchMode && s.watcher == nil {
		w, err := sourcemodel.NewWatcher(s.project)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			w.Close()
			return fmt.Errorf("start watcher: %w", err)
		}
		s.watcher = w
		s.diagnosticLogger.Printf("watching %s", s.project.Root())
	}
	s.diagnosticLogger.Printf("starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops the watcher and closes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("shutting down MCP server")
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
		s.watcher = nil
	}
	if cerr := s.diagnosticLogger.Close(); err == nil {
		err = cerr
	}
	return err
}
