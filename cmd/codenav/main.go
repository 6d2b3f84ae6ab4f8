package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/codenav/internal/analyzer"
	"github.com/standardbeagle/codenav/internal/config"
	"github.com/standardbeagle/codenav/internal/debug"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/version"

	"github.com/urfave/cli/v2"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = absRoot
	}

	cfg, err := config.LoadWithRoot(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if root != "" {
		cfg.Project.Root = root
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// workspace is a loaded project and the engine answering over it.
type workspace struct {
	cfg     *config.Config
	project *sourcemodel.Project
	engine  *analyzer.Engine
}

func openWorkspace(c *cli.Context) (*workspace, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	langs := sourcemodel.NewLanguageSet()
	project := sourcemodel.NewProject(cfg, langs)
	if err := project.Load(c.Context); err != nil {
		// Files that fail to load are skipped, not fatal
		var skipped *cnerrors.MultiError
		if !errors.As(err, &skipped) {
			return nil, fmt.Errorf("failed to load project %s: %w", cfg.Project.Root, err)
		}
		debug.LogModel("skipped %d files: %v\n", len(skipped.Errors), err)
	}
	debug.LogModel("loaded %d files from %s\n", project.FileCount(), cfg.Project.Root)

	dispatcher := analyzer.NewDispatcher(analyzer.DefaultRegistry(), langs, cfg)
	return &workspace{
		cfg:     cfg,
		project: project,
		engine:  analyzer.NewEngine(project, dispatcher, cfg),
	}, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "codenav",
		Usage:                  "Symbols, definitions, references and hover for Java, Python and JavaScript/TypeScript",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .codenav.kdl in the project root)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.java')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Write debug output to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug output to a log file in the temp directory",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.Bool("debug-log"):
				debug.EnableDebug = "true"
				logPath, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", logPath)
			case c.Bool("verbose"):
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "symbols",
				Aliases:   []string{"sym"},
				Usage:     "List the declarations of a file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "flat",
						Usage: "Do not nest members under their containing types",
					},
					&cli.StringSliceFlag{
						Name:  "kinds",
						Usage: "Only these symbol kinds (e.g., --kinds class,method)",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Include private members",
					},
					&cli.BoolFlag{
						Name:  "imports",
						Usage: "Include import bindings",
						Value: true,
					},
				},
				Action: symbolsCommand,
			},
			{
				Name:      "def",
				Aliases:   []string{"d"},
				Usage:     "Find where a symbol is declared",
				ArgsUsage: "NAME | FILE:OFFSET | FILE:LINE:COL",
				Action:    definitionCommand,
			},
			{
				Name:      "refs",
				Aliases:   []string{"r"},
				Usage:     "Find and classify the usages of a symbol",
				ArgsUsage: "NAME | FILE:OFFSET | FILE:LINE:COL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "declaration",
						Usage: "Include the declaration itself",
					},
					&cli.BoolFlag{
						Name:  "comments",
						Usage: "Include mentions in comments and docstrings",
					},
					&cli.BoolFlag{
						Name:  "grouped",
						Usage: "Group by usage type and add a summary with insights",
					},
				},
				Action: referencesCommand,
			},
			{
				Name:      "hover",
				Usage:     "Describe the element at a position",
				ArgsUsage: "FILE:OFFSET | FILE:LINE:COL",
				Action:    hoverCommand,
			},
			{
				Name:   "languages",
				Usage:  "Show which languages are installed, disabled or broken",
				Action: languagesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the operations as MCP tools over stdio",
				Action: mcpCommand,
			},
		},
	}
}

func main() {
	app := newApp()
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
