package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/codenav/internal/analyzer"
	"github.com/standardbeagle/codenav/internal/types"
	"github.com/standardbeagle/codenav/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

// writeJSON prints v as indented JSON on the app's stdout.
func writeJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// path maps a user-supplied file to the form the engine expects. Files
// that exist relative to the working directory are made root-relative;
// anything else is taken as already relative to the root.
func (w *workspace) path(arg string) string {
	if filepath.IsAbs(arg) {
		return pathutil.ToRelative(arg, w.cfg.Project.Root)
	}
	if _, err := os.Stat(arg); err == nil {
		if abs, err := filepath.Abs(arg); err == nil {
			return pathutil.ToRelative(abs, w.cfg.Project.Root)
		}
	}
	return arg
}

// position resolves a parsed location to a file and byte offset.
func (w *workspace) position(loc pathutil.Location) (string, int, error) {
	file := w.path(loc.File)
	if !loc.HasLineColumn() {
		return file, loc.Offset, nil
	}
	offset, err := w.engine.PositionToOffset(file, loc.Line, loc.Column)
	if err != nil {
		return "", 0, err
	}
	if offset < 0 {
		return "", 0, fmt.Errorf("%s is outside the file", loc)
	}
	return file, offset, nil
}

func symbolsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: codenav symbols FILE")
	}
	w, err := openWorkspace(c)
	if err != nil {
		return err
	}

	opts := types.DefaultExtractOptions()
	opts.IncludePrivate = c.Bool("private")
	opts.IncludeImports = c.Bool("imports")
	for _, k := range c.StringSlice("kinds") {
		opts.SymbolTypes = append(opts.SymbolTypes, types.ParseSymbolKind(k))
	}

	file := w.path(c.Args().First())
	syms, err := w.engine.GetSymbols(file, !c.Bool("flat"), opts)
	if err != nil {
		return err
	}
	return writeJSON(c, map[string]interface{}{
		"file":    file,
		"symbols": syms,
		"count":   len(syms),
	})
}

func definitionCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: codenav def NAME|FILE:OFFSET|FILE:LINE:COL")
	}
	w, err := openWorkspace(c)
	if err != nil {
		return err
	}

	arg := c.Args().First()
	loc, isLocation, err := pathutil.ParseLocation(arg)
	if err != nil {
		return err
	}
	var defs []*types.DefinitionLocation
	if isLocation {
		file, offset, err := w.position(loc)
		if err != nil {
			return err
		}
		if defs, err = w.engine.FindDefinitionAt(file, offset); err != nil {
			return err
		}
	} else {
		defs = w.engine.FindDefinitionByName(arg)
	}
	return writeJSON(c, map[string]interface{}{"definitions": defs})
}

func referencesCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: codenav refs NAME|FILE:OFFSET|FILE:LINE:COL")
	}
	w, err := openWorkspace(c)
	if err != nil {
		return err
	}

	opts := types.ReferenceOptions{
		IncludeDeclaration: c.Bool("declaration"),
		IncludeComments:    c.Bool("comments"),
	}
	arg := c.Args().First()
	loc, isLocation, err := pathutil.ParseLocation(arg)
	if err != nil {
		return err
	}

	var search *analyzer.ReferenceSearch
	if isLocation {
		file, offset, err := w.position(loc)
		if err != nil {
			return err
		}
		if search, err = w.engine.FindReferencesAt(file, offset, opts); err != nil {
			return err
		}
	} else {
		search = w.engine.FindReferencesByName(arg, opts)
	}

	if !c.Bool("grouped") {
		return writeJSON(c, search)
	}
	grouped := w.engine.GroupAndSummarize(search)
	return writeJSON(c, struct {
		Target *types.DefinitionLocation `json:"target"`
		*types.GroupedReferencesResult
	}{search.Target, grouped})
}

func hoverCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: codenav hover FILE:OFFSET|FILE:LINE:COL")
	}
	loc, isLocation, err := pathutil.ParseLocation(c.Args().First())
	if err != nil {
		return err
	}
	if !isLocation {
		return fmt.Errorf("hover needs FILE:OFFSET or FILE:LINE:COL, got %q", c.Args().First())
	}
	w, err := openWorkspace(c)
	if err != nil {
		return err
	}

	file, offset, err := w.position(loc)
	if err != nil {
		return err
	}
	h, err := w.engine.HoverAt(file, offset)
	if err != nil {
		return err
	}
	return writeJSON(c, map[string]interface{}{"hover": h})
}

func languagesCommand(c *cli.Context) error {
	w, err := openWorkspace(c)
	if err != nil {
		return err
	}
	return writeJSON(c, map[string]interface{}{"languages": w.engine.Languages()})
}
