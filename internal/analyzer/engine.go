package analyzer

import (
	"github.com/standardbeagle/codenav/internal/config"
	"github.com/standardbeagle/codenav/internal/debug"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/semantic"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// Engine answers symbol, definition, reference and hover queries over a
// source model. Every operation holds the model's read lock while it runs
// and is safe for concurrent use.
type Engine struct {
	model      sourcemodel.Model
	dispatcher *Dispatcher
	cfg        *config.Config
	matcher    *semantic.NameMatcher
}

// NewEngine creates an engine over model.
func NewEngine(model sourcemodel.Model, dispatcher *Dispatcher, cfg *config.Config) *Engine {
	return &Engine{
		model:      model,
		dispatcher: dispatcher,
		cfg:        cfg,
		matcher:    semantic.NewNameMatcher(cfg.Confidence.FuzzyThreshold, cfg.Confidence.StemMinLength),
	}
}

// ReferenceSearch is the outcome of a reference query: the resolved target
// and its usages. Target is nil when nothing resolved.
type ReferenceSearch struct {
	Target     *types.DefinitionLocation `json:"target"`
	References []*types.ReferenceInfo    `json:"references"`
}

// guarded runs fn under the read lock. A panic inside fn is logged and
// turned into the empty result; only errors fn returns reach the caller.
func guarded[T any](e *Engine, op string, empty T, fn func() (T, error)) (out T, err error) {
	release := e.model.ReadLock()
	defer release()
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalyzer("%s: recovered: %v", op, r)
			out, err = empty, nil
		}
	}()
	return fn()
}

// resolveFile dispatches and parses path. The file is nil when it cannot
// be read or parsed; the error is set only when no adapter can serve it.
func (e *Engine) resolveFile(path string) (*sourcemodel.File, Adapter, error) {
	a, _, err := e.dispatcher.For(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := e.model.Parse(path)
	if err != nil {
		if cnerrors.IsHostUnavailable(err) {
			return nil, nil, err
		}
		debug.LogAnalyzer("parse %s: %v", path, err)
		return nil, nil, nil
	}
	return f, a, nil
}

// GetSymbols lists the symbols declared in path.
func (e *Engine) GetSymbols(path string, hierarchical bool, opts types.ExtractOptions) ([]*types.SymbolInfo, error) {
	empty := []*types.SymbolInfo{}
	return guarded(e, "symbols", empty, func() ([]*types.SymbolInfo, error) {
		f, a, err := e.resolveFile(path)
		if err != nil || f == nil {
			return empty, err
		}
		return extractSymbols(e.model, a, f, hierarchical, opts), nil
	})
}

// FindDefinitionAt resolves the element at offset in path.
func (e *Engine) FindDefinitionAt(path string, offset int) ([]*types.DefinitionLocation, error) {
	empty := []*types.DefinitionLocation{}
	return guarded(e, "definition", empty, func() ([]*types.DefinitionLocation, error) {
		f, a, err := e.resolveFile(path)
		if err != nil || f == nil {
			return empty, err
		}
		return e.definitionsAt(f, a, offset), nil
	})
}

// FindDefinitionByName searches declarations by simple or qualified name.
// Results are ordered by decreasing confidence.
func (e *Engine) FindDefinitionByName(name string) []*types.DefinitionLocation {
	empty := []*types.DefinitionLocation{}
	out, _ := guarded(e, "definition", empty, func() ([]*types.DefinitionLocation, error) {
		return e.definitionsByName(name), nil
	})
	return out
}

// FindReferencesAt finds the usages of the declaration at offset in path.
func (e *Engine) FindReferencesAt(path string, offset int, opts types.ReferenceOptions) (*ReferenceSearch, error) {
	empty := &ReferenceSearch{References: []*types.ReferenceInfo{}}
	return guarded(e, "references", empty, func() (*ReferenceSearch, error) {
		f, a, err := e.resolveFile(path)
		if err != nil || f == nil {
			return empty, err
		}
		if offset < 0 || offset >= len(f.Content) {
			return empty, nil
		}
		c := e.lookupAt(f, a, offset, 1.0)
		if c == nil {
			return empty, nil
		}
		return e.search(c, opts), nil
	})
}

// FindReferencesByName finds the usages of the best match for name.
func (e *Engine) FindReferencesByName(name string, opts types.ReferenceOptions) *ReferenceSearch {
	empty := &ReferenceSearch{References: []*types.ReferenceInfo{}}
	out, _ := guarded(e, "references", empty, func() (*ReferenceSearch, error) {
		cands := e.candidatesByName(name)
		if len(cands) == 0 {
			return empty, nil
		}
		return e.search(cands[0], opts), nil
	})
	return out
}

func (e *Engine) search(c *candidate, opts types.ReferenceOptions) *ReferenceSearch {
	return &ReferenceSearch{
		Target:     e.definition(c.decl, c.confidence),
		References: e.referencesTo(c.decl, opts),
	}
}

// GroupAndSummarize groups a reference search by usage type.
func (e *Engine) GroupAndSummarize(s *ReferenceSearch) *types.GroupedReferencesResult {
	if s == nil {
		return GroupAndSummarize(nil, nil)
	}
	return GroupAndSummarize(s.References, s.Target)
}

// HoverAt describes the element at offset in path. The result is nil when
// the offset is out of range or the file declares nothing.
func (e *Engine) HoverAt(path string, offset int) (*types.HoverInfo, error) {
	return guarded(e, "hover", (*types.HoverInfo)(nil), func() (*types.HoverInfo, error) {
		f, a, err := e.resolveFile(path)
		if err != nil || f == nil {
			return nil, err
		}
		return e.hoverAt(f, a, offset), nil
	})
}

// HoverFor describes a declaration node directly.
func (e *Engine) HoverFor(decl *Node) *types.HoverInfo {
	out, _ := guarded(e, "hover", (*types.HoverInfo)(nil), func() (*types.HoverInfo, error) {
		if decl == nil || decl.File == nil {
			return nil, nil
		}
		return e.hoverFor(decl), nil
	})
	return out
}

// PositionToOffset converts a 1-based line and column in path to a byte
// offset. It returns -1 for positions outside the file.
func (e *Engine) PositionToOffset(path string, line, column int) (int, error) {
	return guarded(e, "position", -1, func() (int, error) {
		f, _, err := e.resolveFile(path)
		if err != nil || f == nil {
			return -1, err
		}
		off, ok := f.Offset(line, column)
		if !ok {
			return -1, nil
		}
		return off, nil
	})
}

// Languages reports the availability of every known language.
func (e *Engine) Languages() []LanguageStatus {
	return e.dispatcher.Status()
}
