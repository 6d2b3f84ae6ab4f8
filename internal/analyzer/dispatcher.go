package analyzer

import (
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/codenav/internal/config"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
)

// Registry maps language families to their adapters. It is built once at
// startup and never modified.
type Registry struct {
	adapters map[sourcemodel.Family]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[sourcemodel.Family]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Family()] = a
	}
	return r
}

// DefaultRegistry holds every compiled-in adapter.
func DefaultRegistry() *Registry {
	return NewRegistry(jvmAdapter{}, pythonAdapter{}, jsAdapter{})
}

// Get returns the adapter for a family.
func (r *Registry) Get(family sourcemodel.Family) (Adapter, bool) {
	a, ok := r.adapters[family]
	return a, ok
}

// LanguageStatus reports whether a language can be served.
type LanguageStatus struct {
	Language   string   `json:"language"`
	Family     string   `json:"family"`
	Extensions []string `json:"extensions"`
	Enabled    bool     `json:"enabled"`
	Available  bool     `json:"available"`
	// Reason is "not_installed" or "broken" when unavailable.
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Dispatcher routes files to the adapter of their language.
type Dispatcher struct {
	registry *Registry
	langs    *sourcemodel.LanguageSet
	cfg      *config.Config
}

// NewDispatcher creates a dispatcher over the compiled-in languages,
// honoring the language flags of cfg.
func NewDispatcher(registry *Registry, langs *sourcemodel.LanguageSet, cfg *config.Config) *Dispatcher {
	return &Dispatcher{registry: registry, langs: langs, cfg: cfg}
}

// For returns the adapter serving path. The error is always an
// *errors.UnsupportedLanguageError.
func (d *Dispatcher) For(path string) (Adapter, *sourcemodel.Language, error) {
	lang := d.langs.ForPath(path)
	if lang == nil {
		return nil, nil, cnerrors.NewUnsupportedLanguageError("", cnerrors.ReasonNotInstalled,
			fmt.Errorf("no language registered for extension %q", filepath.Ext(path))).WithFile(path)
	}
	a, err := d.forLanguage(lang)
	if err != nil {
		return nil, nil, err.WithFile(path)
	}
	return a, lang, nil
}

func (d *Dispatcher) forLanguage(lang *sourcemodel.Language) (Adapter, *cnerrors.UnsupportedLanguageError) {
	id := string(lang.ID)
	if !d.cfg.Languages.IsEnabled(id) {
		return nil, cnerrors.NewUnsupportedLanguageError(id, cnerrors.ReasonNotInstalled,
			fmt.Errorf("disabled in configuration"))
	}
	a, ok := d.registry.Get(lang.Family)
	if !ok {
		return nil, cnerrors.NewUnsupportedLanguageError(id, cnerrors.ReasonNotInstalled,
			fmt.Errorf("no %s adapter compiled in", lang.Family))
	}
	if err := lang.Load(); err != nil {
		if ule, ok := err.(*cnerrors.UnsupportedLanguageError); ok {
			// The load error is cached per language; callers annotate a copy.
			cp := *ule
			return nil, &cp
		}
		return nil, cnerrors.NewUnsupportedLanguageError(id, cnerrors.ReasonBroken, err)
	}
	return a, nil
}

// ForFile returns the adapter of an already parsed file.
func (d *Dispatcher) ForFile(f *sourcemodel.File) (Adapter, bool) {
	if f == nil || f.Language == nil {
		return nil, false
	}
	a, err := d.forLanguage(f.Language)
	return a, err == nil
}

// Status reports every known language, sorted by ID.
func (d *Dispatcher) Status() []LanguageStatus {
	all := d.langs.All()
	out := make([]LanguageStatus, 0, len(all))
	for _, lang := range all {
		st := LanguageStatus{
			Language:   string(lang.ID),
			Family:     string(lang.Family),
			Extensions: lang.Extensions,
			Enabled:    d.cfg.Languages.IsEnabled(string(lang.ID)),
		}
		if _, err := d.forLanguage(lang); err != nil {
			st.Reason = string(err.Reason)
			if err.Underlying != nil {
				st.Error = err.Underlying.Error()
			}
		} else {
			st.Available = true
		}
		out = append(out, st)
	}
	return out
}
