package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenav/internal/config"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
)

func newDispatcher(t *testing.T, configure func(*config.Config)) *Dispatcher {
	t.Helper()
	cfg := config.Default(t.TempDir())
	if configure != nil {
		configure(cfg)
	}
	return NewDispatcher(DefaultRegistry(), sourcemodel.NewLanguageSet(), cfg)
}

func unavailable(t *testing.T, err error) *cnerrors.UnsupportedLanguageError {
	t.Helper()
	var ule *cnerrors.UnsupportedLanguageError
	require.True(t, errors.As(err, &ule), "got %v", err)
	return ule
}

func TestDispatcherRoutesByExtension(t *testing.T) {
	d := newDispatcher(t, nil)

	for path, family := range map[string]sourcemodel.Family{
		"A.java":       sourcemodel.FamilyJVM,
		"mod.py":       sourcemodel.FamilyPython,
		"stub.pyi":     sourcemodel.FamilyPython,
		"main.ts":      sourcemodel.FamilyJS,
		"view.tsx":     sourcemodel.FamilyJS,
		"index.js":     sourcemodel.FamilyJS,
		"lib/util.mjs": sourcemodel.FamilyJS,
	} {
		a, lang, err := d.For(path)
		require.NoError(t, err, path)
		assert.Equal(t, family, a.Family(), path)
		assert.Equal(t, family, lang.Family, path)
	}
}

func TestDispatcherUnknownExtension(t *testing.T) {
	d := newDispatcher(t, nil)

	_, _, err := d.For("notes.txt")
	ule := unavailable(t, err)
	assert.Equal(t, cnerrors.ReasonNotInstalled, ule.Reason)
	assert.Equal(t, "notes.txt", ule.FilePath)
	assert.True(t, cnerrors.IsHostUnavailable(err))
}

func TestDispatcherKotlinNotInstalled(t *testing.T) {
	d := newDispatcher(t, func(cfg *config.Config) {
		cfg.Languages.Enabled["kotlin"] = true
	})

	_, _, err := d.For("src/Widget.kt")
	ule := unavailable(t, err)
	assert.Equal(t, cnerrors.ReasonNotInstalled, ule.Reason)
	assert.Equal(t, "kotlin", ule.Language)
	assert.Equal(t, "src/Widget.kt", ule.FilePath)

	_, _, err = d.For("src/Other.kt")
	assert.Equal(t, "src/Other.kt", unavailable(t, err).FilePath)
	assert.Equal(t, "src/Widget.kt", ule.FilePath, "cached load error must not be shared")
}

func TestDispatcherDisabledLanguage(t *testing.T) {
	d := newDispatcher(t, func(cfg *config.Config) {
		cfg.Languages.Enabled["python"] = false
	})

	_, _, err := d.For("mod.py")
	ule := unavailable(t, err)
	assert.Equal(t, cnerrors.ReasonNotInstalled, ule.Reason)
	assert.Contains(t, ule.Error(), "disabled")

	_, _, err = d.For("A.java")
	assert.NoError(t, err)
}

func TestDispatcherMissingAdapter(t *testing.T) {
	cfg := config.Default(t.TempDir())
	d := NewDispatcher(NewRegistry(jvmAdapter{}), sourcemodel.NewLanguageSet(), cfg)

	_, _, err := d.For("main.ts")
	assert.Equal(t, cnerrors.ReasonNotInstalled, unavailable(t, err).Reason)
}

func TestDispatcherStatus(t *testing.T) {
	d := newDispatcher(t, nil)

	byLang := make(map[string]LanguageStatus)
	for _, st := range d.Status() {
		byLang[st.Language] = st
	}
	for _, id := range []string{"java", "python", "javascript", "typescript", "tsx"} {
		st, ok := byLang[id]
		require.True(t, ok, id)
		assert.True(t, st.Available, id)
		assert.True(t, st.Enabled, id)
		assert.Empty(t, st.Reason, id)
	}
	kt := byLang["kotlin"]
	assert.False(t, kt.Available)
	assert.False(t, kt.Enabled)
	assert.Equal(t, string(cnerrors.ReasonNotInstalled), kt.Reason)
}
