package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenav/internal/types"
)

var statusClass = map[string]string{
	"src/demo/Holder.java": `package demo;

public class Holder {
    public void foo() {
    }

    private int _bar;

    enum Status { A, B }
}
`,
}

// directMembers keeps the flat symbols whose qualified name is owner plus
// one segment.
func directMembers(syms []*types.SymbolInfo, owner string) map[string]types.SymbolKind {
	out := make(map[string]types.SymbolKind)
	for _, s := range syms {
		rest, ok := strings.CutPrefix(s.QualifiedName, owner+".")
		if ok && !strings.Contains(rest, ".") {
			out[s.Name] = s.Kind
		}
	}
	return out
}

func assertContained(t *testing.T, parent *types.SymbolInfo) {
	t.Helper()
	for _, c := range parent.Children {
		assert.GreaterOrEqual(t, c.Location.StartOffset, parent.Location.StartOffset, "%s in %s", c.Name, parent.Name)
		assert.LessOrEqual(t, c.Location.EndOffset, parent.Location.EndOffset, "%s in %s", c.Name, parent.Name)
		assertContained(t, c)
	}
}

func TestExtractFlat(t *testing.T) {
	fx := newFixture(t, statusClass)

	syms, err := fx.engine.GetSymbols("src/demo/Holder.java", false, types.DefaultExtractOptions())
	require.NoError(t, err)

	assert.Equal(t, map[string]types.SymbolKind{
		"foo":    types.SymbolKindMethod,
		"_bar":   types.SymbolKindField,
		"Status": types.SymbolKindEnum,
	}, directMembers(syms, "demo.Holder"))

	for _, s := range syms {
		assert.Nil(t, s.Children, "flat symbol %s has children", s.Name)
	}

	foo := symbolNamed(syms, "foo")
	require.NotNil(t, foo)
	assert.Equal(t, types.VisibilityPublic, foo.Visibility)
	assert.Equal(t, types.CategoryFunction, foo.Category)
	assert.Equal(t, 4, foo.Location.LineNumber)

	bar := symbolNamed(syms, "_bar")
	require.NotNil(t, bar)
	assert.Equal(t, types.VisibilityPrivate, bar.Visibility)
	require.NotNil(t, bar.TypeInfo)
	assert.Equal(t, "int", bar.TypeInfo.DisplayName)
}

func TestExtractHierarchical(t *testing.T) {
	fx := newFixture(t, statusClass)

	syms, err := fx.engine.GetSymbols("src/demo/Holder.java", true, types.DefaultExtractOptions())
	require.NoError(t, err)
	require.Len(t, syms, 1)

	holder := syms[0]
	assert.Equal(t, "Holder", holder.Name)
	assert.Equal(t, []string{"foo", "_bar", "Status"}, symbolNames(holder.Children))

	status := symbolNamed(holder.Children, "Status")
	require.NotNil(t, status)
	assert.Equal(t, []string{"A", "B"}, symbolNames(status.Children))
	for _, c := range status.Children {
		assert.Equal(t, types.SymbolKindEnumMember, c.Kind)
		assert.Equal(t, "demo.Holder.Status."+c.Name, c.QualifiedName)
	}

	foo := symbolNamed(holder.Children, "foo")
	require.NotNil(t, foo)
	assert.Nil(t, foo.Children)

	assertContained(t, holder)
}

func TestExtractKindFilterIsExclusive(t *testing.T) {
	fx := newFixture(t, javaWidget)
	path := "src/demo/Widget.java"

	opts := types.DefaultExtractOptions()
	opts.SymbolTypes = []types.SymbolKind{types.ParseSymbolKind("constant")}
	constants, err := fx.engine.GetSymbols(path, false, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"MAX"}, symbolNames(constants))

	opts.SymbolTypes = []types.SymbolKind{types.ParseSymbolKind("EnumMember")}
	members, err := fx.engine.GetSymbols(path, false, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, symbolNames(members))

	all, err := fx.engine.GetSymbols(path, false, types.DefaultExtractOptions())
	require.NoError(t, err)
	seen := make(map[int]types.SymbolKind)
	for _, s := range all {
		prev, dup := seen[s.Location.StartOffset]
		assert.False(t, dup, "%s classified twice (%s and %s)", s.Name, prev, s.Kind)
		seen[s.Location.StartOffset] = s.Kind
	}
}

func TestExtractExcludesPrivate(t *testing.T) {
	fx := newFixture(t, javaWidget)

	opts := types.DefaultExtractOptions()
	opts.IncludePrivate = false
	syms, err := fx.engine.GetSymbols("src/demo/Widget.java", true, opts)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Nil(t, symbolNamed(syms[0].Children, "_bar"))
	assert.NotNil(t, symbolNamed(syms[0].Children, "foo"))
}

func TestExtractJavaDetails(t *testing.T) {
	fx := newFixture(t, javaShapes)

	syms, err := fx.engine.GetSymbols("src/com/example/Circle.java", false, types.DefaultExtractOptions())
	require.NoError(t, err)

	circle := symbolNamed(syms, "Circle")
	require.NotNil(t, circle)
	assert.Equal(t, "com.example.Circle", circle.QualifiedName)
	assert.Equal(t, []string{}, circle.Implements)

	var area *types.SymbolInfo
	for _, s := range syms {
		if s.Name == "area" && s.Kind == types.SymbolKindMethod {
			area = s
		}
	}
	require.NotNil(t, area)
	require.NotNil(t, area.Overrides)
	assert.Equal(t, "Shape", area.Overrides.ParentClass)
	assert.True(t, area.Overrides.IsExplicit)
	require.Len(t, area.Decorators, 1)
	assert.Equal(t, "Override", area.Decorators[0].Name)

	var ctors []string
	for _, s := range syms {
		if s.Kind == types.SymbolKindConstructor {
			ctors = append(ctors, s.QualifiedName)
		}
	}
	assert.Equal(t, []string{"com.example.Circle.Circle"}, ctors)

	shapeSyms, err := fx.engine.GetSymbols("src/com/example/Shape.java", false, types.DefaultExtractOptions())
	require.NoError(t, err)
	shape := symbolNamed(shapeSyms, "Shape")
	require.NotNil(t, shape)
	require.NotNil(t, shape.Documentation)
	assert.Contains(t, *shape.Documentation, "Base of all shapes.")
	assert.Contains(t, shape.Modifiers, "abstract")
}

func TestExtractDeprecated(t *testing.T) {
	fx := newFixture(t, javaWidget)

	syms, err := fx.engine.GetSymbols("src/demo/Widget.java", false, types.DefaultExtractOptions())
	require.NoError(t, err)

	legacy := symbolNamed(syms, "legacy")
	require.NotNil(t, legacy)
	assert.True(t, legacy.IsDeprecated)
	assert.Equal(t, types.VisibilityPackage, legacy.Visibility)

	foo := symbolNamed(syms, "foo")
	require.NotNil(t, foo)
	assert.False(t, foo.IsDeprecated)
}

func TestExtractPython(t *testing.T) {
	fx := newFixture(t, pythonAnimals)

	syms, err := fx.engine.GetSymbols("pkg/models.py", false, types.DefaultExtractOptions())
	require.NoError(t, err)

	kinds := make(map[string]types.SymbolKind)
	for _, s := range syms {
		kinds[s.QualifiedName] = s.Kind
	}
	assert.Equal(t, types.SymbolKindConstant, kinds["pkg.models.MAX_LEGS"])
	assert.Equal(t, types.SymbolKindClass, kinds["pkg.models.Animal"])
	assert.Equal(t, types.SymbolKindConstructor, kinds["pkg.models.Animal.__init__"])
	assert.Equal(t, types.SymbolKindField, kinds["pkg.models.Animal.name"])
	assert.Equal(t, types.SymbolKindField, kinds["pkg.models.Animal._mood"])
	assert.Equal(t, types.SymbolKindMethod, kinds["pkg.models.Animal.fetch"])
	assert.Equal(t, types.SymbolKindGenerator, kinds["pkg.models.breed"])

	mood := symbolNamed(syms, "_mood")
	require.NotNil(t, mood)
	assert.Equal(t, types.VisibilityProtected, mood.Visibility)

	dog := symbolNamed(syms, "Dog")
	require.NotNil(t, dog)
	assert.Equal(t, []string{"Animal"}, dog.Implements)

	fetch := symbolNamed(syms, "fetch")
	require.NotNil(t, fetch)
	assert.Contains(t, fetch.Modifiers, "async")

	app, err := fx.engine.GetSymbols("app.py", false, types.DefaultExtractOptions())
	require.NoError(t, err)
	imp := symbolNamed(app, "Dog")
	require.NotNil(t, imp)
	assert.Equal(t, types.SymbolKindImport, imp.Kind)
	assert.Empty(t, imp.QualifiedName)
	assert.Nil(t, symbolNamed(app, "d"), "locals are not symbols")

	opts := types.DefaultExtractOptions()
	opts.IncludeImports = false
	app, err = fx.engine.GetSymbols("app.py", false, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, symbolNames(app))
}

func TestExtractTypeScript(t *testing.T) {
	fx := newFixture(t, tsGreeter)

	syms, err := fx.engine.GetSymbols("src/util.ts", true, types.DefaultExtractOptions())
	require.NoError(t, err)

	greeter := symbolNamed(syms, "Greeter")
	require.NotNil(t, greeter)
	assert.Equal(t, types.SymbolKindClass, greeter.Kind)
	assert.Equal(t, []string{"prefix", "greet"}, symbolNames(greeter.Children))
	assert.Equal(t, types.VisibilityPrivate, symbolNamed(greeter.Children, "prefix").Visibility)

	assert.Equal(t, types.SymbolKindFunction, symbolNamed(syms, "makeGreeter").Kind)
	assert.Equal(t, types.SymbolKindAsyncFunction, symbolNamed(syms, "load").Kind)
	assert.Equal(t, types.SymbolKindHook, symbolNamed(syms, "useGreeting").Kind)
	assertContained(t, greeter)
}

func TestExtractJSXKinds(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"src/ui.jsx": `export function Box(props) {
  return <div>{props.children}</div>;
}

export function useThing() {
  return 1;
}

export const arrow = async () => 1;
`,
	})

	syms, err := fx.engine.GetSymbols("src/ui.jsx", false, types.DefaultExtractOptions())
	require.NoError(t, err)
	require.NotNil(t, symbolNamed(syms, "Box"))
	assert.Equal(t, types.SymbolKindComponent, symbolNamed(syms, "Box").Kind)
	assert.Equal(t, types.SymbolKindHook, symbolNamed(syms, "useThing").Kind)
	assert.Equal(t, types.SymbolKindAsyncFunction, symbolNamed(syms, "arrow").Kind)
}

func TestExtractUnsupportedLanguage(t *testing.T) {
	fx := newFixture(t, map[string]string{"src/Widget.kt": "class Widget\n"})

	syms, err := fx.engine.GetSymbols("src/Widget.kt", false, types.DefaultExtractOptions())
	require.Error(t, err)
	assert.Empty(t, syms)
}

func TestExtractMissingFile(t *testing.T) {
	fx := newFixture(t, statusClass)

	syms, err := fx.engine.GetSymbols("src/demo/Nope.java", false, types.DefaultExtractOptions())
	require.NoError(t, err)
	assert.Equal(t, []*types.SymbolInfo{}, syms)
}
