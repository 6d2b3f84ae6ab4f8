package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbolKind(t *testing.T) {
	tests := []struct {
		in   string
		want SymbolKind
	}{
		{"constant", SymbolKindConstant},
		{"EnumMember", SymbolKindEnumMember},
		{"enum_member", SymbolKindEnumMember},
		{" AsyncFunction ", SymbolKindAsyncFunction},
		{"Class", SymbolKindClass},
		{"TypeAlias", SymbolKindTypeAlias},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSymbolKind(tt.in))
		})
	}
}

func TestSymbolKindCategory(t *testing.T) {
	assert.Equal(t, CategoryType, SymbolKindInterface.Category())
	assert.Equal(t, CategoryFunction, SymbolKindConstructor.Category())
	assert.Equal(t, CategoryVariable, SymbolKindEnumMember.Category())
	assert.Equal(t, CategoryModule, SymbolKindImport.Category())

	custom := CustomKind("Data Class")
	assert.Equal(t, SymbolKind("data_class"), custom)
	assert.True(t, custom.IsCustom())
	assert.Equal(t, CategoryOther, custom.Category())
	assert.False(t, SymbolKindField.IsCustom())

	assert.True(t, SymbolKindEnum.IsContainer())
	assert.False(t, SymbolKindMethod.IsContainer())
	assert.True(t, SymbolKindGenerator.IsCallable())
	assert.False(t, SymbolKindField.IsCallable())
}

func TestVisibilityIsNarrow(t *testing.T) {
	assert.True(t, VisibilityPrivate.IsNarrow())
	assert.True(t, VisibilityProtected.IsNarrow())
	assert.True(t, VisibilityPackage.IsNarrow())
	assert.False(t, VisibilityPublic.IsNarrow())
	assert.False(t, VisibilityDefault.IsNarrow())
}

func TestSymbolInfoChildrenJSON(t *testing.T) {
	flat := &SymbolInfo{Name: "Status", Kind: SymbolKindEnum}
	data, err := json.Marshal(flat)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "children")

	leaf := &SymbolInfo{Name: "A", Kind: SymbolKindEnumMember, Children: []*SymbolInfo{}}
	data, err = json.Marshal(leaf)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children":[]`)

	nested := &SymbolInfo{Name: "Status", Kind: SymbolKindEnum, Children: []*SymbolInfo{leaf}}
	data, err = json.Marshal(nested)
	require.NoError(t, err)

	var back SymbolInfo
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Children, 1)
	assert.Equal(t, "A", back.Children[0].Name)
	assert.NotNil(t, back.Children[0].Children)
	assert.Equal(t, SymbolKindEnumMember, back.Children[0].Kind)
}

func TestExtractOptionsAllows(t *testing.T) {
	opts := DefaultExtractOptions()
	assert.True(t, opts.Allows(SymbolKindImport))
	assert.True(t, opts.Allows(CustomKind("record")))

	opts.IncludeImports = false
	assert.False(t, opts.Allows(SymbolKindImport))

	opts.SymbolTypes = []SymbolKind{SymbolKindMethod, SymbolKindConstant}
	assert.True(t, opts.Allows(SymbolKindConstant))
	assert.False(t, opts.Allows(SymbolKindField))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", Deref(StringPtr("x")))
	assert.Equal(t, "", Deref(nil))

	s := &SymbolInfo{Modifiers: []string{"static", "final"}}
	assert.True(t, s.HasModifier("final"))
	assert.False(t, s.HasModifier("abstract"))
}
