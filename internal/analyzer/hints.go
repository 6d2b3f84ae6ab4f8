package analyzer

import (
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// kindLabel renders a kind for display: "async_function" -> "Async function".
func kindLabel(kind types.SymbolKind) string {
	return label(string(kind))
}

func label(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// disambiguationHint distinguishes same-named candidates by owner, kind
// and origin. It is nil when nothing distinguishes the declaration.
func disambiguationHint(m sourcemodel.Model, a Adapter, d *Node, kind types.SymbolKind) *string {
	var hint string
	if owner := ownerType(d); owner != nil {
		on := owner.Name()
		mods := a.Modifiers(d)
		switch {
		case kind == types.SymbolKindConstructor:
			hint = "Constructor of " + on
		case kind == types.SymbolKindEnumMember:
			hint = "Enum constant of " + on
		case kind == types.SymbolKindMethod && hasModifier(mods, "static"):
			hint = "Static method in " + on
		case kind == types.SymbolKindMethod && hasModifier(mods, "abstract"):
			hint = "Abstract method in " + on
		case kind == types.SymbolKindField && hasModifier(mods, "static"):
			hint = "Static field in " + on
		case kind.Category() == types.CategoryType:
			hint = "Nested " + string(kind) + " in " + on
		default:
			hint = kindLabel(kind) + " in " + on
		}
	} else if d.Kind == sourcemodel.KindFile {
		hint = "Module " + d.File.RelPath
	} else if !sourcemodel.IsLocal(d) && d.Decl.Role != sourcemodel.RoleParameter {
		if q := a.Qualifier(m, d.File); q != "" {
			hint = kindLabel(kind) + " in " + q
		}
	}

	var markers []string
	if m.IsTestCode(d.File.Path) {
		markers = append(markers, "test code")
	}
	if m.IsLibraryCode(d.File.Path) {
		markers = append(markers, "library")
	}
	if len(markers) > 0 {
		suffix := "(" + strings.Join(markers, ", ") + ")"
		if hint == "" {
			hint = kindLabel(kind) + " " + suffix
		} else {
			hint += " " + suffix
		}
	}
	return types.StringPtr(hint)
}

// accessibilityWarning explains a narrow or conventional visibility. It
// is nil for public members.
func accessibilityWarning(a Adapter, d *Node, vis types.Visibility) *string {
	python := a.Family() == sourcemodel.FamilyPython
	switch vis {
	case types.VisibilityPrivate:
		if python {
			return types.StringPtr("Private by naming convention: name-mangled outside the declaring class")
		}
		return types.StringPtr("Private member: not accessible from outside the declaring class")
	case types.VisibilityProtected:
		switch a.Family() {
		case sourcemodel.FamilyPython:
			return types.StringPtr("Protected by naming convention: intended for the declaring module or class and its subclasses")
		case sourcemodel.FamilyJS:
			return types.StringPtr("Protected member: accessible only from the declaring class and its subclasses")
		}
		return types.StringPtr("Protected member: accessible only from subclasses and the same package")
	case types.VisibilityPackage:
		if pkg := d.File.Package; pkg != "" {
			return types.StringPtr("Package-private: accessible only within package " + pkg)
		}
		return types.StringPtr("Package-private: accessible only within the declaring package")
	}
	return nil
}
