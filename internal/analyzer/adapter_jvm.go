package analyzer

import (
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

var javaModifierWords = set("public", "private", "protected", "static", "final", "abstract",
	"synchronized", "native", "transient", "volatile", "default", "sealed", "non-sealed", "strictfp")

var javaFlow = flowShapes{
	wrappers:   set("parenthesized_expression", "cast_expression"),
	assign:     set("assignment_expression"),
	declarator: set("variable_declarator"),
	returns:    set("return_statement"),
	arguments:  set("argument_list"),
	conditions: set("if_statement", "while_statement", "do_statement", "for_statement", "ternary_expression"),
	awaits:     set(),
	throws:     set("throw_statement"),
	iterables:  set("enhanced_for_statement"),
	yields:     set("yield_statement"),
}

// jvmAdapter serves Java sources.
type jvmAdapter struct{}

func (jvmAdapter) Family() sourcemodel.Family { return sourcemodel.FamilyJVM }

// javaModifiersNode returns the modifiers node that applies to decl. Field
// declarators share the modifiers of their declaration statement.
func javaModifiersNode(decl *Node) *Node {
	if decl.Type == "variable_declarator" && decl.Parent != nil {
		return decl.Parent.ChildOfType("modifiers")
	}
	return decl.ChildOfType("modifiers")
}

func javaHasModifier(decl *Node, word string) bool {
	mods := javaModifiersNode(decl)
	return mods != nil && mods.HasChild(word)
}

func javaInInterface(decl *Node) bool {
	owner := ownerType(decl)
	return owner != nil && (owner.Type == "interface_declaration" || owner.Type == "annotation_type_declaration")
}

func (jvmAdapter) Kind(_ sourcemodel.Model, decl *Node) (types.SymbolKind, bool) {
	switch decl.Type {
	case "class_declaration", "record_declaration":
		return types.SymbolKindClass, true
	case "interface_declaration":
		return types.SymbolKindInterface, true
	case "enum_declaration":
		return types.SymbolKindEnum, true
	case "annotation_type_declaration":
		return types.SymbolKindAnnotation, true
	case "method_declaration", "annotation_type_element_declaration":
		return types.SymbolKindMethod, true
	case "constructor_declaration", "compact_constructor_declaration":
		return types.SymbolKindConstructor, true
	case "enum_constant":
		return types.SymbolKindEnumMember, true
	case "import_declaration":
		return types.SymbolKindImport, true
	case "resource":
		return types.SymbolKindVariable, true
	case "variable_declarator":
		holder := decl.Parent
		switch {
		case holder == nil:
			return types.SymbolKindVariable, true
		case holder.Type == "constant_declaration":
			return types.SymbolKindConstant, true
		case holder.Type == "field_declaration":
			if javaInInterface(decl) || (javaHasModifier(decl, "static") && javaHasModifier(decl, "final")) {
				return types.SymbolKindConstant, true
			}
			return types.SymbolKindField, true
		}
		return types.SymbolKindVariable, true
	}
	return "", false
}

func (jvmAdapter) Visibility(decl *Node) types.Visibility {
	switch {
	case javaHasModifier(decl, "public"):
		return types.VisibilityPublic
	case javaHasModifier(decl, "private"):
		return types.VisibilityPrivate
	case javaHasModifier(decl, "protected"):
		return types.VisibilityProtected
	case decl.Type == "import_declaration" || sourcemodel.IsLocal(decl):
		return types.VisibilityDefault
	case decl.Type == "enum_constant" || javaInInterface(decl):
		return types.VisibilityPublic
	}
	return types.VisibilityPackage
}

func (jvmAdapter) Modifiers(decl *Node) []string {
	mods := keywords(javaModifiersNode(decl), javaModifierWords)
	if decl.Type == "import_declaration" && decl.HasChild("static") {
		mods = append(mods, "static")
	}
	if decl.Type == "record_declaration" {
		mods = append(mods, "record")
	}
	if mods == nil {
		mods = []string{}
	}
	return mods
}

func javaAnnotations(decl *Node) []*Node {
	mods := javaModifiersNode(decl)
	if mods == nil {
		return nil
	}
	return mods.ChildrenOfType("marker_annotation", "annotation")
}

func javaAnnotationName(a *Node) string {
	name := a.ChildByField("name")
	if name == nil {
		return ""
	}
	text := name.Text()
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		return text[i+1:]
	}
	return text
}

func (jvmAdapter) Decorators(decl *Node) []types.Decorator {
	out := []types.Decorator{}
	for _, a := range javaAnnotations(decl) {
		if name := a.ChildByField("name"); name != nil {
			out = append(out, types.Decorator{Name: name.Text()})
		}
	}
	return out
}

func (a jvmAdapter) Signature(decl *Node) string {
	mods := strings.Join(a.Modifiers(decl), " ")
	var rest string
	switch decl.Type {
	case "variable_declarator":
		if decl.Parent != nil {
			if t := decl.Parent.ChildByField("type"); t != nil {
				rest = collapse(t.Text()) + " "
			}
		}
		rest += decl.Name()
	case "enum_constant":
		rest = header(decl, "body")
	case "import_declaration":
		return strings.TrimSuffix(collapse(decl.Text()), ";")
	default:
		start := decl.Start
		if m := decl.ChildOfType("modifiers"); m != nil {
			start = m.End
		}
		end := decl.End
		if body := decl.ChildByField("body"); body != nil {
			end = body.Start
		}
		rest = strings.TrimRight(textRange(decl.File, start, end), " {;")
	}
	return strings.TrimSpace(mods + " " + rest)
}

func (jvmAdapter) ParameterList(decl *Node) *Node {
	return decl.ChildByField("parameters")
}

func (jvmAdapter) ReturnType(decl *Node) string {
	if decl.Type != "method_declaration" && decl.Type != "annotation_type_element_declaration" {
		return ""
	}
	if t := decl.ChildByField("type"); t != nil {
		return collapse(t.Text())
	}
	return ""
}

func (jvmAdapter) Throws(decl *Node) []string {
	var out []string
	if th := decl.ChildOfType("throws"); th != nil {
		for _, t := range th.NamedChildren() {
			out = appendUnique(out, collapse(t.Text()))
		}
	}
	return out
}

func (jvmAdapter) Qualifier(_ sourcemodel.Model, f *sourcemodel.File) string {
	return f.Package
}

func (a jvmAdapter) LanguageData(m sourcemodel.Model, decl *Node, kind types.SymbolKind) map[string]string {
	data := make(map[string]string)
	switch kind.Category() {
	case types.CategoryFunction:
		data["parameters"] = innerText(a.ParameterList(decl))
		if rt := a.ReturnType(decl); rt != "" {
			data["returnType"] = rt
		}
		if th := a.Throws(decl); len(th) > 0 {
			data["throws"] = strings.Join(th, ", ")
		}
		if tp := decl.ChildOfType("type_parameters"); tp != nil {
			data["typeParameters"] = collapse(tp.Text())
		}
	case types.CategoryType:
		if decl.File.Package != "" {
			data["package"] = decl.File.Package
		}
		if sc := decl.ChildByField("superclass"); sc != nil {
			data["superclass"] = strings.TrimSpace(strings.TrimPrefix(collapse(sc.Text()), "extends"))
		}
		if impl := a.implemented(decl); len(impl) > 0 {
			data["interfaces"] = strings.Join(impl, ", ")
		}
	case types.CategoryVariable:
		if t := m.DeclaredTypeName(decl); t != "" {
			data["type"] = t
		}
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// implemented returns interface names from implements / interface extends
// clauses.
func (jvmAdapter) implemented(decl *Node) []string {
	var out []string
	for _, clause := range []*Node{decl.ChildByField("interfaces"), decl.ChildOfType("extends_interfaces")} {
		if clause == nil {
			continue
		}
		if list := clause.ChildOfType("type_list"); list != nil {
			clause = list
		}
		for _, t := range clause.NamedChildren() {
			out = append(out, collapse(t.Text()))
		}
	}
	return out
}

func (jvmAdapter) IsSynthetic(*Node) bool { return false }

func (jvmAdapter) Deprecation(decl *Node) (bool, string) {
	for _, a := range javaAnnotations(decl) {
		if javaAnnotationName(a) == "Deprecated" {
			return true, ""
		}
	}
	return false, ""
}

func (jvmAdapter) ExplicitOverride(decl *Node) bool {
	for _, a := range javaAnnotations(decl) {
		if javaAnnotationName(a) == "Override" {
			return true
		}
	}
	return false
}

var javaTypeWrappers = set("generic_type", "scoped_type_identifier", "array_type")

func (jvmAdapter) ClassifyUsage(m sourcemodel.Model, ref, target *Node, kind types.SymbolKind) string {
	if ref.Ancestor("import_declaration") != nil {
		return types.UsageImport
	}
	if a := ref.Ancestor("marker_annotation", "annotation"); a != nil && a.ChildByField("name") != nil &&
		a.ChildByField("name").Encloses(ref) {
		return types.UsageAnnotation
	}
	p := ref.Parent
	switch kind.Category() {
	case types.CategoryType:
		t := climb(ref, javaTypeWrappers)
		switch {
		case t.Parent != nil && t.Parent.Type == "object_creation_expression" && t.Field == "type":
			return types.UsageConstructorCall
		case ref.Ancestor("superclass") != nil:
			return types.UsageInheritance
		case ref.Ancestor("super_interfaces") != nil:
			return types.UsageImplementation
		case ref.Ancestor("extends_interfaces") != nil:
			return types.UsageInheritance
		case p != nil && p.Type == "method_reference":
			return types.UsageMethodReference
		}
		return types.UsageTypeReference
	case types.CategoryFunction:
		switch {
		case p != nil && p.Type == "method_invocation" && ref.Field == "name":
			if obj := p.ChildByField("object"); obj != nil && obj.Type == "super" {
				return types.UsageSuperCall
			}
			return types.UsageMethodCall
		case p != nil && p.Type == "method_reference":
			return types.UsageMethodReference
		}
		return types.UsageReference
	}

	e := climb(memberExpr(m, ref), javaFlow.wrappers)
	field := kind == types.SymbolKindField || kind == types.SymbolKindConstant || kind == types.SymbolKindEnumMember
	if pp := e.Parent; pp != nil {
		switch {
		case pp.Type == "assignment_expression" && e.Field == "left":
			if op := pp.ChildByField("operator"); op != nil && op.Text() != "=" {
				return types.UsageAugmentedAssignment
			}
			if field {
				return types.UsageFieldWrite
			}
			return types.UsageWrite
		case pp.Type == "update_expression":
			return types.UsageAugmentedAssignment
		}
	}
	if field {
		return types.UsageFieldRead
	}
	return types.UsageRead
}

func (jvmAdapter) DataFlow(ref *Node) string {
	e := ref
	if p := ref.Parent; p != nil && ((p.Type == "field_access" && ref.Field == "field") ||
		(p.Type == "method_invocation" && ref.Field == "name")) {
		e = p
	}
	return javaFlow.describe(e)
}

func (a jvmAdapter) ExtraUsages(m sourcemodel.Model, target *Node, kind types.SymbolKind, scope sourcemodel.Scope) []Usage {
	owner := ownerType(target)
	if owner == nil {
		return nil
	}
	in := scopeFilter(m, scope)
	var out []Usage
	switch kind {
	case types.SymbolKindMethod:
		arity := paramCount(a, target)
		for _, o := range overriders(m, target, 0, 0) {
			if in(o.File) && paramCount(a, o) == arity {
				out = append(out, Usage{Node: o.Decl.Name, UsageType: types.UsageOverride})
			}
		}
	case types.SymbolKindConstructor:
		arity := -1
		if countConstructors(m, a, owner) > 1 {
			arity = paramCount(a, target)
		}
		matches := func(call *Node) bool {
			return arity < 0 || argCount(call.ChildByField("arguments")) == arity
		}
		for _, ref := range m.FindAllReferences(owner, scope) {
			t := climb(ref, javaTypeWrappers)
			if t.Parent != nil && t.Parent.Type == "object_creation_expression" && t.Field == "type" && matches(t.Parent) {
				out = append(out, Usage{Node: ref, UsageType: types.UsageConstructorCall})
			}
		}
		for _, sub := range append([]*Node{owner}, m.Inheritors(owner, 0)...) {
			if !in(sub.File) {
				continue
			}
			sub.Walk(func(n *Node) bool {
				if n != sub && n.IsDecl() && n.Decl.Role == sourcemodel.RoleType {
					return false
				}
				if n.Type != "explicit_constructor_invocation" || !matches(n) {
					return true
				}
				ctor := n.ChildByField("constructor")
				switch {
				case ctor == nil:
				case ctor.Type == "super" && sub != owner:
					out = append(out, Usage{Node: ctor, UsageType: types.UsageSuperCall})
				case ctor.Type == "this" && sub == owner:
					out = append(out, Usage{Node: ctor, UsageType: types.UsageConstructorCall})
				}
				return false
			})
		}
	}
	return out
}

func countConstructors(m sourcemodel.Model, a Adapter, owner *Node) int {
	n := 0
	for _, mem := range m.Members(owner) {
		if k, ok := a.Kind(m, mem); ok && k == types.SymbolKindConstructor {
			n++
		}
	}
	return n
}

func (jvmAdapter) IsDecoration(n *Node) bool {
	return n.Type == "marker_annotation" || n.Type == "annotation"
}

func (jvmAdapter) BranchPoints(n *Node) int {
	switch n.Type {
	case "if_statement", "while_statement", "do_statement", "for_statement", "enhanced_for_statement",
		"catch_clause", "ternary_expression":
		return 1
	case "switch_label":
		if len(n.Children) > 0 && n.Children[0].Type != "default" {
			return 1
		}
	case "binary_expression":
		if op := n.ChildByField("operator"); op != nil && (op.Type == "&&" || op.Type == "||") {
			return 1
		}
	}
	return 0
}

func (jvmAdapter) IsNestedUnit(n *Node) bool {
	switch n.Type {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration",
		"method_declaration", "constructor_declaration", "class_body":
		return true
	}
	return false
}
