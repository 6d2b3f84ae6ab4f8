package analyzer

import (
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

var jsModifierWords = set("static", "async", "readonly", "abstract", "get", "set", "declare", "override")

var jsComponentBases = set("Component", "PureComponent")

var jsJSXNodes = set("jsx_element", "jsx_self_closing_element", "jsx_fragment")

var jsFlow = flowShapes{
	wrappers:   set("parenthesized_expression", "non_null_expression", "as_expression"),
	assign:     set("assignment_expression", "augmented_assignment_expression"),
	declarator: set("variable_declarator"),
	returns:    set("return_statement"),
	arguments:  set("arguments"),
	conditions: set("if_statement", "while_statement", "do_statement", "for_statement", "ternary_expression"),
	awaits:     set("await_expression"),
	throws:     set("throw_statement"),
	iterables:  set("for_in_statement"),
	yields:     set("yield_expression"),
}

// jsAdapter serves JavaScript, TypeScript and TSX sources.
type jsAdapter struct{}

func (jsAdapter) Family() sourcemodel.Family { return sourcemodel.FamilyJS }

// jsFunctionNode returns the node carrying a callable's parameters and
// body: the declaration itself or the function value of a declarator.
func jsFunctionNode(decl *Node) *Node {
	if decl.Type == "variable_declarator" {
		if v := decl.ChildByField("value"); v != nil {
			return v
		}
	}
	return decl
}

func jsReturnsJSX(fn *Node) bool {
	body := fn.ChildByField("body")
	found := false
	body.Walk(func(n *Node) bool {
		if found {
			return false
		}
		if jsJSXNodes[n.Type] {
			found = true
		}
		return true
	})
	return found
}

func isHookName(name string) bool {
	return len(name) > 3 && strings.HasPrefix(name, "use") && isCapitalized(name[3:])
}

func jsIsGenerator(fn *Node) bool {
	switch fn.Type {
	case "generator_function_declaration", "generator_function":
		return true
	}
	return fn.HasChild("*")
}

func jsFunctionKind(decl *Node) types.SymbolKind {
	fn := jsFunctionNode(decl)
	name := decl.Name()
	switch {
	case isHookName(name):
		return types.SymbolKindHook
	case isCapitalized(name) && jsReturnsJSX(fn):
		return types.SymbolKindComponent
	case jsIsGenerator(fn):
		return types.SymbolKindGenerator
	case fn.HasChild("async"):
		return types.SymbolKindAsyncFunction
	}
	return types.SymbolKindFunction
}

func jsIsComponentClass(m sourcemodel.Model, decl *Node) bool {
	for _, name := range m.SupertypeNames(decl) {
		if jsComponentBases[lastSegment(name)] {
			return true
		}
	}
	return false
}

// jsStatement returns the statement that carries a declaration's export
// and declaration keyword.
func jsStatement(decl *Node) *Node {
	n := decl
	if decl.Type == "variable_declarator" && decl.Parent != nil {
		n = decl.Parent
	}
	return n
}

func jsDeclKeyword(decl *Node) string {
	if decl.Type != "variable_declarator" || decl.Parent == nil || len(decl.Parent.Children) == 0 {
		return ""
	}
	switch kw := decl.Parent.Children[0].Type; kw {
	case "const", "let", "var":
		return kw
	}
	return ""
}

func (a jsAdapter) Kind(m sourcemodel.Model, decl *Node) (types.SymbolKind, bool) {
	if decl.Decl == nil || decl.Decl.Role == sourcemodel.RoleParameter {
		return "", false
	}
	if decl.Decl.Role == sourcemodel.RoleImport {
		return types.SymbolKindImport, true
	}
	switch decl.Type {
	case "class_declaration", "abstract_class_declaration", "class":
		if jsIsComponentClass(m, decl) {
			return types.SymbolKindComponent, true
		}
		return types.SymbolKindClass, true
	case "interface_declaration":
		return types.SymbolKindInterface, true
	case "type_alias_declaration":
		return types.SymbolKindTypeAlias, true
	case "enum_declaration":
		return types.SymbolKindEnum, true
	case "enum_assignment", "property_identifier":
		return types.SymbolKindEnumMember, true
	case "method_definition":
		if decl.Name() == "constructor" {
			return types.SymbolKindConstructor, true
		}
		return types.SymbolKindMethod, true
	case "method_signature", "abstract_method_signature":
		return types.SymbolKindMethod, true
	case "function_signature":
		return types.SymbolKindFunction, true
	case "function_declaration", "generator_function_declaration":
		return jsFunctionKind(decl), true
	case "field_definition", "public_field_definition", "property_signature":
		mods := a.Modifiers(decl)
		if hasModifier(mods, "static") && hasModifier(mods, "readonly") {
			return types.SymbolKindConstant, true
		}
		return types.SymbolKindField, true
	case "assignment_expression":
		return types.SymbolKindField, true
	case "variable_declarator":
		if decl.Decl.Role == sourcemodel.RoleCallable {
			return jsFunctionKind(decl), true
		}
		if !sourcemodel.IsLocal(decl) && jsDeclKeyword(decl) == "const" && isConstantName(decl.Name()) {
			return types.SymbolKindConstant, true
		}
	}
	return types.SymbolKindVariable, true
}

func (jsAdapter) Visibility(decl *Node) types.Visibility {
	if acc := decl.ChildOfType("accessibility_modifier"); acc != nil {
		switch strings.TrimSpace(acc.Text()) {
		case "private":
			return types.VisibilityPrivate
		case "protected":
			return types.VisibilityProtected
		}
		return types.VisibilityPublic
	}
	if decl.Decl != nil && decl.Decl.Name != nil && decl.Decl.Name.Type == "private_property_identifier" {
		return types.VisibilityPrivate
	}
	return types.VisibilityPublic
}

func (jsAdapter) Modifiers(decl *Node) []string {
	mods := []string{}
	stmt := jsStatement(decl)
	if exp := stmt.Parent; exp != nil && exp.Type == "export_statement" {
		mods = append(mods, "export")
		if exp.HasChild("default") {
			mods = append(mods, "default")
		}
	}
	if decl.Ancestor("ambient_declaration") != nil {
		mods = append(mods, "declare")
	}
	if acc := decl.ChildOfType("accessibility_modifier"); acc != nil {
		mods = append(mods, strings.TrimSpace(acc.Text()))
	}
	mods = appendUnique(mods, keywords(decl, jsModifierWords)...)
	if decl.HasChild("override_modifier") {
		mods = appendUnique(mods, "override")
	}
	if kw := jsDeclKeyword(decl); kw != "" {
		mods = append(mods, kw)
	}
	if decl.Decl != nil && decl.Decl.Role == sourcemodel.RoleCallable {
		fn := jsFunctionNode(decl)
		if fn != decl && fn.HasChild("async") {
			mods = appendUnique(mods, "async")
		}
		if jsIsGenerator(fn) {
			mods = append(mods, "generator")
		}
	}
	return mods
}

func jsDecoratorName(d *Node) string {
	named := d.NamedChildren()
	if len(named) == 0 {
		return ""
	}
	expr := named[0]
	if expr.Type == "call_expression" {
		expr = expr.ChildByField("function")
	}
	if expr == nil {
		return ""
	}
	return collapse(expr.Text())
}

func (jsAdapter) Decorators(decl *Node) []types.Decorator {
	out := []types.Decorator{}
	for _, d := range decl.ChildrenOfType("decorator") {
		out = append(out, types.Decorator{Name: jsDecoratorName(d)})
	}
	return out
}

func (jsAdapter) Signature(decl *Node) string {
	start := decl.Start
	for _, c := range decl.Children {
		if c.Type == "decorator" {
			start = c.End
		}
	}
	f := decl.File
	switch decl.Type {
	case "variable_declarator":
		text := decl.FirstLine()
		if decl.Decl.Role == sourcemodel.RoleCallable {
			end := decl.End
			if body := bodyOf(decl); body != nil {
				end = body.Start
			}
			text = strings.TrimSuffix(textRange(f, start, end), "=>")
		}
		return strings.TrimSpace(jsDeclKeyword(decl) + " " + strings.TrimRight(strings.TrimSpace(text), " ;,"))
	case "type_alias_declaration", "enum_assignment", "property_identifier",
		"field_definition", "public_field_definition", "property_signature", "assignment_expression":
		return strings.TrimRight(collapse(firstLine(textRange(f, start, decl.End))), " ;,")
	}
	if decl.Decl != nil && decl.Decl.Role == sourcemodel.RoleImport {
		if stmt := decl.Ancestor("import_statement"); stmt != nil {
			return strings.TrimSuffix(collapse(stmt.Text()), ";")
		}
	}
	end := decl.End
	if body := decl.ChildByField("body"); body != nil {
		end = body.Start
	}
	return strings.TrimRight(textRange(f, start, end), " {;")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (jsAdapter) ParameterList(decl *Node) *Node {
	fn := jsFunctionNode(decl)
	if p := fn.ChildByField("parameters"); p != nil {
		return p
	}
	return fn.ChildByField("parameter")
}

func (jsAdapter) ReturnType(decl *Node) string {
	fn := jsFunctionNode(decl)
	if t := fn.ChildByField("return_type"); t != nil {
		return strings.TrimSpace(strings.TrimPrefix(collapse(t.Text()), ":"))
	}
	return ""
}

func (jsAdapter) Throws(*Node) []string { return nil }

func (jsAdapter) Qualifier(sourcemodel.Model, *sourcemodel.File) string { return "" }

func (a jsAdapter) LanguageData(m sourcemodel.Model, decl *Node, kind types.SymbolKind) map[string]string {
	data := make(map[string]string)
	mods := a.Modifiers(decl)
	switch {
	case hasModifier(mods, "default"):
		data["exportType"] = "default"
	case hasModifier(mods, "export"):
		data["exportType"] = "named"
	}
	switch kind {
	case types.SymbolKindComponent:
		if decl.Decl.Role == sourcemodel.RoleType {
			data["componentType"] = "class"
		} else {
			data["componentType"] = "function"
		}
	case types.SymbolKindHook:
		data["hookType"] = "custom"
	}
	switch {
	case kind.IsCallable() || (kind == types.SymbolKindComponent && decl.Decl.Role == sourcemodel.RoleCallable):
		data["parameters"] = innerText(a.ParameterList(decl))
		if rt := a.ReturnType(decl); rt != "" {
			data["returnType"] = rt
		}
	case kind.Category() == types.CategoryType:
		if supers := m.SupertypeNames(decl); len(supers) > 0 {
			data["extends"] = strings.Join(supers, ", ")
		}
	case kind.Category() == types.CategoryVariable:
		if t := m.DeclaredTypeName(decl); t != "" {
			data["type"] = t
		}
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func (jsAdapter) IsSynthetic(decl *Node) bool {
	return decl.Type == "assignment_expression"
}

func (jsAdapter) Deprecation(decl *Node) (bool, string) {
	for _, d := range decl.ChildrenOfType("decorator") {
		if lastSegment(jsDecoratorName(d)) == "deprecated" {
			return true, ""
		}
	}
	return false, ""
}

func (jsAdapter) ExplicitOverride(decl *Node) bool {
	return decl.HasChild("override_modifier") || decl.HasChild("override")
}

func (jsAdapter) ClassifyUsage(m sourcemodel.Model, ref, target *Node, kind types.SymbolKind) string {
	if ref.Ancestor("import_statement") != nil {
		return types.UsageImport
	}
	if ref.Ancestor("decorator") != nil {
		return types.UsageDecorator
	}
	if p := ref.Parent; p != nil && ref.Field == "name" {
		switch p.Type {
		case "jsx_opening_element", "jsx_self_closing_element", "jsx_closing_element":
			return types.UsageJSXElement
		}
	}
	e := memberExpr(m, ref)
	p := e.Parent
	if p == nil {
		return types.UsageReference
	}
	isCallee := p.Type == "call_expression" && e.Field == "function"
	switch {
	case kind.Category() == types.CategoryType:
		switch {
		case p.Type == "new_expression" && e.Field == "constructor":
			return types.UsageConstructorCall
		case ref.Ancestor("implements_clause") != nil:
			return types.UsageImplementation
		case ref.Ancestor("extends_clause", "extends_type_clause", "class_heritage") != nil:
			return types.UsageInheritance
		case isCallee:
			return types.UsageFunctionCall
		case ref.Type == "type_identifier" || ref.Ancestor("type_annotation") != nil:
			return types.UsageTypeReference
		}
		return types.UsageReference
	case kind.IsCallable():
		switch {
		case isCallee:
			if obj, ok := m.MemberReceiver(ref); ok && obj.Type == "super" {
				return types.UsageSuperCall
			}
			if ownerType(target) != nil {
				return types.UsageMethodCall
			}
			return types.UsageFunctionCall
		case p.Type == "new_expression" && e.Field == "constructor":
			return types.UsageConstructorCall
		case e != ref && hasModifier(keywords(target, jsModifierWords), "get"):
			return types.UsagePropertyAccess
		}
		return types.UsageReference
	}

	field := ownerType(target) != nil
	t := climb(e, jsFlow.wrappers)
	if pp := t.Parent; pp != nil {
		switch {
		case pp.Type == "assignment_expression" && t.Field == "left":
			if field {
				return types.UsageFieldWrite
			}
			return types.UsageWrite
		case pp.Type == "augmented_assignment_expression" && t.Field == "left",
			pp.Type == "update_expression":
			return types.UsageAugmentedAssignment
		case pp.Type == "unary_expression" && pp.HasChild("delete"):
			return types.UsageDelete
		case pp.Type == "for_in_statement" && t.Field == "left":
			return types.UsageLoopTarget
		}
	}
	if field {
		return types.UsageFieldRead
	}
	return types.UsageRead
}

func (jsAdapter) DataFlow(ref *Node) string {
	e := ref
	if p := ref.Parent; p != nil && p.Type == "member_expression" && ref.Field == "property" {
		e = p
	}
	if p := e.Parent; p != nil && ((p.Type == "call_expression" && e.Field == "function") ||
		(p.Type == "new_expression" && e.Field == "constructor")) {
		e = p
	}
	return jsFlow.describe(e)
}

func (a jsAdapter) ExtraUsages(m sourcemodel.Model, target *Node, kind types.SymbolKind, scope sourcemodel.Scope) []Usage {
	owner := ownerType(target)
	if owner == nil {
		return nil
	}
	in := scopeFilter(m, scope)
	var out []Usage
	switch kind {
	case types.SymbolKindMethod:
		for _, o := range overriders(m, target, 0, 0) {
			if in(o.File) {
				out = append(out, Usage{Node: o.Decl.Name, UsageType: types.UsageOverride})
			}
		}
		kw := keywords(target, jsModifierWords)
		if hasModifier(kw, "get") || hasModifier(kw, "set") {
			out = append(out, unresolvedAttributes(m, target.Name(), scope)...)
		}
	case types.SymbolKindConstructor:
		for _, ref := range m.FindAllReferences(owner, scope) {
			e := memberExpr(m, ref)
			if p := e.Parent; p != nil && p.Type == "new_expression" && e.Field == "constructor" {
				out = append(out, Usage{Node: ref, UsageType: types.UsageConstructorCall})
			}
		}
		for _, sub := range m.Inheritors(owner, 0) {
			if !in(sub.File) {
				continue
			}
			for _, mem := range m.Members(sub) {
				if mem.Name() != "constructor" {
					continue
				}
				mem.Walk(func(n *Node) bool {
					if n.Type == "class" || n.Type == "class_declaration" {
						return false
					}
					if n.Type == "call_expression" {
						if fn := n.ChildByField("function"); fn != nil && fn.Type == "super" {
							out = append(out, Usage{Node: fn, UsageType: types.UsageSuperCall})
						}
					}
					return true
				})
			}
		}
	}
	return out
}

func (jsAdapter) IsDecoration(n *Node) bool {
	return n.Type == "decorator"
}

func (jsAdapter) BranchPoints(n *Node) int {
	switch n.Type {
	case "if_statement", "while_statement", "do_statement", "for_statement", "for_in_statement",
		"catch_clause", "ternary_expression", "switch_case":
		return 1
	case "binary_expression":
		if op := n.ChildByField("operator"); op != nil && (op.Type == "&&" || op.Type == "||") {
			return 1
		}
	}
	return 0
}

func (jsAdapter) IsNestedUnit(n *Node) bool {
	switch n.Type {
	case "function_declaration", "generator_function_declaration", "method_definition",
		"class_declaration", "abstract_class_declaration", "class":
		return true
	}
	return false
}
