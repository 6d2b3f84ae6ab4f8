package analyzer

import (
	"path"
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

var pythonEnumBases = set("Enum", "IntEnum", "StrEnum", "Flag", "IntFlag")

var pythonDecoratorModifiers = map[string]string{
	"staticmethod":    "static",
	"classmethod":     "classmethod",
	"property":        "property",
	"cached_property": "property",
	"abstractmethod":  "abstract",
	"override":        "override",
	"dataclass":       "dataclass",
}

var pythonFlow = flowShapes{
	wrappers:   set("parenthesized_expression"),
	assign:     set("assignment", "augmented_assignment"),
	declarator: set(),
	returns:    set("return_statement"),
	arguments:  set("argument_list"),
	conditions: set("if_statement", "elif_clause", "while_statement"),
	awaits:     set("await"),
	throws:     set("raise_statement"),
	iterables:  set("for_statement", "for_in_clause"),
	yields:     set("yield"),
}

// pythonAdapter serves Python sources.
type pythonAdapter struct{}

func (pythonAdapter) Family() sourcemodel.Family { return sourcemodel.FamilyPython }

// pythonDecoratorNodes returns the decorators of a class or function in
// source order.
func pythonDecoratorNodes(decl *Node) []*Node {
	if decl.Parent == nil || decl.Parent.Type != "decorated_definition" {
		return nil
	}
	return decl.Parent.ChildrenOfType("decorator")
}

// pythonDecoratorName returns a decorator's dotted name without the call.
func pythonDecoratorName(d *Node) string {
	named := d.NamedChildren()
	if len(named) == 0 {
		return ""
	}
	expr := named[0]
	if expr.Type == "call" {
		expr = expr.ChildByField("function")
	}
	if expr == nil {
		return ""
	}
	return collapse(expr.Text())
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func pythonDecoratorNames(decl *Node) []string {
	var out []string
	for _, d := range pythonDecoratorNodes(decl) {
		out = append(out, pythonDecoratorName(d))
	}
	return out
}

func isPythonEnum(m sourcemodel.Model, decl *Node, depth int) bool {
	if decl == nil || depth > 8 {
		return false
	}
	for _, name := range m.SupertypeNames(decl) {
		if pythonEnumBases[lastSegment(name)] {
			return true
		}
	}
	for _, s := range m.Supertypes(decl) {
		if s.IsDecl() && isPythonEnum(m, s, depth+1) {
			return true
		}
	}
	return false
}

// isPythonInstanceField reports `self.x = ...` declarations.
func isPythonInstanceField(decl *Node) bool {
	if decl.Type != "assignment" {
		return false
	}
	left := decl.ChildByField("left")
	return left != nil && left.Type == "attribute"
}

func pythonIsGenerator(decl *Node) bool {
	body := decl.ChildByField("body")
	found := false
	body.Walk(func(n *Node) bool {
		if found || n.Type == "function_definition" || n.Type == "class_definition" || n.Type == "lambda" {
			return false
		}
		if n.Type == "yield" {
			found = true
		}
		return true
	})
	return found
}

func pythonIsFinal(decl *Node) bool {
	t := decl.ChildByField("type")
	return t != nil && lastSegment(strings.SplitN(collapse(t.Text()), "[", 2)[0]) == "Final"
}

func (pythonAdapter) Kind(m sourcemodel.Model, decl *Node) (types.SymbolKind, bool) {
	if decl.Decl == nil || decl.Decl.Role == sourcemodel.RoleParameter {
		return "", false
	}
	if decl.Decl.Role == sourcemodel.RoleImport {
		return types.SymbolKindImport, true
	}
	owner := ownerType(decl)
	switch decl.Type {
	case "class_definition":
		if isPythonEnum(m, decl, 0) {
			return types.SymbolKindEnum, true
		}
		return types.SymbolKindClass, true
	case "function_definition":
		switch {
		case owner != nil && decl.Name() == "__init__":
			return types.SymbolKindConstructor, true
		case owner != nil:
			return types.SymbolKindMethod, true
		case decl.HasChild("async"):
			return types.SymbolKindAsyncFunction, true
		case pythonIsGenerator(decl):
			return types.SymbolKindGenerator, true
		}
		return types.SymbolKindFunction, true
	case "assignment":
		local := sourcemodel.IsLocal(decl)
		switch {
		case owner != nil && !isPythonInstanceField(decl) && isPythonEnum(m, owner, 0):
			return types.SymbolKindEnumMember, true
		case !local && (isConstantName(decl.Name()) || pythonIsFinal(decl)):
			return types.SymbolKindConstant, true
		case owner != nil:
			return types.SymbolKindField, true
		}
		return types.SymbolKindVariable, true
	}
	return types.SymbolKindVariable, true
}

// Visibility follows the naming convention: a leading double underscore
// is private, a single one protected, anything else public.
func (pythonAdapter) Visibility(decl *Node) types.Visibility {
	name := decl.Name()
	switch {
	case strings.HasPrefix(name, "__"):
		return types.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return types.VisibilityProtected
	}
	return types.VisibilityPublic
}

func (pythonAdapter) Modifiers(decl *Node) []string {
	mods := []string{}
	if decl.Type == "function_definition" {
		if decl.HasChild("async") {
			mods = append(mods, "async")
		}
	}
	for _, name := range pythonDecoratorNames(decl) {
		last := lastSegment(name)
		if mod, ok := pythonDecoratorModifiers[last]; ok {
			mods = appendUnique(mods, mod)
		} else if last == "setter" || last == "deleter" {
			mods = appendUnique(mods, last)
		}
	}
	switch decl.Type {
	case "function_definition":
		if pythonIsGenerator(decl) {
			mods = append(mods, "generator")
		}
	case "assignment":
		if pythonIsFinal(decl) {
			mods = append(mods, "final")
		}
	}
	return mods
}

func (pythonAdapter) Decorators(decl *Node) []types.Decorator {
	out := []types.Decorator{}
	for _, name := range pythonDecoratorNames(decl) {
		out = append(out, types.Decorator{Name: name})
	}
	return out
}

func (pythonAdapter) Signature(decl *Node) string {
	switch decl.Type {
	case "function_definition", "class_definition":
		return header(decl, "body")
	case "assignment":
		return decl.FirstLine()
	}
	if stmt := decl.Ancestor("import_statement", "import_from_statement"); stmt != nil {
		return collapse(stmt.Text())
	}
	return decl.FirstLine()
}

func (pythonAdapter) ParameterList(decl *Node) *Node {
	if decl.Type != "function_definition" {
		return nil
	}
	return decl.ChildByField("parameters")
}

func (pythonAdapter) ReturnType(decl *Node) string {
	if t := decl.ChildByField("return_type"); t != nil && decl.Type == "function_definition" {
		return collapse(t.Text())
	}
	return ""
}

// Throws lists the exception types raised directly in the function body.
func (pythonAdapter) Throws(decl *Node) []string {
	body := decl.ChildByField("body")
	if decl.Type != "function_definition" || body == nil {
		return nil
	}
	var out []string
	body.Walk(func(n *Node) bool {
		switch n.Type {
		case "function_definition", "class_definition", "lambda":
			return false
		case "raise_statement":
			named := n.NamedChildren()
			if len(named) == 0 {
				return false
			}
			exc := named[0]
			if exc.Type == "call" {
				exc = exc.ChildByField("function")
			}
			if exc != nil && (exc.Kind == sourcemodel.KindIdentifier || exc.Type == "attribute") {
				out = appendUnique(out, collapse(exc.Text()))
			}
			return false
		}
		return true
	})
	return out
}

// Qualifier returns the dotted module path of f.
func (pythonAdapter) Qualifier(_ sourcemodel.Model, f *sourcemodel.File) string {
	rel := f.RelPath
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	rel = strings.TrimSuffix(rel, "/__init__")
	if rel == "__init__" {
		return ""
	}
	return strings.ReplaceAll(rel, "/", ".")
}

func (a pythonAdapter) LanguageData(m sourcemodel.Model, decl *Node, kind types.SymbolKind) map[string]string {
	data := make(map[string]string)
	switch kind.Category() {
	case types.CategoryFunction:
		data["parameters"] = innerText(a.ParameterList(decl))
		if rt := a.ReturnType(decl); rt != "" {
			data["returnType"] = rt
		}
		if names := pythonDecoratorNames(decl); len(names) > 0 {
			data["decorators"] = strings.Join(names, ", ")
		}
	case types.CategoryType:
		if bases := m.SupertypeNames(decl); len(bases) > 0 {
			data["bases"] = strings.Join(bases, ", ")
		}
		data["module"] = a.Qualifier(m, decl.File)
	case types.CategoryVariable:
		if t := m.DeclaredTypeName(decl); t != "" {
			data["type"] = t
		}
		if isPythonInstanceField(decl) {
			data["attributeKind"] = "instance"
		} else if ownerType(decl) != nil {
			data["attributeKind"] = "class"
		}
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func (pythonAdapter) IsSynthetic(decl *Node) bool {
	return isPythonInstanceField(decl)
}

func (pythonAdapter) Deprecation(decl *Node) (bool, string) {
	for _, d := range pythonDecoratorNodes(decl) {
		if lastSegment(pythonDecoratorName(d)) != "deprecated" {
			continue
		}
		msg := ""
		d.Walk(func(n *Node) bool {
			if msg == "" && n.Kind == sourcemodel.KindString {
				msg = trimQuotes(n.Text())
				return false
			}
			return msg == ""
		})
		return true, msg
	}
	return false, ""
}

func (pythonAdapter) ExplicitOverride(decl *Node) bool {
	for _, name := range pythonDecoratorNames(decl) {
		if lastSegment(name) == "override" {
			return true
		}
	}
	return false
}

// trimQuotes strips Python or JS string delimiters and prefixes.
func trimQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`, "`"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

func isPythonSuperCall(n *Node) bool {
	if n == nil || n.Type != "call" {
		return false
	}
	fn := n.ChildByField("function")
	return fn != nil && fn.Text() == "super"
}

func (pythonAdapter) ClassifyUsage(m sourcemodel.Model, ref, target *Node, kind types.SymbolKind) string {
	if ref.Ancestor("import_statement", "import_from_statement") != nil {
		return types.UsageImport
	}
	if ref.Ancestor("decorator") != nil {
		return types.UsageDecorator
	}
	if ref.Ancestor("global_statement", "nonlocal_statement") != nil {
		return types.UsageReference
	}
	e := memberExpr(m, ref)
	p := e.Parent
	if p == nil {
		return types.UsageReference
	}
	switch kind.Category() {
	case types.CategoryType:
		switch {
		case p.Type == "call" && e.Field == "function":
			return types.UsageConstructorCall
		case p.Type == "argument_list" && p.Parent != nil && p.Parent.Type == "class_definition":
			return types.UsageInheritance
		case e.Ancestor("type") != nil:
			return types.UsageTypeReference
		}
		return pythonReadContext(e, types.UsageReference)
	case types.CategoryFunction:
		switch {
		case p.Type == "call" && e.Field == "function":
			if obj, ok := m.MemberReceiver(ref); ok && isPythonSuperCall(obj) {
				return types.UsageSuperCall
			}
			if ownerType(target) != nil {
				return types.UsageMethodCall
			}
			return types.UsageFunctionCall
		case e != ref && hasModifier(pythonAdapter{}.Modifiers(target), "property"):
			return types.UsagePropertyAccess
		}
		return pythonReadContext(e, types.UsageReference)
	}

	field := ownerType(target) != nil
	target0 := climb(e, set("pattern_list", "tuple_pattern", "list_pattern", "expression_list"))
	pp := target0.Parent
	switch {
	case pp != nil && pp.Type == "assignment" && target0.Field == "left":
		if field {
			return types.UsageFieldWrite
		}
		return types.UsageWrite
	case pp != nil && pp.Type == "augmented_assignment" && target0.Field == "left":
		return types.UsageAugmentedAssignment
	case pp != nil && pp.Type == "delete_statement":
		return types.UsageDelete
	case pp != nil && (pp.Type == "for_statement" || pp.Type == "for_in_clause") && target0.Field == "left":
		return types.UsageLoopTarget
	}
	if field {
		// the position still shows in the data flow
		return types.UsageFieldRead
	}
	return pythonReadContext(e, types.UsageRead)
}

// pythonReadContext refines a read by the expression's parent shape.
func pythonReadContext(e *Node, fallback string) string {
	n := climb(e, pythonFlow.wrappers)
	p := n.Parent
	if p == nil {
		return fallback
	}
	switch {
	case p.Type == "raise_statement":
		return types.UsageThrow
	case p.Type == "await":
		return types.UsageAwait
	case (p.Type == "if_statement" || p.Type == "elif_clause" || p.Type == "while_statement") && n.Field == "condition":
		return types.UsageCondition
	case p.Type == "for_in_clause" && n.Field == "right":
		return types.UsageComprehension
	case p.Type == "argument_list" && (p.Parent == nil || p.Parent.Type != "class_definition"):
		return types.UsageArgument
	case p.Type == "return_statement":
		return types.UsageReturn
	}
	return fallback
}

func hasModifier(mods []string, mod string) bool {
	for _, m := range mods {
		if m == mod {
			return true
		}
	}
	return false
}

func (pythonAdapter) DataFlow(ref *Node) string {
	e := ref
	if p := ref.Parent; p != nil && p.Type == "attribute" && ref.Field == "attribute" {
		e = p
	}
	if p := e.Parent; p != nil && p.Type == "call" && e.Field == "function" {
		e = p
	}
	return pythonFlow.describe(e)
}

func (a pythonAdapter) ExtraUsages(m sourcemodel.Model, target *Node, kind types.SymbolKind, scope sourcemodel.Scope) []Usage {
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
		if hasModifier(a.Modifiers(target), "property") {
			out = append(out, unresolvedAttributes(m, target.Name(), scope)...)
		}
	case types.SymbolKindConstructor:
		for _, ref := range m.FindAllReferences(owner, scope) {
			e := memberExpr(m, ref)
			if p := e.Parent; p != nil && p.Type == "call" && e.Field == "function" {
				out = append(out, Usage{Node: ref, UsageType: types.UsageConstructorCall})
			}
		}
	}
	return out
}

// unresolvedAttributes finds attribute accesses named name whose receiver
// type is unknown.
func unresolvedAttributes(m sourcemodel.Model, name string, scope sourcemodel.Scope) []Usage {
	var out []Usage
	for _, f := range m.Files(scope) {
		for _, id := range f.Identifiers(name) {
			if _, ok := m.MemberReceiver(id); !ok || m.ResolveReference(id) != nil {
				continue
			}
			if p := id.Parent; p != nil && p.Parent != nil && p.Parent.Type == "call" && p.Field == "function" {
				continue
			}
			out = append(out, Usage{Node: id, UsageType: types.UsagePropertyAccess})
		}
	}
	return out
}

func (pythonAdapter) IsDecoration(n *Node) bool {
	return n.Type == "decorator"
}

func (pythonAdapter) BranchPoints(n *Node) int {
	switch n.Type {
	case "if_statement", "elif_clause", "while_statement", "for_statement", "except_clause",
		"conditional_expression", "for_in_clause", "if_clause", "boolean_operator":
		return 1
	case "case_clause":
		for _, c := range n.NamedChildren() {
			if c.Type == "case_pattern" {
				if strings.TrimSpace(c.Text()) == "_" {
					return 0
				}
				return 1
			}
		}
		return 1
	}
	return 0
}

func (pythonAdapter) IsNestedUnit(n *Node) bool {
	return n.Type == "function_definition" || n.Type == "class_definition"
}
