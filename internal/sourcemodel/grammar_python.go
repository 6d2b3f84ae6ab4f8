package sourcemodel

import (
	"strings"
)

var pythonParameterLists = []string{"parameters", "lambda_parameters"}

func pythonGrammar() *grammar {
	return &grammar{
		identifiers: set("identifier"),
		comments:    set("comment"),
		strings:     set("string", "concatenated_string"),
		decls: map[string]declRule{
			"class_definition":        byField("name", RoleType),
			"function_definition":     byField("name", RoleCallable),
			"assignment":              pythonAssignmentDecl,
			"named_expression":        byField("name", RoleVariable),
			"default_parameter":       byField("name", RoleParameter),
			"typed_default_parameter": byField("name", RoleParameter),
			"typed_parameter":         pythonTypedParameter,
			"list_splat_pattern":      when(parentIs(pythonParameterLists...), firstIdentifierChild(RoleParameter)),
			"dictionary_splat_pattern": when(parentIs(pythonParameterLists...),
				firstIdentifierChild(RoleParameter)),
			"aliased_import": byField("alias", RoleImport),
			"dotted_name":    pythonDottedImport,
			"identifier": firstRule(
				when(parentIs(pythonParameterLists...), selfDecl(RoleParameter)),
				when(parentFieldIs("for_statement", "left"), selfDecl(RoleVariable)),
				when(parentFieldIs("for_in_clause", "left"), selfDecl(RoleVariable)),
				when(parentIs("as_pattern_target"), selfDecl(RoleVariable)),
				when(pythonExceptAlias, selfDecl(RoleVariable)),
			),
		},
		scopes: set("lambda", "list_comprehension", "dictionary_comprehension",
			"set_comprehension", "generator_expression"),
		rebinding:   set("assignment", "named_expression", "identifier"),
		escapes:     pythonEscapes,
		wrappers:    set("expression_statement", "decorated_definition"),
		bareMembers: false,

		receiverTypes: set(),
		receiverNames: set("self", "cls"),
		superTypes:    set(),

		memberOf:       pythonMemberOf,
		instanceField:  pythonInstanceField,
		supertypeNodes: pythonSupertypes,
		declaredType:   pythonDeclaredType,
		importOf:       pythonImportOf,
		packageOf:      func(*Node) string { return "" },
		isSuperCall:    pythonIsSuperCall,
		docString:      pythonDocString,
	}
}

func pythonAssignmentDecl(n *Node) (*Node, DeclRole, bool) {
	left := n.ChildByField("left")
	if left == nil || left.Kind != KindIdentifier {
		return nil, 0, false
	}
	return left, RoleVariable, true
}

// pythonEscapes finds `global name` or `nonlocal name` directly in a
// function body. Nested functions and classes keep their own statements.
func pythonEscapes(scope *Node, name string) escapeKind {
	if scope == nil || scope.Type != "function_definition" {
		return escapeNone
	}
	body := scope.ChildByField("body")
	if body == nil {
		return escapeNone
	}
	kind := escapeNone
	body.Walk(func(n *Node) bool {
		if kind != escapeNone {
			return false
		}
		switch n.Type {
		case "function_definition", "class_definition", "lambda":
			return false
		case "global_statement", "nonlocal_statement":
			for _, id := range n.ChildrenOfType("identifier") {
				if id.Text() != name {
					continue
				}
				kind = escapeNonlocal
				if n.Type == "global_statement" {
					kind = escapeGlobal
				}
			}
			return false
		}
		return true
	})
	return kind
}

func pythonTypedParameter(n *Node) (*Node, DeclRole, bool) {
	for _, c := range n.Children {
		switch {
		case c.Kind == KindIdentifier:
			return c, RoleParameter, true
		case c.Type == "list_splat_pattern" || c.Type == "dictionary_splat_pattern":
			return firstIdentifierChild(RoleParameter)(c)
		}
	}
	return nil, 0, false
}

func pythonDottedImport(n *Node) (*Node, DeclRole, bool) {
	if n.Field != "name" || n.Parent == nil {
		return nil, 0, false
	}
	ids := n.ChildrenOfType("identifier")
	if len(ids) == 0 {
		return nil, 0, false
	}
	switch n.Parent.Type {
	case "import_statement":
		// import a.b.c binds "a"
		return ids[0], RoleImport, true
	case "import_from_statement":
		return ids[len(ids)-1], RoleImport, true
	}
	return nil, 0, false
}

func pythonExceptAlias(n *Node) bool {
	if n.Parent == nil || n.Parent.Type != "except_clause" {
		return false
	}
	if n.Field == "alias" {
		return true
	}
	prev := n.PrevSibling()
	return prev != nil && prev.Type == "as"
}

func pythonMemberOf(id *Node) (*Node, bool) {
	p := id.Parent
	if p != nil && p.Type == "attribute" && id.Field == "attribute" {
		return p.ChildByField("object"), true
	}
	return nil, false
}

// pythonInstanceField returns the attribute name of `self.x = ...`.
func pythonInstanceField(n *Node) *Node {
	if n.Type != "assignment" {
		return nil
	}
	left := n.ChildByField("left")
	if left == nil || left.Type != "attribute" {
		return nil
	}
	obj := left.ChildByField("object")
	if obj == nil || obj.Text() != "self" {
		return nil
	}
	return left.ChildByField("attribute")
}

func pythonSupertypes(decl *Node) []*Node {
	args := decl.ChildByField("superclasses")
	if args == nil {
		return nil
	}
	var out []*Node
	for _, c := range args.NamedChildren() {
		if c.Type == "keyword_argument" {
			continue
		}
		if name := typeNameNode(c); name != nil {
			out = append(out, name)
		}
	}
	return out
}

func pythonDeclaredType(decl *Node) string {
	switch decl.Type {
	case "assignment":
		if t := decl.ChildByField("type"); t != nil {
			return simpleTypeName(t.Text())
		}
		if right := decl.ChildByField("right"); right != nil && right.Type == "call" {
			if name := typeNameNode(right.ChildByField("function")); name != nil {
				return name.Text()
			}
		}
	case "typed_parameter", "typed_default_parameter":
		if t := decl.ChildByField("type"); t != nil {
			return simpleTypeName(t.Text())
		}
	case "function_definition":
		if t := decl.ChildByField("return_type"); t != nil {
			return simpleTypeName(t.Text())
		}
	}
	return ""
}

func pythonImportOf(decl *Node) (importSpec, bool) {
	var stmt *Node
	var importedName string
	switch decl.Type {
	case "dotted_name":
		stmt = decl.Parent
		importedName = decl.Text()
	case "aliased_import":
		stmt = decl.Parent
		if name := decl.ChildByField("name"); name != nil {
			importedName = name.Text()
		}
	default:
		return importSpec{}, false
	}
	if stmt == nil {
		return importSpec{}, false
	}

	switch stmt.Type {
	case "import_statement":
		if decl.Type == "dotted_name" {
			// import a.b binds the top-level package
			importedName = strings.SplitN(importedName, ".", 2)[0]
		}
		return importSpec{Module: importedName}, true
	case "import_from_statement":
		spec := importSpec{Name: importedName}
		if mod := stmt.ChildByField("module_name"); mod != nil {
			if mod.Type == "relative_import" {
				for _, c := range mod.Children {
					if c.Type == "import_prefix" {
						spec.Relative = strings.Count(c.Text(), ".")
					}
					if c.Type == "dotted_name" {
						spec.Module = c.Text()
					}
				}
			} else {
				spec.Module = mod.Text()
			}
		}
		return spec, true
	}
	return importSpec{}, false
}

func pythonIsSuperCall(n *Node) bool {
	if n.Type != "call" {
		return false
	}
	fn := n.ChildByField("function")
	return fn != nil && fn.Text() == "super"
}

// pythonDocString returns the docstring of a class, function or attribute
// assignment.
func pythonDocString(decl *Node) *Node {
	switch decl.Type {
	case "class_definition", "function_definition":
		body := decl.ChildByField("body")
		if body == nil {
			return nil
		}
		for _, c := range body.Children {
			if c.Kind == KindComment {
				continue
			}
			return stringStatement(c)
		}
	case "assignment":
		// Attribute docstring: a bare string right after the assignment
		if decl.Parent != nil && decl.Parent.Type == "expression_statement" {
			if next := decl.Parent.NextSibling(); next != nil {
				return stringStatement(next)
			}
		}
	}
	return nil
}

func stringStatement(n *Node) *Node {
	if n == nil || n.Type != "expression_statement" {
		return nil
	}
	named := n.NamedChildren()
	if len(named) == 1 && named[0].Kind == KindString {
		return named[0]
	}
	return nil
}
