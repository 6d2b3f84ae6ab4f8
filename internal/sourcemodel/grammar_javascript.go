package sourcemodel

import (
	"strings"
)

var jsFunctionValues = set("arrow_function", "function_expression", "function", "generator_function")

func javascriptGrammar(typescript bool) *grammar {
	typeDecl := byField("name", RoleType)
	callable := byField("name", RoleCallable)
	g := &grammar{
		identifiers: set("identifier", "property_identifier", "private_property_identifier",
			"type_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern"),
		comments: set("comment", "html_comment"),
		strings:  set("string", "template_string"),
		decls: map[string]declRule{
			"class_declaration":              typeDecl,
			"abstract_class_declaration":     typeDecl,
			"class":                          typeDecl,
			"interface_declaration":          typeDecl,
			"type_alias_declaration":         typeDecl,
			"enum_declaration":               typeDecl,
			"function_declaration":           callable,
			"generator_function_declaration": callable,
			"function_signature":             callable,
			"method_definition":              callable,
			"method_signature":               callable,
			"abstract_method_signature":      callable,
			"field_definition":               byField("property", RoleVariable),
			"public_field_definition":        byField("name", RoleVariable),
			"property_signature":             byField("name", RoleVariable),
			"enum_assignment":                byField("name", RoleVariable),
			"variable_declarator":            jsVariableDeclarator,
			"required_parameter":             byField("pattern", RoleParameter),
			"optional_parameter":             byField("pattern", RoleParameter),
			"assignment_pattern":             when(parentIs("formal_parameters"), byField("left", RoleParameter)),
			"rest_pattern":                   when(parentIs("formal_parameters"), firstIdentifierChild(RoleParameter)),
			"import_specifier": firstRule(
				byField("alias", RoleImport),
				byField("name", RoleImport),
			),
			"namespace_import": firstIdentifierChild(RoleImport),
			"identifier": firstRule(
				when(parentIs("formal_parameters"), selfDecl(RoleParameter)),
				when(parentFieldIs("arrow_function", "parameter"), selfDecl(RoleParameter)),
				when(parentFieldIs("catch_clause", "parameter"), selfDecl(RoleVariable)),
				when(parentFieldIs("for_in_statement", "left"), selfDecl(RoleVariable)),
				when(parentIs("import_clause"), selfDecl(RoleImport)),
			),
			"property_identifier": when(parentIs("enum_body"), selfDecl(RoleVariable)),
		},
		scopes:      set("arrow_function", "function_expression", "function", "generator_function", "class_static_block"),
		rebinding:   set(),
		escapes:     noEscapes,
		wrappers:    set("lexical_declaration", "variable_declaration", "export_statement", "ambient_declaration"),
		bareMembers: false,

		receiverTypes: set("this"),
		receiverNames: set(),
		superTypes:    set("super"),

		memberOf:       jsMemberOf,
		instanceField:  jsInstanceField,
		supertypeNodes: jsSupertypes,
		declaredType:   jsDeclaredType,
		importOf:       jsImportOf,
		packageOf:      func(*Node) string { return "" },
		isSuperCall:    func(*Node) bool { return false },
		docString:      func(*Node) *Node { return nil },
	}
	if !typescript {
		delete(g.decls, "interface_declaration")
		delete(g.decls, "type_alias_declaration")
		delete(g.decls, "enum_declaration")
	}
	return g
}

func jsVariableDeclarator(n *Node) (*Node, DeclRole, bool) {
	name := n.ChildByField("name")
	if name == nil || name.Kind != KindIdentifier {
		return nil, 0, false
	}
	if value := n.ChildByField("value"); value != nil && jsFunctionValues[value.Type] {
		return name, RoleCallable, true
	}
	return name, RoleVariable, true
}

func jsMemberOf(id *Node) (*Node, bool) {
	p := id.Parent
	if p != nil && p.Type == "member_expression" && id.Field == "property" {
		return p.ChildByField("object"), true
	}
	if p != nil && p.Type == "nested_type_identifier" && id.Index > 0 {
		return p.Children[0], true
	}
	return nil, false
}

// jsInstanceField returns the property name of `this.x = ...`.
func jsInstanceField(n *Node) *Node {
	if n.Type != "assignment_expression" {
		return nil
	}
	left := n.ChildByField("left")
	if left == nil || left.Type != "member_expression" {
		return nil
	}
	obj := left.ChildByField("object")
	if obj == nil || obj.Type != "this" {
		return nil
	}
	prop := left.ChildByField("property")
	if prop == nil || prop.Kind != KindIdentifier {
		return nil
	}
	return prop
}

func jsSupertypes(decl *Node) []*Node {
	var out []*Node
	add := func(n *Node) {
		if name := typeNameNode(n); name != nil {
			out = append(out, name)
		}
	}
	for _, c := range decl.Children {
		switch c.Type {
		case "class_heritage":
			for _, h := range c.NamedChildren() {
				switch h.Type {
				case "extends_clause":
					if v := h.ChildByField("value"); v != nil {
						add(v)
					}
				case "implements_clause":
					for _, t := range h.NamedChildren() {
						add(t)
					}
				default:
					// Plain JavaScript: class A extends B
					add(h)
				}
			}
		case "extends_type_clause", "extends_clause":
			for _, t := range c.NamedChildren() {
				add(t)
			}
		}
	}
	return out
}

func jsDeclaredType(decl *Node) string {
	if t := decl.ChildByField("type"); t != nil {
		if name := typeNameNode(t); name != nil {
			return name.Text()
		}
		return simpleTypeName(t.Text())
	}
	if value := decl.ChildByField("value"); value != nil && value.Type == "new_expression" {
		if name := typeNameNode(value.ChildByField("constructor")); name != nil {
			return name.Text()
		}
	}
	if t := decl.ChildByField("return_type"); t != nil {
		return simpleTypeName(t.Text())
	}
	return ""
}

func jsImportOf(decl *Node) (importSpec, bool) {
	stmt := decl.Ancestor("import_statement")
	if stmt == nil {
		return importSpec{}, false
	}
	source := stmt.ChildByField("source")
	if source == nil {
		return importSpec{}, false
	}
	spec := importSpec{Module: strings.Trim(source.Text(), "\"'`")}
	switch decl.Type {
	case "import_specifier":
		if name := decl.ChildByField("name"); name != nil {
			spec.Name = name.Text()
		}
	case "identifier":
		spec.Name = "default"
	}
	return spec, true
}
