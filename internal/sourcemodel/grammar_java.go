package sourcemodel

import (
	"strings"
)

func javaGrammar() *grammar {
	typeDecl := byField("name", RoleType)
	return &grammar{
		identifiers: set("identifier", "type_identifier"),
		comments:    set("line_comment", "block_comment"),
		strings:     set("string_literal", "text_block", "character_literal"),
		decls: map[string]declRule{
			"class_declaration":                   typeDecl,
			"interface_declaration":               typeDecl,
			"enum_declaration":                    typeDecl,
			"record_declaration":                  typeDecl,
			"annotation_type_declaration":         typeDecl,
			"method_declaration":                  byField("name", RoleCallable),
			"constructor_declaration":             byField("name", RoleCallable),
			"compact_constructor_declaration":     byField("name", RoleCallable),
			"annotation_type_element_declaration": byField("name", RoleCallable),
			"variable_declarator":                 byField("name", RoleVariable),
			"enum_constant":                       byField("name", RoleVariable),
			"formal_parameter":                    byField("name", RoleParameter),
			"catch_formal_parameter":              byField("name", RoleParameter),
			"resource":                            byField("name", RoleVariable),
			"import_declaration":                  javaImportDecl,
			"identifier": when(func(n *Node) bool {
				return parentFieldIs("lambda_expression", "parameters")(n) ||
					parentIs("inferred_parameters")(n) ||
					parentFieldIs("enhanced_for_statement", "name")(n)
			}, selfDecl(RoleParameter)),
		},
		scopes:      set("lambda_expression"),
		rebinding:   set(),
		escapes:     noEscapes,
		wrappers:    set("field_declaration", "constant_declaration", "local_variable_declaration"),
		bareMembers: true,

		declareBeforeUse: true,

		receiverTypes: set("this"),
		receiverNames: set(),
		superTypes:    set("super"),

		memberOf:       javaMemberOf,
		instanceField:  func(*Node) *Node { return nil },
		supertypeNodes: javaSupertypes,
		declaredType:   javaDeclaredType,
		importOf:       javaImportOf,
		packageOf:      javaPackageOf,
		isSuperCall:    func(*Node) bool { return false },
		docString:      func(*Node) *Node { return nil },
	}
}

func javaImportDecl(n *Node) (*Node, DeclRole, bool) {
	if n.HasChild("asterisk") {
		return nil, 0, false
	}
	target := n.ChildOfType("scoped_identifier", "identifier")
	switch {
	case target == nil:
		return nil, 0, false
	case target.Type == "identifier":
		return target, RoleImport, true
	default:
		if name := target.ChildByField("name"); name != nil {
			return name, RoleImport, true
		}
	}
	return nil, 0, false
}

func javaMemberOf(id *Node) (*Node, bool) {
	p := id.Parent
	if p == nil {
		return nil, false
	}
	switch p.Type {
	case "field_access":
		if id.Field == "field" {
			return p.ChildByField("object"), true
		}
	case "method_invocation":
		if id.Field == "name" {
			if obj := p.ChildByField("object"); obj != nil {
				return obj, true
			}
		}
	case "method_reference":
		if prev := id.PrevSibling(); prev != nil && prev.Type == "::" {
			return p.Children[0], true
		}
	case "scoped_type_identifier":
		if id.Index > 0 {
			return p.Children[0], true
		}
	}
	return nil, false
}

func javaSupertypes(decl *Node) []*Node {
	var types []*Node
	collect := func(container *Node) {
		if container == nil {
			return
		}
		container.Walk(func(n *Node) bool {
			switch n.Type {
			case "type_identifier", "generic_type", "scoped_type_identifier":
				if name := typeNameNode(n); name != nil {
					types = append(types, name)
				}
				return false
			case "type_arguments":
				return false
			}
			return true
		})
	}
	collect(decl.ChildByField("superclass"))
	collect(decl.ChildByField("interfaces"))
	collect(decl.ChildOfType("extends_interfaces"))
	return types
}

func javaDeclaredType(decl *Node) string {
	var typ *Node
	switch decl.Type {
	case "variable_declarator":
		if decl.Parent != nil {
			typ = decl.Parent.ChildByField("type")
		}
		if typ != nil && typ.Text() == "var" {
			if value := decl.ChildByField("value"); value != nil && value.Type == "object_creation_expression" {
				typ = value.ChildByField("type")
			}
		}
	case "catch_formal_parameter":
		if ct := decl.ChildOfType("catch_type"); ct != nil && len(ct.NamedChildren()) > 0 {
			typ = ct.NamedChildren()[0]
		}
	case "enum_constant":
		if enum := decl.EnclosingDecl(RoleType); enum != nil {
			return enum.Name()
		}
	case "identifier":
		if decl.Parent != nil && decl.Parent.Type == "enhanced_for_statement" {
			typ = decl.Parent.ChildByField("type")
		}
	default:
		typ = decl.ChildByField("type")
	}
	if typ == nil {
		return ""
	}
	if name := typeNameNode(typ); name != nil {
		return name.Text()
	}
	return simpleTypeName(typ.Text())
}

func javaImportOf(decl *Node) (importSpec, bool) {
	if decl.Type != "import_declaration" {
		return importSpec{}, false
	}
	target := decl.ChildOfType("scoped_identifier", "identifier")
	if target == nil {
		return importSpec{}, false
	}
	full := target.Text()
	spec := importSpec{Static: decl.HasChild("static")}
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		spec.Module, spec.Name = full[:i], full[i+1:]
	} else {
		spec.Name = full
	}
	return spec, true
}

func javaPackageOf(root *Node) string {
	pkg := root.ChildOfType("package_declaration")
	if pkg == nil {
		return ""
	}
	if name := pkg.ChildOfType("scoped_identifier", "identifier"); name != nil {
		return name.Text()
	}
	return ""
}
