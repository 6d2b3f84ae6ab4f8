package sourcemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJava(t *testing.T) {
	p := loadProject(t, javaFixture)
	release := p.ReadLock()
	defer release()

	shapeFile := mustFile(t, p, "src/com/example/Shape.java")
	circleFile := mustFile(t, p, "src/com/example/Circle.java")
	mainFile := mustFile(t, p, "src/com/example/app/Main.java")

	shape := declNamed(t, shapeFile, "Shape", RoleType)
	circle := declNamed(t, circleFile, "Circle", RoleType)
	radiusField := declNamed(t, circleFile, "radius", RoleVariable)
	radiusParam := declNamed(t, circleFile, "radius", RoleParameter)

	assert.Equal(t, "com.example", circleFile.Package)
	assert.Equal(t, "com.example.app", mainFile.Package)

	t.Run("declaration name resolves to itself", func(t *testing.T) {
		assert.Same(t, circle, p.ResolveReference(circle.Decl.Name))
	})

	t.Run("this field and parameter", func(t *testing.T) {
		lhs := nodeAt(t, circleFile, "this.radius", 0, len("this."))
		assert.Same(t, radiusField, p.ResolveReference(lhs))
		rhs := nodeAt(t, circleFile, "= radius;", 0, 2)
		assert.Same(t, radiusParam, p.ResolveReference(rhs))
	})

	t.Run("bare field in method", func(t *testing.T) {
		use := nodeAt(t, circleFile, "radius * radius", 0, 0)
		assert.Same(t, radiusField, p.ResolveReference(use))
		name := nodeAt(t, shapeFile, "name + area", 0, 0)
		assert.Same(t, declNamed(t, shapeFile, "name", RoleVariable), p.ResolveReference(name))
	})

	t.Run("unqualified call", func(t *testing.T) {
		call := nodeAt(t, shapeFile, "area()", 1, 0)
		assert.Same(t, declNamed(t, shapeFile, "area", RoleCallable), p.ResolveReference(call))
	})

	t.Run("superclass in same package", func(t *testing.T) {
		ext := nodeAt(t, circleFile, "extends Shape", 0, len("extends "))
		assert.Same(t, shape, p.ResolveReference(ext))
		assert.Equal(t, []*Node{shape}, p.Supertypes(circle))
		assert.Equal(t, []string{"Shape"}, p.SupertypeNames(circle))
		assert.Equal(t, []*Node{circle}, p.Inheritors(shape, 0))
	})

	t.Run("import and typed receiver", func(t *testing.T) {
		typ := nodeAt(t, mainFile, "Shape s", 0, 0)
		assert.Same(t, shape, p.ResolveReference(typ))

		describe := nodeAt(t, mainFile, "s.describe", 0, 2)
		assert.Same(t, declNamed(t, shapeFile, "describe", RoleCallable), p.ResolveReference(describe))

		area := nodeAt(t, mainFile, "c.area", 0, 2)
		assert.Same(t, declNamed(t, circleFile, "area", RoleCallable), p.ResolveReference(area))
	})

	t.Run("member lookup walks supertypes", func(t *testing.T) {
		assert.Same(t, declNamed(t, shapeFile, "describe", RoleCallable), p.FindMember(circle, "describe"))
		assert.Nil(t, p.FindMember(circle, "missing"))
	})

	t.Run("declared type", func(t *testing.T) {
		s := declNamed(t, mainFile, "s", RoleVariable)
		assert.Equal(t, "Shape", p.DeclaredTypeName(s))
		assert.Same(t, shape, p.DeclaredType(s))
	})

	t.Run("follow import", func(t *testing.T) {
		imp := declNamed(t, mainFile, "Circle", RoleImport)
		assert.Same(t, circle, p.FollowImport(imp))
	})

	t.Run("unresolvable name", func(t *testing.T) {
		math := nodeAt(t, circleFile, "Math.PI", 0, 0)
		assert.Nil(t, p.ResolveReference(math))
	})
}

func TestResolvePython(t *testing.T) {
	p := loadProject(t, pythonFixture)
	tool, err := p.AddSource("tool.py", []byte("import pkg.models\n\npkg.models\n"))
	require.NoError(t, err)
	release := p.ReadLock()
	defer release()

	models := mustFile(t, p, "pkg/models.py")
	app := mustFile(t, p, "app.py")

	animal := declNamed(t, models, "Animal", RoleType)
	dog := declNamed(t, models, "Dog", RoleType)

	t.Run("instance attribute via self", func(t *testing.T) {
		use := nodeAt(t, models, "return self.name", 0, len("return self."))
		field := p.ResolveReference(use)
		require.NotNil(t, field)
		assert.Same(t, animal, field.Decl.Scope)
		assert.Equal(t, "name", field.Name())
	})

	t.Run("parameter", func(t *testing.T) {
		use := nodeAt(t, models, "= name", 0, 2)
		d := p.ResolveReference(use)
		require.NotNil(t, d)
		assert.Equal(t, RoleParameter, d.Decl.Role)
	})

	t.Run("imported class", func(t *testing.T) {
		use := nodeAt(t, app, `Dog("rex")`, 0, 0)
		assert.Same(t, dog, p.ResolveReference(use))
		imp := declNamed(t, app, "Dog", RoleImport)
		assert.Same(t, dog, p.FollowImport(imp))
	})

	t.Run("inferred receiver type", func(t *testing.T) {
		use := nodeAt(t, app, "d.speak", 0, 2)
		assert.Same(t, declNamed(t, models, "speak", RoleCallable).Decl.Scope, animal)
		got := p.ResolveReference(use)
		require.NotNil(t, got)
		assert.Same(t, dog, got.Decl.Scope)
	})

	t.Run("super call", func(t *testing.T) {
		use := nodeAt(t, models, "super().speak", 0, len("super()."))
		got := p.ResolveReference(use)
		require.NotNil(t, got)
		assert.Same(t, animal, got.Decl.Scope)
	})

	t.Run("hierarchy", func(t *testing.T) {
		assert.Equal(t, []*Node{animal}, p.Supertypes(dog))
		assert.Equal(t, []*Node{dog}, p.Inheritors(animal, 0))
	})

	t.Run("module import", func(t *testing.T) {
		imp := declNamed(t, tool, "pkg", RoleImport)
		target := p.FollowImport(imp)
		require.NotNil(t, target)
		assert.Equal(t, KindFile, target.Kind)
		assert.Equal(t, "pkg/__init__.py", target.File.RelPath)
	})
}

func TestResolveTypeScript(t *testing.T) {
	p := loadProject(t, typescriptFixture)
	ext, err := p.AddSource("src/ext.ts", []byte("import { useState } from \"react\";\nuseState();\n"))
	require.NoError(t, err)
	release := p.ReadLock()
	defer release()

	util := mustFile(t, p, "src/util.ts")
	main := mustFile(t, p, "src/main.ts")
	greeter := declNamed(t, util, "Greeter", RoleType)

	t.Run("named import", func(t *testing.T) {
		use := nodeAt(t, main, "Greeter =", 0, 0)
		assert.Same(t, greeter, p.ResolveReference(use))
	})

	t.Run("default import", func(t *testing.T) {
		use := nodeAt(t, main, "makeGreeter()", 0, 0)
		assert.Same(t, declNamed(t, util, "makeGreeter", RoleCallable), p.ResolveReference(use))
	})

	t.Run("method through annotated variable", func(t *testing.T) {
		use := nodeAt(t, main, "g.greet", 0, 2)
		assert.Same(t, declNamed(t, util, "greet", RoleCallable), p.ResolveReference(use))
	})

	t.Run("this member", func(t *testing.T) {
		use := nodeAt(t, util, "this.prefix", 0, len("this."))
		assert.Same(t, declNamed(t, util, "prefix", RoleVariable), p.ResolveReference(use))
	})

	t.Run("bare package import is unresolved", func(t *testing.T) {
		imp := declNamed(t, ext, "useState", RoleImport)
		assert.Nil(t, p.FollowImport(imp))
		use := nodeAt(t, ext, "useState()", 0, 0)
		assert.Same(t, imp, p.ResolveReference(use))
	})
}
