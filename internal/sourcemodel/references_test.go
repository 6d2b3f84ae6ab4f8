package sourcemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refLines(refs []*Node) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.File.RelPath+":"+r.File.LineText(r.File.LineNumberOf(r.Start)))
	}
	return out
}

func TestFindAllReferencesJava(t *testing.T) {
	p := loadProject(t, javaFixture)
	release := p.ReadLock()
	defer release()

	shapeFile := mustFile(t, p, "src/com/example/Shape.java")
	circleFile := mustFile(t, p, "src/com/example/Circle.java")
	shape := declNamed(t, shapeFile, "Shape", RoleType)

	refs := p.FindAllReferences(shape, ProjectScope())
	assert.Equal(t, []string{
		"src/com/example/Circle.java:public class Circle extends Shape {",
		"src/com/example/app/Main.java:import com.example.Shape;",
		"src/com/example/app/Main.java:        Shape s = new Circle(2.0);",
	}, refLines(refs))

	radius := declNamed(t, circleFile, "radius", RoleVariable)
	fileScope := Scope{Tier: TierFile, File: circleFile}
	assert.Len(t, p.FindAllReferences(radius, fileScope), 3)

	fileScope.Limit = 2
	assert.Len(t, p.FindAllReferences(radius, fileScope), 2)

	assert.Nil(t, p.FindAllReferences(shapeFile.Root, ProjectScope()))
}

func TestFindAllReferencesPython(t *testing.T) {
	p := loadProject(t, pythonFixture)
	release := p.ReadLock()
	defer release()

	models := mustFile(t, p, "pkg/models.py")
	animal := declNamed(t, models, "Animal", RoleType)
	assert.Equal(t, []string{"pkg/models.py:class Dog(Animal):"}, refLines(p.FindAllReferences(animal, ProjectScope())))

	speak := declNamed(t, models, "speak", RoleCallable)
	require.Same(t, animal, speak.Decl.Scope)
	assert.Equal(t, []string{`pkg/models.py:        return super().speak() + "!"`},
		refLines(p.FindAllReferences(speak, ProjectScope())))
}

func TestFindAllReferencesTypeScript(t *testing.T) {
	p := loadProject(t, typescriptFixture)
	release := p.ReadLock()
	defer release()

	util := mustFile(t, p, "src/util.ts")
	greeter := declNamed(t, util, "Greeter", RoleType)
	assert.Equal(t, []string{
		`src/main.ts:import makeGreeter, { Greeter } from "./util";`,
		"src/main.ts:const g: Greeter = makeGreeter();",
		"src/util.ts:export default function makeGreeter(): Greeter {",
		"src/util.ts:  return new Greeter();",
	}, refLines(p.FindAllReferences(greeter, ProjectScope())))
}

func TestFindDeclarations(t *testing.T) {
	p := loadProject(t, javaFixture)
	release := p.ReadLock()
	defer release()

	area := p.FindDeclarations("area", ProjectScope())
	require.Len(t, area, 2)
	assert.Equal(t, "src/com/example/Circle.java", area[0].File.RelPath)
	assert.Equal(t, "src/com/example/Shape.java", area[1].File.RelPath)

	assert.Len(t, p.FindDeclarations("area", Scope{Tier: TierProject, Limit: 1}), 1)
	assert.Empty(t, p.FindDeclarations("args", ProjectScope()), "parameters are local")
	assert.Empty(t, p.FindDeclarations("Circle", Scope{Tier: TierFile, File: mustFile(t, p, "src/com/example/app/Main.java")}),
		"imports are not declarations")
}
