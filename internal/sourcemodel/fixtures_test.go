package sourcemodel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenav/internal/config"
)

var javaFixture = map[string]string{
	"src/com/example/Shape.java": `package com.example;

/** Shape base. */
public abstract class Shape {
    protected String name;

    public abstract double area();

    public String describe() {
        return name + area();
    }
}
`,
	"src/com/example/Circle.java": `package com.example;

public class Circle extends Shape {
    private double radius;

    public Circle(double radius) {
        this.radius = radius;
    }

    @Override
    public double area() {
        return Math.PI * radius * radius;
    }
}
`,
	"src/com/example/app/Main.java": `package com.example.app;

import com.example.Circle;
import com.example.Shape;

public class Main {
    public static void main(String[] args) {
        Shape s = new Circle(2.0);
        System.out.println(s.describe());
        Circle c = new Circle(1.0);
        double a = c.area();
    }
}
`,
}

var pythonFixture = map[string]string{
	"pkg/__init__.py": "",
	"pkg/models.py": `class Animal:
    """An animal."""

    def __init__(self, name):
        self.name = name

    def speak(self):
        return self.name


class Dog(Animal):
    def speak(self):
        return super().speak() + "!"
`,
	"app.py": `from pkg.models import Dog


def main():
    d = Dog("rex")
    return d.speak()
`,
}

var typescriptFixture = map[string]string{
	"src/util.ts": `export class Greeter {
  prefix: string = "hi ";

  greet(name: string): string {
    return this.prefix + name;
  }
}

// Builds the default greeter.
export default function makeGreeter(): Greeter {
  return new Greeter();
}
`,
	"src/main.ts": `import makeGreeter, { Greeter } from "./util";

const g: Greeter = makeGreeter();
g.greet("bob");
`,
}

// writeTree writes files under a fresh temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func loadProject(t *testing.T, files map[string]string, configure ...func(*config.Config)) *Project {
	t.Helper()
	root := writeTree(t, files)
	cfg := config.Default(root)
	cfg.Index.MaxWorkers = 2
	for _, fn := range configure {
		fn(cfg)
	}
	p := NewProject(cfg, NewLanguageSet())
	require.NoError(t, p.Load(context.Background()))
	return p
}

func mustFile(t *testing.T, p *Project, rel string) *File {
	t.Helper()
	f := p.FileByRelPath(rel)
	require.NotNil(t, f, "file %s not loaded", rel)
	return f
}

// nodeAt returns the deepest node at the start of the n-th occurrence of
// needle, shifted by skip bytes.
func nodeAt(t *testing.T, f *File, needle string, n, skip int) *Node {
	t.Helper()
	content := string(f.Content)
	offset := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(content[offset+1:], needle)
		require.GreaterOrEqual(t, next, 0, "occurrence %d of %q not found", n, needle)
		offset += next + 1
	}
	node := f.ElementAt(offset + skip)
	require.NotNil(t, node)
	return node
}

func declNamed(t *testing.T, f *File, name string, role DeclRole) *Node {
	t.Helper()
	for _, d := range f.Decls {
		if d.Name() == name && d.Decl.Role == role {
			return d
		}
	}
	t.Fatalf("no %s declaration %q in %s", role, name, f.RelPath)
	return nil
}
