package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenav/internal/config"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

var javaShapes = map[string]string{
	"src/com/example/Shape.java": `package com.example;

/**
 * Base of all shapes.
 *
 * @since 1.2
 * @see Circle
 */
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
	"src/test/java/com/example/CircleTest.java": `package com.example;

public class CircleTest {
    public void testArea() {
        Circle c = new Circle(3.0);
        c.area();
    }
}
`,
}

var javaWidget = map[string]string{
	"src/demo/Widget.java": `package demo;

public class Widget {
    private int _bar;

    public void foo() {
    }

    enum Status { A, B }

    static final int MAX = 10;

    /** @deprecated use {@link #foo()} */
    @Deprecated
    void legacy() {
        foo();
    }

    int check(int x, boolean a, boolean b) {
        if (x > 0 && a || b) {
            return 1;
        }
        for (int i = 0; i < x; i++) {
            x = a ? x : -x;
        }
        switch (x) {
            case 1: return 2;
            case 2: return 3;
            default: return 0;
        }
    }
}
`,
}

var pythonAnimals = map[string]string{
	"pkg/__init__.py": "",
	"pkg/models.py": `MAX_LEGS = 4


class Animal:
    """An animal.

    Args:
        name: what to call it.
    """

    def __init__(self, name):
        self.name = name
        self._mood = "calm"

    def speak(self):
        return self.name

    async def fetch(self):
        return None


class Dog(Animal):
    def speak(self):
        return super().speak() + "!"


def breed(n):
    for i in range(n):
        yield Dog(str(i))
`,
	"app.py": `from pkg.models import Dog


def main():
    d = Dog("rex")
    return d.speak()
`,
}

var tsGreeter = map[string]string{
	"src/util.ts": `export class Greeter {
  private prefix: string = "hi ";

  greet(name: string): string {
    return this.prefix + name;
  }
}

// Builds the default Greeter.
export default function makeGreeter(): Greeter {
  return new Greeter();
}

export async function load(): Promise<Greeter> {
  return makeGreeter();
}

export function useGreeting(name: string): string {
  return makeGreeter().greet(name);
}
`,
	"src/main.ts": `import makeGreeter, { Greeter, load } from "./util";

const g: Greeter = makeGreeter();
g.greet("bob");
load();
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

type fixture struct {
	engine  *Engine
	project *sourcemodel.Project
	root    string
}

func newFixture(t *testing.T, files map[string]string, configure ...func(*config.Config)) *fixture {
	t.Helper()
	root := writeTree(t, files)
	cfg := config.Default(root)
	cfg.Index.MaxWorkers = 2
	for _, fn := range configure {
		fn(cfg)
	}
	langs := sourcemodel.NewLanguageSet()
	p := sourcemodel.NewProject(cfg, langs)
	require.NoError(t, p.Load(context.Background()))
	d := NewDispatcher(DefaultRegistry(), langs, cfg)
	return &fixture{engine: NewEngine(p, d, cfg), project: p, root: root}
}

// offsetOf returns the offset of the n-th occurrence of needle in rel,
// shifted by skip bytes.
func (fx *fixture) offsetOf(t *testing.T, rel, needle string, n, skip int) int {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(fx.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	offset := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(string(content[offset+1:]), needle)
		require.GreaterOrEqual(t, next, 0, "occurrence %d of %q not found in %s", n, needle, rel)
		offset += next + 1
	}
	return offset + skip
}

// decl returns the declaration named name with the given role in rel.
func (fx *fixture) decl(t *testing.T, rel, name string, role sourcemodel.DeclRole) *Node {
	t.Helper()
	f := fx.project.FileByRelPath(rel)
	require.NotNil(t, f, "file %s not loaded", rel)
	for _, d := range f.Decls {
		if d.Name() == name && d.Decl.Role == role {
			return d
		}
	}
	t.Fatalf("no declaration %q in %s", name, rel)
	return nil
}

func symbolNamed(syms []*types.SymbolInfo, name string) *types.SymbolInfo {
	for _, s := range syms {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func symbolNames(syms []*types.SymbolInfo) []string {
	out := make([]string, 0, len(syms))
	for _, s := range syms {
		out = append(out, s.Name)
	}
	return out
}

func usageTypes(refs []*types.ReferenceInfo) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.UsageType)
	}
	return out
}
