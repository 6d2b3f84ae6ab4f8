package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

var cliProject = map[string]string{
	"src/shop/Cart.java": `package shop;

public class Cart {
    private int items;

    public void add() {
        items++;
    }
}
`,
	"src/shop/Checkout.java": `package shop;

public class Checkout {
    public void run() {
        Cart c = new Cart();
        c.add();
    }
}
`,
	"web/greet.ts": `export function greet(name: string): string {
  return "hi " + name;
}

greet("a");
`,
}

func setupTestProject(t *testing.T) string {
	t.Helper()
	// Keep a developer's ~/.codenav.kdl out of the run
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	for rel, content := range cliProject {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// run executes the CLI in-process and decodes its JSON output.
func run(t *testing.T, root string, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"codenav", "--root", root}, args...)
	if err := app.RunContext(context.Background(), argv); err != nil {
		return nil, err
	}
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded), out.String())
	return decoded, nil
}

func TestSymbolsCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := run(t, root, "symbols", "src/shop/Cart.java")
	require.NoError(t, err)
	assert.EqualValues(t, 1, out["count"])
	cart := out["symbols"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Cart", cart["name"])
	children := cart["children"].([]interface{})
	require.Len(t, children, 1, "private members are opt-in")
	assert.Equal(t, "add", children[0].(map[string]interface{})["name"])

	out, err = run(t, root, "symbols", "--private", "src/shop/Cart.java")
	require.NoError(t, err)
	cart = out["symbols"].([]interface{})[0].(map[string]interface{})
	assert.Len(t, cart["children"], 2)

	out, err = run(t, root, "symbols", "--flat", "--private", "--kinds", "field,method", "src/shop/Cart.java")
	require.NoError(t, err)
	assert.EqualValues(t, 2, out["count"])
	for _, s := range out["symbols"].([]interface{}) {
		assert.Nil(t, s.(map[string]interface{})["children"])
	}
}

func TestSymbolsCommandAbsolutePath(t *testing.T) {
	root := setupTestProject(t)

	out, err := run(t, root, "symbols", filepath.Join(root, "web", "greet.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("web", "greet.ts"), out["file"])
	assert.EqualValues(t, 1, out["count"])
}

func TestSymbolsCommandUnsupportedLanguage(t *testing.T) {
	root := setupTestProject(t)

	_, err := run(t, root, "symbols", "src/Widget.kt")
	require.Error(t, err)
	assert.True(t, cnerrors.IsHostUnavailable(err))
}

func TestDefinitionCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := run(t, root, "def", "Cart.add")
	require.NoError(t, err)
	defs := out["definitions"].([]interface{})
	require.NotEmpty(t, defs)
	assert.Equal(t, "add", defs[0].(map[string]interface{})["name"])

	// Line 5 is "        Cart c = new Cart();"; column 22 is the constructed type.
	out, err = run(t, root, "def", "src/shop/Checkout.java:5:22")
	require.NoError(t, err)
	defs = out["definitions"].([]interface{})
	require.NotEmpty(t, defs)
	assert.Equal(t, "Cart", defs[0].(map[string]interface{})["name"])

	_, err = run(t, root, "def", "src/shop/Checkout.java:40:1")
	assert.Error(t, err)
}

func TestReferencesCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := run(t, root, "refs", "greet")
	require.NoError(t, err)
	refs := out["references"].([]interface{})
	require.Len(t, refs, 1)
	assert.Equal(t, "function_call", refs[0].(map[string]interface{})["usageType"])

	out, err = run(t, root, "refs", "--grouped", "Cart")
	require.NoError(t, err)
	assert.Contains(t, out, "summary")
	assert.Contains(t, out, "usagesByType")
	assert.Equal(t, "Cart", out["target"].(map[string]interface{})["name"])
}

func TestHoverCommand(t *testing.T) {
	root := setupTestProject(t)

	// Line 6 of Cart.java is "    public void add() {"; column 17 is the name.
	out, err := run(t, root, "hover", "src/shop/Cart.java:6:17")
	require.NoError(t, err)
	hover := out["hover"].(map[string]interface{})
	assert.Equal(t, "add", hover["elementName"])
	assert.EqualValues(t, 1, hover["calledByCount"])

	_, err = run(t, root, "hover", "Cart")
	assert.Error(t, err)
}

func TestLanguagesCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := run(t, root, "languages")
	require.NoError(t, err)
	byName := map[string]map[string]interface{}{}
	for _, l := range out["languages"].([]interface{}) {
		m := l.(map[string]interface{})
		byName[m["language"].(string)] = m
	}
	assert.Equal(t, true, byName["java"]["available"])
	assert.Equal(t, false, byName["kotlin"]["available"])
}

func TestUsageErrors(t *testing.T) {
	root := setupTestProject(t)

	for _, args := range [][]string{{"symbols"}, {"def"}, {"refs", "a", "b"}, {"hover"}} {
		_, err := run(t, root, args...)
		assert.Error(t, err, args)
	}
}
