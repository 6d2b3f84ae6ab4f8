package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codenav/internal/types"
)

func TestEngineIsIdempotent(t *testing.T) {
	fx := newFixture(t, javaShapes)
	main := "src/com/example/app/Main.java"
	offset := fx.offsetOf(t, main, "new Circle(2.0)", 0, len("new "))

	defs1, err := fx.engine.FindDefinitionAt(main, offset)
	require.NoError(t, err)
	defs2, err := fx.engine.FindDefinitionAt(main, offset)
	require.NoError(t, err)
	assert.Equal(t, defs1, defs2)

	refs1 := fx.engine.FindReferencesByName("Circle", types.ReferenceOptions{IncludeDeclaration: true})
	refs2 := fx.engine.FindReferencesByName("Circle", types.ReferenceOptions{IncludeDeclaration: true})
	assert.Equal(t, refs1, refs2)

	h1, err := fx.engine.HoverAt(main, offset)
	require.NoError(t, err)
	h2, err := fx.engine.HoverAt(main, offset)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestEngineConcurrentReadsAndWrites(t *testing.T) {
	fx := newFixture(t, javaShapes)
	main := "src/com/example/app/Main.java"
	offset := fx.offsetOf(t, main, "new Circle(2.0)", 0, len("new "))

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 5; j++ {
				defs, err := fx.engine.FindDefinitionAt(main, offset)
				if err != nil {
					return err
				}
				if len(defs) != 1 || defs[0].Name != "Circle" {
					return fmt.Errorf("unexpected definitions %v", defs)
				}
				fx.engine.FindReferencesByName("Shape", types.ReferenceOptions{})
				if _, err := fx.engine.GetSymbols(main, true, types.DefaultExtractOptions()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for j := 0; j < 5; j++ {
			src := fmt.Sprintf("package com.example;\n\npublic class Extra%d extends Shape {\n    public double area() { return %d; }\n}\n", j, j)
			if _, err := fx.project.AddSource(fmt.Sprintf("src/com/example/Extra%d.java", j), []byte(src)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	defs := fx.engine.FindDefinitionByName("Extra4")
	require.NotEmpty(t, defs)
	assert.Equal(t, "src/com/example/Extra4.java", defs[0].FilePath)
}

func TestEngineRecoversFromPanics(t *testing.T) {
	fx := newFixture(t, javaShapes)

	out, err := guarded(fx.engine, "test", []string{}, func() ([]string, error) {
		panic("boom")
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{}, out)

	// The read lock was released: a writer can proceed.
	_, err = fx.project.AddSource("src/com/example/Late.java", []byte("package com.example;\nclass Late {}\n"))
	assert.NoError(t, err)
}

func TestPositionToOffset(t *testing.T) {
	fx := newFixture(t, javaShapes)
	path := "src/com/example/Circle.java"

	off, err := fx.engine.PositionToOffset(path, 3, 14)
	require.NoError(t, err)
	assert.Equal(t, fx.offsetOf(t, path, "Circle extends", 0, 0), off)

	off, err = fx.engine.PositionToOffset(path, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	for _, pos := range [][2]int{{0, 1}, {1, 0}, {999, 1}} {
		off, err = fx.engine.PositionToOffset(path, pos[0], pos[1])
		require.NoError(t, err)
		assert.Equal(t, -1, off, "position %v", pos)
	}

	_, err = fx.engine.PositionToOffset("src/Widget.kt", 1, 1)
	assert.Error(t, err)
}

func TestEngineLanguages(t *testing.T) {
	fx := newFixture(t, javaShapes)

	var available []string
	for _, st := range fx.engine.Languages() {
		if st.Available {
			available = append(available, st.Language)
		}
	}
	assert.ElementsMatch(t, []string{"java", "python", "javascript", "typescript", "tsx"}, available)
}
