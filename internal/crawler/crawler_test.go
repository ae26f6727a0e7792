package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehKaiN/gdunsharp/internal/parser"
	"github.com/tehKaiN/gdunsharp/internal/report"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCrawler_ScanProject(t *testing.T) {
	// Build a small project tree
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Player.cs"), "class Player { }")
	writeFile(t, filepath.Join(root, "scripts", "Enemy.cs"), "class Enemy { }")
	writeFile(t, filepath.Join(root, "scripts", "notes.txt"), "not a source file")
	writeFile(t, filepath.Join(root, "bin", "Generated.cs"), "class Generated { }")
	writeFile(t, filepath.Join(root, ".godot", "Cache.cs"), "class Cache { }")
	writeFile(t, filepath.Join(root, "obj", "Debug.cs"), "class Debug { }")

	p := parser.NewParser()
	rep := report.New(nil)
	c := NewCrawler(p, rep)

	// Scan and collect streamed files
	var paths []string
	err := c.ScanProject(context.Background(), root, func(f *parser.File) {
		rel, relErr := filepath.Rel(root, f.Path)
		require.NoError(t, relErr)
		paths = append(paths, filepath.ToSlash(rel))
	})
	require.NoError(t, err)

	t.Run("Finds C# files only", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Player.cs", "scripts/Enemy.cs"}, paths)
	})

	t.Run("Skips build and editor directories", func(t *testing.T) {
		for _, p := range paths {
			assert.NotContains(t, p, "bin/")
			assert.NotContains(t, p, "obj/")
			assert.NotContains(t, p, ".godot/")
		}
	})

	t.Run("No diagnostics on a clean tree", func(t *testing.T) {
		assert.Zero(t, rep.WarningCount())
	})
}

func TestCrawler_ParsedTreesAreUsable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Fire.cs"), "namespace Fx { class Fire { int heat; } }")

	p := parser.NewParser()
	c := NewCrawler(p, report.New(nil))

	var files []*parser.File
	err := c.ScanProject(context.Background(), root, func(f *parser.File) {
		files = append(files, f)
	})
	require.NoError(t, err)
	require.Len(t, files, 1)

	// The streamed file carries a live tree rooted at compilation_unit
	rootNode := files[0].Root()
	require.NotNil(t, rootNode)
	assert.Equal(t, "compilation_unit", rootNode.Type())
	assert.Greater(t, int(rootNode.NamedChildCount()), 0)
}

func TestCrawler_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.cs"), "class A { }")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCrawler(parser.NewParser(), report.New(nil))
	err := c.ScanProject(ctx, root, func(*parser.File) {
		t.Fatal("callback should not fire after cancellation")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
