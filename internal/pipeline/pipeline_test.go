package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehKaiN/gdunsharp/internal/config"
	"github.com/tehKaiN/gdunsharp/internal/resolver"
)

func writeSource(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testConfig(root, out string) *config.Config {
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Output.Dir = out
	return cfg
}

func TestPipeline_EndToEnd(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")

	writeSource(t, root, "Player.cs", `
using Game.Items;

namespace Game.Actors
{
	public class Player : Node2D
	{
		private int health;
		public string name;
		public Weapon weapon;
		public int[] scores;

		public void Attack(Weapon target, int power = 5) { }
	}
}`)
	writeSource(t, root, "Weapon.cs", `
namespace Game.Items
{
	public enum Rarity : byte
	{
		Common,
		Epic = 10,
	}

	public class Weapon
	{
		public Rarity rarity;
		public float damage;
	}
}`)

	stats, err := New(testConfig(root, out), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 3, stats.Namespaces)
	assert.Equal(t, 3, stats.Types)
	assert.Equal(t, 6, stats.Fields)
	assert.Equal(t, 7, stats.Headers)
	assert.Equal(t, 1, stats.Diagnostics) // the unresolved Node2D base

	player, err := os.ReadFile(filepath.Join(out, "game", "actors", "player.h"))
	require.NoError(t, err)
	assert.Equal(t, `#pragma once

#include "namespace.h"
#include "game/namespace.h"
#include "game/actors/namespace.h"
#include "game/items/namespace.h"

namespace Game::Actors {
class Player : public Node2D {
public:
	int health;
	String name;
	Weapon weapon;
	List<int> scores;

	void Attack(Weapon target, int power = 5);
};
} // namespace Game::Actors
`, string(player))

	rarity, err := os.ReadFile(filepath.Join(out, "game", "items", "rarity.h"))
	require.NoError(t, err)
	assert.Equal(t, `#pragma once

namespace Game::Items {
enum class Rarity : uint8_t {
	Common,
	Epic = 10,
};
} // namespace Game::Items
`, string(rarity))

	manifest, err := os.ReadFile(filepath.Join(out, "game", "items", "namespace.h"))
	require.NoError(t, err)
	assert.Equal(t, `#pragma once

namespace Game::Items {
enum class Rarity : uint8_t;
class Weapon;
} // namespace Game::Items

#include "game/items/rarity.h"
#include "game/items/weapon.h"
`, string(manifest))

	// The intermediate namespace owns no types but still gets its manifest
	empty, err := os.ReadFile(filepath.Join(out, "game", "namespace.h"))
	require.NoError(t, err)
	assert.Equal(t, "#pragma once\n", string(empty))
}

func TestPipeline_RerunIsStable(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")
	writeSource(t, root, "Fire.cs", `
namespace Fx
{
	public class GdFire
	{
		public float heat;
	}
}`)

	snapshot := func() map[string]string {
		files := make(map[string]string)
		err := filepath.WalkDir(out, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return readErr
			}
			rel, relErr := filepath.Rel(out, path)
			if relErr != nil {
				return relErr
			}
			files[filepath.ToSlash(rel)] = string(data)
			return nil
		})
		require.NoError(t, err)
		return files
	}

	cfg := testConfig(root, out)
	_, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	first := snapshot()

	// The file stem applies the naming transform
	assert.Contains(t, first, "fx/gd_fire.h")

	_, err = New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, snapshot())
}

func TestPipeline_FatalErrorLeavesNoOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")
	writeSource(t, root, "Grid.cs", `
namespace Game
{
	public class Grid
	{
		public int[,] cells;
	}
}`)

	_, err := New(testConfig(root, out), nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrUnsupportedShape)

	// Resolution failed before emission started, so nothing was written
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_DiagnosticsDoNotFailTheRun(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")
	writeSource(t, root, "App.cs", `
using Godot;

namespace App
{
	public class Main
	{
		public Node2D scene;
		public Sprite2D sprite;
	}
}`)

	stats, err := New(testConfig(root, out), nil).Run(context.Background())
	require.NoError(t, err)

	// One skipped import and two unknown engine types
	assert.Equal(t, 3, stats.Diagnostics)
	assert.Equal(t, 1, stats.Types)

	main, err := os.ReadFile(filepath.Join(out, "app", "main.h"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "\tNode2D scene;\n")
	assert.Contains(t, string(main), "\tSprite2D sprite;\n")
}
