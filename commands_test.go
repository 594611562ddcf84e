package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/output"
)

const mutualManifest = `
components:
  - id: game.StatsManager
    node: {name: Stats Manager, tags: [Manager, Gameplay]}
    comment: Stats used by any entity
    members:
      - {name: world, kind: field, type: game.World}
  - id: game.World
    node: {tags: [Gameplay]}
    depends: [{target: game.StatsManager, uses: [pv, hp]}]
  - id: game.Hud
    node: {tags: [UI]}
    members:
      - {name: stats, kind: constructor_param, type: game.StatsManager}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCompmap(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	manifest := writeManifest(t, mutualManifest)

	out, err := runCompmap(t, "--manifest", manifest, "tree", "--color", "never")
	require.NoError(t, err)
	assert.Equal(t, "game.Hud  [UI]\n"+
		"  Uses: game.StatsManager\n"+
		"    game.StatsManager  [Manager|Gameplay]\n"+
		"      Stats Manager\n"+
		"      Stats used by any entity\n"+
		"      Uses: game.World\n"+
		"        game.World  [Gameplay]\n"+
		"          Uses: game.StatsManager (uses: pv, hp)\n"+
		"\n", out)
}

func TestTreeCommandReverseWithTag(t *testing.T) {
	manifest := writeManifest(t, mutualManifest)

	out, err := runCompmap(t, "--manifest", manifest, "tree", "--color", "never", "--reverse", "--tag", "UI")
	require.NoError(t, err)
	// Hud is no reverse root, so every UI node is shown
	assert.Equal(t, "game.Hud  [UI]\n\n", out)

	_, err = runCompmap(t, "--manifest", manifest, "tree", "--tag", "Physics")
	assert.ErrorContains(t, err, "invalid --tag")
}

func TestProblemsCommand(t *testing.T) {
	manifest := writeManifest(t, mutualManifest)

	out, err := runCompmap(t, "--manifest", manifest, "problems")
	require.NoError(t, err)
	assert.Equal(t, "Mutual dependency (Stats Manager ↔ World)\n  Stats Manager ↔ World\n", out)

	_, err = runCompmap(t, "--manifest", manifest, "problems", "--fail-on-issues")
	assert.ErrorIs(t, err, errIssuesFound)
}

func TestProblemsCommandClean(t *testing.T) {
	manifest := writeManifest(t, "components:\n  - id: game.A\n    node: {}\n")

	out, err := runCompmap(t, "--manifest", manifest, "problems", "--fail-on-issues")
	require.NoError(t, err)
	assert.Equal(t, output.NoIssuesMessage+"\n", out)
}

func TestExportCommand(t *testing.T) {
	manifest := writeManifest(t, mutualManifest)
	target := filepath.Join(t.TempDir(), "out", "map.json")

	out, err := runCompmap(t, "--manifest", manifest, "export", "--format", "json", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var report output.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, output.Summary{Nodes: 3, Edges: 3, Mutual: 1}, report.Summary)

	out, err = runCompmap(t, "--manifest", manifest, "export", "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart LR\n")
	assert.Contains(t, out, "linkStyle")

	_, err = runCompmap(t, "--manifest", manifest, "export", "--format", "csv")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestMissingManifest(t *testing.T) {
	_, err := runCompmap(t, "--manifest", filepath.Join(t.TempDir(), "missing.yaml"), "tree")
	assert.ErrorContains(t, err, "failed to read manifest")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCompmap(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "compmap ")

	out, err = runCompmap(t, "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, "Platform")
}

func TestResolveColor(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode     string
		expected string
	}{
		{output.ColorAlways, output.ColorAlways},
		{output.ColorNever, output.ColorNever},
		{output.ColorAuto, output.ColorNever},
		{"", output.ColorNever},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveColor(tt.mode, &buf))
		})
	}
}
