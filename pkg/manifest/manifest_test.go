package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

const gameManifest = `
components:
  - id: game.StatsManager
    node: {name: Stats Manager, tags: [Manager, Gameplay]}
    comment: Stats that are used by any entities
    exposed: [{name: pv}, {name: hp, alias: health}]
    depends: [{target: game.EntityManager, uses: [mobs, " ", mobs]}]
    members:
      - {name: entities, kind: field, type: game.EntityManager}
      - {name: Attack, kind: method_param, owner: Hit, type: game.Boss}
  - id: game.EntityManager
    node: {tags: [Manager]}
  - id: game.IStats
    abstract: true
  - id: game.Boss
    implements: [game.IStats]
`

func TestParseAndSnapshot(t *testing.T) {
	file, err := Parse(strings.NewReader(gameManifest))
	require.NoError(t, err)

	snapshot, err := file.Snapshot()
	require.NoError(t, err)
	require.Len(t, snapshot.Descriptors, 4)

	stats := snapshot.Descriptors[0]
	assert.Equal(t, models.TypeID("game.StatsManager"), stats.ID)
	assert.Equal(t, "game", stats.Package)
	require.NotNil(t, stats.Marker)
	assert.Equal(t, "Stats Manager", stats.Marker.DisplayName)
	assert.Equal(t, models.TagManager|models.TagGameplay, stats.Marker.Tags)
	assert.Equal(t, "health", stats.Exposed[1].ReportedName())
	assert.Equal(t, []string{"mobs"}, stats.Depends[0].Uses)
	require.Len(t, stats.Members, 2)
	assert.Equal(t, component.MemberMethodParam, stats.Members[1].Kind)

	assert.Nil(t, snapshot.Descriptors[3].Marker)
	assert.True(t, snapshot.Descriptors[2].Abstract)
	assert.True(t, snapshot.Types.AssignableTo(component.Named("game.Boss"), "game.IStats"))
	assert.False(t, snapshot.Types.AssignableTo(component.Named("game.IStats"), "game.Boss"))
}

func TestSnapshotErrors(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"missing id", "components:\n  - comment: nameless\n"},
		{"unknown member kind", "components:\n  - id: game.A\n    members: [{name: x, kind: event, type: game.B}]\n"},
		{"member without type", "components:\n  - id: game.A\n    members: [{name: x, kind: field}]\n"},
		{"unknown tag", "components:\n  - id: game.A\n    node: {tags: [Physics]}\n"},
		{"dependency without target", "components:\n  - id: game.A\n    depends: [{uses: [x]}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse(strings.NewReader(tt.document))
			require.NoError(t, err)
			_, err = file.Snapshot()
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("components:\n  - id: game.A\n    colour: red\n"))
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestParseEmptyDocument(t *testing.T) {
	file, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Components)
}

func TestSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gameManifest), 0o644))

	source := NewSource(nil, path)
	snapshot, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Descriptors, 4)

	_, err = NewSource(nil, filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.Error(t, err)
}
