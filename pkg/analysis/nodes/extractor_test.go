package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

func marked(id models.TypeID, pkg string, tags models.Tag) *component.Descriptor {
	return &component.Descriptor{
		ID:      id,
		Name:    id.ShortName(),
		Package: pkg,
		Marker:  &component.Marker{Tags: tags},
	}
}

func TestExtractDefaultPolicy(t *testing.T) {
	abstract := marked("game.IStats", "game", models.TagNone)
	abstract.Abstract = true

	descriptors := []*component.Descriptor{
		marked("game.StatsManager", "game", models.TagManager|models.TagGameplay),
		nil,
		{ID: "game.Unmarked", Name: "Unmarked", Package: "game"},
		abstract,
		marked("game.HUD", "game", models.TagUI),
	}

	nodes := NewExtractor(nil, nil).Extract(descriptors)

	require.Len(t, nodes, 2)
	assert.Equal(t, models.TypeID("game.StatsManager"), nodes[0].ID)
	assert.Equal(t, "StatsManager", nodes[0].DisplayName)
	assert.Equal(t, models.TagManager|models.TagGameplay, nodes[0].Tags)
	assert.Equal(t, models.TypeID("game.HUD"), nodes[1].ID)
}

func TestExtractMarkerDetails(t *testing.T) {
	d := marked("game.EntityManager", "game", models.TagManager)
	d.Marker.DisplayName = "  Entities  "
	d.Comment = " Keeps track of mobs "
	d.Exposed = []component.ExposedMember{
		{Name: "Mobs"},
		{Name: "HP", Alias: "health"},
		{Name: "Health", Alias: " "},
		{Name: "Mobs"},
		{Name: "Other", Alias: "health"},
	}

	nodes := NewExtractor(nil, nil).Extract([]*component.Descriptor{d})

	require.Len(t, nodes, 1)
	assert.Equal(t, "Entities", nodes[0].DisplayName)
	assert.Equal(t, "Keeps track of mobs", nodes[0].Comment)
	assert.Equal(t, []string{"Mobs", "health", "Health"}, nodes[0].Exposed)
}

func TestExtractDuplicateFirstWins(t *testing.T) {
	first := marked("game.A", "game", models.TagUI)
	second := marked("game.A", "game", models.TagAudio)

	nodes := NewExtractor(nil, nil).Extract([]*component.Descriptor{first, second})

	require.Len(t, nodes, 1)
	assert.Equal(t, models.TagUI, nodes[0].Tags)
}

func TestExtractNoMarkers(t *testing.T) {
	descriptors := []*component.Descriptor{
		{ID: "game.A", Name: "A"},
		{ID: "game.B", Name: "B"},
	}
	assert.Empty(t, NewExtractor(nil, nil).Extract(descriptors))
}

func TestExtractWithPolicy(t *testing.T) {
	base, err := config.DefaultConfig()
	require.NoError(t, err)
	base.Nodes.RequireMarker = false
	base.Nodes.ExcludePackagePrefixes = []string{"example.com/game/generated"}
	cfg := config.NewContextAwareConfig(base, "example.com/game")

	iface := &component.Descriptor{ID: "example.com/game.Damageable", Name: "Damageable", Package: "example.com/game", Abstract: true}

	descriptors := []*component.Descriptor{
		{ID: "example.com/game.Plain", Name: "Plain", Package: "example.com/game"},
		iface,
		{ID: "example.com/game/generated.Mock", Name: "Mock", Package: "example.com/game/generated"},
		{ID: "github.com/other/lib.Client", Name: "Client", Package: "github.com/other/lib"},
	}

	nodes := NewExtractor(nil, cfg).Extract(descriptors)

	require.Len(t, nodes, 1)
	assert.Equal(t, "Plain", nodes[0].DisplayName)
	assert.Equal(t, models.TagNone, nodes[0].Tags)

	base.Nodes.ExcludeAbstract = false
	nodes = NewExtractor(nil, cfg).Extract(descriptors)
	assert.Len(t, nodes, 2)
}
