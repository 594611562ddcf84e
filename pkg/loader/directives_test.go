package loader

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

func commentGroup(lines ...string) *ast.CommentGroup {
	group := &ast.CommentGroup{}
	for _, line := range lines {
		group.List = append(group.List, &ast.Comment{Text: line})
	}
	return group
}

func TestParseDirectives(t *testing.T) {
	group := commentGroup(
		"// EntityManager tracks mobs.",
		"//",
		`//compmap:node "Entity Manager" Manager|Gameplay`,
		"//compmap:comment Keeps track of",
		"//compmap:comment every mob",
		"//compmap:depends stats.Manager pv, pm,sp",
		"//compmap:depends World",
		"//other:node ignored",
	)

	dirs, errs := parseDirectives("compmap", group)

	assert.Empty(t, errs)
	require.NotNil(t, dirs.Marker)
	assert.Equal(t, "Entity Manager", dirs.Marker.DisplayName)
	assert.Equal(t, models.TagManager|models.TagGameplay, dirs.Marker.Tags)
	assert.Equal(t, "Keeps track of every mob", dirs.Comment())
	require.Len(t, dirs.Depends, 2)
	assert.Equal(t, rawDependency{Ref: "stats.Manager", Uses: []string{"pv", "pm", "sp"}}, dirs.Depends[0])
	assert.Equal(t, "World", dirs.Depends[1].Ref)
	assert.Empty(t, dirs.Depends[1].Uses)
}

func TestParseDirectivesReportsMalformed(t *testing.T) {
	group := commentGroup(
		"//compmap:node Physics",
		"//compmap:depends",
		"//compmap:explode now",
		"//compmap:comment still applied",
	)

	dirs, errs := parseDirectives("compmap", nil, group)

	assert.Len(t, errs, 3)
	assert.Nil(t, dirs.Marker)
	assert.Equal(t, "still applied", dirs.Comment())
}

func TestParseNodeArgs(t *testing.T) {
	tests := []struct {
		args     string
		name     string
		tags     models.Tag
		hasError bool
	}{
		{"", "", models.TagNone, false},
		{"UI", "", models.TagUI, false},
		{`"HUD"`, "HUD", models.TagNone, false},
		{`"Quoted \"Name\"" Audio|Network`, `Quoted "Name"`, models.TagAudio | models.TagNetwork, false},
		{`"unterminated`, "", models.TagNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			marker, err := parseNodeArgs(tt.args)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, marker.DisplayName)
			assert.Equal(t, tt.tags, marker.Tags)
		})
	}
}

func TestResolveReference(t *testing.T) {
	imports := map[string]string{
		"stats": "example.com/game/stats",
		"gfx":   "example.com/game/render/graphics",
	}

	tests := []struct {
		ref      string
		expected models.TypeID
		ok       bool
	}{
		{"World", "example.com/game/entity.World", true},
		{"stats.Manager", "example.com/game/stats.Manager", true},
		{"gfx.Renderer", "example.com/game/render/graphics.Renderer", true},
		{"example.com/game/audio.Mixer", "example.com/game/audio.Mixer", true},
		{"unknown.Type", "", false},
		{"stats.", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := resolveReference(tt.ref, "example.com/game/entity", imports)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseExposedTag(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		alias   string
		exposed bool
	}{
		{"plain", "`compmap:\"exposed\"`", "", true},
		{"alias", "`json:\"hp\" compmap:\"exposed,alias=health\"`", "health", true},
		{"alias without exposed", "`compmap:\"alias=health\"`", "health", false},
		{"other prefix", "`json:\"exposed\"`", "", false},
		{"no tag", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alias, exposed := parseExposedTag("compmap", tt.raw)
			assert.Equal(t, tt.exposed, exposed)
			assert.Equal(t, tt.alias, alias)
		})
	}
}
