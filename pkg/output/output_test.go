package output

import (
	"github.com/smith-xyz/golang-component-map/pkg/analysis/cycles"
	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// chainGraph is A -> B -> C, with A carrying a comment and an exposed member.
func chainGraph() *models.Graph {
	g := models.NewGraph([]*models.Node{
		{ID: "game.A", DisplayName: "A", Tags: models.TagManager, Comment: "Core", Exposed: []string{"hp"}},
		{ID: "game.B", DisplayName: "B", Tags: models.TagGameplay},
		{ID: "game.C", DisplayName: "C"},
	})
	g.AddEdge("game.A", "game.B", []string{"hp"})
	g.AddEdge("game.B", "game.C", nil)
	cycles.NewDetector(nil).Detect(g)
	return g
}

// mutualGraph is A <-> B.
func mutualGraph() *models.Graph {
	g := models.NewGraph([]*models.Node{
		{ID: "game.A", DisplayName: "A"},
		{ID: "game.B", DisplayName: "B"},
	})
	g.AddEdge("game.A", "game.B", nil)
	g.AddEdge("game.B", "game.A", nil)
	cycles.NewDetector(nil).Detect(g)
	return g
}
