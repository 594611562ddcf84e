package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

func TestMermaidExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MermaidExporter{}).Export(&buf, chainGraph(), Options{}))

	assert.Equal(t, "flowchart LR\n"+
		"  n0[\"A [Manager]\"]\n"+
		"  n1[\"B [Gameplay]\"]\n"+
		"  n2[\"C\"]\n"+
		"  n0 -->|\"hp\"| n1\n"+
		"  n1 --> n2\n", buf.String())
}

func TestMermaidExporterCyclicEdges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MermaidExporter{}).Export(&buf, mutualGraph(), Options{}))

	assert.Contains(t, buf.String(), "  linkStyle 0,1 stroke:#E74C3C,stroke-width:2px;\n")
}

func TestMermaidExporterFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MermaidExporter{}).Export(&buf, chainGraph(), Options{Filter: models.TagGameplay}))

	assert.Equal(t, "flowchart LR\n  n1[\"B [Gameplay]\"]\n", buf.String())
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, "say #quot;hi#quot;", escapeLabel(`say "hi"`))
}
