package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format   string
		expected Exporter
		wantErr  bool
	}{
		{"", &MarkdownExporter{}, false},
		{"md", &MarkdownExporter{}, false},
		{"markdown", &MarkdownExporter{}, false},
		{"json", &JSONExporter{Indent: "  "}, false},
		{"yml", &YAMLExporter{}, false},
		{"mmd", &MermaidExporter{}, false},
		{"csv", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exporter)
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{Indent: "  "}).Export(&buf, mutualGraph(), Options{}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "compmap", decoded["tool"])
	assert.Equal(t, "None", decoded["tag_filter"])

	issues := decoded["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "mutual_dependency", issues[0].(map[string]any)["kind"])
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(&buf, chainGraph(), Options{}))

	var decoded struct {
		Summary Summary `yaml:"summary"`
		Nodes   []struct {
			ID   string `yaml:"id"`
			Tags string `yaml:"tags"`
		} `yaml:"nodes"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Summary.Nodes)
	require.Len(t, decoded.Nodes, 3)
	assert.Equal(t, "game.A", decoded.Nodes[0].ID)
	assert.Equal(t, "Manager", decoded.Nodes[0].Tags)
}
