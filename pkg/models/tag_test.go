package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	tests := []struct {
		tag      Tag
		expected string
	}{
		{TagNone, "None"},
		{TagManager, "Manager"},
		{TagGameplay | TagManager, "Manager|Gameplay"},
		{TagUI | TagAudio | TagPersistence, "UI|Audio|Persistence"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tag.String())
		})
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input    string
		expected Tag
		wantErr  bool
	}{
		{"", TagNone, false},
		{"None", TagNone, false},
		{"manager", TagManager, false},
		{"Manager|Gameplay", TagManager | TagGameplay, false},
		{"ui, audio", TagUI | TagAudio, false},
		{"Network Persistence", TagNetwork | TagPersistence, false},
		{"Physics", TagNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTag(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTagMatches(t *testing.T) {
	tests := []struct {
		name     string
		tag      Tag
		filter   Tag
		expected bool
	}{
		{"none filter matches untagged", TagNone, TagNone, true},
		{"none filter matches tagged", TagUI, TagNone, true},
		{"intersection", TagManager | TagGameplay, TagGameplay, true},
		{"disjoint", TagUI, TagGameplay, false},
		{"untagged never matches a real filter", TagNone, TagGameplay, false},
		{"multi-flag filter", TagAudio, TagUI | TagAudio, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tag.Matches(tt.filter))
		})
	}
}

func TestTagJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Tags Tag `json:"tags"`
	}{TagUI | TagNetwork})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":"UI|Network"}`, string(data))

	var decoded struct {
		Tags Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags":"gameplay|audio"}`), &decoded))
	assert.Equal(t, TagGameplay|TagAudio, decoded.Tags)
}
