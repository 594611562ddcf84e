package models

import (
	"fmt"
	"strings"
)

// Tag is a bitset of component category flags.
type Tag uint32

// Category flags. None is the empty set; used as a view filter it matches every node.
const (
	TagNone        Tag = 0
	TagManager     Tag = 1 << 1
	TagUI          Tag = 1 << 2
	TagGameplay    Tag = 1 << 3
	TagAudio       Tag = 1 << 4
	TagNetwork     Tag = 1 << 5
	TagPersistence Tag = 1 << 6
)

// tagNames lists the flags in bit order, which is also their print order.
var tagNames = []struct {
	tag  Tag
	name string
}{
	{TagManager, "Manager"},
	{TagUI, "UI"},
	{TagGameplay, "Gameplay"},
	{TagAudio, "Audio"},
	{TagNetwork, "Network"},
	{TagPersistence, "Persistence"},
}

// String renders the set as "Manager|Gameplay", or "None" for the empty set.
func (t Tag) String() string {
	if t == TagNone {
		return "None"
	}
	var parts []string
	for _, tn := range tagNames {
		if t&tn.tag != 0 {
			parts = append(parts, tn.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Tag(%d)", uint32(t))
	}
	return strings.Join(parts, "|")
}

// Names returns the names of the flags set in t.
func (t Tag) Names() []string {
	names := make([]string, 0, len(tagNames))
	for _, tn := range tagNames {
		if t&tn.tag != 0 {
			names = append(names, tn.name)
		}
	}
	return names
}

// Matches reports whether a node carrying t passes the view filter.
// A None filter matches everything, otherwise the sets must intersect.
func (t Tag) Matches(filter Tag) bool {
	if filter == TagNone {
		return true
	}
	return t&filter != 0
}

// ParseTag parses a flag expression such as "Manager|Gameplay" or "ui, audio".
// Names are case-insensitive; "None" and the empty string parse to TagNone.
func ParseTag(s string) (Tag, error) {
	var result Tag
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})
	for _, field := range fields {
		tag, err := parseTagName(field)
		if err != nil {
			return TagNone, err
		}
		result |= tag
	}
	return result, nil
}

// ParseTags combines a list of flag names into one set.
func ParseTags(names []string) (Tag, error) {
	return ParseTag(strings.Join(names, "|"))
}

func parseTagName(name string) (Tag, error) {
	if strings.EqualFold(name, "None") {
		return TagNone, nil
	}
	for _, tn := range tagNames {
		if strings.EqualFold(name, tn.name) {
			return tn.tag, nil
		}
	}
	return TagNone, fmt.Errorf("unknown tag %q", name)
}

// MarshalText implements encoding.TextMarshaler so tags serialize by name.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
