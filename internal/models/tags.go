package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is a single structured amenity entry, stored as {"name": "..."}.
type Tag struct {
	Name string `json:"name"`
}

// Tags is an ordered amenity list persisted as a JSONB array.
type Tags []Tag

// Scan implements sql.Scanner for reading a JSONB array column.
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = Tags{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan Tags: expected []byte or string, got %T", value)
	}

	var tags []Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if tags == nil {
		tags = []Tag{}
	}

	*t = tags
	return nil
}

// Value implements driver.Valuer. A nil list is written as an empty array.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}

	encoded, err := json.Marshal([]Tag(t))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(encoded), nil
}

// MarshalJSON always renders an array, never null.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Tag(t))
}

// Names returns the tag names in order.
func (t Tags) Names() []string {
	names := make([]string, len(t))
	for i, tag := range t {
		names[i] = tag.Name
	}
	return names
}

// ParseTags normalizes list input into Tags.
// Each value may itself be a JSON array (of strings or {"name"} objects)
// or a comma-separated string; repeated values are concatenated in order.
// Blank names are dropped. The result is nil when nothing remains.
func ParseTags(values []string) (Tags, error) {
	var tags Tags
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.HasPrefix(value, "[") {
			parsed, err := parseJSONTags(value)
			if err != nil {
				return nil, err
			}
			tags = append(tags, parsed...)
			continue
		}

		for _, part := range strings.Split(value, ",") {
			if name := strings.TrimSpace(part); name != "" {
				tags = append(tags, Tag{Name: name})
			}
		}
	}
	return tags, nil
}

func parseJSONTags(value string) (Tags, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	tags := make(Tags, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var tag Tag
			if err := json.Unmarshal(item, &tag); err != nil {
				return nil, fmt.Errorf("array items must be strings or objects with a name")
			}
			name = tag.Name
		}
		if name = strings.TrimSpace(name); name != "" {
			tags = append(tags, Tag{Name: name})
		}
	}
	return tags, nil
}
