package models

import (
	"database/sql/driver"
	"encoding/json"
	"testing"
)

// TestTagsImplementsInterfaces verifies Tags implements the database interfaces
func TestTagsImplementsInterfaces(t *testing.T) {
	var _ driver.Valuer = Tags{}

	var tags Tags
	var scanner interface{} = &tags
	if _, ok := scanner.(interface{ Scan(interface{}) error }); !ok {
		t.Error("Tags does not implement sql.Scanner interface")
	}
}

func TestTagsValue(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
		want string
	}{
		{name: "nil list", tags: nil, want: "[]"},
		{name: "two tags", tags: Tags{{Name: "borewell"}, {Name: "canal"}}, want: `[{"name":"borewell"},{"name":"canal"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := tt.tags.Value()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if val != tt.want {
				t.Errorf("expected %s, got %v", tt.want, val)
			}
		})
	}
}

func TestTagsScan(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantNames []string
		wantError bool
	}{
		{name: "bytes", input: []byte(`[{"name":"mango"},{"name":"coconut"}]`), wantNames: []string{"mango", "coconut"}},
		{name: "string", input: `[{"name":"shed"}]`, wantNames: []string{"shed"}},
		{name: "null", input: nil, wantNames: []string{}},
		{name: "json null", input: []byte(`null`), wantNames: []string{}},
		{name: "invalid json", input: []byte(`{not json`), wantError: true},
		{name: "wrong type", input: 42, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags Tags
			err := tags.Scan(tt.input)

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			names := tags.Names()
			if len(names) != len(tt.wantNames) {
				t.Fatalf("expected %d tags, got %d", len(tt.wantNames), len(names))
			}
			for i := range names {
				if names[i] != tt.wantNames[i] {
					t.Errorf("tag %d: expected %s, got %s", i, tt.wantNames[i], names[i])
				}
			}
		})
	}
}

func TestTagsMarshalJSON_NilIsEmptyArray(t *testing.T) {
	var parcel struct {
		Garden Tags `json:"garden"`
	}

	data, err := json.Marshal(parcel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"garden":[]}` {
		t.Errorf("expected empty array, got %s", data)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantNames []string
		wantError bool
	}{
		{name: "repeated values", input: []string{"borewell", "canal"}, wantNames: []string{"borewell", "canal"}},
		{name: "comma separated", input: []string{"borewell, canal ,,well"}, wantNames: []string{"borewell", "canal", "well"}},
		{name: "json string array", input: []string{`["mango","coconut"]`}, wantNames: []string{"mango", "coconut"}},
		{name: "json object array", input: []string{`[{"name":"shed"},{"name":" "}]`}, wantNames: []string{"shed"}},
		{name: "mixed forms keep order", input: []string{`["a"]`, "b,c"}, wantNames: []string{"a", "b", "c"}},
		{name: "blank values", input: []string{"", "  "}, wantNames: nil},
		{name: "malformed json", input: []string{`["a",`}, wantError: true},
		{name: "json numbers", input: []string{`[1,2]`}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := ParseTags(tt.input)

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNames == nil {
				if tags != nil {
					t.Errorf("expected nil tags, got %v", tags)
				}
				return
			}

			names := tags.Names()
			if len(names) != len(tt.wantNames) {
				t.Fatalf("expected %v, got %v", tt.wantNames, names)
			}
			for i := range names {
				if names[i] != tt.wantNames[i] {
					t.Errorf("tag %d: expected %s, got %s", i, tt.wantNames[i], names[i])
				}
			}
		})
	}
}
