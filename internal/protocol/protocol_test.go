package protocol

import (
	"strings"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"7", "7", false},
		{"@7", "7", false},
		{"0", "0", false},
		{"@0", "0", false},
		{"007", "7", false},
		{"  12  ", "12", false},
		{"@", "", true},
		{"", "", true},
		{"abc", "", true},
		{"7a", "", true},
		{"@@7", "", true},
		{"-1", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRef(%q) = %q, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRef(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	acceptTrue := true
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"navigate ok", Request{ID: "1", Action: ActionNavigate, URL: "https://example.com"}, ""},
		{"navigate missing url", Request{ID: "1", Action: ActionNavigate}, "requires url"},
		{"missing id", Request{Action: ActionSnapshot}, "id is required"},
		{"snapshot ok", Request{ID: "1", Action: ActionSnapshot}, ""},
		{"click ok", Request{ID: "1", Action: ActionClick, Ref: "@3"}, ""},
		{"click missing ref", Request{ID: "1", Action: ActionClick}, "requires ref"},
		{"click bad ref", Request{ID: "1", Action: ActionClick, Ref: "abc"}, "invalid ref"},
		{"type missing text", Request{ID: "1", Action: ActionType}, "requires text"},
		{"press missing key", Request{ID: "1", Action: ActionPressKey}, "requires key"},
		{"select missing values", Request{ID: "1", Action: ActionSelectOption, Ref: "1"}, "at least one value"},
		{"select ok", Request{ID: "1", Action: ActionSelectOption, Ref: "1", Values: []string{"blue"}}, ""},
		{"select tab missing id", Request{ID: "1", Action: ActionSelectTab}, "requires tab_id"},
		{"dialog missing accept", Request{ID: "1", Action: ActionHandleDialog}, "requires accept"},
		{"dialog ok", Request{ID: "1", Action: ActionHandleDialog, Accept: &acceptTrue}, ""},
		{"unknown action", Request{ID: "1", Action: "explode"}, "unknown action"},
		{"empty action", Request{ID: "1"}, "unknown action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		if id == "" {
			t.Fatal("NewRequestID returned empty string")
		}
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}
