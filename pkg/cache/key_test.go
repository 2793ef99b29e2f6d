package cache

import (
	"testing"
)

func TestListKey(t *testing.T) {
	tests := []struct {
		name string
		list string
		want QueryKey
	}{
		{
			name: "default list",
			list: "",
			want: "/v1/?list=",
		},
		{
			name: "named list",
			list: "bestOf",
			want: "/v1/?list=bestOf",
		},
		{
			name: "list with spaces is escaped",
			list: "best of",
			want: "/v1/?list=best+of",
		},
		{
			name: "list with reserved characters is escaped",
			list: "a&b=c",
			want: "/v1/?list=a%26b%3Dc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListKey(tt.list)
			if got != tt.want {
				t.Errorf("ListKey(%q) = %q, want %q", tt.list, got, tt.want)
			}
			if got.Path() != string(tt.want) {
				t.Errorf("Path() = %q, want %q", got.Path(), tt.want)
			}
		})
	}
}

func TestListKey_Deterministic(t *testing.T) {
	if ListKey("bestOf") != ListKey("bestOf") {
		t.Error("ListKey should be deterministic")
	}
	if ListKey("") != ListKey("") {
		t.Error("default key should be stable")
	}
}

func TestListKey_Distinct(t *testing.T) {
	names := []string{"", "bestOf", "wikipedia", "french", "bestOf ", "BestOf"}
	seen := make(map[QueryKey]string)

	for _, name := range names {
		key := ListKey(name)
		if other, exists := seen[key]; exists {
			t.Errorf("ListKey(%q) collides with ListKey(%q): %q", name, other, key)
		}
		seen[key] = name
	}
}

func TestQueryKey_ListName(t *testing.T) {
	for _, name := range []string{"", "bestOf", "best of", "a&b=c"} {
		got, ok := ListKey(name).ListName()
		if !ok {
			t.Errorf("ListName() of ListKey(%q) not ok", name)
		}
		if got != name {
			t.Errorf("ListName() = %q, want %q", got, name)
		}
	}

	if _, ok := QueryKey("/v2/colors").ListName(); ok {
		t.Error("ListName() should fail for a foreign key")
	}
}
