package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestStorefrontPathResolution(t *testing.T) {
	id := uuid.New()
	custom := "maple"

	cases := []struct {
		name  string
		store Store
		want  string
	}{
		{
			name:  "custom path wins",
			store: Store{ID: id, NameSlug: "maple-and-main", CustomPath: &custom},
			want:  "maple",
		},
		{
			name:  "slug when no custom path",
			store: Store{ID: id, NameSlug: "maple-and-main"},
			want:  "maple-and-main",
		},
		{
			name:  "id as last resort",
			store: Store{ID: id},
			want:  id.String(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.store.StorefrontPath(); got != tc.want {
				t.Fatalf("StorefrontPath() = %q, want %q", got, tc.want)
			}
		})
	}
}
