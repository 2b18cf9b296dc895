package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Empty(t *testing.T) {
	assert.Empty(t, Evaluate(Stats{}))
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  []string
	}{
		{
			name:  "single collection",
			stats: Stats{TotalCollections: 1},
			want:  []string{"first-collection"},
		},
		{
			name:  "five collections",
			stats: Stats{TotalCollections: 5},
			want:  []string{"first-collection", "collector"},
		},
		{
			name:  "items and ownership",
			stats: Stats{TotalItems: 100, OwnedItems: 1},
			want:  []string{"first-item", "century", "first-owned"},
		},
		{
			name:  "completion chain",
			stats: Stats{TotalCollections: 1, TotalItems: 3, OwnedItems: 3, CompletedCollections: 1},
			want:  []string{"first-collection", "first-item", "first-owned", "completionist"},
		},
		{
			name:  "community and organization",
			stats: Stats{CommunityShares: 5, Folders: 2, WishlistEntries: 1},
			want:  []string{"first-share", "community-pillar", "organizer", "wisher"},
		},
		{
			name:  "schema and tags",
			stats: Stats{TaggedCollections: 3, CustomSchemaCollections: 1},
			want:  []string{"taxonomist", "archivist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.stats))
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	stats := Stats{
		TotalItems:           512,
		OwnedItems:           300,
		TotalCollections:     30,
		CompletedCollections: 6,
		CommunityShares:      2,
		Folders:              4,
	}
	first := Evaluate(stats)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Evaluate(stats))
	}
}

func TestEvaluate_CanonicalOrder(t *testing.T) {
	// Every unlocked id must appear in catalog order no matter which stats
	// crossed their thresholds first.
	stats := Stats{
		TotalItems:              1000,
		OwnedItems:              1000,
		TotalCollections:        100,
		CompletedCollections:    100,
		CommunityShares:         100,
		Folders:                 100,
		WishlistEntries:         100,
		TaggedCollections:       100,
		CustomSchemaCollections: 100,
	}
	got := Evaluate(stats)
	require.Len(t, got, len(Catalog))
	for i, a := range Catalog {
		assert.Equal(t, a.ID, got[i])
	}
}

func TestDiff(t *testing.T) {
	should := []string{"first-collection", "collector", "first-item"}

	assert.Equal(t, should, Diff(should, nil))
	assert.Equal(t, []string{"collector"}, Diff(should, []string{"first-collection", "first-item"}))
	assert.Empty(t, Diff(should, should))

	// Ids already held but no longer earned are never reported for removal.
	assert.Empty(t, Diff(nil, []string{"first-collection"}))
}

func TestCatalog_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Catalog {
		require.False(t, seen[a.ID], "duplicate catalog id %s", a.ID)
		require.NotNil(t, a.Unlocked)
		seen[a.ID] = true
	}
}

func TestByID(t *testing.T) {
	a, ok := ByID("completionist")
	require.True(t, ok)
	assert.Equal(t, "Completionist", a.Title)

	_, ok = ByID("nope")
	assert.False(t, ok)
}
