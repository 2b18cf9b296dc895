// Package achievements holds the pure achievement rule engine. Evaluate is a
// deterministic function from aggregated user statistics to the set of
// achievement ids that should be unlocked; it performs no I/O. Persistence
// and the monotonic-unlock guarantee live in the achievement service.
package achievements

// Stats is an aggregation over one user's collections and items. The service
// layer computes it from storage; the engine only reads it.
type Stats struct {
	TotalItems              int64
	OwnedItems              int64
	TotalCollections        int64
	CompletedCollections    int64 // non-empty collections with every item owned
	CommunityShares         int64
	Folders                 int64
	WishlistEntries         int64
	TaggedCollections       int64
	CustomSchemaCollections int64
}

// Achievement is one milestone in the catalog. Unlocked must be a pure
// predicate over Stats.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Unlocked    func(Stats) bool
}

// Catalog is the full achievement list. Slice order is the canonical
// ordering: Evaluate and Diff always report ids in this order, regardless of
// when thresholds were crossed.
var Catalog = []Achievement{
	{
		ID:          "first-collection",
		Title:       "Off the Shelf",
		Description: "Create your first collection.",
		Unlocked:    func(s Stats) bool { return s.TotalCollections >= 1 },
	},
	{
		ID:          "collector",
		Title:       "Collector",
		Description: "Create 5 collections.",
		Unlocked:    func(s Stats) bool { return s.TotalCollections >= 5 },
	},
	{
		ID:          "curator",
		Title:       "Curator",
		Description: "Create 25 collections.",
		Unlocked:    func(s Stats) bool { return s.TotalCollections >= 25 },
	},
	{
		ID:          "first-item",
		Title:       "It Begins",
		Description: "Catalog your first item.",
		Unlocked:    func(s Stats) bool { return s.TotalItems >= 1 },
	},
	{
		ID:          "century",
		Title:       "Century",
		Description: "Catalog 100 items.",
		Unlocked:    func(s Stats) bool { return s.TotalItems >= 100 },
	},
	{
		ID:          "vault",
		Title:       "The Vault",
		Description: "Catalog 500 items.",
		Unlocked:    func(s Stats) bool { return s.TotalItems >= 500 },
	},
	{
		ID:          "first-owned",
		Title:       "Mine Now",
		Description: "Mark an item as owned.",
		Unlocked:    func(s Stats) bool { return s.OwnedItems >= 1 },
	},
	{
		ID:          "hoard",
		Title:       "Hoard",
		Description: "Own 250 items.",
		Unlocked:    func(s Stats) bool { return s.OwnedItems >= 250 },
	},
	{
		ID:          "completionist",
		Title:       "Completionist",
		Description: "Fully own every item in a collection.",
		Unlocked:    func(s Stats) bool { return s.CompletedCollections >= 1 },
	},
	{
		ID:          "finisher",
		Title:       "Serial Finisher",
		Description: "Complete 5 collections.",
		Unlocked:    func(s Stats) bool { return s.CompletedCollections >= 5 },
	},
	{
		ID:          "first-share",
		Title:       "Show and Tell",
		Description: "Share a collection with the community.",
		Unlocked:    func(s Stats) bool { return s.CommunityShares >= 1 },
	},
	{
		ID:          "community-pillar",
		Title:       "Community Pillar",
		Description: "Have 5 collections shared with the community.",
		Unlocked:    func(s Stats) bool { return s.CommunityShares >= 5 },
	},
	{
		ID:          "organizer",
		Title:       "Organizer",
		Description: "Create a folder.",
		Unlocked:    func(s Stats) bool { return s.Folders >= 1 },
	},
	{
		ID:          "wisher",
		Title:       "Wisher",
		Description: "Add an entry to your wishlist.",
		Unlocked:    func(s Stats) bool { return s.WishlistEntries >= 1 },
	},
	{
		ID:          "taxonomist",
		Title:       "Taxonomist",
		Description: "Tag 3 collections.",
		Unlocked:    func(s Stats) bool { return s.TaggedCollections >= 3 },
	},
	{
		ID:          "archivist",
		Title:       "Archivist",
		Description: "Define a custom field schema on a collection.",
		Unlocked:    func(s Stats) bool { return s.CustomSchemaCollections >= 1 },
	},
}

// Evaluate returns the ids of every achievement whose threshold holds for the
// given stats, in canonical catalog order.
func Evaluate(s Stats) []string {
	ids := make([]string, 0, len(Catalog))
	for _, a := range Catalog {
		if a.Unlocked(s) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Diff returns the ids in should that are absent from already, preserving
// canonical order. Ids in already but not in should are ignored: unlocks are
// never revoked.
func Diff(should, already []string) []string {
	have := make(map[string]struct{}, len(already))
	for _, id := range already {
		have[id] = struct{}{}
	}
	var newly []string
	for _, id := range should {
		if _, ok := have[id]; !ok {
			newly = append(newly, id)
		}
	}
	return newly
}

// ByID looks up a catalog entry.
func ByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
