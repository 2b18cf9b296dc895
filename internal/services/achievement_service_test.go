package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUnlocks_FirstCollection(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	user := createUser(t, db)
	createCollection(t, db, user.ID, "Coins")

	newly, err := svc.ApplyUnlocks(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-collection"}, newly)
	assert.Equal(t, []string{"first-collection"}, unlockedSet(t, db, user.ID))
}

func TestApplyUnlocks_Idempotent(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Coins")
	createItem(t, db, coll.ID, "Denarius", true)

	first, err := svc.ApplyUnlocks(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.ApplyUnlocks(user.ID)
	require.NoError(t, err)
	assert.Empty(t, second, "no state change between calls must yield no new unlocks")
}

func TestApplyUnlocks_MonotonicUnderRegression(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Coins")
	item := createItem(t, db, coll.ID, "Denarius", true)

	newly, err := svc.ApplyUnlocks(user.ID)
	require.NoError(t, err)
	assert.Contains(t, newly, "first-item")
	assert.Contains(t, newly, "first-owned")
	assert.Contains(t, newly, "completionist")

	// Regress the stats: the unlocked set must not shrink.
	require.NoError(t, db.Delete(item).Error)
	require.NoError(t, db.Delete(coll).Error)

	newly, err = svc.ApplyUnlocks(user.ID)
	require.NoError(t, err)
	assert.Empty(t, newly)

	set := unlockedSet(t, db, user.ID)
	assert.Contains(t, set, "first-item")
	assert.Contains(t, set, "first-owned")
	assert.Contains(t, set, "completionist")
	assert.Contains(t, set, "first-collection")
}

func TestCollectStats(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	user := createUser(t, db)
	other := createUser(t, db)

	complete := createCollection(t, db, user.ID, "Complete")
	createItem(t, db, complete.ID, "a", true)
	createItem(t, db, complete.ID, "b", true)

	partial := createCollection(t, db, user.ID, "Partial")
	createItem(t, db, partial.ID, "c", true)
	createItem(t, db, partial.ID, "d", false)

	empty := createCollection(t, db, user.ID, "Empty")
	require.NoError(t, db.Model(empty).Update("tags", mustJSON(t, []string{"retro"})).Error)
	require.NoError(t, db.Model(partial).Update("field_schema", mustJSON(t, []map[string]string{{"name": "grade"}})).Error)

	// Another user's rows must not leak into the stats.
	theirs := createCollection(t, db, other.ID, "Theirs")
	createItem(t, db, theirs.ID, "x", true)

	stats, err := svc.CollectStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalCollections)
	assert.Equal(t, int64(4), stats.TotalItems)
	assert.Equal(t, int64(3), stats.OwnedItems)
	assert.Equal(t, int64(1), stats.CompletedCollections, "empty collections and partial ones do not count")
	assert.Equal(t, int64(1), stats.TaggedCollections)
	assert.Equal(t, int64(1), stats.CustomSchemaCollections)
}

func TestCheckBestEffort_SwallowsFailure(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)

	// Unknown user makes ApplyUnlocks fail; the best-effort wrapper converts
	// that into an empty result.
	user := createUser(t, db)
	require.NoError(t, db.Unscoped().Delete(user).Error)

	newly := svc.CheckBestEffort(user.ID, "test")
	assert.NotNil(t, newly)
	assert.Empty(t, newly)
}
