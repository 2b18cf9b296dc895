package services

import (
	"context"
	"testing"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare_CopiesCollectionAndItems(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Silver Age")
	require.NoError(t, db.Model(coll).Updates(map[string]any{
		"template":     "comic",
		"field_schema": mustJSON(t, []models.FieldDef{{Name: "grade"}}),
		"tags":         mustJSON(t, []string{"marvel"}),
	}).Error)
	num := 1
	item := models.Item{
		ID: uuid.New(), CollectionID: coll.ID, Name: "ASM #1", Number: &num,
		Owned: true, CustomFields: mustJSON(t, map[string]string{"grade": "CGC 6.5"}),
	}
	require.NoError(t, db.Create(&item).Error)

	fork, forkItems, newly, err := svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, fork.UserID)
	assert.Equal(t, "Silver Age", fork.Name)
	assert.Equal(t, "comic", fork.Template)
	assert.JSONEq(t, `[{"name":"grade"}]`, string(fork.FieldSchema))

	require.Len(t, forkItems, 1)
	assert.NotEqual(t, item.ID, forkItems[0].ID, "fork items get fresh identities")
	assert.Equal(t, "ASM #1", forkItems[0].Name)
	assert.JSONEq(t, `{"grade":"CGC 6.5"}`, string(forkItems[0].CustomFields))

	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, "id = ?", coll.ID).Error)
	require.NotNil(t, reloaded.SharedCommunityID)
	assert.Equal(t, fork.ID, *reloaded.SharedCommunityID)

	assert.Contains(t, newly, "first-share")
}

func TestShare_EditsDoNotPropagate(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Stamps")
	createItem(t, db, coll.ID, "Penny Black", false)

	fork, _, _, err := svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)

	// Mutate the original after sharing.
	require.NoError(t, db.Model(coll).Update("name", "Renamed").Error)
	createItem(t, db, coll.ID, "Inverted Jenny", false)

	var stored models.CommunityCollection
	require.NoError(t, db.First(&stored, "id = ?", fork.ID).Error)
	assert.Equal(t, "Stamps", stored.Name)

	var count int64
	require.NoError(t, db.Model(&models.CommunityItem{}).
		Where("collection_id = ?", fork.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestShare_OwnershipChecks(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	owner := createUser(t, db)
	stranger := createUser(t, db)
	coll := createCollection(t, db, owner.ID, "Coins")

	_, _, _, err := svc.Share(ctx, stranger.ID, coll.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, _, _, err = svc.Share(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestShareUnshare_RoundTrip(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Vinyl")
	createItem(t, db, coll.ID, "Kind of Blue", true)
	createItem(t, db, coll.ID, "Blue Train", false)

	fork, _, _, err := svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Unshare(ctx, user.ID, coll.ID))

	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, "id = ?", coll.ID).Error)
	assert.Nil(t, reloaded.SharedCommunityID)

	var collCount, itemCount int64
	require.NoError(t, db.Model(&models.CommunityCollection{}).
		Where("id = ?", fork.ID).Count(&collCount).Error)
	require.NoError(t, db.Model(&models.CommunityItem{}).
		Where("collection_id = ?", fork.ID).Count(&itemCount).Error)
	assert.Zero(t, collCount, "no orphaned community collection")
	assert.Zero(t, itemCount, "no orphaned community items")
}

func TestUnshare_Preconditions(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)
	stranger := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Coins")

	// Not shared at all.
	err := svc.Unshare(ctx, user.ID, coll.ID)
	assert.True(t, apperr.IsValidation(err))

	_, _, _, err = svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)

	// Wrong caller.
	assert.ErrorIs(t, svc.Unshare(ctx, stranger.ID, coll.ID), apperr.ErrForbidden)

	// Fork deleted out from under the pointer reports NotFound, not success.
	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, "id = ?", coll.ID).Error)
	require.NoError(t, db.Where("id = ?", *reloaded.SharedCommunityID).
		Delete(&models.CommunityCollection{}).Error)
	assert.ErrorIs(t, svc.Unshare(ctx, user.ID, coll.ID), apperr.ErrNotFound)
}

// Repeated sharing is allowed and documented: each call forks again and
// repoints the collection, leaving the earlier fork unreferenced in the
// marketplace. If this ever changes to replace-or-reject, this test is the
// place to start.
func TestShare_RepeatedShareOrphansEarlierFork(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Coins")

	first, _, _, err := svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)
	second, _, _, err := svc.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, "id = ?", coll.ID).Error)
	assert.Equal(t, second.ID, *reloaded.SharedCommunityID)

	// The first fork is now orphaned but still present.
	var count int64
	require.NoError(t, db.Model(&models.CommunityCollection{}).
		Where("id = ?", first.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddToAccount_FromRecommended_PreservesFields(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	user := createUser(t, db)

	rec := models.RecommendedCollection{
		ID:          uuid.New(),
		Name:        "PSA Graded Rookies",
		Template:    "trading-card",
		CoverFit:    "contain",
		FieldSchema: mustJSON(t, []models.FieldDef{{Name: "grade"}}),
		Tags:        mustJSON(t, []string{"sports"}),
	}
	require.NoError(t, db.Create(&rec).Error)
	recItem := models.RecommendedItem{
		ID:           uuid.New(),
		CollectionID: rec.ID,
		Name:         "1986 Fleer Jordan",
		CustomFields: mustJSON(t, map[string]string{"grade": "PSA 9"}),
	}
	require.NoError(t, db.Create(&recItem).Error)

	clone, items, newly, err := svc.AddToAccount(ctx, user.ID, CloneSource{Kind: CloneRecommended, ID: rec.ID})
	require.NoError(t, err)

	assert.Equal(t, user.ID, clone.UserID)
	assert.Equal(t, "trading-card", clone.Template)
	assert.Equal(t, "contain", clone.CoverFit)
	assert.JSONEq(t, `[{"name":"grade"}]`, string(clone.FieldSchema))
	assert.JSONEq(t, `["sports"]`, string(clone.Tags))
	require.NotNil(t, clone.SourceRecommendedID)
	assert.Equal(t, rec.ID, *clone.SourceRecommendedID)
	assert.Nil(t, clone.SharedCommunityID)
	assert.Nil(t, clone.ShareToken)

	require.Len(t, items, 1)
	assert.Equal(t, "1986 Fleer Jordan", items[0].Name)
	assert.JSONEq(t, `{"grade":"PSA 9"}`, string(items[0].CustomFields))
	assert.False(t, items[0].Owned, "cloned items start unowned")

	assert.Contains(t, newly, "first-collection")
}

func TestAddToAccount_FromCommunity(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()

	sharer := createUser(t, db)
	cloner := createUser(t, db)

	coll := createCollection(t, db, sharer.ID, "Retro Consoles")
	createItem(t, db, coll.ID, "SNES", true)
	fork, _, _, err := svc.Share(ctx, sharer.ID, coll.ID)
	require.NoError(t, err)

	clone, items, _, err := svc.AddToAccount(ctx, cloner.ID, CloneSource{Kind: CloneCommunity, ID: fork.ID})
	require.NoError(t, err)

	assert.Equal(t, cloner.ID, clone.UserID)
	require.NotNil(t, clone.SourceCommunityID)
	assert.Equal(t, fork.ID, *clone.SourceCommunityID)
	require.Len(t, items, 1)
	assert.False(t, items[0].Owned, "ownership never crosses the clone boundary")
}

func TestAddToAccount_UnknownKindAndMissingSource(t *testing.T) {
	db := testDB(t)
	svc := NewCommunityService(db, NewAchievementService(db))
	ctx := context.Background()
	user := createUser(t, db)

	_, _, _, err := svc.AddToAccount(ctx, user.ID, CloneSource{Kind: "bogus", ID: uuid.New()})
	assert.True(t, apperr.IsValidation(err))

	_, _, _, err = svc.AddToAccount(ctx, user.ID, CloneSource{Kind: CloneRecommended, ID: uuid.New()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
