package services

import (
	"context"
	"strings"
	"testing"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndList_CacheInvalidation(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)

	_, newly, err := svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{Name: "Coins"})
	require.NoError(t, err)
	assert.Contains(t, newly, "first-collection")

	colls, total, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, colls, 1)

	// A row inserted behind the service's back stays invisible while the
	// cached list is fresh; the cache is advisory, not a consistency layer.
	createCollection(t, db, user.ID, "Backdoor")
	colls, _, err = svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, colls, 1)

	// A service-side mutation invalidates the list key immediately.
	_, _, err = svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{Name: "Stamps"})
	require.NoError(t, err)
	colls, total, err = svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, colls, 3)
}

func TestCreate_FolderOwnershipEnforced(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)
	stranger := createUser(t, db)

	folder := models.Folder{ID: uuid.New(), UserID: stranger.ID, Name: "Theirs"}
	require.NoError(t, db.Create(&folder).Error)

	_, _, err := svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{
		Name: "Coins", FolderID: &folder.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	missing := uuid.New()
	_, _, err = svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{
		Name: "Coins", FolderID: &missing,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_PartialFields(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)

	coll, _, err := svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{
		Name: "Coins", Description: "pre-1965 silver", Category: "numismatics",
	})
	require.NoError(t, err)

	newName := "Silver Coins"
	updated, err := svc.Update(ctx, user.ID, coll.ID, &dto.UpdateCollectionRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Silver Coins", updated.Name)

	var reloaded models.Collection
	require.NoError(t, db.First(&reloaded, "id = ?", coll.ID).Error)
	assert.Equal(t, "Silver Coins", reloaded.Name)
	assert.Equal(t, "pre-1965 silver", reloaded.Description, "unset fields keep their values")
	assert.Equal(t, "numismatics", reloaded.Category)
}

func TestItemCustomFields_ValidatedAgainstSchema(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)

	coll, _, err := svc.Create(ctx, user.ID, &dto.CreateCollectionRequest{
		Name:        "Graded Cards",
		FieldSchema: []models.FieldDef{{Name: "grade"}, {Name: "grader"}},
	})
	require.NoError(t, err)

	_, _, err = svc.CreateItem(ctx, user.ID, coll.ID, &dto.CreateItemRequest{
		Name:         "Jordan RC",
		CustomFields: map[string]string{"grade": "PSA 9", "price": "lots"},
	})
	require.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "price")

	item, _, err := svc.CreateItem(ctx, user.ID, coll.ID, &dto.CreateItemRequest{
		Name:         "Jordan RC",
		CustomFields: map[string]string{"grade": "PSA 9", "grader": "PSA"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"grade":"PSA 9","grader":"PSA"}`, string(item.CustomFields))

	// Updates re-validate against the schema too.
	bad := map[string]string{"condition": "mint"}
	_, _, err = svc.UpdateItem(ctx, user.ID, coll.ID, item.ID, &dto.UpdateItemRequest{CustomFields: &bad})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateItem_PartialAndOwnership(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Vinyl")
	item := createItem(t, db, coll.ID, "Kind of Blue", false)

	owned := true
	updated, _, err := svc.UpdateItem(ctx, user.ID, coll.ID, item.ID, &dto.UpdateItemRequest{Owned: &owned})
	require.NoError(t, err)
	assert.True(t, updated.Owned)
	assert.Equal(t, "Kind of Blue", updated.Name)

	other := createCollection(t, db, user.ID, "Other")
	_, _, err = svc.UpdateItem(ctx, user.ID, other.ID, item.ID, &dto.UpdateItemRequest{Owned: &owned})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "items are scoped to their collection")
}

func TestDeleteItem_MissingReportsNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Vinyl")
	item := createItem(t, db, coll.ID, "Blue Train", true)

	require.NoError(t, svc.DeleteItem(ctx, user.ID, coll.ID, item.ID))
	assert.ErrorIs(t, svc.DeleteItem(ctx, user.ID, coll.ID, item.ID), apperr.ErrNotFound)
}

func TestShareToken_Lifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Coins")
	createItem(t, db, coll.ID, "Morgan Dollar", true)

	token, err := svc.EnableShareToken(ctx, user.ID, coll.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "shr-"))

	again, err := svc.EnableShareToken(ctx, user.ID, coll.ID)
	require.NoError(t, err)
	assert.Equal(t, token, again, "re-enabling returns the existing token")

	shared, items, ownedCount, err := svc.GetByShareToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, coll.ID, shared.ID)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), ownedCount)

	require.NoError(t, svc.RevokeShareToken(ctx, user.ID, coll.ID))
	_, _, _, err = svc.GetByShareToken(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete_RemovesItemsButKeepsCommunityFork(t *testing.T) {
	db := testDB(t)
	achievements := NewAchievementService(db)
	svc := NewCollectionService(db, achievements, testCache())
	community := NewCommunityService(db, achievements)
	ctx := context.Background()
	user := createUser(t, db)

	coll := createCollection(t, db, user.ID, "Vinyl")
	createItem(t, db, coll.ID, "Kind of Blue", true)
	fork, _, _, err := community.Share(ctx, user.ID, coll.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID, coll.ID))

	var itemCount int64
	require.NoError(t, db.Model(&models.Item{}).
		Where("collection_id = ?", coll.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	var forkCount int64
	require.NoError(t, db.Model(&models.CommunityCollection{}).
		Where("id = ?", fork.ID).Count(&forkCount).Error)
	assert.Equal(t, int64(1), forkCount, "the marketplace copy outlives the source")
}

func TestGet_OwnershipChecks(t *testing.T) {
	db := testDB(t)
	svc := NewCollectionService(db, NewAchievementService(db), testCache())
	ctx := context.Background()
	owner := createUser(t, db)
	stranger := createUser(t, db)
	coll := createCollection(t, db, owner.ID, "Coins")

	_, _, _, err := svc.Get(ctx, stranger.ID, coll.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, _, _, err = svc.Get(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
