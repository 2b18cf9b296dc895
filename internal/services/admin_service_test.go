package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collectiq/collectiq-backend/internal/apperr"
	"github.com/collectiq/collectiq-backend/internal/dto"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator fails for names in failFor, otherwise returns a fixed cover.
type stubGenerator struct {
	failFor map[string]bool
	calls   int
}

func (g *stubGenerator) Generate(_ context.Context, name, _ string) (string, error) {
	g.calls++
	if g.failFor[name] {
		return "", errors.New("render failed")
	}
	return "data:image/png;base64,c3R1Yg==", nil
}

func TestBulkGenerateCovers_PartialFailure(t *testing.T) {
	db := testDB(t)
	gen := &stubGenerator{failFor: map[string]bool{"Broken": true}}
	svc := NewAdminService(db, gen, time.Second)
	user := createUser(t, db)

	names := []string{"Alpha", "Beta", "Broken", "Gamma", "Delta"}
	for _, name := range names {
		createCollection(t, db, user.ID, name)
	}
	// Already-covered collections are left alone.
	covered := createCollection(t, db, user.ID, "Covered")
	require.NoError(t, db.Model(covered).Update("cover_image", "data:image/png;base64,ZXhpc3Rpbmc=").Error)

	resp, err := svc.BulkGenerateCovers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Generated)
	assert.Equal(t, 4, resp.Updated)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Broken", resp.Errors[0].Collection)
	assert.Equal(t, 5, gen.calls, "covered collections are not regenerated")

	var broken models.Collection
	require.NoError(t, db.First(&broken, "user_id = ? AND name = ?", user.ID, "Broken").Error)
	assert.Empty(t, broken.CoverImage, "failed collection keeps its empty cover")

	var fixed models.Collection
	require.NoError(t, db.First(&fixed, "user_id = ? AND name = ?", user.ID, "Alpha").Error)
	assert.NotEmpty(t, fixed.CoverImage)
}

func TestBulkUpdateItemImages_AllOrNothing(t *testing.T) {
	db := testDB(t)
	svc := NewAdminService(db, &stubGenerator{}, time.Second)
	user := createUser(t, db)
	coll := createCollection(t, db, user.ID, "Cards")
	other := createCollection(t, db, user.ID, "Other")

	a := createItem(t, db, coll.ID, "A", true)
	b := createItem(t, db, coll.ID, "B", true)
	foreign := createItem(t, db, other.ID, "C", true)

	_, err := svc.BulkUpdateItemImages(context.Background(), &dto.BulkUpdateItemImagesRequest{
		CollectionID: coll.ID,
		Updates: []dto.ItemImageUpdate{
			{ItemID: a.ID, Image: "https://img/a.png"},
			{ItemID: foreign.ID, Image: "https://img/c.png"},
		},
	})
	assert.True(t, apperr.IsValidation(err))

	// Nothing was written, including the valid entry before the bad one.
	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Empty(t, reloaded.Image)

	resp, err := svc.BulkUpdateItemImages(context.Background(), &dto.BulkUpdateItemImagesRequest{
		CollectionID: coll.ID,
		Updates: []dto.ItemImageUpdate{
			{ItemID: a.ID, Image: "https://img/a.png"},
			{ItemID: b.ID, Image: "https://img/b.png"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Updated)
	require.Len(t, resp.Items, 2)

	var reloadedB models.Item
	require.NoError(t, db.First(&reloadedB, "id = ?", b.ID).Error)
	assert.Equal(t, "https://img/b.png", reloadedB.Image)
}

func TestBulkUpdateItemImages_EmptyAndMissing(t *testing.T) {
	db := testDB(t)
	svc := NewAdminService(db, &stubGenerator{}, time.Second)

	_, err := svc.BulkUpdateItemImages(context.Background(), &dto.BulkUpdateItemImagesRequest{
		CollectionID: uuid.New(),
	})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.BulkUpdateItemImages(context.Background(), &dto.BulkUpdateItemImagesRequest{
		CollectionID: uuid.New(),
		Updates:      []dto.ItemImageUpdate{{ItemID: uuid.New(), Image: "x"}},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBulkImportItems_SkipsDuplicateNames(t *testing.T) {
	db := testDB(t)
	svc := NewAdminService(db, &stubGenerator{}, time.Second)

	rec, err := svc.CreateRecommended(context.Background(), &dto.CreateRecommendedRequest{
		Name:     "Starter Pokedex",
		Template: "trading-card",
	})
	require.NoError(t, err)

	first, err := svc.BulkImportItems(context.Background(), rec.ID, &dto.BulkImportItemsRequest{
		Items: []dto.RecommendedItemInput{
			{Name: "Bulbasaur"}, {Name: "Charmander"}, {Name: "Squirtle"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)
	assert.Equal(t, 0, first.Skipped)

	second, err := svc.BulkImportItems(context.Background(), rec.ID, &dto.BulkImportItemsRequest{
		Items: []dto.RecommendedItemInput{
			{Name: "Charmander"}, {Name: "Squirtle"}, {Name: "Pikachu"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Imported)
	assert.Equal(t, 2, second.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.RecommendedItem{}).
		Where("collection_id = ?", rec.ID).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestDeleteRecommended_Cascades(t *testing.T) {
	db := testDB(t)
	svc := NewAdminService(db, &stubGenerator{}, time.Second)

	rec, err := svc.CreateRecommended(context.Background(), &dto.CreateRecommendedRequest{Name: "Doomed"})
	require.NoError(t, err)
	_, err = svc.BulkImportItems(context.Background(), rec.ID, &dto.BulkImportItemsRequest{
		Items: []dto.RecommendedItemInput{{Name: "One"}, {Name: "Two"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecommended(context.Background(), rec.ID))

	var collCount, itemCount int64
	require.NoError(t, db.Model(&models.RecommendedCollection{}).
		Where("id = ?", rec.ID).Count(&collCount).Error)
	require.NoError(t, db.Model(&models.RecommendedItem{}).
		Where("collection_id = ?", rec.ID).Count(&itemCount).Error)
	assert.Zero(t, collCount)
	assert.Zero(t, itemCount)

	assert.ErrorIs(t, svc.DeleteRecommended(context.Background(), rec.ID), apperr.ErrNotFound)
}

func TestSetVerifiedAndBadge(t *testing.T) {
	db := testDB(t)
	svc := NewAdminService(db, &stubGenerator{}, time.Second)
	user := createUser(t, db)

	require.NoError(t, svc.SetVerified(context.Background(), user.ID, true))
	require.NoError(t, svc.SetBadge(context.Background(), user.ID, "founder"))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.True(t, reloaded.Verified)
	assert.Equal(t, "founder", reloaded.Badge)

	assert.ErrorIs(t, svc.SetVerified(context.Background(), uuid.New(), true), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.SetBadge(context.Background(), uuid.New(), "x"), apperr.ErrNotFound)
}
