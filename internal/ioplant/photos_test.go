package ioplant

import (
	"context"
	"testing"

	"github.com/plantkeeper/pkdb/pkg/errcode"
	"github.com/plantkeeper/pkdb/pkg/pkdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotos_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	photos := NewPhotoStore(f.op)

	plant, err := f.plants.Create(ctx, pkdb.PlantInput{
		UserID: f.userID, Name: "Photogenic hoya",
	})
	require.NoError(t, err)

	original, err := photos.AddPhoto(ctx, pkdb.PhotoInput{
		PlantID:  plant.ID,
		Filename: "hoya.jpg",
		Image:    []byte{0xff, 0xd8, 0xff},
		MimeType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, original.GUID, "new uploads get a GUID")

	// A resized variant shares the GUID.
	thumb, err := photos.AddPhoto(ctx, pkdb.PhotoInput{
		PlantID:  plant.ID,
		Filename: "hoya_thumb.jpg",
		Image:    []byte{0xff, 0xd8},
		MimeType: "image/jpeg",
		SizeType: ptr(int64(1)),
		GUID:     original.GUID,
	})
	require.NoError(t, err)
	assert.Equal(t, original.GUID, thumb.GUID)

	listed, err := photos.ListPhotos(ctx, plant.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	got, err := photos.GetPhoto(ctx, original.GUID, ptr(int64(1)))
	require.NoError(t, err)
	assert.Equal(t, "hoya_thumb.jpg", got.Filename)
	assert.NotEmpty(t, got.Image)

	require.NoError(t, photos.DeletePhoto(ctx, original.GUID))

	listed, err = photos.ListPhotos(ctx, plant.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPhotos_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	photos := NewPhotoStore(f.op)

	_, err := photos.AddPhoto(ctx, pkdb.PhotoInput{
		PlantID: 999, Filename: "x.jpg", MimeType: "image/jpeg",
	})
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))

	err = photos.DeletePhoto(ctx, "no-such-guid")
	require.Error(t, err)
	assert.Equal(t, errcode.NotFoundError, errcode.Code(err))
}
