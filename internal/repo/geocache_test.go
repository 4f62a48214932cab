package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/geocode"
	"github.com/pkordes/vacation-gallery/internal/repo"
)

var _ geocode.Store = (*repo.GeocacheRepo)(nil)

func TestGeocacheRepo_LookupInsideBox(t *testing.T) {
	g := newRepos(t).geocache
	ctx := context.Background()

	city := domain.BBox{MinLat: -60.5, MaxLat: -60.0, MinLon: 120.0, MaxLon: 120.5}
	landmark := domain.BBox{MinLat: -60.21, MaxLat: -60.19, MinLon: 120.19, MaxLon: 120.21}
	require.NoError(t, g.Save(ctx, city, domain.Place{City: "Testville", Country: "Nowhere"}))
	require.NoError(t, g.Save(ctx, landmark, domain.Place{City: "Testville", Landmark: "Old Tower"}))

	got, err := g.Lookup(ctx, domain.Coordinate{Lat: -60.2, Lon: 120.2})
	require.NoError(t, err)
	assert.Equal(t, "Old Tower", got.Landmark, "the smallest containing box wins")
	assert.InDelta(t, -60.2, got.Lat, 1e-9)

	got, err = g.Lookup(ctx, domain.Coordinate{Lat: -60.4, Lon: 120.4})
	require.NoError(t, err)
	assert.Equal(t, "Testville", got.City)
	assert.Empty(t, got.Landmark)
}

func TestGeocacheRepo_LookupMiss(t *testing.T) {
	g := newRepos(t).geocache

	_, err := g.Lookup(context.Background(), domain.Coordinate{Lat: -89.9, Lon: -179.9})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGeocacheRepo_SaveOverwritesSameBox(t *testing.T) {
	g := newRepos(t).geocache
	ctx := context.Background()
	box := domain.BBox{MinLat: -70.5, MaxLat: -70.0, MinLon: 10.0, MaxLon: 10.5}

	require.NoError(t, g.Save(ctx, box, domain.Place{City: "Old"}))
	require.NoError(t, g.Save(ctx, box, domain.Place{City: "New"}))

	got, err := g.Lookup(ctx, domain.Coordinate{Lat: -70.2, Lon: 10.2})
	require.NoError(t, err)
	assert.Equal(t, "New", got.City)
}
