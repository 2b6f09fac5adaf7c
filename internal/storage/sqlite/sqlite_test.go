package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shortlinks/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.db")
	store, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func record(code, url string) models.LinkRecord {
	return models.LinkRecord{
		Code:        code,
		OriginalURL: url,
		CreatedAt:   models.NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC)),
	}
}

func click(ip string, withLocation bool) models.ClickEvent {
	ev := models.ClickEvent{
		Timestamp: models.NewTimestamp(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)),
		Device:    models.DeviceProfile{OS: "Android", Browser: "Chrome", Type: models.FormFactorMobile},
		IP:        ip,
	}
	if withLocation {
		lat, lon := 35.68, 139.69
		ev.Location = &models.Location{Country: "Japan", City: "Tokyo", Latitude: &lat, Longitude: &lon}
	}
	return ev
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Create(ctx, record("calm-fox", "https://example.com/a")))
	assert.ErrorIs(t, store.Create(ctx, record("calm-fox", "https://example.com/b")), models.ErrConflict)
	assert.ErrorIs(t, store.Create(ctx, record("bold-wolf", "https://example.com/a")), models.ErrConflict)

	got, err := store.Get(ctx, "calm-fox")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got.OriginalURL)
	assert.NotNil(t, got.Clicks)
	assert.Empty(t, got.Clicks)

	byURL, err := store.FindByOriginalURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "calm-fox", byURL.Code)

	require.NoError(t, store.AppendClick(ctx, "calm-fox", click("8.8.8.8", true)))
	require.NoError(t, store.AppendClick(ctx, "calm-fox", click("9.9.9.9", false)))
	assert.ErrorIs(t, store.AppendClick(ctx, "nope", click("1.1.1.1", false)), models.ErrNotFound)

	got, err = store.Get(ctx, "calm-fox")
	require.NoError(t, err)
	require.Len(t, got.Clicks, 2)
	assert.Equal(t, "8.8.8.8", got.Clicks[0].IP)
	require.NotNil(t, got.Clicks[0].Location)
	assert.Equal(t, "Tokyo", got.Clicks[0].Location.City)
	assert.Nil(t, got.Clicks[1].Location)

	codes, err := store.Codes(ctx)
	require.NoError(t, err)
	assert.Contains(t, codes, "calm-fox")

	require.NoError(t, store.Delete(ctx, "calm-fox"))
	assert.ErrorIs(t, store.Delete(ctx, "calm-fox"), models.ErrNotFound)
	_, err = store.Get(ctx, "calm-fox")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_ListOrderAndReopen(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	for _, code := range []string{"zesty-zebra", "calm-fox", "keen-star"} {
		require.NoError(t, store.Create(ctx, record(code, "https://example.com/"+code)))
	}
	require.NoError(t, store.AppendClick(ctx, "keen-star", click("1.1.1.1", true)))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	set, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.Equal(t, "zesty-zebra", set[0].Code)
	assert.Equal(t, "calm-fox", set[1].Code)
	assert.Equal(t, "keen-star", set[2].Code)
	assert.Len(t, set[2].Clicks, 1)
	assert.True(t, set[0].CreatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC)))
}
